package metric

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/c360/accessmon/errors"
)

// WriteText encodes every gathered metric family to w in the Prometheus text
// exposition format.
func (r *MetricsRegistry) WriteText(w io.Writer) error {
	families, err := r.prometheusRegistry.Gather()
	if err != nil {
		return errors.WrapTransient(err, "MetricsRegistry", "WriteText", "gather metrics")
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.WrapTransient(err, "MetricsRegistry", "WriteText", "encode metric family")
		}
	}
	return nil
}

// WriteTextfile writes the text exposition to path, in the layout the node
// exporter textfile collector expects. The file is replaced atomically.
func (r *MetricsRegistry) WriteTextfile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".accessmon-metrics-*")
	if err != nil {
		return errors.WrapTransient(err, "MetricsRegistry", "WriteTextfile", "create temp file")
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := r.WriteText(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return errors.WrapTransient(err, "MetricsRegistry", "WriteTextfile", "flush")
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapTransient(err, "MetricsRegistry", "WriteTextfile", "close temp file")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.WrapTransient(err, "MetricsRegistry", "WriteTextfile", "chmod")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapTransient(err, "MetricsRegistry", "WriteTextfile", "rename")
	}
	return nil
}

// Value returns the current value of the counter or gauge series called name
// whose labels include every pair in match. Values of all matching series are
// summed. ok is false when no series matched.
func (r *MetricsRegistry) Value(name string, match map[string]string) (value float64, ok bool, err error) {
	families, err := r.prometheusRegistry.Gather()
	if err != nil {
		return 0, false, errors.WrapTransient(err, "MetricsRegistry", "Value", "gather metrics")
	}

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if !labelsMatch(m.GetLabel(), match) {
				continue
			}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				value += m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				value += m.GetGauge().GetValue()
			default:
				continue
			}
			ok = true
		}
	}
	return value, ok, nil
}

func labelsMatch(pairs []*dto.LabelPair, match map[string]string) bool {
	found := 0
	for _, lp := range pairs {
		if want, exists := match[lp.GetName()]; exists {
			if lp.GetValue() != want {
				return false
			}
			found++
		}
	}
	return found == len(match)
}
