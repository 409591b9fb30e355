package stats

import (
	"fmt"

	"github.com/c360/accessmon/config"
	"github.com/c360/accessmon/errors"
	"github.com/c360/accessmon/pkg/timestamp"
	"github.com/c360/accessmon/record"
)

// Aggregator splits an ordered record stream into fixed-width chunks and
// summarises each one. The first chunk starts at the first record's timestamp.
type Aggregator struct {
	width int64

	open  bool
	start int64

	total    int64
	bytes    uint64
	sections map[string]int64
	statuses map[uint16]int64

	chunks      int64
	emptyChunks int64
}

// NewAggregator creates an aggregator with cfg.StatsWindow-second chunks.
func NewAggregator(cfg config.Config) *Aggregator {
	return &Aggregator{
		width:    cfg.StatsWindow,
		sections: make(map[string]int64),
		statuses: make(map[uint16]int64),
	}
}

// Observe counts rec in its chunk. Every chunk that rec's timestamp closes is
// returned first, including one empty summary per silent chunk.
func (a *Aggregator) Observe(rec record.Record) ([]Summary, error) {
	if !a.open {
		a.open = true
		a.start = rec.Timestamp
	}

	if rec.Timestamp < a.start {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: record at %s precedes open chunk starting %s",
				errors.ErrChronology, timestamp.FormatDateTime(rec.Timestamp), timestamp.FormatDateTime(a.start)),
			"Aggregator", "Observe", "place record in chunk")
	}

	var out []Summary
	for rec.Timestamp >= a.start+a.width {
		out = append(out, a.close())
		a.start += a.width
	}

	a.total++
	a.bytes += rec.Bytes
	a.sections["/"+rec.Section()]++
	a.statuses[rec.Status]++

	return out, nil
}

// Flush closes the open chunk at end of stream. It returns nothing if no
// record was ever observed or the chunk was already flushed.
func (a *Aggregator) Flush() []Summary {
	if !a.open {
		return nil
	}
	s := a.close()
	a.open = false
	return []Summary{s}
}

// Push implements the engine's monitor contract by rendering Observe's summaries.
func (a *Aggregator) Push(rec record.Record) ([]string, error) {
	summaries, err := a.Observe(rec)
	if err != nil {
		return nil, err
	}
	return render(summaries), nil
}

// Pending implements the engine's monitor contract by rendering Flush.
func (a *Aggregator) Pending() []string {
	return render(a.Flush())
}

// Chunks returns how many summaries have been produced, and how many of them were empty.
func (a *Aggregator) Chunks() (total, empty int64) {
	return a.chunks, a.emptyChunks
}

// close summarises the current chunk and resets the counts.
func (a *Aggregator) close() Summary {
	s := Summary{
		Start: a.start,
		End:   a.start + a.width,
		Total: a.total,
		Bytes: a.bytes,
		Rate:  float64(a.total) / float64(a.width),
	}
	if a.total > 0 {
		s.TopSection = topSection(a.sections)
		s.TopStatuses = topStatuses(a.statuses, maxStatuses)
	} else {
		a.emptyChunks++
	}
	a.chunks++

	a.total = 0
	a.bytes = 0
	clear(a.sections)
	clear(a.statuses)

	return s
}

func render(summaries []Summary) []string {
	if len(summaries) == 0 {
		return nil
	}
	lines := make([]string, len(summaries))
	for i, s := range summaries {
		lines[i] = s.String()
	}
	return lines
}
