package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360/accessmon/pkg/timestamp"
)

// maxStatuses is how many status codes a summary line lists.
const maxStatuses = 3

// SectionCount is a section and its request count.
type SectionCount struct {
	Section string
	Count   int64
}

// StatusCount is a status code and its request count.
type StatusCount struct {
	Code  uint16
	Count int64
}

// Summary is the traffic of one closed chunk [Start, End).
type Summary struct {
	Start       int64
	End         int64
	Total       int64
	Bytes       uint64
	Rate        float64 // requests per second over the chunk width
	TopSection  SectionCount
	TopStatuses []StatusCount
}

// Empty reports whether the chunk saw no requests.
func (s Summary) Empty() bool {
	return s.Total == 0
}

// AvgBytes returns the mean response size, or 0 for an empty chunk.
func (s Summary) AvgBytes() uint64 {
	if s.Total == 0 {
		return 0
	}
	return s.Bytes / uint64(s.Total)
}

// String renders the summary as one output line:
//
//	2019-02-07 21:11:00-21:11:10  |    26 requests at   2.6rps  |   50% in /api        |   80% 200,  20% 404  |  avg 1234B
//	2019-02-07 21:11:10-21:11:20  |  no requests
func (s Summary) String() string {
	span := timestamp.FormatDateTime(s.Start) + "-" + timestamp.FormatClock(s.End)
	if s.Empty() {
		return span + "  |  no requests"
	}

	statuses := make([]string, len(s.TopStatuses))
	for i, sc := range s.TopStatuses {
		statuses[i] = fmt.Sprintf("%3d%% %03d", s.percent(sc.Count), sc.Code)
	}

	return fmt.Sprintf("%s  |  %4d requests at %5.1frps  |  %3d%% in %-11s  |  %s  |  avg %dB",
		span, s.Total, s.Rate,
		s.percent(s.TopSection.Count), s.TopSection.Section,
		strings.Join(statuses, ", "),
		s.AvgBytes())
}

// percent is the integer share of n in the chunk, rounded down.
func (s Summary) percent(n int64) int64 {
	return 100 * n / s.Total
}

// topSection picks the busiest section, ties going to the smaller key.
func topSection(counts map[string]int64) SectionCount {
	var best SectionCount
	found := false
	for section, n := range counts {
		if !found || n > best.Count || (n == best.Count && section < best.Section) {
			best = SectionCount{Section: section, Count: n}
			found = true
		}
	}
	return best
}

// topStatuses returns up to limit status codes by count descending, then code ascending.
func topStatuses(counts map[uint16]int64, limit int) []StatusCount {
	out := make([]StatusCount, 0, len(counts))
	for code, n := range counts {
		out = append(out, StatusCount{Code: code, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
