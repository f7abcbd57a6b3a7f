package tlb

import (
	"fmt"
	"strings"
)

// reportSeparator closes every statistics report.
var reportSeparator = strings.Repeat("=", 51)

// Stats is a snapshot of the TLB counters.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// Lookups returns the number of lookups that produced the counters.
func (s Stats) Lookups() uint64 {
	return s.Hits + s.Misses
}

// HitRate returns the percentage of lookups that hit. It is 0 if no lookup
// has been made.
func (s Stats) HitRate() float64 {
	total := s.Lookups()
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total) * 100
}

// String formats the counters as a single report line.
func (s Stats) String() string {
	return fmt.Sprintf("TLB Hits: %d, TLB Misses: %d, TLB Hit Rate: %.1f%%",
		s.Hits, s.Misses, s.HitRate())
}

// Report returns the counters as a report line followed by a separator line.
func (s Stats) Report() string {
	return s.String() + "\n" + reportSeparator + "\n"
}

// StatsReport returns the human-readable statistics of the TLB, followed by
// a separator line.
func (c *Comp) StatsReport() string {
	return c.Stats().Report()
}
