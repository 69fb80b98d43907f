package model

import "time"

// CycleStats summarizes one crawl cycle.
type CycleStats struct {
	// Iteration is the per-process cycle counter, starting at 1.
	Iteration int `json:"iteration"`

	// Found is the number of submission rows extracted from the index page.
	Found int `json:"found"`

	// New is the number of submissions seen for the first time.
	New int `json:"new"`

	// Skipped is the number of submissions already seen in earlier cycles.
	Skipped int `json:"skipped"`

	// Failed is the number of new submissions whose directory could not
	// be created.
	Failed int `json:"failed"`

	// IndexOK reports whether the index page was fetched with status 200.
	IndexOK bool `json:"index_ok"`

	// StartedAt and FinishedAt bound the cycle, fan-out included.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns how long the cycle took.
func (s CycleStats) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
