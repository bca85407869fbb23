package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Status is an outcome of one data source in a build.
type Status string

const (
	// StatusOK means the source returned data without failures.
	StatusOK Status = "ok"

	// StatusDegraded means the source returned partial data.
	StatusDegraded Status = "degraded"

	// StatusUnavailable means the source returned no data at all.
	StatusUnavailable Status = "unavailable"
)

// SourceReport describes what one source contributed to a build.
type SourceReport struct {
	Source   SourceID      `json:"source"`
	Status   Status        `json:"status"`
	Records  int           `json:"records"`
	Failures int           `json:"failures"`
	Failure  Failure       `json:"failure,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// NewSourceReport creates a report for a source from the number of
// records it returned, the number of failed calls and the last error.
// A source without records is unavailable even if it reported no error.
func NewSourceReport(
	src SourceID,
	records, failures int,
	err error,
	dur time.Duration,
) SourceReport {
	res := SourceReport{
		Source:   src,
		Status:   StatusOK,
		Records:  records,
		Failures: failures,
		Duration: dur,
	}
	if err == nil && failures == 0 && records > 0 {
		return res
	}
	if err != nil {
		res.Failure = Classify(err)
		res.Error = err.Error()
	}
	if res.Failures == 0 {
		res.Failures = 1
	}
	res.Status = StatusDegraded
	if records == 0 {
		res.Status = StatusUnavailable
	}
	return res
}

// Report is the outcome of a build.
type Report struct {
	ID         uuid.UUID      `json:"id"`
	Edition    string         `json:"edition"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	State      State          `json:"state"`
	Degraded   bool           `json:"degraded"`
	Countries  int            `json:"countries"`
	Sources    []SourceReport `json:"sources"`
}

// Source returns the report of a source if it exists.
func (r *Report) Source(id SourceID) (SourceReport, bool) {
	for _, v := range r.Sources {
		if v.Source == id {
			return v, true
		}
	}
	return SourceReport{}, false
}

// DegradedSources returns sources that did not deliver complete data.
func (r *Report) DegradedSources() []SourceReport {
	var res []SourceReport
	for _, v := range r.Sources {
		if v.Status != StatusOK {
			res = append(res, v)
		}
	}
	return res
}

// Succeeded returns true if the build reached the Done state.
func (r *Report) Succeeded() bool {
	return r.State == StateDone
}
