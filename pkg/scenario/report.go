package scenario

import (
	"time"

	"digital.vasic.contracts/pkg/record"
)

// Result is the outcome of one scenario.
type Result struct {
	File        string `json:"file"`
	Target      string `json:"target"`
	Method      string `json:"method"`
	Key         string `json:"key"`
	Description string `json:"description,omitempty"`
	CacheKey    string `json:"cache_key,omitempty"`
	ShouldFail  bool   `json:"should_fail"`

	// Hit is true when the scenario's record was found in the
	// result cache.
	Hit bool `json:"hit"`

	// Passed applies the shouldFail inversion to the record's
	// verdict.
	Passed bool `json:"passed"`

	RecordID          string  `json:"record_id,omitempty"`
	RecordPassed      bool    `json:"record_passed"`
	ExecutionPassed   bool    `json:"execution_passed"`
	RunningTimeMillis float64 `json:"running_time_millis"`
	Message           string  `json:"message,omitempty"`
}

// Report aggregates the results of a run. Passed + Failed
// always equals Hits.
type Report struct {
	StartedAt time.Time `json:"started_at"`
	Files     int       `json:"files"`
	Total     int       `json:"total"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
	Hits      int       `json:"hits"`
	Misses    int       `json:"misses"`

	// ElapsedMillis sums the running time of every hit record.
	ElapsedMillis float64 `json:"elapsed_millis"`
	// Duration is the wall-clock time of the whole run.
	Duration time.Duration `json:"duration"`

	TimedOut   bool     `json:"timed_out,omitempty"`
	LoadErrors []string `json:"load_errors,omitempty"`
	Results    []Result `json:"results"`
}

// Succeeded reports whether every scenario was found and
// passed and every file loaded.
func (r *Report) Succeeded() bool {
	return r.Failed == 0 && r.Misses == 0 && len(r.LoadErrors) == 0
}

// PassRate returns passed hits as a percentage of all hits.
func (r *Report) PassRate() float64 {
	if r.Hits == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Hits) * 100
}

// Failures returns the results that failed or missed.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// add folds one result into the counters. rec is nil on a
// cache miss.
func (r *Report) add(res Result, rec *record.FunctionTestRecord) {
	r.Total++
	if rec == nil {
		r.Misses++
		r.Results = append(r.Results, res)
		return
	}
	res.Hit = true
	res.RecordID = rec.ID
	res.RecordPassed = rec.Passed
	res.ExecutionPassed = rec.ExecutionPassed
	res.RunningTimeMillis = rec.RunningTimeMillis
	if res.Message == "" {
		res.Message = rec.ResultMessage
	}

	outcome := rec.Passed && rec.ExecutionPassed
	res.Passed = outcome != res.ShouldFail

	r.Hits++
	if res.Passed {
		r.Passed++
	} else {
		r.Failed++
	}
	r.ElapsedMillis += rec.RunningTimeMillis
	r.Results = append(r.Results, res)
}
