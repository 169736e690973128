package orchestrator

import (
	"time"

	"go-locator/internal/models"
)

type AdapterReport struct {
	Name     string        `json:"name"`
	Yielded  int           `json:"yielded"`
	Accepted int           `json:"accepted"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Summary is the outcome of a finished run.
type Summary struct {
	RunID   string  `json:"run_id"`
	Request Request `json:"request"`
	State   State   `json:"-"`

	// Results are the deduplicated listings in the order they were accepted.
	Results []models.Listing `json:"results"`
	// New holds the listings this run inserted for the first time.
	New []models.Listing `json:"-"`

	Inserted    int `json:"inserted"`
	Replaced    int `json:"replaced"`
	Skipped     int `json:"skipped"`
	Duplicates  int `json:"duplicates"`
	Unique      int `json:"unique"`
	WriteErrors int `json:"write_errors"`

	Adapters  []AdapterReport `json:"adapters"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	Err       error           `json:"-"`
}

// FailedAdapters returns the reports of adapters that stopped with an error.
func (s Summary) FailedAdapters() []AdapterReport {
	var out []AdapterReport
	for _, a := range s.Adapters {
		if a.Err != "" {
			out = append(out, a)
		}
	}
	return out
}
