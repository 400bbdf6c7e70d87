package enrich

import "github.com/agentstation/utc"

// Status classifies the outcome of enriching one record.
type Status string

// Enrichment outcomes.
const (
	StatusEnriched Status = "enriched"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
)

// FieldChange is one proposed or applied field update.
type FieldChange struct {
	Old    string `json:"old" yaml:"old"`
	New    string `json:"new" yaml:"new"`
	Source string `json:"source" yaml:"source"`
}

// Result reports what happened to one record.
type Result struct {
	Key    string `json:"key" yaml:"key"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	DOI    string `json:"doi,omitempty" yaml:"doi,omitempty"`
	Status Status `json:"status" yaml:"status"`

	// Reason explains a skip; Error carries a per-item failure message.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`

	// Changes maps field names to their old and new values with the
	// contributing source.
	Changes map[string]FieldChange `json:"changes,omitempty" yaml:"changes,omitempty"`

	// DryRun echoes the pipeline mode the result was produced under.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// ItemFailure pairs a record key with the failure that stopped it.
type ItemFailure struct {
	Key   string `json:"key" yaml:"key"`
	Error string `json:"error" yaml:"error"`
}

// Stats aggregates a run over a batch of records.
type Stats struct {
	StartedAt utc.Time `json:"started_at" yaml:"started_at"`

	Total    int `json:"total" yaml:"total"`
	Enriched int `json:"enriched" yaml:"enriched"`
	Skipped  int `json:"skipped" yaml:"skipped"`
	Errors   int `json:"errors" yaml:"errors"`

	Results  []Result      `json:"results,omitempty" yaml:"results,omitempty"`
	Failures []ItemFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

func (s *Stats) add(r Result) {
	s.Total++
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusEnriched:
		s.Enriched++
	case StatusSkipped:
		s.Skipped++
	case StatusError:
		s.Errors++
		s.Failures = append(s.Failures, ItemFailure{Key: r.Key, Error: r.Error})
	}
}
