// Package audit inspects a library for quality problems: missing required
// fields, malformed identifiers and dates, empty titles, absent authors,
// and dead URLs. Auditing is strictly read-only.
package audit

import (
	"context"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/bibtidy/bibtidy/pkg/logging"
	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/records"
)

// Finding is one problem on one record.
type Finding struct {
	Key    string `json:"key" yaml:"key"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report collects audit findings by category.
type Report struct {
	GeneratedAt utc.Time `json:"generated_at" yaml:"generated_at"`
	TotalItems  int      `json:"total_items" yaml:"total_items"`

	MissingFields  []Finding `json:"missing_fields,omitempty" yaml:"missing_fields,omitempty"`
	InvalidDOIs    []Finding `json:"invalid_dois,omitempty" yaml:"invalid_dois,omitempty"`
	BrokenURLs     []Finding `json:"broken_urls,omitempty" yaml:"broken_urls,omitempty"`
	MalformedDates []Finding `json:"malformed_dates,omitempty" yaml:"malformed_dates,omitempty"`
	MissingAuthors []Finding `json:"missing_authors,omitempty" yaml:"missing_authors,omitempty"`
	EmptyTitles    []Finding `json:"empty_titles,omitempty" yaml:"empty_titles,omitempty"`

	Summary map[string]int `json:"summary" yaml:"summary"`
}

// TotalIssues counts findings across all categories.
func (r *Report) TotalIssues() int {
	return len(r.MissingFields) + len(r.InvalidDOIs) + len(r.BrokenURLs) +
		len(r.MalformedDates) + len(r.MissingAuthors) + len(r.EmptyTitles)
}

func (r *Report) summarize() {
	r.Summary = map[string]int{
		"missing_fields":  len(r.MissingFields),
		"invalid_dois":    len(r.InvalidDOIs),
		"broken_urls":     len(r.BrokenURLs),
		"malformed_dates": len(r.MalformedDates),
		"missing_authors": len(r.MissingAuthors),
		"empty_titles":    len(r.EmptyTitles),
		"total_issues":    r.TotalIssues(),
	}
}

// URLProber checks whether a URL responds. Implemented by the transport
// client's HEAD request.
type URLProber interface {
	Head(ctx context.Context, url string) (int, error)
}

// Auditor runs quality checks over records.
type Auditor struct {
	requiredFields map[string][]string
	prober         URLProber
	checkURLs      bool
	doiProber      URLProber
	doiResolver    string
	logger         *zerolog.Logger
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithRequiredFields overrides the per-item-type required field sets.
func WithRequiredFields(required map[string][]string) Option {
	return func(a *Auditor) {
		if len(required) > 0 {
			a.requiredFields = required
		}
	}
}

// WithURLProber enables dead-link detection through the given prober.
func WithURLProber(p URLProber) Option {
	return func(a *Auditor) {
		a.prober = p
		a.checkURLs = p != nil
	}
}

// WithDOIResolution also probes whether each well-formed DOI actually
// resolves at doi.org.
func WithDOIResolution(p URLProber) Option {
	return func(a *Auditor) {
		a.doiProber = p
	}
}

// WithLogger sets the auditor logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *Auditor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Auditor. URL probing is off unless a prober is supplied.
func New(opts ...Option) *Auditor {
	a := &Auditor{
		requiredFields: records.RequiredFields,
		doiResolver:    "https://doi.org",
		logger:         logging.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Audit checks every record and returns the categorized findings. Records
// are never modified.
func (a *Auditor) Audit(ctx context.Context, recs []records.Record) (*Report, error) {
	report := &Report{GeneratedAt: utc.Now(), TotalItems: len(recs)}

	for i := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.auditOne(ctx, &recs[i], report)
	}

	report.summarize()
	a.logger.Info().
		Int("items", report.TotalItems).
		Int("issues", report.TotalIssues()).
		Msg("audit complete")
	return report, nil
}

func (a *Auditor) auditOne(ctx context.Context, rec *records.Record, report *Report) {
	title := rec.Title

	if !rec.HasField(records.FieldTitle) {
		report.EmptyTitles = append(report.EmptyTitles, Finding{
			Key:    rec.Key,
			Reason: "title is empty",
		})
	}

	if required, ok := a.requiredFields[rec.ItemType]; ok {
		if missing := rec.EmptyFields(required); len(missing) > 0 {
			for _, field := range missing {
				report.MissingFields = append(report.MissingFields, Finding{
					Key:    rec.Key,
					Title:  title,
					Reason: "missing " + field,
				})
			}
		}
		if len(rec.Creators) == 0 {
			report.MissingAuthors = append(report.MissingAuthors, Finding{
				Key:    rec.Key,
				Title:  title,
				Reason: "no creators",
			})
		}
	}

	if doi := normalize.CleanDOI(rec.DOI); doi != "" {
		if !normalize.ValidDOI(doi) {
			report.InvalidDOIs = append(report.InvalidDOIs, Finding{
				Key:    rec.Key,
				Title:  title,
				Reason: "invalid DOI: " + rec.DOI,
			})
		} else if a.doiProber != nil {
			status, err := a.doiProber.Head(ctx, a.doiResolver+"/"+doi)
			if err != nil || status >= 400 {
				report.InvalidDOIs = append(report.InvalidDOIs, Finding{
					Key:    rec.Key,
					Title:  title,
					Reason: "unresolved DOI: " + doi,
				})
			}
		}
	}

	if rec.Date != "" && !normalize.RecognizedDate(rec.Date) {
		report.MalformedDates = append(report.MalformedDates, Finding{
			Key:    rec.Key,
			Title:  title,
			Reason: "unrecognized date: " + rec.Date,
		})
	}

	if rec.URL != "" {
		if !normalize.ValidURL(rec.URL) {
			report.BrokenURLs = append(report.BrokenURLs, Finding{
				Key:    rec.Key,
				Title:  title,
				Reason: "malformed URL: " + rec.URL,
			})
		} else if a.checkURLs {
			status, err := a.prober.Head(ctx, rec.URL)
			if err != nil || status >= 400 {
				report.BrokenURLs = append(report.BrokenURLs, Finding{
					Key:    rec.Key,
					Title:  title,
					Reason: "unreachable URL: " + rec.URL,
				})
			}
		}
	}
}
