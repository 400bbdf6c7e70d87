package bibtidy

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/records"
	"github.com/bibtidy/bibtidy/pkg/sources"
)

// Option is a function that configures an Engine.
type Option func(*config) error

type config struct {
	sources             []sources.Source
	similarityThreshold float64
	titleWeight         float64
	authorWeight        float64
	contactEmail        string
	requiredFields      map[string][]string
	enrichFields        []string
	dateFormat          normalize.DateFormat
	dryRun              bool
	concurrency         int
	httpClient          *http.Client
	apiTimeout          time.Duration
	maxRetries          int
	logger              *zerolog.Logger
	keywordMap          map[string][]string
	checkURLs           bool
	checkDOIs           bool
	semanticScholarRate rate.Limit
	crossrefRate        rate.Limit
	openAlexRate        rate.Limit
}

// WithSources replaces the default source clients. Order is the
// enrichment consultation order.
func WithSources(srcs ...sources.Source) Option {
	return func(c *config) error {
		if len(srcs) == 0 {
			return errors.NewConfigError("bibtidy", "WithSources requires at least one source", nil)
		}
		c.sources = srcs
		return nil
	}
}

// WithSimilarityThreshold sets the duplicate detection threshold.
func WithSimilarityThreshold(threshold float64) Option {
	return func(c *config) error {
		if threshold <= 0 || threshold > 1 {
			return errors.NewConfigError("bibtidy", "similarity threshold must be in (0,1]", nil)
		}
		c.similarityThreshold = threshold
		return nil
	}
}

// WithSimilarityWeights sets the title and author component weights.
func WithSimilarityWeights(title, author float64) Option {
	return func(c *config) error {
		c.titleWeight = title
		c.authorWeight = author
		return nil
	}
}

// WithContactEmail joins the polite pools of CrossRef and OpenAlex, which
// route polite traffic to faster servers.
func WithContactEmail(email string) Option {
	return func(c *config) error {
		c.contactEmail = email
		return nil
	}
}

// WithRequiredFields overrides the audit's per-item-type required fields.
func WithRequiredFields(required map[string][]string) Option {
	return func(c *config) error {
		c.requiredFields = required
		return nil
	}
}

// WithEnrichFields restricts which fields enrichment may fill.
func WithEnrichFields(fields []string) Option {
	return func(c *config) error {
		for _, f := range fields {
			if !containsString(records.ScalarFields, f) {
				return errors.NewConfigError("bibtidy", "unknown enrich field "+f, nil)
			}
		}
		c.enrichFields = fields
		return nil
	}
}

// WithDateFormat sets the target format for date normalization.
func WithDateFormat(format normalize.DateFormat) Option {
	return func(c *config) error {
		if !normalize.ValidDateFormat(format) {
			return errors.NewConfigError("bibtidy", "unsupported date format "+string(format), nil)
		}
		c.dateFormat = format
		return nil
	}
}

// WithDryRun toggles preview mode for all mutating operations. Dry-run is
// the default; disabling it is the explicit opt-in to writes.
func WithDryRun(dryRun bool) Option {
	return func(c *config) error {
		c.dryRun = dryRun
		return nil
	}
}

// WithConcurrency enriches up to n records in parallel.
func WithConcurrency(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.NewConfigError("bibtidy", "concurrency must be at least 1", nil)
		}
		c.concurrency = n
		return nil
	}
}

// WithHTTPClient swaps the HTTP client used by the default sources and
// the URL auditor.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) error {
		c.httpClient = hc
		return nil
	}
}

// WithAPITimeout bounds each request to the metadata sources. Ignored
// when a custom HTTP client is supplied.
func WithAPITimeout(timeout time.Duration) Option {
	return func(c *config) error {
		if timeout <= 0 {
			return errors.NewConfigError("bibtidy", "API timeout must be positive", nil)
		}
		c.apiTimeout = timeout
		return nil
	}
}

// WithMaxRetries caps retry attempts for transient source errors.
func WithMaxRetries(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return errors.NewConfigError("bibtidy", "max retries cannot be negative", nil)
		}
		c.maxRetries = n
		return nil
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithKeywordMap overrides the auto-tagging keyword map.
func WithKeywordMap(m map[string][]string) Option {
	return func(c *config) error {
		c.keywordMap = m
		return nil
	}
}

// WithURLChecks enables live URL probing during audits.
func WithURLChecks(enabled bool) Option {
	return func(c *config) error {
		c.checkURLs = enabled
		return nil
	}
}

// WithDOIChecks enables probing doi.org during audits to flag DOIs that
// are well-formed but do not resolve.
func WithDOIChecks(enabled bool) Option {
	return func(c *config) error {
		c.checkDOIs = enabled
		return nil
	}
}

// WithSourceRateLimit overrides the request rate for one of the default
// sources ("crossref", "openalex", "semanticscholar").
func WithSourceRateLimit(source string, limit rate.Limit) Option {
	return func(c *config) error {
		switch source {
		case "crossref":
			c.crossrefRate = limit
		case "openalex":
			c.openAlexRate = limit
		case "semanticscholar":
			c.semanticScholarRate = limit
		default:
			return errors.NewConfigError("bibtidy", "unknown source "+source, nil)
		}
		return nil
	}
}

func containsString(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
