// Package normalize provides pure canonicalization functions for
// bibliographic field values: DOIs, dates, author names, titles, and URLs.
// Nothing in this package performs I/O; write-back of normalized values is
// the caller's concern.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

// doiPattern is the registry-prefix format every modern DOI follows:
// a "10." directory indicator, a registrant code of at least four digits,
// and a non-empty suffix.
var doiPattern = regexp.MustCompile(`^10\.\d{4,}/\S+$`)

// doiInExtra matches a "DOI: ..." line inside a free-text extra field.
var doiInExtra = regexp.MustCompile(`(?i)DOI:\s*(\S+)`)

// doiInURL matches the DOI suffix of a doi.org resolver URL.
var doiInURL = regexp.MustCompile(`doi\.org/(.+)$`)

// CleanDOI strips resolver prefixes and the "doi:" scheme from a raw DOI
// string. It does not validate the result.
func CleanDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.TrimSpace(doi)
}

// ValidDOI reports whether the cleaned form of doi matches the DOI format.
func ValidDOI(doi string) bool {
	return doiPattern.MatchString(CleanDOI(doi))
}

// ExtractDOI finds a record's DOI across the places libraries hide them:
// the DOI field itself, a "DOI:" line in the extra field, or a doi.org URL.
// Returns the cleaned DOI, or "" when none is present.
func ExtractDOI(doiField, extra, urlField string) string {
	if doi := strings.TrimSpace(doiField); doi != "" {
		return CleanDOI(doi)
	}

	if m := doiInExtra.FindStringSubmatch(extra); m != nil {
		return CleanDOI(m[1])
	}

	if strings.Contains(urlField, "doi.org") {
		if m := doiInURL.FindStringSubmatch(urlField); m != nil {
			return CleanDOI(m[1])
		}
	}

	return ""
}

// ValidURL reports whether s parses as an absolute URL with a scheme and host.
func ValidURL(s string) bool {
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}
