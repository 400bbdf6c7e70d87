package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bibtidy/bibtidy/pkg/records"
)

// nameParticles are surname particles conventionally kept lowercase when
// they are not the leading token ("Ludwig van Beethoven", "van der Waals").
var nameParticles = map[string]struct{}{
	"van": {}, "von": {}, "de": {}, "der": {}, "la": {}, "le": {}, "du": {},
}

var titleCaser = cases.Title(language.Und, cases.NoLower)

// Name converts a personal-name component to conventional casing.
// Each token is title-cased except known surname particles in non-leading
// position, which are lowercased.
func Name(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	parts := strings.Fields(name)
	out := make([]string, 0, len(parts))

	for i, part := range parts {
		lower := strings.ToLower(part)
		if i > 0 {
			if _, ok := nameParticles[lower]; ok {
				out = append(out, lower)
				continue
			}
		}
		out = append(out, titleCaser.String(lower))
	}

	return strings.Join(out, " ")
}

// Creator returns a copy of the creator with its name components normalized.
func Creator(c records.Creator) records.Creator {
	normalized := c
	normalized.FirstName = Name(c.FirstName)
	normalized.LastName = Name(c.LastName)
	if c.Name != "" {
		normalized.Name = Name(c.Name)
	}
	return normalized
}

// Creators normalizes a full creator list, reporting whether anything
// changed.
func Creators(creators []records.Creator) ([]records.Creator, bool) {
	if len(creators) == 0 {
		return nil, false
	}
	out := make([]records.Creator, len(creators))
	changed := false
	for i, c := range creators {
		out[i] = Creator(c)
		if out[i] != c {
			changed = true
		}
	}
	return out, changed
}
