// Package dedupe finds groups of duplicate bibliographic records and builds
// deterministic merge plans for them. Detection is transitive: if A matches
// B and B matches C, all three land in one group even when A and C score
// below the threshold on their own.
package dedupe

import (
	"sort"

	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/records"
	"github.com/bibtidy/bibtidy/pkg/similarity"
)

// DefaultThreshold is the composite score at or above which a pair is
// treated as duplicates.
const DefaultThreshold = 0.85

// Group is one set of mutually duplicate records. Keys is sorted and
// always holds at least two entries.
type Group struct {
	Keys []string `json:"keys" yaml:"keys"`

	// Scores holds the pairwise scores that linked the group, for
	// reporting. Pairs below the threshold are not included.
	Scores []similarity.Score `json:"scores,omitempty" yaml:"scores,omitempty"`
}

// Detector groups records whose pairwise similarity reaches a threshold.
type Detector struct {
	scorer    *similarity.Scorer
	threshold float64
}

// NewDetector creates a Detector. A nil scorer selects the default weights.
func NewDetector(scorer *similarity.Scorer, threshold float64) (*Detector, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, errors.NewConfigError("dedupe", "threshold must be in (0,1]", nil)
	}
	if scorer == nil {
		scorer = similarity.Default()
	}
	return &Detector{scorer: scorer, threshold: threshold}, nil
}

// Detect scores all unordered pairs and returns the transitive duplicate
// groups, sorted by their smallest key. Records are not modified.
func (d *Detector) Detect(recs []records.Record) []Group {
	n := len(recs)
	if n < 2 {
		return nil
	}

	uf := newUnionFind(n)
	edges := make(map[int][]similarity.Score)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score := d.scorer.Score(&recs[i], &recs[j])
			if score.Composite >= d.threshold {
				uf.union(i, j)
				edges[i] = append(edges[i], score)
			}
		}
	}

	members := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		members[root] = append(members[root], i)
	}

	var groups []Group
	for _, idxs := range members {
		if len(idxs) < 2 {
			continue
		}
		g := Group{Keys: make([]string, 0, len(idxs))}
		for _, idx := range idxs {
			g.Keys = append(g.Keys, recs[idx].Key)
			g.Scores = append(g.Scores, edges[idx]...)
		}
		sort.Strings(g.Keys)
		sort.Slice(g.Scores, func(a, b int) bool {
			if g.Scores[a].KeyA != g.Scores[b].KeyA {
				return g.Scores[a].KeyA < g.Scores[b].KeyA
			}
			return g.Scores[a].KeyB < g.Scores[b].KeyB
		})
		groups = append(groups, g)
	}

	sort.Slice(groups, func(a, b int) bool { return groups[a].Keys[0] < groups[b].Keys[0] })
	return groups
}

// Threshold returns the detector's configured threshold.
func (d *Detector) Threshold() float64 { return d.threshold }

// unionFind is a plain disjoint-set with path compression.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}
