// Package genres turns Open Library subject strings into a short list of
// representative genre labels.
package genres

import (
	"sort"
	"unicode/utf8"
)

const (
	// DefaultTopN bounds the number of labels Clean returns.
	DefaultTopN = 5
	// DefaultThreshold is the similarity a subject must exceed to join a group.
	DefaultThreshold = 0.80
)

// Text normalises subjects and scores their similarity.
// *textproc.Engine satisfies it.
type Text interface {
	Normalize(text string) string
	Similarity(a, b string) float64
}

// Clusterer groups similar subjects greedily and ranks groups by size.
type Clusterer struct {
	text      Text
	topN      int
	threshold float64
}

// NewClusterer returns a Clusterer. Non-positive arguments select the defaults.
func NewClusterer(text Text, topN int, threshold float64) *Clusterer {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Clusterer{text: text, topN: topN, threshold: threshold}
}

// TopN returns the configured label limit.
func (c *Clusterer) TopN() int { return c.topN }

type group struct {
	members []string
}

// representative returns the longest member; the earliest wins ties.
func (g group) representative() string {
	best := g.members[0]
	for _, m := range g.members[1:] {
		if utf8.RuneCountInString(m) > utf8.RuneCountInString(best) {
			best = m
		}
	}
	return best
}

// Clean normalises raw subjects, clusters them and returns one label per
// group for the largest groups, largest first. Groups of equal size keep
// their discovery order. Subjects that normalise to nothing are ignored.
func (c *Clusterer) Clean(raw []string) []string {
	groups := c.cluster(raw)
	if len(groups) == 0 {
		return []string{}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].members) > len(groups[j].members)
	})
	if len(groups) > c.topN {
		groups = groups[:c.topN]
	}

	labels := make([]string, 0, len(groups))
	for _, g := range groups {
		labels = append(labels, g.representative())
	}
	return labels
}

// cluster assigns each normalised subject to the first existing group that
// has a member scoring above the threshold, or to a new group. The result
// depends on input order.
func (c *Clusterer) cluster(raw []string) []group {
	var groups []group
	for _, subject := range raw {
		norm := c.text.Normalize(subject)
		if norm == "" {
			continue
		}

		placed := false
		for gi := range groups {
			if c.matches(groups[gi], norm) {
				groups[gi].members = append(groups[gi].members, norm)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, group{members: []string{norm}})
		}
	}
	return groups
}

func (c *Clusterer) matches(g group, subject string) bool {
	for _, member := range g.members {
		if c.text.Similarity(subject, member) > c.threshold {
			return true
		}
	}
	return false
}
