// Package search finds athletes across the participant lists of a dataset.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/kingrea/sportsmeet/internal/meet"
)

// Athlete is one lane assignment seen from the athlete's side.
type Athlete struct {
	Name  string `json:"name"`
	Class string `json:"class"`
	Event string `json:"gameName"`
	Group int    `json:"group"`
	Road  string `json:"road"`
}

// Index holds every named lane of a document in event, group, lane order.
type Index struct {
	athletes []Athlete
}

// NewIndex flattens the participant lists of doc. Lanes without a name are
// left out.
func NewIndex(doc meet.Document) *Index {
	idx := &Index{}
	for _, ep := range doc.Players.All() {
		for g, group := range ep.Groups {
			for _, lane := range group {
				name := strings.TrimSpace(lane.Name)
				if name == "" {
					continue
				}
				idx.athletes = append(idx.athletes, Athlete{
					Name:  name,
					Class: lane.Class,
					Event: ep.Name,
					Group: g + 1,
					Road:  lane.Road,
				})
			}
		}
	}
	return idx
}

// Len reports the number of indexed lanes.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.athletes)
}

// Lookup returns the first lane held by an athlete with exactly this name.
func (idx *Index) Lookup(name string) (Athlete, bool) {
	if idx == nil {
		return Athlete{}, false
	}
	for _, a := range idx.athletes {
		if a.Name == name {
			return a, true
		}
	}
	return Athlete{}, false
}

// Search returns athletes whose name or class contains query, ignoring case,
// followed by fuzzy name matches ranked by score. A blank query matches
// nothing. limit <= 0 means no limit.
func (idx *Index) Search(query string, limit int) []Athlete {
	query = strings.TrimSpace(query)
	if idx == nil || query == "" {
		return nil
	}
	needle := strings.ToLower(query)
	seen := make(map[int]bool)
	var out []Athlete
	full := func() bool { return limit > 0 && len(out) >= limit }

	for i, a := range idx.athletes {
		if full() {
			return out
		}
		if strings.Contains(strings.ToLower(a.Name), needle) || strings.Contains(strings.ToLower(a.Class), needle) {
			seen[i] = true
			out = append(out, a)
		}
	}
	for _, m := range fuzzy.FindFrom(query, nameSource(idx.athletes)) {
		if full() {
			break
		}
		if seen[m.Index] {
			continue
		}
		seen[m.Index] = true
		out = append(out, idx.athletes[m.Index])
	}
	return out
}

type nameSource []Athlete

func (s nameSource) String(i int) string { return s[i].Name }
func (s nameSource) Len() int            { return len(s) }
