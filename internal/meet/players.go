package meet

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ResultPlaceholder fills the result slot of a freshly drawn lane.
const ResultPlaceholder = "-"

// Lane is one student's slot within a heat or flight.
type Lane struct {
	Road  string `json:"road"`
	Name  string `json:"name"`
	Data  string `json:"data"`
	Class string `json:"class"`
}

// NewLane builds a lane with the result placeholder set.
func NewLane(number int, name, class string) Lane {
	return Lane{Road: strconv.Itoa(number), Name: name, Data: ResultPlaceholder, Class: class}
}

// Number returns the lane number, or 0 when Road is not numeric.
func (l Lane) Number() int {
	n, err := strconv.Atoi(l.Road)
	if err != nil {
		return 0
	}
	return n
}

// ParticipantGroup is one heat or flight, ordered by lane.
type ParticipantGroup []Lane

// EventParticipants pairs an event label with its groups.
type EventParticipants struct {
	Name   string             `json:"name"`
	Groups []ParticipantGroup `json:"players"`
}

// LaneCount returns the total number of lanes across all groups.
func (ep EventParticipants) LaneCount() int {
	n := 0
	for _, group := range ep.Groups {
		n += len(group)
	}
	return n
}

// Players maps event labels to their participants, remembering insertion
// order so the emitted document lists events as they were scheduled.
type Players struct {
	order   []string
	byLabel map[string]EventParticipants
}

// Set stores ep under its label. Replacing an existing label keeps its
// original position.
func (p *Players) Set(ep EventParticipants) {
	if p.byLabel == nil {
		p.byLabel = make(map[string]EventParticipants)
	}
	if _, exists := p.byLabel[ep.Name]; !exists {
		p.order = append(p.order, ep.Name)
	}
	p.byLabel[ep.Name] = ep
}

// Get returns the participants of one event.
func (p Players) Get(label string) (EventParticipants, bool) {
	ep, ok := p.byLabel[label]
	return ep, ok
}

// Has reports whether the label has participants.
func (p Players) Has(label string) bool {
	_, ok := p.byLabel[label]
	return ok
}

// Len returns the number of events with participants.
func (p Players) Len() int { return len(p.order) }

// Labels returns event labels in insertion order.
func (p Players) Labels() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// All returns every entry in insertion order.
func (p Players) All() []EventParticipants {
	out := make([]EventParticipants, 0, len(p.order))
	for _, label := range p.order {
		out = append(out, p.byLabel[label])
	}
	return out
}

// MarshalJSON renders the label keyed object in insertion order.
func (p Players) MarshalJSON() ([]byte, error) {
	return encodeOrderedObject(p.order, func(key string) any { return p.byLabel[key] })
}

// UnmarshalJSON restores entries in document order, keyed by their name
// field. A missing name field is filled from the object key.
func (p *Players) UnmarshalJSON(data []byte) error {
	var restored Players
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var ep EventParticipants
		if err := json.Unmarshal(raw, &ep); err != nil {
			return fmt.Errorf("meet: players %q: %w", key, err)
		}
		if ep.Name == "" {
			ep.Name = key
		}
		restored.Set(ep)
		return nil
	})
	if err != nil {
		return err
	}
	*p = restored
	return nil
}

// Member is a top-level document entry outside games and players.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Document is the emitted dataset. Extra keeps unrecognised top-level
// members in document order.
type Document struct {
	Games   Games
	Players Players
	Extra   []Member
}

const (
	gamesKey   = "games"
	playersKey = "players"
)

// MarshalJSON writes games, players, then any extra members.
func (d Document) MarshalJSON() ([]byte, error) {
	keys := []string{gamesKey, playersKey}
	extra := make(map[string]json.RawMessage, len(d.Extra))
	for _, m := range d.Extra {
		if m.Key == gamesKey || m.Key == playersKey {
			continue
		}
		if _, seen := extra[m.Key]; !seen {
			keys = append(keys, m.Key)
		}
		extra[m.Key] = m.Value
	}
	return encodeOrderedObject(keys, func(key string) any {
		switch key {
		case gamesKey:
			return d.Games
		case playersKey:
			return d.Players
		}
		return extra[key]
	})
}

// UnmarshalJSON reads a document object. Missing games or players stay empty.
func (d *Document) UnmarshalJSON(data []byte) error {
	var restored Document
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case gamesKey:
			return json.Unmarshal(raw, &restored.Games)
		case playersKey:
			return json.Unmarshal(raw, &restored.Players)
		}
		value := make(json.RawMessage, len(raw))
		copy(value, raw)
		restored.Extra = append(restored.Extra, Member{Key: key, Value: value})
		return nil
	})
	if err != nil {
		return err
	}
	*d = restored
	return nil
}
