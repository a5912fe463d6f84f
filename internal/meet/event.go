package meet

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SessionKind names one of the four per-day event lists of the games schedule.
type SessionKind string

const (
	MorningTrack   SessionKind = "morning-track"
	AfternoonTrack SessionKind = "afternoon-track"
	MorningField   SessionKind = "morning-field"
	AfternoonField SessionKind = "afternoon-field"
)

// SessionKinds is the order sessions take inside a game day.
var SessionKinds = []SessionKind{MorningTrack, AfternoonTrack, MorningField, AfternoonField}

// EventDefinition is one scheduled competition. Grade and Gender are set when
// the event is declared; an event lacking either is never given participants.
type EventDefinition struct {
	Label      string
	Time       string
	Grade      Grade
	// GradeText holds a grade field read from a document that names no
	// known grade, such as 教工, so re-encoding keeps it.
	GradeText  string
	Gender     Gender
	Discipline string
	Round      string
	Day        string
	Session    SessionKind
}

// Assignable reports whether grade and gender are both known.
func (e EventDefinition) Assignable() bool {
	return e.Grade.Valid() && e.Gender.Valid()
}

type eventWire struct {
	Grade string `json:"grade"`
	Name  string `json:"name"`
	Time  string `json:"time"`
}

// MarshalJSON emits the leaf shape consumed by the front end: grade, name, time.
func (e EventDefinition) MarshalJSON() ([]byte, error) {
	grade := string(e.Grade)
	if e.GradeText != "" {
		grade = e.GradeText
	}
	return marshalNoEscape(eventWire{Grade: grade, Name: e.Label, Time: e.Time})
}

// UnmarshalJSON restores an event from its leaf shape. Grade and gender are
// recovered from the label when the grade field is missing or unknown.
func (e *EventDefinition) UnmarshalJSON(data []byte) error {
	var wire eventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = EventFromLabel(wire.Name, wire.Time)
	if g, ok := ParseGrade(wire.Grade); ok {
		e.Grade = g
	} else if wire.Grade != "" {
		e.GradeText = wire.Grade
	}
	return nil
}

// EventFromLabel builds an event from free text, deriving typed fields once.
func EventFromLabel(label, clock string) EventDefinition {
	label = strings.TrimSpace(label)
	grade, gender, _ := ParseLabel(label)
	discipline, round := SplitLabel(label)
	return EventDefinition{
		Label:      label,
		Time:       strings.TrimSpace(clock),
		Grade:      grade,
		Gender:     gender,
		Discipline: discipline,
		Round:      round,
	}
}

// GameSession is one ordered list of events within a day.
type GameSession struct {
	Kind   SessionKind
	Events []EventDefinition
}

// GameDay groups the sessions held on one competition day.
type GameDay struct {
	Name     string
	Sessions []GameSession
}

// Games is the per-day, per-session schedule emitted under the games key.
type Games struct {
	Days []GameDay
}

// Events flattens the schedule in day then session order.
func (g Games) Events() []EventDefinition {
	var out []EventDefinition
	for _, day := range g.Days {
		for _, session := range day.Sessions {
			out = append(out, session.Events...)
		}
	}
	return out
}

// Len returns the number of scheduled events, duplicates included.
func (g Games) Len() int {
	n := 0
	for _, day := range g.Days {
		for _, session := range day.Sessions {
			n += len(session.Events)
		}
	}
	return n
}

// MarshalJSON renders {day: [[event...], ...]} keeping day order.
func (g Games) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(g.Days))
	byName := make(map[string][][]EventDefinition, len(g.Days))
	for _, day := range g.Days {
		keys = append(keys, day.Name)
		lists := make([][]EventDefinition, 0, len(day.Sessions))
		for _, session := range day.Sessions {
			events := session.Events
			if events == nil {
				events = []EventDefinition{}
			}
			lists = append(lists, events)
		}
		byName[day.Name] = lists
	}
	return encodeOrderedObject(keys, func(key string) any { return byName[key] })
}

// UnmarshalJSON reads the games object back, assigning session kinds by
// position.
func (g *Games) UnmarshalJSON(data []byte) error {
	var days []GameDay
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var lists [][]EventDefinition
		if err := json.Unmarshal(raw, &lists); err != nil {
			return fmt.Errorf("meet: games day %q: %w", key, err)
		}
		day := GameDay{Name: key}
		for i, events := range lists {
			kind := SessionKind(fmt.Sprintf("session-%d", i+1))
			if i < len(SessionKinds) {
				kind = SessionKinds[i]
			}
			for j := range events {
				events[j].Day = key
				events[j].Session = kind
			}
			day.Sessions = append(day.Sessions, GameSession{Kind: kind, Events: events})
		}
		days = append(days, day)
		return nil
	})
	if err != nil {
		return err
	}
	g.Days = days
	return nil
}
