// Package schedule loads the meet's fixed schedule table: the discipline set,
// the two-day session calendar and the games schedule whose events receive
// participants. The table is declarative data, embedded at build time and
// optionally replaced by a file, and is never computed.
package schedule

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/sportsmeet/internal/meet"
)

//go:embed table.yaml
var embeddedTable []byte

// DisciplineSet lists the track and field disciplines of one gender group.
type DisciplineSet struct {
	Track []string
	Field []string
}

// Contains reports whether discipline is a track or field discipline.
func (d DisciplineSet) Contains(discipline string) bool {
	for _, list := range [][]string{d.Track, d.Field} {
		for _, v := range list {
			if v == discipline {
				return true
			}
		}
	}
	return false
}

// TimedSession is a clock-windowed block of track events.
type TimedSession struct {
	Name   string
	Start  string
	End    string
	Events []string
}

// FieldSession is a list of field events held during a session, without its
// own clock window.
type FieldSession struct {
	Name   string
	Events []string
}

// CalendarDay is one day of the session calendar.
type CalendarDay struct {
	Day   string
	Track []TimedSession
	Field []FieldSession
}

// Table is an immutable, validated schedule. Accessors return copies.
type Table struct {
	disciplines map[meet.Gender]DisciplineSet
	calendar    []CalendarDay
	games       meet.Games
}

type rawTable struct {
	Version     int                         `yaml:"version"`
	Disciplines map[string]rawDisciplineSet `yaml:"disciplines"`
	Calendar    []rawCalendarDay            `yaml:"calendar"`
	Games       []rawGameDay                `yaml:"games"`
}

type rawDisciplineSet struct {
	Track []string `yaml:"track"`
	Field []string `yaml:"field"`
}

type rawCalendarDay struct {
	Day   string            `yaml:"day"`
	Track []rawTimedSession `yaml:"track"`
	Field []rawFieldSession `yaml:"field"`
}

type rawTimedSession struct {
	Session string   `yaml:"session"`
	Start   string   `yaml:"start"`
	End     string   `yaml:"end"`
	Events  []string `yaml:"events"`
}

type rawFieldSession struct {
	Session string   `yaml:"session"`
	Events  []string `yaml:"events"`
}

type rawGameDay struct {
	Day            string     `yaml:"day"`
	MorningTrack   []rawEvent `yaml:"morning_track"`
	AfternoonTrack []rawEvent `yaml:"afternoon_track"`
	MorningField   []rawEvent `yaml:"morning_field"`
	AfternoonField []rawEvent `yaml:"afternoon_field"`
}

type rawEvent struct {
	Name       string `yaml:"name,omitempty"`
	Grade      string `yaml:"grade,omitempty"`
	Gender     string `yaml:"gender,omitempty"`
	Discipline string `yaml:"discipline,omitempty"`
	Round      string `yaml:"round,omitempty"`
	Time       string `yaml:"time"`
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the embedded table, parsed on first use.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(embeddedTable)
	})
	return defaultTable, defaultErr
}

// Load reads a table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schedule: read %s: %w", path, err)
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schedule: %s: %w", path, err)
	}
	return table, nil
}

// Parse decodes and validates a YAML table.
func Parse(data []byte) (*Table, error) {
	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schedule: parse table: %w", err)
	}
	if raw.Version < 1 {
		return nil, errors.New("schedule: version must be >= 1")
	}
	t := &Table{disciplines: make(map[meet.Gender]DisciplineSet, len(raw.Disciplines))}
	for key, set := range raw.Disciplines {
		gender, ok := meet.ParseGender(key)
		if !ok {
			return nil, fmt.Errorf("schedule: disciplines: unknown gender %q", key)
		}
		t.disciplines[gender] = DisciplineSet{Track: trimAll(set.Track), Field: trimAll(set.Field)}
	}
	for i, day := range raw.Calendar {
		parsed, err := day.build()
		if err != nil {
			return nil, fmt.Errorf("schedule: calendar[%d]: %w", i, err)
		}
		t.calendar = append(t.calendar, parsed)
	}
	for i, day := range raw.Games {
		parsed, err := t.buildGameDay(day)
		if err != nil {
			return nil, fmt.Errorf("schedule: games[%d]: %w", i, err)
		}
		t.games.Days = append(t.games.Days, parsed)
	}
	return t, nil
}

func (d rawCalendarDay) build() (CalendarDay, error) {
	day := CalendarDay{Day: strings.TrimSpace(d.Day)}
	if day.Day == "" {
		return CalendarDay{}, errors.New("day is required")
	}
	if len(d.Track) != 2 {
		return CalendarDay{}, fmt.Errorf("%s: expected 2 timed sessions, got %d", day.Day, len(d.Track))
	}
	for _, s := range d.Track {
		start, err := parseClock(s.Start)
		if err != nil {
			return CalendarDay{}, fmt.Errorf("%s %s: start: %w", day.Day, s.Session, err)
		}
		end, err := parseClock(s.End)
		if err != nil {
			return CalendarDay{}, fmt.Errorf("%s %s: end: %w", day.Day, s.Session, err)
		}
		if !end.After(start) {
			return CalendarDay{}, fmt.Errorf("%s %s: end %s is not after start %s", day.Day, s.Session, s.End, s.Start)
		}
		day.Track = append(day.Track, TimedSession{
			Name:   strings.TrimSpace(s.Session),
			Start:  s.Start,
			End:    s.End,
			Events: trimAll(s.Events),
		})
	}
	for _, s := range d.Field {
		day.Field = append(day.Field, FieldSession{Name: strings.TrimSpace(s.Session), Events: trimAll(s.Events)})
	}
	return day, nil
}

func (t *Table) buildGameDay(d rawGameDay) (meet.GameDay, error) {
	day := meet.GameDay{Name: strings.TrimSpace(d.Day)}
	if day.Name == "" {
		return meet.GameDay{}, errors.New("day is required")
	}
	lists := map[meet.SessionKind][]rawEvent{
		meet.MorningTrack:   d.MorningTrack,
		meet.AfternoonTrack: d.AfternoonTrack,
		meet.MorningField:   d.MorningField,
		meet.AfternoonField: d.AfternoonField,
	}
	for _, kind := range meet.SessionKinds {
		session := meet.GameSession{Kind: kind, Events: []meet.EventDefinition{}}
		for i, raw := range lists[kind] {
			ev, err := t.buildEvent(raw)
			if err != nil {
				return meet.GameDay{}, fmt.Errorf("%s %s[%d]: %w", day.Name, kind, i, err)
			}
			ev.Day = day.Name
			ev.Session = kind
			session.Events = append(session.Events, ev)
		}
		day.Sessions = append(day.Sessions, session)
	}
	return day, nil
}

func (t *Table) buildEvent(raw rawEvent) (meet.EventDefinition, error) {
	if _, err := parseClock(raw.Time); err != nil {
		return meet.EventDefinition{}, fmt.Errorf("time: %w", err)
	}
	clock := strings.TrimSpace(raw.Time)
	if name := strings.TrimSpace(raw.Name); name != "" {
		// A literal label is authoritative: grade and gender come from its
		// text, and explicit fields may only confirm them. A label without
		// both tokens stays unassignable.
		ev := meet.EventFromLabel(name, clock)
		if value := strings.TrimSpace(raw.Grade); value != "" {
			if g, ok := meet.ParseGrade(value); !ok || g != ev.Grade {
				return meet.EventDefinition{}, fmt.Errorf("grade %q does not match label %q", value, name)
			}
		}
		if value := strings.TrimSpace(raw.Gender); value != "" {
			if g, ok := meet.ParseGender(value); !ok || g != ev.Gender {
				return meet.EventDefinition{}, fmt.Errorf("gender %q does not match label %q", value, name)
			}
		}
		if err := t.checkDiscipline(ev); err != nil {
			return meet.EventDefinition{}, err
		}
		return ev, nil
	}
	grade, ok := meet.ParseGrade(raw.Grade)
	if !ok {
		return meet.EventDefinition{}, fmt.Errorf("unknown grade %q", raw.Grade)
	}
	gender, ok := meet.ParseGender(raw.Gender)
	if !ok {
		return meet.EventDefinition{}, fmt.Errorf("unknown gender %q", raw.Gender)
	}
	discipline := strings.TrimSpace(raw.Discipline)
	if discipline == "" {
		return meet.EventDefinition{}, errors.New("discipline or name is required")
	}
	round := strings.TrimSpace(raw.Round)
	ev := meet.EventDefinition{
		Label:      meet.EventLabel(grade, gender, discipline, round),
		Time:       clock,
		Grade:      grade,
		Gender:     gender,
		Discipline: discipline,
		Round:      round,
	}
	if err := t.checkDiscipline(ev); err != nil {
		return meet.EventDefinition{}, err
	}
	return ev, nil
}

func (t *Table) checkDiscipline(ev meet.EventDefinition) error {
	if !ev.Gender.Valid() || ev.Discipline == "" {
		return nil
	}
	set, ok := t.disciplines[ev.Gender]
	if !ok {
		return nil
	}
	if !set.Contains(ev.Discipline) {
		return fmt.Errorf("discipline %q is not held for %s", ev.Discipline, ev.Gender.GroupToken())
	}
	return nil
}

func parseClock(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not HH:MM", value)
	}
	return parsed, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Games returns a copy of the games schedule.
func (t *Table) Games() meet.Games {
	out := meet.Games{Days: make([]meet.GameDay, len(t.games.Days))}
	for i, day := range t.games.Days {
		copied := meet.GameDay{Name: day.Name, Sessions: make([]meet.GameSession, len(day.Sessions))}
		for j, session := range day.Sessions {
			events := make([]meet.EventDefinition, len(session.Events))
			copy(events, session.Events)
			copied.Sessions[j] = meet.GameSession{Kind: session.Kind, Events: events}
		}
		out.Days[i] = copied
	}
	return out
}

// Events returns every games event in day then session order.
func (t *Table) Events() []meet.EventDefinition {
	return t.games.Events()
}

// Calendar returns a copy of the session calendar.
func (t *Table) Calendar() []CalendarDay {
	out := make([]CalendarDay, len(t.calendar))
	for i, day := range t.calendar {
		copied := CalendarDay{Day: day.Day}
		for _, s := range day.Track {
			s.Events = append([]string(nil), s.Events...)
			copied.Track = append(copied.Track, s)
		}
		for _, s := range day.Field {
			s.Events = append([]string(nil), s.Events...)
			copied.Field = append(copied.Field, s)
		}
		out[i] = copied
	}
	return out
}

// Disciplines returns the discipline set of one gender group.
func (t *Table) Disciplines(gender meet.Gender) (DisciplineSet, bool) {
	set, ok := t.disciplines[gender]
	if !ok {
		return DisciplineSet{}, false
	}
	return DisciplineSet{
		Track: append([]string(nil), set.Track...),
		Field: append([]string(nil), set.Field...),
	}, true
}
