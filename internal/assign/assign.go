// Package assign draws participants for scheduled events. Every event with a
// known grade and gender gets a fixed number of groups of a fixed number of
// lanes; events without them are left out of the result. When no student
// matches an event, placeholder participants are synthesized so the dataset
// always renders.
package assign

import (
	"math/rand"
	"time"

	"github.com/kingrea/sportsmeet/internal/meet"
	"github.com/kingrea/sportsmeet/internal/names"
)

const (
	// DefaultGroups is the number of heats or flights drawn per event.
	DefaultGroups = 5
	// DefaultLanes is the number of lanes per group.
	DefaultLanes = 6
	// DefaultClassesPerGrade bounds the class number of synthesized placeholders.
	DefaultClassesPerGrade = 16
)

// Pool answers eligibility queries against a roster.
type Pool interface {
	Eligible(grade meet.Grade, gender meet.Gender) []meet.Student
}

// Stats describes one Assign call.
type Stats struct {
	Events      int
	Assigned    int
	Skipped     []string
	Duplicates  int
	Drawn       int
	Synthesized int
}

// Assignor fills events with lane assignments drawn from a Pool.
type Assignor struct {
	pool            Pool
	rng             *rand.Rand
	names           *names.Generator
	groups          int
	lanes           int
	classesPerGrade int
}

// Option customizes an Assignor.
type Option func(*Assignor)

// WithRand shares an explicit random source.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("assign: WithRand(nil)")
	}
	return func(a *Assignor) { a.rng = r }
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(a *Assignor) { a.rng = rand.New(rand.NewSource(seed)) }
}

// WithNames overrides the generator used for placeholder names.
func WithNames(gen *names.Generator) Option {
	if gen == nil {
		panic("assign: WithNames(nil)")
	}
	return func(a *Assignor) { a.names = gen }
}

// WithGroups sets the number of groups per event (>= 1).
func WithGroups(n int) Option {
	if n < 1 {
		panic("assign: WithGroups(n<1)")
	}
	return func(a *Assignor) { a.groups = n }
}

// WithLanes sets the number of lanes per group (>= 1).
func WithLanes(n int) Option {
	if n < 1 {
		panic("assign: WithLanes(n<1)")
	}
	return func(a *Assignor) { a.lanes = n }
}

// WithClassesPerGrade sets the class number range of placeholders (>= 1).
func WithClassesPerGrade(n int) Option {
	if n < 1 {
		panic("assign: WithClassesPerGrade(n<1)")
	}
	return func(a *Assignor) { a.classesPerGrade = n }
}

// New builds an Assignor reading from pool. The pool is only read.
func New(pool Pool, opts ...Option) *Assignor {
	a := &Assignor{
		pool:            pool,
		groups:          DefaultGroups,
		lanes:           DefaultLanes,
		classesPerGrade: DefaultClassesPerGrade,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if a.names == nil {
		a.names = names.New(a.rng)
	}
	return a
}

type poolKey struct {
	grade  meet.Grade
	gender meet.Gender
}

// Assign draws participants for every assignable event. A label scheduled
// more than once is drawn on its first occurrence only.
func (a *Assignor) Assign(events []meet.EventDefinition) (meet.Players, Stats) {
	var players meet.Players
	stats := Stats{Events: len(events)}
	pools := make(map[poolKey][]meet.Student)
	for _, ev := range events {
		if !ev.Assignable() {
			stats.Skipped = append(stats.Skipped, ev.Label)
			continue
		}
		if players.Has(ev.Label) {
			stats.Duplicates++
			continue
		}
		key := poolKey{grade: ev.Grade, gender: ev.Gender}
		pool, ok := pools[key]
		if !ok {
			if a.pool != nil {
				pool = a.pool.Eligible(ev.Grade, ev.Gender)
			}
			pools[key] = pool
		}
		entry, drawn, synthesized := a.fill(ev, pool)
		players.Set(entry)
		stats.Assigned++
		stats.Drawn += drawn
		stats.Synthesized += synthesized
	}
	return players, stats
}

// AssignEvent draws participants for a single event. ok is false when the
// event has no known grade or gender.
func (a *Assignor) AssignEvent(ev meet.EventDefinition) (meet.EventParticipants, bool) {
	if !ev.Assignable() {
		return meet.EventParticipants{}, false
	}
	var pool []meet.Student
	if a.pool != nil {
		pool = a.pool.Eligible(ev.Grade, ev.Gender)
	}
	entry, _, _ := a.fill(ev, pool)
	return entry, true
}

// fill draws with replacement: a student may land in several lanes of the
// same event.
func (a *Assignor) fill(ev meet.EventDefinition, pool []meet.Student) (meet.EventParticipants, int, int) {
	entry := meet.EventParticipants{Name: ev.Label, Groups: make([]meet.ParticipantGroup, 0, a.groups)}
	drawn, synthesized := 0, 0
	for g := 0; g < a.groups; g++ {
		group := make(meet.ParticipantGroup, 0, a.lanes)
		for lane := 1; lane <= a.lanes; lane++ {
			if len(pool) > 0 {
				s := pool[a.rng.Intn(len(pool))]
				group = append(group, meet.NewLane(lane, s.Name, s.Class))
				drawn++
				continue
			}
			name := a.names.Name()
			class := meet.ClassLabel(ev.Grade, 1+a.rng.Intn(a.classesPerGrade))
			group = append(group, meet.NewLane(lane, name, class))
			synthesized++
		}
		entry.Groups = append(entry.Groups, group)
	}
	return entry, drawn, synthesized
}
