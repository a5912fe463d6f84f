package roster

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kingrea/sportsmeet/internal/meet"
	"github.com/kingrea/sportsmeet/internal/names"
)

const (
	// DefaultClassesPerGrade is the number of classes built for each grade.
	DefaultClassesPerGrade = 16
	// DefaultMalePerClass is the size of the male draw in every class.
	DefaultMalePerClass = 25
	// DefaultFemalePerClass is the size of the female draw in every class.
	DefaultFemalePerClass = 25
)

// Headcount is the number of students drawn per gender for one class.
type Headcount struct {
	Male   int
	Female int
}

type builderConfig struct {
	rng             *rand.Rand
	names           *names.Generator
	grades          []meet.Grade
	classesPerGrade int
	headcount       Headcount
	perGrade        map[meet.Grade]Headcount
}

// Option customizes Build.
type Option func(*builderConfig)

// WithRand shares an explicit random source with the builder.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("roster: WithRand(nil)")
	}
	return func(c *builderConfig) { c.rng = r }
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(c *builderConfig) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithNames overrides the name generator. It takes precedence over the
// random source for name draws.
func WithNames(gen *names.Generator) Option {
	if gen == nil {
		panic("roster: WithNames(nil)")
	}
	return func(c *builderConfig) { c.names = gen }
}

// WithGrades restricts the build to the given grades, in order.
func WithGrades(grades ...meet.Grade) Option {
	for _, g := range grades {
		if !g.Valid() {
			panic(fmt.Sprintf("roster: WithGrades(%q)", g))
		}
	}
	return func(c *builderConfig) { c.grades = append([]meet.Grade(nil), grades...) }
}

// WithClassesPerGrade sets the number of classes per grade (>= 1).
func WithClassesPerGrade(n int) Option {
	if n < 1 {
		panic("roster: WithClassesPerGrade(n<1)")
	}
	return func(c *builderConfig) { c.classesPerGrade = n }
}

// WithHeadcount sets the per-class male and female draw sizes (>= 0).
func WithHeadcount(male, female int) Option {
	if male < 0 || female < 0 {
		panic("roster: WithHeadcount(negative)")
	}
	return func(c *builderConfig) { c.headcount = Headcount{Male: male, Female: female} }
}

// WithGradeHeadcount overrides the per-class draw sizes for one grade.
func WithGradeHeadcount(g meet.Grade, male, female int) Option {
	if !g.Valid() {
		panic(fmt.Sprintf("roster: WithGradeHeadcount(%q)", g))
	}
	if male < 0 || female < 0 {
		panic("roster: WithGradeHeadcount(negative)")
	}
	return func(c *builderConfig) {
		if c.perGrade == nil {
			c.perGrade = make(map[meet.Grade]Headcount)
		}
		c.perGrade[g] = Headcount{Male: male, Female: female}
	}
}

func newBuilderConfig(opts ...Option) *builderConfig {
	cfg := &builderConfig{
		grades:          append([]meet.Grade(nil), meet.Grades...),
		classesPerGrade: DefaultClassesPerGrade,
		headcount:       Headcount{Male: DefaultMalePerClass, Female: DefaultFemalePerClass},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.names == nil {
		cfg.names = names.New(cfg.rng)
	}
	return cfg
}

func (c *builderConfig) headcountFor(g meet.Grade) Headcount {
	if hc, ok := c.perGrade[g]; ok {
		return hc
	}
	return c.headcount
}

// Build synthesizes a roster: for each grade, each class gets a male draw
// followed by a female draw. IDs increase in grade, class, gender-block order.
func Build(opts ...Option) *Roster {
	cfg := newBuilderConfig(opts...)
	r := New()
	for _, g := range cfg.grades {
		hc := cfg.headcountFor(g)
		for n := 1; n <= cfg.classesPerGrade; n++ {
			r.ensureClass(g, n)
			for _, name := range cfg.names.Names(hc.Male) {
				r.add(g, n, name, meet.Male)
			}
			for _, name := range cfg.names.Names(hc.Female) {
				r.add(g, n, name, meet.Female)
			}
		}
	}
	return r
}
