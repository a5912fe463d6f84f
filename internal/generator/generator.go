// Package generator runs one full synthesis: roster, schedule, participant
// draw, composed dataset and its outputs. A run shares a single random source
// across every component.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/sportsmeet/internal/assign"
	"github.com/kingrea/sportsmeet/internal/config"
	"github.com/kingrea/sportsmeet/internal/dataset"
	"github.com/kingrea/sportsmeet/internal/logbook"
	"github.com/kingrea/sportsmeet/internal/logging"
	"github.com/kingrea/sportsmeet/internal/meet"
	"github.com/kingrea/sportsmeet/internal/names"
	"github.com/kingrea/sportsmeet/internal/roster"
	"github.com/kingrea/sportsmeet/internal/schedule"
)

// Result is what one run produced.
type Result struct {
	RunID    string
	Seed     int64
	Document meet.Document
	Summary  dataset.Summary
	Import   *roster.ImportReport
	Outputs  []string
}

type runner struct {
	rng     *rand.Rand
	seed    int64
	journal *logbook.Logbook
	now     func() time.Time
}

// Option customizes Run.
type Option func(*runner)

// WithSeed overrides the configured seed.
func WithSeed(seed int64) Option {
	return func(r *runner) {
		r.seed = seed
		r.rng = rand.New(rand.NewSource(seed))
	}
}

// WithJournal records the run in the given logbook instead of the project's
// runs journal.
func WithJournal(book *logbook.Logbook) Option {
	if book == nil {
		panic("generator: WithJournal(nil)")
	}
	return func(r *runner) { r.journal = book }
}

// Run synthesizes a dataset according to cfg and writes it to the configured
// outputs. Only unreadable inputs and unwritable outputs fail a run.
func Run(cfg *config.Config, log *logging.Logger, opts ...Option) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("generator: config is required")
	}
	r := &runner{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.rng == nil {
		r.seed = r.now().UnixNano()
		if cfg.Project.Seed != nil {
			r.seed = *cfg.Project.Seed
		}
		r.rng = rand.New(rand.NewSource(r.seed))
	}

	runID := uuid.NewString()
	log = log.With("run", runID)
	log.Infof("run started seed=%d project=%s", r.seed, cfg.ProjectDir)

	nameGen := names.New(r.rng)

	students, report, err := buildRoster(cfg, r.rng, nameGen)
	if err != nil {
		return nil, r.fail(cfg, log, runID, err)
	}
	if report != nil {
		log.Infof("imported %d roster records (%d without gender)", report.Accepted, report.Genderless)
		for _, rej := range report.Rejected {
			log.Warnf("rejected %v", rej)
		}
	}
	log.Infof("roster built: %d students in %d classes", students.Len(), students.ClassCount())

	table, err := loadSchedule(cfg)
	if err != nil {
		return nil, r.fail(cfg, log, runID, err)
	}
	games := table.Games()

	assignor := assign.New(students,
		assign.WithRand(r.rng),
		assign.WithNames(nameGen),
		assign.WithGroups(cfg.GroupsPerEvent()),
		assign.WithLanes(cfg.LanesPerGroup()),
		assign.WithClassesPerGrade(cfg.ClassesPerGrade()),
	)
	players, stats := assignor.Assign(games.Events())
	if len(stats.Skipped) > 0 {
		log.Warnf("skipped %d events without grade or gender: %s", len(stats.Skipped), strings.Join(stats.Skipped, ", "))
	}
	if stats.Duplicates > 0 {
		log.Warnf("%d scheduled events repeat an earlier label", stats.Duplicates)
	}
	if stats.Synthesized > 0 {
		log.Warnf("synthesized %d placeholder lanes for empty pools", stats.Synthesized)
	}

	doc, summary := dataset.Compose(games, players, students)
	summary.SkippedEvents = stats.Skipped
	summary.SynthesizedLanes = stats.Synthesized

	result := &Result{
		RunID:    runID,
		Seed:     r.seed,
		Document: doc,
		Summary:  summary,
		Import:   report,
	}

	if err := dataset.WriteJSON(cfg.Project.Output.JSON, doc); err != nil {
		return nil, r.fail(cfg, log, runID, err)
	}
	result.Outputs = append(result.Outputs, cfg.Project.Output.JSON)
	if path := cfg.Project.Output.XLSX; path != "" {
		if err := dataset.WriteXLSX(path, doc); err != nil {
			return nil, r.fail(cfg, log, runID, err)
		}
		result.Outputs = append(result.Outputs, path)
	}
	log.Infof("wrote %s (%d events with participants)", strings.Join(result.Outputs, ", "), summary.EventsWithParticipants)

	r.record(cfg, log, result)
	return result, nil
}

func buildRoster(cfg *config.Config, rng *rand.Rand, nameGen *names.Generator) (*roster.Roster, *roster.ImportReport, error) {
	mode, err := roster.ParseMode(cfg.Project.Roster.Import.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("generator: %w", err)
	}
	var records []roster.Record
	if path := cfg.Project.Roster.Import.Path; path != "" {
		records, err = roster.LoadRecords(path)
		if err != nil {
			return nil, nil, fmt.Errorf("generator: load roster records: %w", err)
		}
	}

	var students *roster.Roster
	if mode == roster.ModeReplace && cfg.Project.Roster.Import.Path != "" {
		students = roster.New()
	} else {
		male, female := cfg.Headcount()
		opts := []roster.Option{
			roster.WithRand(rng),
			roster.WithNames(nameGen),
			roster.WithGrades(cfg.Grades()...),
			roster.WithClassesPerGrade(cfg.ClassesPerGrade()),
			roster.WithHeadcount(male, female),
		}
		for grade, hc := range cfg.GradeHeadcounts() {
			opts = append(opts, roster.WithGradeHeadcount(grade, hc.Male, hc.Female))
		}
		students = roster.Build(opts...)
	}
	if cfg.Project.Roster.Import.Path == "" {
		return students, nil, nil
	}
	report := students.Import(records)
	return students, &report, nil
}

func loadSchedule(cfg *config.Config) (*schedule.Table, error) {
	if path := cfg.Project.Schedule.Path; path != "" {
		table, err := schedule.Load(path)
		if err != nil {
			return nil, fmt.Errorf("generator: %w", err)
		}
		return table, nil
	}
	table, err := schedule.Default()
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	return table, nil
}

// openJournal returns the run journal, or nil when it cannot be opened.
func (r *runner) openJournal(cfg *config.Config, log *logging.Logger) *logbook.Logbook {
	if r.journal != nil {
		return r.journal
	}
	book, err := logbook.New(cfg.RunsLogPath())
	if err != nil {
		log.Warnf("open runs journal: %v", err)
		return nil
	}
	return book
}

// record appends the run to the journal. A journal failure does not fail the
// run since the dataset has already been written.
func (r *runner) record(cfg *config.Config, log *logging.Logger, res *Result) {
	book := r.openJournal(cfg, log)
	if book == nil {
		return
	}
	if err := book.Info("run=%s seed=%d students=%d events=%d skipped=%d synthesized=%d out=%s",
		res.RunID, res.Seed, res.Summary.TotalStudents, res.Summary.EventsWithParticipants,
		len(res.Summary.SkippedEvents), res.Summary.SynthesizedLanes, strings.Join(res.Outputs, ",")); err != nil {
		log.Warnf("append runs journal: %v", err)
	}
}

// fail logs and journals a failed run, then hands err back.
func (r *runner) fail(cfg *config.Config, log *logging.Logger, runID string, err error) error {
	log.Errorf("%v", err)
	if book := r.openJournal(cfg, log); book != nil {
		if jerr := book.Error("run=%s seed=%d failed: %v", runID, r.seed, err); jerr != nil {
			log.Warnf("append runs journal: %v", jerr)
		}
	}
	return err
}
