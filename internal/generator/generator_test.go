package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/sportsmeet/internal/config"
	"github.com/kingrea/sportsmeet/internal/dataset"
	"github.com/kingrea/sportsmeet/internal/logbook"
	"github.com/kingrea/sportsmeet/internal/logging"
	"github.com/kingrea/sportsmeet/internal/meet"
)

func newConfig(t *testing.T, overrides ...string) *config.Config {
	t.Helper()
	cfg, err := config.NewConfig(t.TempDir())
	require.NoError(t, err)
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		require.True(t, ok, kv)
		require.NoError(t, cfg.Set(key, value))
	}
	return cfg
}

func TestRunWritesDocumentAndJournal(t *testing.T) {
	cfg := newConfig(t, "seed=11", "output.xlsx=out/meet.xlsx")
	res, err := Run(cfg, logging.Discard())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, int64(11), res.Seed)
	assert.Equal(t, 2400, res.Summary.TotalStudents)
	assert.Equal(t, 48, res.Summary.TotalClasses)
	assert.Equal(t, 73, res.Summary.EventsWithParticipants)
	assert.Zero(t, res.Summary.SynthesizedLanes)
	assert.Empty(t, res.Summary.SkippedEvents)
	assert.Nil(t, res.Import)
	require.Len(t, res.Outputs, 2)

	doc, err := dataset.ReadFile(cfg.Project.Output.JSON)
	require.NoError(t, err)
	assert.Equal(t, res.Document.Players.Labels(), doc.Players.Labels())
	_, err = os.Stat(filepath.Join(cfg.ProjectDir, "out", "meet.xlsx"))
	require.NoError(t, err)

	lines, total := mustJournal(t, cfg).Tail(5)
	require.Equal(t, 1, total)
	assert.Contains(t, lines[0], "run="+res.RunID)
	assert.Contains(t, lines[0], "events=73")
}

func TestRunIsReproducibleForSeed(t *testing.T) {
	first, err := Run(newConfig(t, "seed=5"), nil)
	require.NoError(t, err)
	second, err := Run(newConfig(t, "seed=5"), nil)
	require.NoError(t, err)

	a, err := dataset.Encode(first.Document)
	require.NoError(t, err)
	b, err := dataset.Encode(second.Document)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunStructureIndependentOfSeed(t *testing.T) {
	first, err := Run(newConfig(t), nil, WithSeed(1))
	require.NoError(t, err)
	second, err := Run(newConfig(t), nil, WithSeed(2))
	require.NoError(t, err)

	gamesA, err := json.Marshal(first.Document.Games)
	require.NoError(t, err)
	gamesB, err := json.Marshal(second.Document.Games)
	require.NoError(t, err)
	assert.JSONEq(t, string(gamesA), string(gamesB))

	require.Equal(t, first.Document.Players.Labels(), second.Document.Players.Labels())
	sameNames := true
	for _, label := range first.Document.Players.Labels() {
		a, _ := first.Document.Players.Get(label)
		b, _ := second.Document.Players.Get(label)
		require.Len(t, b.Groups, len(a.Groups))
		for g := range a.Groups {
			require.Len(t, b.Groups[g], len(a.Groups[g]))
			for lane := range a.Groups[g] {
				assert.Equal(t, a.Groups[g][lane].Road, b.Groups[g][lane].Road)
				if a.Groups[g][lane].Name != b.Groups[g][lane].Name {
					sameNames = false
				}
			}
		}
	}
	assert.False(t, sameNames, "different seeds should draw different names")
}

func TestRunSynthesizesWhenGenderMissing(t *testing.T) {
	cfg := newConfig(t, "seed=3", "roster.female_per_class=0")
	res, err := Run(cfg, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 1200, res.Summary.TotalStudents)

	female := 0
	for _, ep := range res.Document.Players.All() {
		grade, gender, ok := meet.ParseLabel(ep.Name)
		require.True(t, ok, ep.Name)
		assert.Equal(t, 30, ep.LaneCount(), ep.Name)
		if gender != meet.Female {
			continue
		}
		female++
		for _, group := range ep.Groups {
			for _, lane := range group {
				assert.NotEmpty(t, lane.Name)
				classGrade, n, ok := meet.ParseClassLabel(lane.Class)
				require.True(t, ok, lane.Class)
				assert.Equal(t, grade, classGrade)
				assert.True(t, n >= 1 && n <= 16)
			}
		}
	}
	require.NotZero(t, female)
	assert.Equal(t, female*30, res.Summary.SynthesizedLanes)
}

func TestRunImportsRecords(t *testing.T) {
	cfg := newConfig(t, "seed=9")
	path := filepath.Join(cfg.ProjectDir, "students.json")
	records := `[
		{"name": "张三", "grade": "高一", "class": "高一17班", "gender": "男"},
		{"name": "李四", "grade": "高二", "class": "高二3班"},
		{"name": "王五", "grade": "高三", "class": "高一2班", "gender": "女"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(records), 0o644))
	require.NoError(t, cfg.Set("roster.import.path", path))

	res, err := Run(cfg, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, res.Import)
	assert.Equal(t, 2, res.Import.Accepted)
	assert.Equal(t, 1, res.Import.Genderless)
	assert.Len(t, res.Import.Rejected, 1)
	assert.Equal(t, 2402, res.Summary.TotalStudents)
	assert.Equal(t, 49, res.Summary.TotalClasses)
}

func TestRunReplaceModeSynthesizesEverything(t *testing.T) {
	cfg := newConfig(t, "seed=9", "roster.import.mode=replace")
	path := filepath.Join(cfg.ProjectDir, "students.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"students": [{"name": "赵六", "grade": "高一", "class": "高一1班", "gender": "男"}]}`), 0o644))
	require.NoError(t, cfg.Set("roster.import.path", path))

	res, err := Run(cfg, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.TotalStudents)

	ep, ok := res.Document.Players.Get("高一男子组-100米-预赛")
	require.True(t, ok)
	for _, group := range ep.Groups {
		for _, lane := range group {
			assert.Equal(t, "赵六", lane.Name)
			assert.Equal(t, "高一1班", lane.Class)
		}
	}
}

func TestRunFailsOnUnwritableOutput(t *testing.T) {
	cfg := newConfig(t)
	blocker := filepath.Join(cfg.ProjectDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	require.NoError(t, cfg.Set("output.json", filepath.Join(blocker, "sports_data.json")))

	res, err := Run(cfg, logging.Discard())
	require.Error(t, err)
	assert.Nil(t, res)
	lines, total := mustJournal(t, cfg).Tail(1)
	require.Equal(t, 1, total)
	assert.Contains(t, lines[0], " ERROR run=")
	assert.Contains(t, lines[0], "failed:")
}

func TestRunFailsOnMissingImport(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, cfg.Set("roster.import.path", "missing.json"))
	_, err := Run(cfg, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load roster records")
	lines, total := mustJournal(t, cfg).Tail(1)
	require.Equal(t, 1, total)
	assert.Contains(t, lines[0], "missing.json")
}

func TestRunUsesInjectedJournal(t *testing.T) {
	book, err := logbook.New(filepath.Join(t.TempDir(), "journal.log"))
	require.NoError(t, err)
	res, err := Run(newConfig(t), nil, WithSeed(4), WithJournal(book))
	require.NoError(t, err)
	lines, total := book.Tail(1)
	require.Equal(t, 1, total)
	assert.Contains(t, lines[0], "seed=4")
	assert.Contains(t, lines[0], res.RunID)
}

func mustJournal(t *testing.T, cfg *config.Config) *logbook.Logbook {
	t.Helper()
	book, err := logbook.New(cfg.RunsLogPath())
	require.NoError(t, err)
	return book
}
