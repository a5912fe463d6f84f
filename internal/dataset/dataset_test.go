package dataset

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kingrea/sportsmeet/internal/assign"
	"github.com/kingrea/sportsmeet/internal/meet"
	"github.com/kingrea/sportsmeet/internal/roster"
	"github.com/kingrea/sportsmeet/internal/schedule"
)

func composeDefault(t *testing.T, seed int64) (meet.Document, Summary) {
	t.Helper()
	table, err := schedule.Default()
	require.NoError(t, err)
	r := roster.Build(roster.WithSeed(seed))
	players, _ := assign.New(r, assign.WithSeed(seed)).Assign(table.Events())
	return Compose(table.Games(), players, r)
}

func TestComposeSummary(t *testing.T) {
	_, summary := composeDefault(t, 1)
	assert.Equal(t, 2400, summary.TotalStudents)
	assert.Equal(t, 48, summary.TotalClasses)
	assert.Equal(t, 74, summary.ScheduledEvents)
	assert.Equal(t, 73, summary.EventsWithParticipants)
	require.Len(t, summary.PerGrade, 3)
	for _, gc := range summary.PerGrade {
		assert.Equal(t, 800, gc.Students)
	}
	assert.Equal(t, []string{
		"高一男子组-100米-预赛",
		"高一女子组-100米-预赛",
		"高二男子组-100米-预赛",
		"高二女子组-100米-预赛",
		"高三男子组-100米-预赛",
	}, summary.SampleEvents)
}

func TestComposeWithoutCensus(t *testing.T) {
	var players meet.Players
	_, summary := Compose(meet.Games{}, players, nil)
	assert.Zero(t, summary.TotalStudents)
	assert.Empty(t, summary.PerGrade)
}

func TestWriteJSONAndReadBack(t *testing.T) {
	doc, _ := composeDefault(t, 2)
	path := filepath.Join(t.TempDir(), "public", "data", "sports_data.json")
	require.NoError(t, WriteJSON(path, doc))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.True(t, strings.HasPrefix(text, "{\n  \"games\": {\n    \"第一天\": ["))
	assert.Contains(t, text, "\"高一男子组-100米-预赛\"")
	assert.NotContains(t, text, `\u`)

	back, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Players.Labels(), back.Players.Labels())
	assert.Equal(t, doc.Games.Len(), back.Games.Len())
	first, ok := back.Players.Get("高一男子组-100米-预赛")
	require.True(t, ok)
	assert.Len(t, first.Groups, 5)
}

func TestWriteJSONFailsOnUnwritableTarget(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	err := WriteJSON(filepath.Join(blocker, "out.json"), meet.Document{})
	assert.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.Is(err, ErrNoDocument))
}

func TestWriteXLSX(t *testing.T) {
	doc, _ := composeDefault(t, 3)
	path := filepath.Join(t.TempDir(), "meet.xlsx")
	require.NoError(t, WriteXLSX(path, doc))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{scheduleSheet, playersSheet}, f.GetSheetList())

	scheduleRows, err := f.GetRows(scheduleSheet)
	require.NoError(t, err)
	assert.Len(t, scheduleRows, 1+74)
	assert.Equal(t, "高一男子组-100米-预赛", scheduleRows[1][4])

	playerRows, err := f.GetRows(playersSheet)
	require.NoError(t, err)
	assert.Len(t, playerRows, 1+73*30)
	assert.Equal(t, "1", playerRows[1][2])
}

func TestRenderReportMentionsCounts(t *testing.T) {
	_, summary := composeDefault(t, 4)
	summary.SkippedEvents = []string{"教工组-拔河"}
	out := RenderReport(summary, "public/data/sports_data.json", "")
	assert.Contains(t, out, "2400")
	assert.Contains(t, out, "高一")
	assert.Contains(t, out, "教工组-拔河")
	assert.Contains(t, out, "sports_data.json")
}

func TestRenderTableLaysOutRows(t *testing.T) {
	out := RenderTable(
		[]string{"姓名", "班级", "道次"},
		[][]string{{"欧阳修", "高一1班", "3"}, {"司马光", "高二4班", "5"}},
	)
	assert.True(t, strings.HasPrefix(out, "╭"))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "姓名")
	assert.Contains(t, lines[3], "欧阳修")
	assert.Contains(t, lines[3], "高一1班")
	assert.Contains(t, lines[4], "司马光")
	assert.Less(t, strings.Index(lines[3], "欧阳修"), strings.Index(lines[3], "高一1班"))
}

func TestIndentMatchesEncode(t *testing.T) {
	doc, _ := composeDefault(t, 4)
	encoded, err := Encode(doc)
	require.NoError(t, err)
	compact, err := json.Marshal(doc)
	require.NoError(t, err)
	indented, err := Indent(compact)
	require.NoError(t, err)
	assert.Equal(t, string(encoded), string(indented))

	_, err = Indent([]byte(`{"games":`))
	assert.Error(t, err)
}
