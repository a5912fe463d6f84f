package schedule

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/sportsmeet/internal/meet"
)

func TestDefaultTableShape(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	games := table.Games()
	require.Len(t, games.Days, 2)
	assert.Equal(t, "第一天", games.Days[0].Name)
	assert.Equal(t, "第二天", games.Days[1].Name)
	for _, day := range games.Days {
		require.Len(t, day.Sessions, 4)
		sizes := []int{}
		for i, session := range day.Sessions {
			assert.Equal(t, meet.SessionKinds[i], session.Kind)
			sizes = append(sizes, len(session.Events))
		}
		assert.Equal(t, []int{12, 12, 5, 8}, sizes, day.Name)
	}
	assert.Equal(t, 74, games.Len())

	unique := map[string]struct{}{}
	for _, ev := range table.Events() {
		assert.True(t, ev.Assignable(), ev.Label)
		assert.Regexp(t, `^\d{2}:\d{2}$`, ev.Time)
		unique[ev.Label] = struct{}{}
	}
	assert.Len(t, unique, 73)
}

func TestDefaultTableFirstEvent(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	first := table.Events()[0]
	assert.Equal(t, "高一男子组-100米-预赛", first.Label)
	assert.Equal(t, "09:30", first.Time)
	assert.Equal(t, meet.GradeOne, first.Grade)
	assert.Equal(t, meet.Male, first.Gender)
	assert.Equal(t, "第一天", first.Day)
	assert.Equal(t, meet.MorningTrack, first.Session)
}

func TestDefaultCalendarAndDisciplines(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	cal := table.Calendar()
	require.Len(t, cal, 2)
	for _, day := range cal {
		require.Len(t, day.Track, 2)
		assert.Equal(t, "09:30", day.Track[0].Start)
		assert.Equal(t, "17:30", day.Track[1].End)
		assert.Len(t, day.Field, 2)
	}
	male, ok := table.Disciplines(meet.Male)
	require.True(t, ok)
	assert.True(t, male.Contains("110米栏"))
	assert.True(t, male.Contains("标枪"))
	female, ok := table.Disciplines(meet.Female)
	require.True(t, ok)
	assert.False(t, female.Contains("3000米"))
}

func TestGamesReturnsCopy(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	games := table.Games()
	games.Days[0].Sessions[0].Events[0].Label = "changed"
	assert.Equal(t, "高一男子组-100米-预赛", table.Games().Days[0].Sessions[0].Events[0].Label)
}

const minimalHeader = `
version: 1
disciplines:
  男: {track: [100米], field: [跳高]}
  女: {track: [100米], field: [跳高]}
calendar:
  - day: 第一天
    track:
      - {session: 上午, start: "09:30", end: "12:00", events: [100米预赛]}
      - {session: 下午, start: "14:30", end: "17:30", events: [100米决赛]}
`

func TestParseLiteralNameEntries(t *testing.T) {
	data := minimalHeader + `
games:
  - day: 第一天
    morning_track:
      - {name: 高二女子组-100米-预赛, time: "09:30"}
      - {name: 教工组-拔河, time: "10:00"}
`
	table, err := Parse([]byte(data))
	require.NoError(t, err)
	events := table.Events()
	require.Len(t, events, 2)
	assert.True(t, events[0].Assignable())
	assert.Equal(t, meet.GradeTwo, events[0].Grade)
	assert.Equal(t, meet.Female, events[0].Gender)
	assert.False(t, events[1].Assignable())
	assert.Equal(t, "教工组-拔河", events[1].Label)
}

func TestLiteralNameFieldsMustMatchLabel(t *testing.T) {
	confirmed := minimalHeader + `
games:
  - day: 第一天
    morning_track:
      - {name: 高二女子组-100米-预赛, grade: 高二, gender: 女, time: "09:30"}
`
	table, err := Parse([]byte(confirmed))
	require.NoError(t, err)
	require.Len(t, table.Events(), 1)
	assert.True(t, table.Events()[0].Assignable())

	for name, entry := range map[string]string{
		"grade without label token":  `{name: 教工组-拔河, grade: 高一, time: "10:00"}`,
		"gender without label token": `{name: 高一-跳绳, gender: 男, time: "10:00"}`,
		"conflicting grade":          `{name: 高二女子组-100米-预赛, grade: 高三, time: "09:30"}`,
		"conflicting gender":         `{name: 高二女子组-100米-预赛, gender: 男, time: "09:30"}`,
	} {
		data := minimalHeader + `
games:
  - day: 第一天
    morning_track:
      - ` + entry + "\n"
		_, err := Parse([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"bad time": minimalHeader + `
games:
  - day: 第一天
    morning_track:
      - {grade: 高一, gender: 男, discipline: 100米, round: 预赛, time: "9.30"}
`,
		"unknown grade": minimalHeader + `
games:
  - day: 第一天
    morning_track:
      - {grade: 初一, gender: 男, discipline: 100米, round: 预赛, time: "09:30"}
`,
		"discipline not held": minimalHeader + `
games:
  - day: 第一天
    morning_field:
      - {grade: 高一, gender: 女, discipline: 标枪, round: 预决赛, time: "09:30"}
`,
		"one timed session": `
version: 1
calendar:
  - day: 第一天
    track:
      - {session: 上午, start: "09:30", end: "12:00", events: []}
`,
		"no version": `games: []`,
	}
	for name, data := range cases {
		_, err := Parse([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	data := minimalHeader + `
games:
  - day: 第一天
    morning_track:
      - {grade: 高三, gender: 男, discipline: 100米, round: 决赛, time: "11:00"}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	table, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table.Events(), 1)
	assert.Equal(t, "高三男子组-100米-决赛", table.Events()[0].Label)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "schedule: read"))
}
