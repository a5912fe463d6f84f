package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/sportsmeet/internal/meet"
)

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	stateDir := filepath.Join(projectDir, ProjectDirName)
	require.NoError(t, os.MkdirAll(stateDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(strings.TrimSpace(body)), 0o644))
}

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	cfg, err := NewConfig(projectDir)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Project.Version)
	assert.Nil(t, cfg.Project.Seed)
	assert.Equal(t, meet.Grades, cfg.Grades())
	assert.Equal(t, 16, cfg.ClassesPerGrade())
	male, female := cfg.Headcount()
	assert.Equal(t, 25, male)
	assert.Equal(t, 25, female)
	assert.Equal(t, 5, cfg.GroupsPerEvent())
	assert.Equal(t, 6, cfg.LanesPerGroup())
	assert.Equal(t, filepath.Join(projectDir, "public", "data", "sports_data.json"), cfg.Project.Output.JSON)
	assert.Equal(t, 3001, cfg.Project.Server.Port)
}

func TestInitProjectDirWritesParsableDefault(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, InitProjectDir(projectDir))
	_, err := os.Stat(filepath.Join(projectDir, ProjectDirName, "logs"))
	require.NoError(t, err)
	cfg, err := NewConfig(projectDir)
	require.NoError(t, err)
	assert.Equal(t, cfg.StateDir, filepath.Dir(cfg.ProjectConfigPath()))
	male, female := cfg.Headcount()
	assert.Equal(t, 25, male)
	assert.Equal(t, 25, female)
}

func TestNewConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
seed: 42
roster:
  grades: [高一, 高三]
  classes_per_grade: 4
  male_per_class: 10
  female_per_class: 0
  overrides:
    高三: {male: 3, female: 7}
  import:
    path: data/students.json
    mode: Replace
assignment:
  groups_per_event: 2
  lanes_per_group: 8
output:
  json: out/meet.json
  xlsx: out/meet.xlsx
`)
	cfg, err := NewConfig(projectDir)
	require.NoError(t, err)
	require.NotNil(t, cfg.Project.Seed)
	assert.Equal(t, int64(42), *cfg.Project.Seed)
	assert.Equal(t, []meet.Grade{meet.GradeOne, meet.GradeThree}, cfg.Grades())
	male, female := cfg.Headcount()
	assert.Equal(t, 10, male)
	assert.Equal(t, 0, female)
	assert.Equal(t, HeadcountConfig{Male: 3, Female: 7}, cfg.GradeHeadcounts()[meet.GradeThree])
	assert.Equal(t, "replace", cfg.Project.Roster.Import.Mode)
	assert.True(t, strings.HasPrefix(cfg.Project.Roster.Import.Path, projectDir))
	assert.Equal(t, filepath.Join(projectDir, "out", "meet.xlsx"), cfg.Project.Output.XLSX)
	assert.Equal(t, 8, cfg.LanesPerGroup())
}

func TestNewConfigValidation(t *testing.T) {
	cases := map[string]string{
		"unknown grade":  "roster:\n  grades: [初一]",
		"duplicate":      "roster:\n  grades: [高一, 高一]",
		"negative":       "roster:\n  male_per_class: -1",
		"bad mode":       "roster:\n  import:\n    mode: merge",
		"bad override":   "roster:\n  overrides:\n    高四: {male: 1, female: 1}",
		"bad port":       "server:\n  port: 70000",
		"negative lanes": "assignment:\n  lanes_per_group: -2",
		"zero classes":   "roster:\n  classes_per_grade: 0",
		"zero groups":    "assignment:\n  groups_per_event: 0",
		"zero lanes":     "assignment:\n  lanes_per_group: 0",
	}
	for name, body := range cases {
		projectDir := t.TempDir()
		writeConfig(t, projectDir, body)
		_, err := NewConfig(projectDir)
		assert.Error(t, err, name)
	}
}

func TestNewConfigMalformedYaml(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "roster: [")
	_, err := NewConfig(projectDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPORTSMEET_SEED", "7")
	t.Setenv("SPORTSMEET_PORT", "9001")
	t.Setenv("SPORTSMEET_HOST", "0.0.0.0")
	t.Setenv("SPORTSMEET_OUTPUT", "elsewhere/data.json")
	projectDir := t.TempDir()
	cfg, err := NewConfig(projectDir)
	require.NoError(t, err)
	require.NotNil(t, cfg.Project.Seed)
	assert.Equal(t, int64(7), *cfg.Project.Seed)
	assert.Equal(t, 9001, cfg.Project.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Project.Server.Host)
	assert.Equal(t, filepath.Join(projectDir, "elsewhere", "data.json"), cfg.Project.Output.JSON)
}

func TestInvalidEnvPortIgnored(t *testing.T) {
	t.Setenv("SPORTSMEET_PORT", "not-a-port")
	cfg, err := NewConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Project.Server.Port)
}

func TestDotEnvFileLoaded(t *testing.T) {
	projectDir := t.TempDir()
	t.Setenv("SPORTSMEET_XLSX", "")
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".env"), []byte("SPORTSMEET_XLSX=exports/meet.xlsx\n"), 0o644))
	os.Unsetenv("SPORTSMEET_XLSX")
	cfg, err := NewConfig(projectDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(projectDir, "exports", "meet.xlsx"), cfg.Project.Output.XLSX)
}

func TestSetOverrides(t *testing.T) {
	cfg, err := NewConfig(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.Set("roster.female_per_class", "0"))
	_, female := cfg.Headcount()
	assert.Equal(t, 0, female)
	require.NoError(t, cfg.Set("seed", "99"))
	assert.Equal(t, int64(99), *cfg.Project.Seed)
	require.NoError(t, cfg.Set("roster.grades", "高二, 高三"))
	assert.Equal(t, []meet.Grade{meet.GradeTwo, meet.GradeThree}, cfg.Grades())

	assert.Error(t, cfg.Set("assignment.lanes_per_group", "zero"))
	assert.Error(t, cfg.Set("assignment.lanes_per_group", "0"))
	assert.Error(t, cfg.Set("nope", "1"))
}
