// internal/config/config.go
//
// This package handles configuration and the .sportsmeet directory structure.
// Every project that generates a meet dataset gets a .sportsmeet/ folder in its
// root holding config.yaml and the run logs.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/sportsmeet/internal/meet"
)

const (
	// ProjectDirName is the name of the directory we create in each project
	ProjectDirName = ".sportsmeet"

	defaultOutputJSON      = "public/data/sports_data.json"
	defaultClassesPerGrade = 16
	defaultPerClass        = 25
	defaultGroups          = 5
	defaultLanes           = 6
	defaultHost            = "127.0.0.1"
	defaultPort            = 3001
)

const defaultProjectConfigYAML = `# sportsmeet project configuration
version: 1

# Fix the random seed to make runs reproducible. Leave unset for a fresh draw.
# seed: 20251018

roster:
  grades: [高一, 高二, 高三]
  classes_per_grade: 16
  male_per_class: 25
  female_per_class: 25
  # Per-grade headcount overrides:
  # overrides:
  #   高三: {male: 25, female: 0}
  # Roster records supplied by an external source ({name, grade, class, gender?}).
  # import:
  #   path: public/data/parsed_students.json
  #   mode: seed    # seed | replace

assignment:
  groups_per_event: 5
  lanes_per_group: 6

# schedule:
#   path: schedule.yaml   # replaces the built-in schedule table

output:
  json: public/data/sports_data.json
  # xlsx: public/data/sports_data.xlsx

server:
  host: 127.0.0.1
  port: 3001
`

// HeadcountConfig is the per-class draw size of one grade.
type HeadcountConfig struct {
	Male   int `yaml:"male"`
	Female int `yaml:"female"`
}

// ImportConfig points at externally supplied roster records.
type ImportConfig struct {
	Path string `yaml:"path,omitempty"`
	Mode string `yaml:"mode,omitempty"`
}

// RosterConfig shapes the synthetic roster.
type RosterConfig struct {
	Grades          []string                   `yaml:"grades"`
	ClassesPerGrade *int                       `yaml:"classes_per_grade,omitempty"`
	MalePerClass    *int                       `yaml:"male_per_class,omitempty"`
	FemalePerClass  *int                       `yaml:"female_per_class,omitempty"`
	Overrides       map[string]HeadcountConfig `yaml:"overrides,omitempty"`
	Import          ImportConfig               `yaml:"import,omitempty"`
}

// AssignmentConfig shapes each event's participant draw.
type AssignmentConfig struct {
	GroupsPerEvent *int `yaml:"groups_per_event,omitempty"`
	LanesPerGroup  *int `yaml:"lanes_per_group,omitempty"`
}

// ScheduleConfig optionally replaces the built-in schedule table.
type ScheduleConfig struct {
	Path string `yaml:"path,omitempty"`
}

// OutputConfig names the files a run writes.
type OutputConfig struct {
	JSON string `yaml:"json"`
	XLSX string `yaml:"xlsx,omitempty"`
}

// ServerConfig captures the dataset server bind address.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ProjectConfig models .sportsmeet/config.yaml.
type ProjectConfig struct {
	Version    int              `yaml:"version"`
	Seed       *int64           `yaml:"seed,omitempty"`
	Roster     RosterConfig     `yaml:"roster"`
	Assignment AssignmentConfig `yaml:"assignment"`
	Schedule   ScheduleConfig   `yaml:"schedule,omitempty"`
	Output     OutputConfig     `yaml:"output"`
	Server     ServerConfig     `yaml:"server"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory the command was run from (or -project)
	ProjectDir string

	// StateDir is ProjectDir/.sportsmeet
	StateDir string

	Project ProjectConfig
}

// InitProjectDir creates the .sportsmeet directory structure in the given
// project directory and writes a default config.yaml when none exists.
//
// Structure created:
// .sportsmeet/
// ├── config.yaml
// └── logs/         <- sportsmeet.log and runs.log
func InitProjectDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, ProjectDirName)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(stateDir, "config.yaml"))
}

// NewConfig creates a Config populated from config.yaml, .env and the
// SPORTSMEET_* environment.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		StateDir:   filepath.Join(projectDir, ProjectDirName),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := loadDotEnv(filepath.Join(projectDir, ".env")); err != nil {
		return nil, err
	}
	cfg.Project.applyEnvOverrides()
	cfg.Project.normalize(projectDir)
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// RunsLogPath returns the path of the runs journal
func (c *Config) RunsLogPath() string {
	return filepath.Join(c.LogsDir(), "runs.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// Grades returns the configured grades in build order.
func (c *Config) Grades() []meet.Grade {
	out := make([]meet.Grade, 0, len(c.Project.Roster.Grades))
	for _, raw := range c.Project.Roster.Grades {
		if g, ok := meet.ParseGrade(raw); ok {
			out = append(out, g)
		}
	}
	return out
}

// Headcount returns the default per-class male and female draw sizes.
func (c *Config) Headcount() (male, female int) {
	return derefOr(c.Project.Roster.MalePerClass, defaultPerClass), derefOr(c.Project.Roster.FemalePerClass, defaultPerClass)
}

// ClassesPerGrade returns the number of classes built for each grade.
func (c *Config) ClassesPerGrade() int {
	return derefOr(c.Project.Roster.ClassesPerGrade, defaultClassesPerGrade)
}

// GroupsPerEvent returns the number of heats or flights drawn per event.
func (c *Config) GroupsPerEvent() int {
	return derefOr(c.Project.Assignment.GroupsPerEvent, defaultGroups)
}

// LanesPerGroup returns the number of lanes drawn per group.
func (c *Config) LanesPerGroup() int {
	return derefOr(c.Project.Assignment.LanesPerGroup, defaultLanes)
}

// GradeHeadcounts returns per-grade overrides keyed by grade.
func (c *Config) GradeHeadcounts() map[meet.Grade]HeadcountConfig {
	out := make(map[meet.Grade]HeadcountConfig, len(c.Project.Roster.Overrides))
	for raw, hc := range c.Project.Roster.Overrides {
		if g, ok := meet.ParseGrade(raw); ok {
			out[g] = hc
		}
	}
	return out
}

// Set applies a single key=value override using the YAML key path, e.g.
// roster.female_per_class=0.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	pc := &c.Project
	intValue := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("config: %s expects an integer, got %q", key, value)
		}
		return n, nil
	}
	switch key {
	case "seed":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("config: seed expects an integer, got %q", value)
		}
		pc.Seed = &n
	case "roster.classes_per_grade":
		n, err := intValue()
		if err != nil {
			return err
		}
		pc.Roster.ClassesPerGrade = &n
	case "roster.male_per_class":
		n, err := intValue()
		if err != nil {
			return err
		}
		pc.Roster.MalePerClass = &n
	case "roster.female_per_class":
		n, err := intValue()
		if err != nil {
			return err
		}
		pc.Roster.FemalePerClass = &n
	case "roster.grades":
		pc.Roster.Grades = strings.Split(value, ",")
	case "roster.import.path":
		pc.Roster.Import.Path = value
	case "roster.import.mode":
		pc.Roster.Import.Mode = value
	case "assignment.groups_per_event":
		n, err := intValue()
		if err != nil {
			return err
		}
		pc.Assignment.GroupsPerEvent = &n
	case "assignment.lanes_per_group":
		n, err := intValue()
		if err != nil {
			return err
		}
		pc.Assignment.LanesPerGroup = &n
	case "schedule.path":
		pc.Schedule.Path = value
	case "output.json":
		pc.Output.JSON = value
	case "output.xlsx":
		pc.Output.XLSX = value
	case "server.host":
		pc.Server.Host = value
	case "server.port":
		n, err := intValue()
		if err != nil {
			return err
		}
		pc.Server.Port = n
	default:
		return fmt.Errorf("config: unknown key %q", key)
	}
	pc.normalize(c.ProjectDir)
	if err := pc.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if len(pc.Roster.Grades) == 0 {
		for _, g := range meet.Grades {
			pc.Roster.Grades = append(pc.Roster.Grades, string(g))
		}
	}
	if pc.Roster.ClassesPerGrade == nil {
		pc.Roster.ClassesPerGrade = intPtr(defaultClassesPerGrade)
	}
	if pc.Assignment.GroupsPerEvent == nil {
		pc.Assignment.GroupsPerEvent = intPtr(defaultGroups)
	}
	if pc.Assignment.LanesPerGroup == nil {
		pc.Assignment.LanesPerGroup = intPtr(defaultLanes)
	}
	if strings.TrimSpace(pc.Output.JSON) == "" {
		pc.Output.JSON = defaultOutputJSON
	}
	if strings.TrimSpace(pc.Server.Host) == "" {
		pc.Server.Host = defaultHost
	}
	if pc.Server.Port == 0 {
		pc.Server.Port = defaultPort
	}
}

func (pc *ProjectConfig) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv("SPORTSMEET_SEED")); value != "" {
		if seed, err := strconv.ParseInt(value, 10, 64); err == nil {
			pc.Seed = &seed
		}
	}
	if value := strings.TrimSpace(os.Getenv("SPORTSMEET_OUTPUT")); value != "" {
		pc.Output.JSON = value
	}
	if value := strings.TrimSpace(os.Getenv("SPORTSMEET_XLSX")); value != "" {
		pc.Output.XLSX = value
	}
	if host := strings.TrimSpace(os.Getenv("SPORTSMEET_HOST")); host != "" {
		pc.Server.Host = host
	}
	if port := strings.TrimSpace(os.Getenv("SPORTSMEET_PORT")); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil && isValidPort(parsed) {
			pc.Server.Port = parsed
		}
	}
}

func (pc *ProjectConfig) normalize(base string) {
	grades := make([]string, 0, len(pc.Roster.Grades))
	for _, g := range pc.Roster.Grades {
		if g = strings.TrimSpace(g); g != "" {
			grades = append(grades, g)
		}
	}
	pc.Roster.Grades = grades
	pc.Roster.Import.Path = resolvePath(base, pc.Roster.Import.Path)
	pc.Roster.Import.Mode = strings.ToLower(strings.TrimSpace(pc.Roster.Import.Mode))
	pc.Schedule.Path = resolvePath(base, pc.Schedule.Path)
	pc.Output.JSON = resolvePath(base, pc.Output.JSON)
	pc.Output.XLSX = resolvePath(base, pc.Output.XLSX)
	pc.Server.Host = strings.TrimSpace(pc.Server.Host)
	if pc.Server.Host == "" {
		pc.Server.Host = defaultHost
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if len(pc.Roster.Grades) == 0 {
		return fmt.Errorf("roster.grades must list at least one grade")
	}
	seen := make(map[string]bool, len(pc.Roster.Grades))
	for _, g := range pc.Roster.Grades {
		if _, ok := meet.ParseGrade(g); !ok {
			return fmt.Errorf("roster.grades: unknown grade %q", g)
		}
		if seen[g] {
			return fmt.Errorf("roster.grades: duplicate grade %q", g)
		}
		seen[g] = true
	}
	if derefOr(pc.Roster.ClassesPerGrade, 0) < 1 {
		return fmt.Errorf("roster.classes_per_grade must be >= 1")
	}
	if derefOr(pc.Roster.MalePerClass, 0) < 0 || derefOr(pc.Roster.FemalePerClass, 0) < 0 {
		return fmt.Errorf("roster headcounts must be >= 0")
	}
	for grade, hc := range pc.Roster.Overrides {
		if _, ok := meet.ParseGrade(grade); !ok {
			return fmt.Errorf("roster.overrides: unknown grade %q", grade)
		}
		if hc.Male < 0 || hc.Female < 0 {
			return fmt.Errorf("roster.overrides[%s]: headcounts must be >= 0", grade)
		}
	}
	switch pc.Roster.Import.Mode {
	case "", "seed", "replace":
	default:
		return fmt.Errorf("roster.import.mode must be 'seed' or 'replace'")
	}
	if derefOr(pc.Assignment.GroupsPerEvent, 0) < 1 {
		return fmt.Errorf("assignment.groups_per_event must be >= 1")
	}
	if derefOr(pc.Assignment.LanesPerGroup, 0) < 1 {
		return fmt.Errorf("assignment.lanes_per_group must be >= 1")
	}
	if strings.TrimSpace(pc.Output.JSON) == "" {
		return fmt.Errorf("output.json is required")
	}
	if !isValidPort(pc.Server.Port) {
		return fmt.Errorf("server.port must be within 1-65535")
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func intPtr(v int) *int { return &v }

func derefOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}
