// cmd/sportsmeet/main.go
//
// Entry point for the sportsmeet CLI. Without a subcommand it generates a
// dataset for the project in the current directory.
//
//	sportsmeet [generate] [-project dir] [-seed n] [-out path] [-xlsx path] [-set key=value]
//	sportsmeet serve   [-project dir] [-set key=value]
//	sportsmeet search  -q query [-limit n] [-project dir]
//	sportsmeet history [-n lines] [-project dir]

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kingrea/sportsmeet/internal/config"
	"github.com/kingrea/sportsmeet/internal/dataset"
	"github.com/kingrea/sportsmeet/internal/generator"
	"github.com/kingrea/sportsmeet/internal/logging"
)

func main() {
	args := os.Args[1:]
	command := "generate"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}
	switch command {
	case "generate":
		runGenerate(args)
	case "serve":
		runServe(args)
	case "search":
		runSearch(args)
	case "history":
		runHistory(args)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  sportsmeet [generate] [-project dir] [-seed n] [-out path] [-xlsx path] [-set key=value]
  sportsmeet serve [-project dir] [-set key=value]
  sportsmeet search -q query [-limit n] [-project dir]
  sportsmeet history [-n lines] [-project dir]`)
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	seed := fs.String("seed", "", "random seed for a reproducible run")
	out := fs.String("out", "", "JSON output path (overrides output.json)")
	xlsx := fs.String("xlsx", "", "XLSX output path (overrides output.xlsx)")
	sets := keyValueFlag{}
	fs.Var(&sets, "set", "config override (key=value, repeatable)")
	_ = fs.Parse(args)

	if *seed != "" {
		if _, err := strconv.ParseInt(*seed, 10, 64); err != nil {
			die("-seed expects an integer, got %q", *seed)
		}
		sets["seed"] = *seed
	}
	if *out != "" {
		sets["output.json"] = *out
	}
	if *xlsx != "" {
		sets["output.xlsx"] = *xlsx
	}
	cfg := loadConfig(*projectDir, sets)
	logger := openLogger(cfg)
	defer logger.Close()

	result, err := generator.Run(cfg, logger)
	if err != nil {
		die("generate: %v", err)
	}
	fmt.Println(dataset.RenderReport(result.Summary, result.Outputs...))
	fmt.Printf("run %s (seed %d)\n", result.RunID, result.Seed)
	if result.Import != nil && len(result.Import.Rejected) > 0 {
		fmt.Fprintf(os.Stderr, "%d roster records rejected; see %s\n", len(result.Import.Rejected), filepath.Join(cfg.LogsDir(), "sportsmeet.log"))
	}
}

// loadConfig resolves the project directory, creates .sportsmeet when missing
// and applies -set overrides in a stable order.
func loadConfig(projectDir string, sets keyValueFlag) *config.Config {
	project := projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitProjectDir(absoluteProject); err != nil {
		die("init %s: %v", config.ProjectDirName, err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}
	for _, key := range sets.Keys() {
		if err := cfg.Set(key, sets[key]); err != nil {
			die("%v", err)
		}
	}
	return cfg
}

func openLogger(cfg *config.Config) *logging.Logger {
	logger, err := logging.New(cfg.ProjectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return nil
	}
	return logger
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
