package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kingrea/sportsmeet/internal/dataset"
	"github.com/kingrea/sportsmeet/internal/search"
)

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	query := fs.String("q", "", "athlete name or class to look for")
	limit := fs.Int("limit", 20, "maximum number of results (0 for all)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*query) == "" {
		fmt.Fprintln(os.Stderr, "-q is required")
		os.Exit(2)
	}
	cfg := loadConfig(*projectDir, nil)
	doc, err := dataset.ReadFile(cfg.Project.Output.JSON)
	if errors.Is(err, dataset.ErrNoDocument) {
		die("no dataset at %s; run `sportsmeet generate` first", cfg.Project.Output.JSON)
	}
	if err != nil {
		die("search: %v", err)
	}

	results := search.NewIndex(doc).Search(*query, *limit)
	if len(results) == 0 {
		fmt.Printf("no athletes match %q\n", *query)
		return
	}
	rows := make([][]string, 0, len(results))
	for _, a := range results {
		rows = append(rows, []string{a.Name, a.Class, a.Event, fmt.Sprintf("第%d组", a.Group), a.Road})
	}
	fmt.Println(dataset.RenderTable([]string{"姓名", "班级", "项目", "组别", "道次"}, rows))
}
