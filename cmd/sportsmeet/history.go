package main

import (
	"flag"
	"fmt"

	"github.com/kingrea/sportsmeet/internal/logbook"
)

func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	n := fs.Int("n", 10, "number of most recent runs to show")
	_ = fs.Parse(args)

	cfg := loadConfig(*projectDir, nil)
	book, err := logbook.New(cfg.RunsLogPath())
	if err != nil {
		die("history: %v", err)
	}
	lines, total := book.Tail(*n)
	if total == 0 {
		fmt.Println("no runs recorded yet")
		return
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	fmt.Printf("(%d of %d runs)\n", len(lines), total)
}
