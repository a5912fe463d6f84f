package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kingrea/sportsmeet/internal/server"
)

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	sets := keyValueFlag{}
	fs.Var(&sets, "set", "config override (key=value, repeatable)")
	_ = fs.Parse(args)

	cfg := loadConfig(*projectDir, sets)
	logger := openLogger(cfg)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(server.SettingsFromConfig(cfg), server.WithLogger(logger))
	if err := srv.Start(ctx); err != nil {
		die("serve: %v", err)
	}
	fmt.Printf("serving %s on %s\n", cfg.Project.Output.JSON, srv.BaseURL())
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		die("shutdown: %v", err)
	}
}
