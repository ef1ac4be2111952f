package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/app"
	"github.com/commu-practical/helpmap/internal/config"
	"github.com/commu-practical/helpmap/internal/domain"
	logpkg "github.com/commu-practical/helpmap/internal/logger"
	chiTransport "github.com/commu-practical/helpmap/internal/transport/chi"
	"github.com/commu-practical/helpmap/internal/usecase/area"
	"github.com/commu-practical/helpmap/internal/version"
)

type args struct {
	Town     string `arg:"--town,-t,required" help:"town to look up"`
	Page     int    `arg:"--page,-p" default:"1" help:"result page"`
	Distance int    `arg:"--distance,-d" help:"search radius in km (default: escalate from the configured distance)"`
	Env      string `arg:"--env,env:ENV" default:"local" help:"configuration environment"`
}

func (args) Version() string {
	return fmt.Sprintf("helpmap-cli %s (%s, %s)", version.Version, version.Commit, version.Date)
}

func main() {
	var a args
	arg.MustParse(&a)

	cfg, err := config.Load(a.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdout stays valid JSON.
	logger, err := logpkg.NewLogger(a.Env, "helpmap-cli", "warn")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build application", zap.Error(err))
	}
	defer application.Close()

	distance := 0
	if a.Distance != 0 {
		distance = max(1, a.Distance)
	}

	report, err := application.Areas.Lookup(ctx, a.Town, a.Page, distance)
	switch {
	case errors.Is(err, domain.ErrInvalidTown):
		fmt.Fprintln(os.Stderr, "Please enter a town.")
		os.Exit(2)
	case errors.Is(err, domain.ErrLocationNotFound):
		fmt.Fprintln(os.Stderr, area.MsgNotFound)
		os.Exit(1)
	case err != nil:
		logger.Fatal("Lookup failed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(chiTransport.NewAreaResponse(report)); err != nil {
		logger.Fatal("Failed to encode report", zap.Error(err))
	}
	if report.Outcome == area.OutcomeUpstreamFailure {
		os.Exit(1)
	}
}
