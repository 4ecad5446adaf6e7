package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"DailyEdition/internal/app"
	"DailyEdition/internal/config"
	"DailyEdition/internal/logging"
)

const usage = `usage: dailyedition <command>

commands:
  run [--in-process]   run every daily task once and exit 1 if any failed
  task <id>            produce a single section
  serve                start the trigger API and the daily scheduler
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cmd, rest := args[0], args[1:]
	// Task children write logs to stderr so stdout carries only task output.
	logOut := stdout
	if cmd == "task" {
		logOut = stderr
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, logOut)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", slog.Any("err", err))
		return 1
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			logger.Warn("application close", slog.Any("err", err))
		}
	}()

	switch cmd {
	case "run":
		fs := flag.NewFlagSet("run", flag.ContinueOnError)
		fs.SetOutput(stderr)
		inProcess := fs.Bool("in-process", false, "run tasks as goroutines instead of child processes")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		report, err := application.RunDaily(ctx, stdout, *inProcess)
		if err != nil {
			logger.Error("daily run not started", slog.Any("err", err))
			return 1
		}
		return report.ExitCode()

	case "task":
		if len(rest) != 1 {
			fmt.Fprint(stderr, usage)
			return 2
		}
		if err := application.RunTask(ctx, rest[0]); err != nil {
			return 1
		}
		fmt.Fprintf(stdout, "%s saved\n", rest[0])
		return 0

	case "serve":
		if err := application.Serve(ctx, stdout); err != nil {
			logger.Error("server stopped", slog.Any("err", err))
			return 1
		}
		return 0

	default:
		fmt.Fprint(stderr, usage)
		return 2
	}
}
