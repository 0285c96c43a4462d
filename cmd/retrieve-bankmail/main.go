// Command retrieve-bankmail logs into Bankwest Online Banking through a
// headless browser and downloads secure-mail messages to local files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/retrieve-bankmail/internal/app"
	"github.com/nhle/retrieve-bankmail/internal/bankmail"
	"github.com/nhle/retrieve-bankmail/internal/browser"
	"github.com/nhle/retrieve-bankmail/internal/cli"
	"github.com/nhle/retrieve-bankmail/internal/credential"
	"github.com/nhle/retrieve-bankmail/internal/logging"
	"github.com/nhle/retrieve-bankmail/internal/model"
	"github.com/nhle/retrieve-bankmail/internal/store"
)

// Exit codes: 0 success or --help, 1 fatal runtime error, 2 usage error.
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

var summaryStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("36")).
	Bold(true)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			fmt.Print(cli.Usage)
			return exitOK
		}
		fmt.Fprintf(os.Stderr, "retrieve-bankmail: %v\n\n", err)
		fmt.Fprint(os.Stderr, cli.Usage)
		return exitUsage
	}

	logger := logging.Setup(os.Stderr, opts.LogLevel, opts.Debug, opts.Verbose)
	logger.Debug("log level resolved",
		"level", logging.Resolve(opts.LogLevel, opts.Debug, opts.Verbose))

	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		logger.Error("loading configuration", "err", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resolver := credential.NewResolver(
		cfg, credential.System{}, credential.NewTerminalPrompter(), logger,
	)

	archive, err := store.NewArchive(cfg.ArchivePath)
	if err != nil {
		logger.Error("opening archive", "err", err)
		return exitFatal
	}
	defer archive.Close()

	writer, err := store.NewWriter(cfg.OutputDir)
	if err != nil {
		logger.Error("preparing output directory", "err", err)
		return exitFatal
	}

	session, err := browser.New(browser.Config{
		Headless: !opts.ShowBrowser,
		Timeout:  time.Duration(cfg.NavTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Error("starting browser", "err", err)
		return exitFatal
	}
	defer session.Close()

	client := bankmail.NewClient(session, cfg, logger)
	runner := app.New(client, resolver, archive, writer, logger, opts.Limit)

	sum, err := runner.Run(ctx)
	if err != nil {
		if bankmail.IsAuthError(err) {
			logger.Error("could not log into online banking", "err", err)
		} else {
			logger.Error("retrieval failed", "err", err)
		}
		if sum.Saved > 0 {
			logger.Warn("messages saved before the failure are kept", "saved", sum.Saved)
		}
		return exitFatal
	}

	fmt.Println(summaryStyle.Render(fmt.Sprintf(
		"finished getting mail: %d saved, %d skipped, %d listed",
		sum.Saved, sum.Skipped, sum.Listed,
	)))

	return exitOK
}
