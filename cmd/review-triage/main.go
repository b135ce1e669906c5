package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/core"
	"github.com/mikey/llm-review-triage/internal/di"
	"github.com/mikey/llm-review-triage/internal/ports"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", dig.RootCause(err))
		os.Exit(1)
	}
}

type deps struct {
	dig.In

	Flags     *di.CLIFlags
	Config    *config.Config
	Logger    *zap.Logger
	Loader    ports.ReviewLoader
	Service   *core.TriageService
	Report    ports.ReportWriter
	Notifier  ports.ReplyNotifier
	Generator core.TextGenerator
	Cache     core.CategoryCache
}

// run is the main application function that gets all dependencies injected
func run(d deps) error {
	defer d.Logger.Sync()
	defer closeResources(d)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reviews, err := d.Loader.LoadFile(ctx, d.Flags.InputFile)
	if err != nil {
		return err
	}
	d.Logger.Info("Loaded reviews",
		zap.String("file", d.Flags.InputFile),
		zap.Int("count", len(reviews)))

	result, err := d.Service.Analyze(ctx, reviews, d.Flags.Limit)
	if err != nil {
		return err
	}

	top := d.Flags.Top
	if top <= 0 {
		top = d.Config.GetAnalysis().TopN
	}
	if err := writeReport(d, result, top); err != nil {
		return err
	}

	if d.Flags.ReplyRank > 0 {
		return draftReply(ctx, d, result)
	}
	return nil
}

func writeReport(d deps, result *core.BatchResult, top int) error {
	var out io.Writer = os.Stdout
	if d.Flags.OutputFile != "" {
		f, err := os.Create(d.Flags.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := d.Report.Write(out, result, top); err != nil {
		return err
	}
	if d.Flags.OutputFile != "" {
		d.Logger.Info("Report written", zap.String("file", d.Flags.OutputFile))
	}
	return nil
}

// draftReply drafts a reply for the review at the requested rank, prints it to
// stderr so that stdout only carries the report, and hands it to the notifier
func draftReply(ctx context.Context, d deps, result *core.BatchResult) error {
	ranked := core.Top(result, d.Flags.ReplyRank)
	if len(ranked) < d.Flags.ReplyRank {
		return fmt.Errorf("cannot draft a reply for rank %d: only %d reviews were analyzed", d.Flags.ReplyRank, len(result.Reviews))
	}
	review := ranked[d.Flags.ReplyRank-1]

	style, err := core.ParseReplyStyle(d.Config.GetReply().Style)
	if err != nil {
		return err
	}

	draft, err := d.Service.DraftReply(ctx, review, style)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n=== Reply draft for review #%d (%s) ===\n%s\n", review.ID, style, draft.Text)

	return d.Notifier.Notify(ctx, draft)
}

func closeResources(d deps) {
	if closer, ok := d.Generator.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			d.Logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
	if stopper, ok := d.Cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
}
