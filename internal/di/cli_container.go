package di

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/core"
	"github.com/mikey/llm-review-triage/internal/factory"
	"github.com/mikey/llm-review-triage/internal/logging"
)

// ErrNoInput is returned when no review export was given
var ErrNoInput = errors.New("an input file is required (-file)")

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Input and output flags
	InputFile  string
	OutputFile string
	Format     string

	// Analysis flags
	Limit   int
	Top     int
	NoCache bool

	// Reply flags
	ReplyRank int
	Style     string
	Notify    string

	// LLM provider flags
	Provider string
	Model    string

	// General flags
	ConfigFile string
	EnvFile    string
	Verbose    bool
	JSONLog    bool
}

// ParseFlags parses command line arguments, without the program name, into a CLIFlags struct
func ParseFlags(name string, args []string, output io.Writer) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	// Input and output flags
	fs.StringVar(&flags.InputFile, "file", "", "Review export CSV (content, score, thumbsUpCount, at)")
	fs.StringVar(&flags.OutputFile, "output", "", "Write the report to this file instead of stdout")
	fs.StringVar(&flags.Format, "format", "", "Report format (text, json, markdown, html)")

	// Analysis flags
	fs.IntVar(&flags.Limit, "limit", 0, fmt.Sprintf("Number of reviews to analyze (default %d, max %d)", core.DefaultBatchSize, core.DefaultMaxBatchSize))
	fs.IntVar(&flags.Top, "top", 0, "Number of ranked reviews to show (default analysis.top_n)")
	fs.BoolVar(&flags.NoCache, "no-cache", false, "Disable category memoization")

	// Reply flags
	fs.IntVar(&flags.ReplyRank, "reply", 0, "Draft a reply for the review at this rank (1 = most urgent)")
	fs.StringVar(&flags.Style, "style", "", "Reply style (empathy, root-cause, support, detailed)")
	fs.StringVar(&flags.Notify, "notify", "", "Deliver the reply draft (none, smtp, telegram)")

	// LLM provider flags
	fs.StringVar(&flags.Provider, "provider", "", "LLM provider (openai, gemini, bedrock, offline)")
	fs.StringVar(&flags.Model, "model", "", "Model name or ID for the selected provider")

	// General flags
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")
	fs.StringVar(&flags.EnvFile, "env-file", ".env", "Path to a .env file with API keys")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if flags.InputFile == "" && fs.NArg() > 0 {
		flags.InputFile = fs.Arg(0)
	}
	if flags.InputFile == "" {
		return nil, ErrNoInput
	}
	if flags.ReplyRank < 0 {
		return nil, fmt.Errorf("invalid -reply rank %d", flags.ReplyRank)
	}
	if flags.Style != "" {
		if _, err := core.ParseReplyStyle(flags.Style); err != nil {
			return nil, err
		}
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags) (*config.Config, error) {
		cfg, err := config.New(flags.ConfigFile, flags.EnvFile)
		if err != nil {
			return nil, err
		}
		ApplyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(cfg *config.Config) (*zap.Logger, error) {
		logger, err := logging.InitLogger(cfg)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		return logger, nil
	}); err != nil {
		return nil, err
	}

	if err := registerApplication(container); err != nil {
		return nil, err
	}
	return container, nil
}

// ApplyFlags overrides configuration values with the flags that were set
func ApplyFlags(cfg *config.Config, flags *CLIFlags) {
	if flags.Provider != "" {
		cfg.Set("llm.provider", flags.Provider)
	}
	if flags.Model != "" {
		switch cfg.GetString("llm.provider") {
		case factory.ProviderOpenAI:
			cfg.Set("openai.model_name", flags.Model)
		case factory.ProviderGemini:
			cfg.Set("gemini.model_name", flags.Model)
		case factory.ProviderBedrock:
			cfg.Set("bedrock.model_id", flags.Model)
		}
	}
	if flags.Format != "" {
		cfg.Set("report.format", flags.Format)
	}
	if flags.Style != "" {
		cfg.Set("reply.style", flags.Style)
	}
	if flags.Notify != "" {
		cfg.Set("notify.type", flags.Notify)
	}
	if flags.NoCache {
		cfg.Set("cache.enabled", false)
	}
	if flags.Verbose {
		cfg.Set("logging.level", "debug")
	}
	if flags.JSONLog {
		cfg.Set("logging.format", "json")
	}
}
