package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dulchik/mailbot/form"
	"github.com/dulchik/mailbot/internal/config"
)

var flags struct {
	config   string
	url      string
	answers  string
	headless bool
	dryRun   bool
}

var rootCmd = &cobra.Command{
	Use:   "formfill",
	Short: "Fill and submit a web form from a CSV of answers",
	Long: "\nFill and submit a web form from a CSV of answers.\n\n" +
		"The CSV has a header row followed by rows of: question label, answer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flags.config, "config", "c", "config.yaml", "configuration file")
	f.StringVar(&flags.url, "url", "", "form URL (overrides configuration)")
	f.StringVarP(&flags.answers, "answers", "a", "", "answers CSV file (overrides configuration)")
	f.BoolVar(&flags.headless, "headless", false, "run the browser without a window")
	f.BoolVar(&flags.dryRun, "dry-run", false, "resolve answers against the downloaded form without a browser")
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("formfill failed", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := config.Load(flags.config)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if flags.url != "" {
		cfg.Form.URL = flags.url
	}
	if flags.answers != "" {
		cfg.Form.Answers = flags.answers
	}
	if cmd.Flags().Changed("headless") {
		cfg.Form.Headless = flags.headless
	}
	if cfg.Form.URL == "" {
		return fmt.Errorf("no form URL configured")
	}

	answers, err := form.LoadAnswersFile(cfg.Form.Answers)
	if err != nil {
		return err
	}
	slog.Info("answers loaded", "file", cfg.Form.Answers, "count", len(answers))

	dc := form.DriverConfig{
		SubmitLabels:  cfg.Form.SubmitLabels,
		SubmitTimeout: cfg.Form.SubmitTimeout,
		ChoiceSettle:  cfg.Form.ChoiceSettle,
		SubmitSettle:  cfg.Form.SubmitSettle,
	}

	var page form.Page
	if flags.dryRun {
		page = form.NewDocumentPage(nil)
		dc.ChoiceSettle, dc.SubmitSettle = 0, 0
	} else {
		cp, err := form.NewChromePage(ctx, cfg.Form.Headless)
		if err != nil {
			return err
		}
		defer cp.Close()
		page = cp
	}

	rep, err := form.NewDriver(page, dc, slog.Default()).Submit(ctx, cfg.Form.URL, answers)
	if err != nil {
		return err
	}
	slog.Info("run finished",
		"run_id", rep.RunID,
		"resolved", len(rep.Resolved),
		"unresolved", len(rep.Unresolved),
		"skipped", len(rep.Skipped),
		"submitted", rep.Submitted,
		"dry_run", flags.dryRun,
	)
	for _, a := range rep.Unresolved {
		fmt.Fprintf(cmd.OutOrStdout(), "unresolved: %s = %s\n", a.Label, a.Value)
	}
	return nil
}
