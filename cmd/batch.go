package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sngor/bayon-coagent-sub013/internal/config"
	"github.com/sngor/bayon-coagent-sub013/internal/service/batch"
)

var (
	runTriggerPath string
	runID          string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one optimizer batch and print its summary as JSON",
	Long: `Run one optimizer batch against the configured engagement source and cache store.
The trigger file is YAML or JSON; without one the default trigger is used.
Exits non-zero when the trigger is rejected or the batch cannot start.`,
	RunE: runBatch,
}

func init() {
	runCmd.Flags().StringVarP(&runTriggerPath, "trigger", "t", "", "Path to a YAML or JSON trigger file")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run id stamped on logs and records (default: random UUID)")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	id := runID
	if id == "" {
		id = uuid.NewString()
	}

	trigger, err := loadTrigger(runTriggerPath)
	if err != nil {
		return printSummary(batch.FatalSummary(id, err))
	}

	a, err := newApp(ctx)
	if err != nil {
		slog.Error("failed to start", slog.String("error", err.Error()))
		return err
	}
	defer a.Close()

	return printSummary(a.orchestrator.Run(ctx, id, trigger))
}

func loadTrigger(path string) (*config.Trigger, error) {
	if path == "" {
		trigger := config.DefaultTrigger()
		return &trigger, nil
	}
	return config.LoadTriggerFile(path)
}

func printSummary(summary *batch.Summary) error {
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	if _, err := fmt.Fprintln(os.Stdout, string(out)); err != nil {
		return err
	}

	if summary.IsFatal() {
		return fmt.Errorf("batch %s did not run: %s", summary.RunID, summary.Fatal.Message)
	}
	return nil
}
