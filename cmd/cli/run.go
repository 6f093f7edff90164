package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/plotline/plotline/internal/domain"
)

func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <drawing>",
		Short: "Plot a drawing and file the result into the document tree",
		Long: `Run the full workflow for one drawing: upload it to the staging bucket,
submit the plot job, wait for a terminal status and create or version the
resulting document in the configured folder.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(args[0])
		},
	}

	return cmd
}

func runWorkflow(inputPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config, err := LoadConfig()
	if err != nil {
		return err
	}
	if err := validateRunConfig(config); err != nil {
		return err
	}

	runtime, err := BuildRuntime(ctx, config, inputPath)
	if err != nil {
		return err
	}

	log.Info().
		Str("input", inputPath).
		Str("bucket", config.Bucket).
		Str("activity_id", config.ActivityID).
		Msg("Starting workflow run")

	result, err := runtime.Orchestrator.Run(ctx)
	if err != nil {
		var failure *domain.JobFailure
		if errors.As(err, &failure) && failure.ReportPath != "" {
			log.Error().
				Str("status", string(failure.Status)).
				Str("report", failure.ReportPath).
				Msg("Job failed, diagnostic report downloaded")
		}
		return err
	}

	log.Info().
		Str("status", string(result.Status)).
		Str("item_id", result.ItemID).
		Str("report", result.ReportPath).
		Msg("Workflow run finished")

	if result.Tree != nil {
		printTree(result.Tree)
	}

	return nil
}
