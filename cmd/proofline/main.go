// cmd/proofline/main.go
//
// This is the entry point for one sweep over the task queue.
//
// Flow:
// 1. Load configuration from the environment (plus an optional .env file)
// 2. Wire the queue source, model invoker, and document store — degrading
//    to offline stand-ins where credentials are absent
// 3. Run one sweep to completion and print the summary
//
// The exit code is zero for a completed sweep even when individual tasks
// failed; only configuration and startup errors are fatal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"proofline/internal/artifact"
	"proofline/internal/config"
	"proofline/internal/logging"
	"proofline/internal/model"
	"proofline/internal/orchestrator"
	"proofline/internal/prompt"
	"proofline/internal/report"
	"proofline/internal/source"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "proofline: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	runID := uuid.NewString()
	ctx := context.Background()

	preamble, err := prompt.LoadPreamble(cfg.VoiceFile)
	if err != nil {
		logger.WithError(err).Warn("voice preamble unavailable; using built-in default")
		preamble = prompt.DefaultPreamble()
	}
	builder := prompt.NewBuilder(preamble, prompt.Builtin())

	queue := source.NewNotion(cfg, logger)

	var invoker model.Invoker
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set; using offline fallback invoker")
		invoker = model.OfflineInvoker{}
	} else {
		invoker = model.NewOpenAIClient(cfg, logger)
	}

	var store artifact.Store
	if cfg.GoogleCredentialsJSON == "" {
		logger.WithField("dir", cfg.SpoolDir).Warn("DRIVE_SA_JSON not set; spooling proof documents locally")
		store = artifact.NewLocalStore(cfg.SpoolDir, artifact.WithRunID(runID))
	} else {
		store, err = artifact.NewGoogleStore(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "proofline: %v\n", err)
			os.Exit(1)
		}
	}

	orc := orchestrator.New(queue, builder, invoker, store, logger,
		orchestrator.WithRunID(runID),
		orchestrator.WithFallback(model.OfflineInvoker{}),
	)

	outcomes, err := orc.Sweep(ctx)
	if err != nil {
		// The queue could not even be read; nothing was touched.
		fmt.Fprintf(os.Stderr, "proofline: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(report.Render(runID, outcomes))
}
