package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alexisbeaulieu97/tagsync/internal/adapters/memory"
	"github.com/alexisbeaulieu97/tagsync/internal/application/orchestrate"
	eventsinfra "github.com/alexisbeaulieu97/tagsync/internal/infrastructure/events"
	logginginfra "github.com/alexisbeaulieu97/tagsync/internal/infrastructure/logging"
)

func main() {
	appLogger, err := logginginfra.New(logginginfra.Options{
		Level:     "info",
		Component: "cli",
		Layer:     "infrastructure",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create application logger: %v\n", err)
		os.Exit(1)
	}

	correlationID := logginginfra.GenerateCorrelationID()
	ctx := logginginfra.WithCorrelationID(context.Background(), correlationID)

	eventPublisher := eventsinfra.NewLoggingPublisher(appLogger.With("component", "event_publisher"))
	backend := memory.New(60 * time.Second)
	orch := orchestrate.New(backend, appLogger.With("component", "orchestrator"), eventPublisher)

	app := &AppContext{
		Logger:       appLogger,
		Events:       eventPublisher,
		Backend:      backend,
		Orchestrator: orch,
	}

	rootCmd := newRootCmd(app)
	appLogger.Info(ctx, "starting tagsync command", "pid", os.Getpid())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
