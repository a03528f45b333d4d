package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/llm-phish-detector/internal/adapters/frontend"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/di"
	"github.com/mikey/llm-phish-detector/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	var failed bool
	if err := container.Invoke(func(
		flags *di.CLIFlags,
		logger *zap.Logger,
		agent *messaging.Agent,
		cli *frontend.CLIFrontend,
	) error {
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		agent.Start(ctx)
		defer agent.Stop()

		var result *core.AnalysisResult
		if flags.EML != "" {
			in, err := flags.OpenMessage()
			if err != nil {
				return fmt.Errorf("failed to open message: %w", err)
			}
			defer in.Close()
			result, err = cli.AnalyzeMessage(ctx, in)
			if err != nil {
				return err
			}
		} else {
			result, err = cli.AnalyzePage(ctx, nil)
			if err != nil {
				return err
			}
		}

		failed = result.Failed()
		return nil
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}

	if failed {
		os.Exit(1)
	}
}
