package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/bootstrap"
	"github.com/dvloznov/hcstc-decisioning/internal/config"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so command output can be piped.
	log := logger.NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(logger.ParseLevel(cfg.Logging.Level))

	args := os.Args[2:]
	switch os.Args[1] {
	case "score":
		runScore(log, cfg, args)
	case "batch":
		runBatch(log, cfg, args)
	case "report":
		runReport(log, cfg, args)
	case "chart":
		runChart(log, cfg, args)
	case "publish-report":
		runPublishReport(log, cfg, args)
	case "upload":
		runUpload(log, cfg, args)
	case "validate-config":
		runValidateConfig(log, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("HCSTC Decisioning CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  score            Score one application (file, stdin or GCS)")
	fmt.Println("  batch            Score files, directories and zip archives")
	fmt.Println("  report           Score an application and print its report tables")
	fmt.Println("  chart            Render an application's daily balance as PNG")
	fmt.Println("  publish-report   Score an application and upload its report to GCS")
	fmt.Println("  upload           Upload an application file to GCS")
	fmt.Println("  validate-config  Check a scoring rules file")
	fmt.Println("  help             Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// services builds the decision services with the logger in ctx. Commands
// that never persist pass SkipPersist.
func services(ctx context.Context, log zerolog.Logger, cfg config.Config, opts bootstrap.Options) *bootstrap.Services {
	svc, err := bootstrap.Build(ctx, cfg, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise decision services")
	}
	return svc
}
