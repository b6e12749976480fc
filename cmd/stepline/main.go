package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/systemstart/stepline/pkg/logging"
	"github.com/systemstart/stepline/pkg/manifest"
	"github.com/systemstart/stepline/pkg/pipeline"
	"github.com/systemstart/stepline/pkg/projectfile"
)

var version = "dev"

const (
	_ = iota
	exitUsage
	exitDotenvError
	exitLoadManifestFailed
	exitBuildPipelineFailed
	exitRunFailed
)

var (
	feedbackFile  string
	thumbnailFile string
	manifestFile  string
	loggingType   string
	logLevel      string
	showVersion   bool
)

func init() {
	flag.StringVar(
		&feedbackFile,
		"feedback",
		"",
		"feedback document output path (default: stdout)")
	flag.StringVar(
		&thumbnailFile,
		"thumbnail",
		"/tmp/thumbnail.png",
		"thumbnail output path")
	flag.StringVar(
		&manifestFile,
		"manifest",
		"",
		"pipeline manifest YAML (default: built-in project pipeline)")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	_ = logging.Initialize(loggingType, logLevel)

	includeEnv()

	if flag.NArg() != 1 {
		slog.Error("exactly one project file argument is required")
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <project-file>\n", os.Args[0])
		os.Exit(exitUsage)
	}
	projectFile := flag.Arg(0)

	p := buildPipeline()

	// Domain failures end up inside the feedback document; only faults
	// outside that family fail the process.
	err := p.RunAndEmit(map[string]any{
		projectfile.ArgProjectFilename:   projectFile,
		projectfile.ArgThumbnailFilename: thumbnailFile,
	}, feedbackFile)
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(exitRunFailed)
	}

	slog.Info("done")
}

func buildPipeline() *pipeline.Pipeline {
	if manifestFile == "" {
		p, err := projectfile.Pipeline()
		if err != nil {
			slog.Error("failed to build pipeline", "error", err)
			os.Exit(exitBuildPipelineFailed)
		}
		return p
	}

	m, err := manifest.Load(manifestFile)
	if err != nil {
		slog.Error("failed to load manifest", "filename", manifestFile, "error", err)
		os.Exit(exitLoadManifestFailed)
	}

	p, err := manifest.Build(m, projectfile.Funcs())
	if err != nil {
		slog.Error("failed to build pipeline from manifest", "filename", manifestFile, "error", err)
		os.Exit(exitBuildPipelineFailed)
	}
	return p
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}
