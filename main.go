package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/oklog/ulid/v2"

	"github.com/smith-xyz/binary-xref-generator/pkg/config"
	"github.com/smith-xyz/binary-xref-generator/pkg/engine"
	"github.com/smith-xyz/binary-xref-generator/pkg/engine/elfengine"
	"github.com/smith-xyz/binary-xref-generator/pkg/output"
	"github.com/smith-xyz/binary-xref-generator/pkg/utils"
	"github.com/smith-xyz/binary-xref-generator/pkg/version"
	"github.com/smith-xyz/binary-xref-generator/pkg/xref"
)

func main() {
	var (
		binaryPath   = flag.String("binary", "", "Path to the ELF binary to analyze (required)")
		configFile   = flag.String("config", "", "TOML config file (default: embedded config with local config.toml override)")
		outputPath   = flag.String("o", "", "Output file path, \"-\" for stdout (default: from config, xref_data.json)")
		abiFlag      = flag.String("abi", "", "Demangler ABI: itanium, rust, or auto (default: from config)")
		skipPrefixes = flag.String("skip-prefixes", "", "Comma-separated extra namespace prefixes to reject")
		skipMarkers  = flag.String("skip-markers", "", "Comma-separated extra substring markers to reject")
		verbose      = flag.Bool("v", false, "Verbose output")
		showVersion  = flag.Bool("version", false, "Show version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersionString())
		os.Exit(0)
	}

	if *binaryPath == "" {
		flag.Usage()
		log.Fatal("missing required -binary flag")
	}

	logger := newLogger(*verbose)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.AddNamespacePrefixes(utils.ParseCommaDelimited(*skipPrefixes))
	cfg.AddSubstringMarkers(utils.ParseCommaDelimited(*skipMarkers))

	abiSelector := *abiFlag
	if abiSelector == "" {
		abiSelector = cfg.DemanglerABI()
	}
	abi, err := engine.ParseABI(abiSelector)
	if err != nil {
		log.Fatalf("Invalid demangler ABI: %v", err)
	}

	eng, err := elfengine.Open(*binaryPath, abi, logger)
	if err != nil {
		log.Fatalf("Failed to analyze binary: %v", err)
	}

	builder := xref.NewBuilder(logger, cfg, eng)
	results := builder.Build()

	finalPath := *outputPath
	if finalPath == "" {
		finalPath = cfg.OutputPath()
	}
	if err := output.WriteFile(finalPath, results); err != nil {
		log.Fatalf("Failed to write xref data: %v", err)
	}

	stats := builder.Stats()
	vlog := utils.NewVerboseLogger(*verbose)
	vlog.Logf("Examined %d functions: %d records, %d skipped, %d collisions, %d errors\n",
		stats.FunctionsExamined, stats.RecordsEmitted, stats.Skipped, stats.Collisions, stats.Errors)

	if finalPath != "-" {
		fmt.Fprintf(os.Stderr, "Xref data successfully written to: %s\n", finalPath)
	}
}

// newLogger creates the diagnostic logger: stderr, so JSON on stdout stays
// clean, with a run ID so per-function diagnostics from one run correlate.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	return logger.With("run_id", ulid.Make().String())
}

// loadConfig loads an explicit config file when given, otherwise the
// embedded defaults with the usual local override probe.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.DefaultConfig()
}
