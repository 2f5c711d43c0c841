package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/handiism/emoji-kitchen-dl/internal/config"
	"github.com/handiism/emoji-kitchen-dl/internal/download"
	fetch "github.com/handiism/emoji-kitchen-dl/internal/http"
	"github.com/handiism/emoji-kitchen-dl/internal/metrics"
	"github.com/handiism/emoji-kitchen-dl/internal/model"
	"github.com/handiism/emoji-kitchen-dl/internal/pairs"
	"github.com/handiism/emoji-kitchen-dl/internal/report"
	"github.com/handiism/emoji-kitchen-dl/internal/resultlog"
	"github.com/handiism/emoji-kitchen-dl/internal/storage"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	os.Exit(run())
}

// run executes the command and returns the process exit status. Deferred
// cleanup runs before main exits.
func run() int {
	// Command line flags
	var (
		pairFlag        = flag.String("pair", "", "Single pair to download, e.g. \"😀+😎\"")
		emojisFlag      = flag.String("emojis", "", "Emojis to combine; every ordered pair is downloaded")
		pairsFileFlag   = flag.String("pairs-file", "", "File with one \"emoji1 emoji2\" pair per line")
		top100Flag      = flag.Bool("top100", false, "Download every combination of the built-in top 100 emojis")
		sizeFlag        = flag.Int("size", 0, "Image size in pixels (overrides config)")
		outputFlag      = flag.String("output", "", "Output directory (overrides config)")
		logsFlag        = flag.String("logs", "", "Log directory (overrides config)")
		configFlag      = flag.String("config", "", "Path to config file")
		saveConfigFlag  = flag.String("save-config", "", "Write the effective config to this path and exit")
		formatFlag      = flag.String("format", "", "Filename format: emoji, codepoint or auto")
		concurrencyFlag = flag.Int("concurrency", 0, "Maximum concurrent requests")
		delayFlag       = flag.Int("delay", -1, "Delay before each request in milliseconds")
		retriesFlag     = flag.Int("retries", -1, "Retries for server and network errors")
		windowFlag      = flag.Int("window", 0, "Pairs scheduled together")
		thresholdFlag   = flag.Float64("threshold", -1, "Minimum success rate in percent for exit status 0")
		skipFlag        = flag.Bool("skip-existing", true, "Skip pairs already on disk")
		normalizeFlag   = flag.Bool("normalize", false, "Rescale images that are not size x size")
		verifyFlag      = flag.Bool("verify", false, "Reject responses that are not images")
		metricsFlag     = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
		verboseFlag     = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *pairFlag == "" && *emojisFlag == "" && *pairsFileFlag == "" && !*top100Flag && flag.NArg() == 0 && *saveConfigFlag == "" {
		fmt.Println("Emoji Kitchen Downloader - Download emoji combinations")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  emoji-dl -pair \"😀+😎\" [options]")
		fmt.Println("  emoji-dl -emojis \"😀 😎 🐶\" [options]")
		fmt.Println("  emoji-dl -pairs-file pairs.txt [options]")
		fmt.Println("  emoji-dl -top100 [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: emoji-tui")
		fmt.Println()
		flag.PrintDefaults()
		return 1
	}

	// Optional .env next to the working directory
	_ = godotenv.Load()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return 1
		}
	}
	if err := settings.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		return 1
	}

	// Apply flags
	if *sizeFlag > 0 {
		settings.Size = *sizeFlag
	}
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *logsFlag != "" {
		settings.LogDir = *logsFlag
	}
	if *formatFlag != "" {
		settings.FilenameFormat = strings.ToLower(*formatFlag)
	}
	if *concurrencyFlag > 0 {
		settings.MaxConcurrent = *concurrencyFlag
	}
	if *delayFlag >= 0 {
		settings.DelayMs = *delayFlag
	}
	if *retriesFlag >= 0 {
		settings.MaxRetries = *retriesFlag
	}
	if *windowFlag > 0 {
		settings.WindowSize = *windowFlag
	}
	if *thresholdFlag >= 0 {
		settings.SuccessThreshold = *thresholdFlag
	}
	if set["skip-existing"] {
		settings.SkipExisting = *skipFlag
	}
	if set["normalize"] {
		settings.Normalize = *normalizeFlag
	}
	if set["verify"] {
		settings.VerifyContent = *verifyFlag
	}
	if *metricsFlag != "" {
		settings.MetricsAddr = *metricsFlag
	}
	if *verboseFlag {
		settings.LogLevel = "debug"
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	if *saveConfigFlag != "" {
		if err := settings.Save(*saveConfigFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			return 1
		}
		fmt.Printf("Config written to %s\n", *saveConfigFlag)
		return 0
	}

	batch, err := collectPairs(*pairFlag, *emojisFlag, *pairsFileFlag, *top100Flag, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading pairs: %v\n", err)
		return 1
	}
	if len(batch) == 0 {
		fmt.Fprintln(os.Stderr, "No pairs to download")
		return 1
	}

	disk, err := storage.Preflight(settings.OutputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Result logs
	logOpts := resultlog.Options{MaxDebugSizeMB: settings.MaxDebugLogMB}
	if *verboseFlag {
		logOpts.Console = os.Stderr
		logOpts.ConsoleLevel = settings.Level()
	}
	results, err := resultlog.Open(settings.LogDir, "", logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening logs: %v\n", err)
		return 1
	}
	logger := results.Log()

	if disk.Known {
		logger.Info("output filesystem", "path", disk.Path, "free_mb", disk.Free/1024/1024, "used_percent", disk.UsedPercent)
	}

	store, err := storage.New(settings.OutputDir, settings.Format(), logger)
	if err != nil {
		results.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Metrics
	if settings.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics.Register(reg)
		srv := &http.Server{Addr: settings.MetricsAddr, Handler: metrics.NewRouter(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "addr", settings.MetricsAddr, "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\nInterrupted, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	client := fetch.NewClient(settings.ToClientConfig(), logger)
	orch := download.New(client, store, results, settings.ToDownloadOptions(), func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "❌ "
		case download.LevelWarning:
			prefix = "⚠️  "
		case download.LevelSuccess:
			prefix = "✅ "
		case download.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	})

	fmt.Println("🍳 Emoji Kitchen Downloader")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Pairs: %d | Size: %dpx | Concurrency: %d | Format: %s\n",
		len(batch), settings.Size, settings.MaxConcurrent, store.Format())
	fmt.Printf("Output: %s | Session: %s\n", store.Root(), results.SessionID())
	fmt.Println()

	stopTicker := reportProgress(orch, 5*time.Second)
	stats, runErr := orch.DownloadBatch(ctx, batch, settings.Size)
	stopTicker()

	if err := results.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing summary: %v\n", err)
	}

	summary := results.Summary()
	fmt.Println()
	fmt.Println(report.Summary(stats))
	report.WriteBreakdown(os.Stdout, summary)
	report.WriteFailures(os.Stdout, results.Failures(), report.DefaultFailureLimit)
	report.WriteLogFiles(os.Stdout, summary, results.SummaryPath())
	fmt.Println(report.Verdict(stats, settings.SuccessThreshold))

	cancelled := runErr != nil && ctx.Err() != nil
	if cancelled {
		fmt.Println("\nDownload cancelled.")
	}
	return exitCode(stats, settings.SuccessThreshold, cancelled)
}

// exitCode maps a finished run to the process exit status: 130 when the run
// was interrupted, 1 when the success rate is below threshold, 0 otherwise.
func exitCode(stats download.Stats, threshold float64, cancelled bool) int {
	switch {
	case cancelled:
		return 130
	case !report.Passed(stats, threshold):
		return 1
	default:
		return 0
	}
}

// collectPairs merges every pair source into one list without repeats.
func collectPairs(pair, emojis, pairsFile string, top100 bool, args []string) ([]model.Pair, error) {
	var out []model.Pair

	for _, s := range append([]string{pair}, args...) {
		if s == "" {
			continue
		}
		p, err := pairs.ParsePair(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	if emojis != "" {
		out = append(out, pairs.Product(strings.Fields(emojis))...)
	}

	if pairsFile != "" {
		f, err := os.Open(pairsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		fromFile, err := pairs.Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, fromFile...)
	}

	if top100 {
		out = append(out, pairs.Product(pairs.Top100)...)
	}

	return pairs.Unique(out), nil
}

// reportProgress prints the pair counter every interval until stopped.
func reportProgress(orch *download.Orchestrator, interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				n, total := orch.Progress()
				if total > 0 {
					fmt.Printf("   %d/%d pairs (%.0f%%)\n", n, total, float64(n)/float64(total)*100)
				}
			}
		}
	}()
	return func() { close(done) }
}
