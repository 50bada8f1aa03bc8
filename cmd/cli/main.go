package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/himanishpuri/SeqSETI/pkg/logger"
	"github.com/himanishpuri/SeqSETI/pkg/models"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/ingest"
	"github.com/himanishpuri/SeqSETI/pkg/utils"
)

// Global flags
var (
	dbPath     string
	workers    int
	configPath string
)

func init() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	flag.StringVar(&dbPath, "db", getEnvOrDefault("SEQSETI_DB_PATH", "seqseti.sqlite3"), "Path to the SQLite database file")
	flag.IntVar(&workers, "workers", getEnvIntOrDefault("SEQSETI_WORKERS", runtime.NumCPU()), "Segments searched concurrently")
	flag.StringVar(&configPath, "config", os.Getenv("SEQSETI_CONFIG"), "Search configuration file (TOML)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// errUsage reports a malformed command line; usage has already been printed.
var errUsage = errors.New("invalid usage")

// createService creates a new SeqSETI service with configured options
func createService() (seqseti.Service, error) {
	return seqseti.NewService(
		seqseti.WithDBPath(dbPath),
		seqseti.WithWorkers(workers),
	)
}

var openService = createService

func loadConfig() (seqseti.SearchConfig, error) {
	if configPath == "" {
		return seqseti.DefaultSearchConfig(), nil
	}
	if !utils.FileExists(configPath) {
		return seqseti.SearchConfig{}, fmt.Errorf("config file not found: %s", configPath)
	}
	return seqseti.LoadSearchConfig(configPath)
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	printBanner()

	// exit only here so deferred Close calls in the handlers have run
	if err := run(flag.Args()); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Printf("❌ %v\n", err)
			logger.GetLogger().Errorf("%v", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		printUsage()
		return errUsage
	}

	command := args[0]
	logger.GetLogger().Infof("Executing command: %s", command)

	switch command {
	case "search":
		return handleSearch(args[1:])
	case "compare":
		return handleCompare(args[1:])
	case "list":
		return handleList()
	case "show":
		return handleShow(args[1:])
	case "delete":
		return handleDelete(args[1:])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		return errUsage
	}
}

func printBanner() {
	banner := `
  ____             ____  _____ _____ ___
 / ___|  ___  __ _/ ___|| ____|_   _|_ _|
 \___ \ / _ \/ _' \___ \|  _|   | |  | |
  ___) |  __/ (_| |___) | |___  | |  | |
 |____/ \___|\__, |____/|_____| |_| |___|
                |_|
      Sequence search over trigger catalogs
`
	fmt.Println(banner)
}

// splitArgs separates leading positional arguments from trailing flags.
func splitArgs(args []string) (positional, flags []string) {
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return positional, args[i:]
		}
		positional = append(positional, arg)
	}
	return positional, nil
}

func loadSegments(path, label string, cfg seqseti.SearchConfig) ([]seqseti.Segment, error) {
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("trigger file not found: %s", path)
	}
	triggers, err := ingest.Load(path, cfg.Columns())
	if err != nil {
		return nil, fmt.Errorf("failed to read triggers: %w", err)
	}
	segs, err := cfg.Segments.Apply(label, triggers)
	if err != nil {
		return nil, fmt.Errorf("failed to segment triggers: %w", err)
	}
	logger.GetLogger().Infof("Loaded %d triggers from %s into %d segment(s)", len(triggers), path, len(segs))
	return segs, nil
}

// parseFlags parses a subcommand's flags; the FlagSet prints its own error.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

func handleSearch(args []string) error {
	positional, flagArgs := splitArgs(args)

	searchCmd := flag.NewFlagSet("search", flag.ContinueOnError)
	label := searchCmd.String("label", "", "Segment label prefix (defaults to the file name)")
	fullSky := searchCmd.Bool("full-sky", false, "Ignore sky position when pairing triggers")
	parts := searchCmd.Int("parts", 0, "Split the catalog into N equal-count segments (overrides config)")
	if err := parseFlags(searchCmd, flagArgs); err != nil {
		return err
	}

	if len(positional) < 1 {
		fmt.Println("Usage: seqseti search <trigger_file> [--label <name>] [--full-sky] [--parts N]")
		return errUsage
	}
	path := positional[0]

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *fullSky {
		cfg.FullSky = true
	}
	if *parts > 0 {
		cfg.Segments.Parts = *parts
	}
	lcfg, err := cfg.Likelihood()
	if err != nil {
		return fmt.Errorf("invalid search configuration: %w", err)
	}
	if *label == "" {
		*label = utils.BaseName(path)
	}

	segs, err := loadSegments(path, *label, cfg)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		fmt.Println("\n📭 No segments left after filtering")
		return nil
	}

	fmt.Println("\n🔧 Initializing service...")
	svc, err := openService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	fmt.Printf("🔭 Searching %d segment(s) for %s sequences...\n", len(segs), lcfg.Sequence.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	start := time.Now()
	runs, err := svc.SearchSegments(ctx, segs, lcfg)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("\n✅ Searched %d segment(s) in %s\n\n", len(runs), time.Since(start).Round(time.Millisecond))
	for i, run := range runs {
		printRun(i+1, run)
	}
	return nil
}

func handleCompare(args []string) error {
	compareCmd := flag.NewFlagSet("compare", flag.ContinueOnError)
	fgPath := compareCmd.String("foreground", "", "Foreground trigger file (required)")
	bgPath := compareCmd.String("background", "", "Background trigger file (required)")
	if err := parseFlags(compareCmd, args); err != nil {
		return err
	}

	if *fgPath == "" || *bgPath == "" {
		fmt.Println("Usage: seqseti compare --foreground <file> --background <file>")
		return errUsage
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lcfg, err := cfg.Likelihood()
	if err != nil {
		return fmt.Errorf("invalid search configuration: %w", err)
	}

	fg, err := loadSegments(*fgPath, "foreground", cfg)
	if err != nil {
		return fmt.Errorf("foreground: %w", err)
	}
	bg, err := loadSegments(*bgPath, "background", cfg)
	if err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if len(fg) == 0 || len(bg) == 0 {
		return errors.New("need at least one foreground and one background segment")
	}
	if len(fg) > 1 {
		fmt.Printf("⚠️  Foreground split into %d segments, comparing the first\n", len(fg))
	}

	fmt.Println("\n🔧 Initializing service...")
	svc, err := openService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	fmt.Printf("🔭 Searching %d background segment(s) and the foreground...\n", len(bg))

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Hour)
	defer cancel()

	cmp, err := svc.Compare(ctx, fg[0], bg, lcfg)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	s := cmp.Summary
	fmt.Println("\n📊 Background maxima:")
	fmt.Printf("   Segments: %d\n", s.Count)
	fmt.Printf("   Mean:     %.4f ± %.4f\n", s.Mean, s.StdDev)
	fmt.Printf("   Median:   %.4f\n", s.Median)
	fmt.Printf("   P90/P99:  %.4f / %.4f\n", s.P90, s.P99)
	fmt.Printf("   Range:    %.4f .. %.4f\n", s.Min, s.Max)
	fmt.Println("\n🎯 Foreground:")
	printRun(1, cmp.Foreground)
	fmt.Printf("False alarm probability: %.4f\n", cmp.FalseAlarmProbability)
	return nil
}

func handleList() error {
	log := logger.GetLogger()

	svc, err := openService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	runs, err := svc.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("\n📭 No runs in database")
		log.Info("No runs in database")
		return nil
	}

	fmt.Printf("\n📚 Found %d run(s):\n\n", len(runs))
	for i, run := range runs {
		printRun(i+1, run)
	}
	log.Infof("Listed %d runs", len(runs))
	return nil
}

func handleShow(args []string) error {
	positional, flagArgs := splitArgs(args)

	showCmd := flag.NewFlagSet("show", flag.ContinueOnError)
	top := showCmd.Int("top", 10, "Number of highest-scoring records to print (0 prints all)")
	if err := parseFlags(showCmd, flagArgs); err != nil {
		return err
	}

	if len(positional) < 1 {
		fmt.Println("Usage: seqseti show <run_id> [--top N]")
		return errUsage
	}
	runID := positional[0]
	if !utils.IsUUID(runID) {
		return fmt.Errorf("invalid run ID: %q is not a UUID", runID)
	}

	svc, err := openService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	run, err := svc.GetRun(runID)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	var records []models.Record
	if *top > 0 {
		records, err = svc.TopRecords(runID, *top)
	} else {
		records, err = svc.GetRecords(runID)
	}
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	fmt.Println()
	printRun(1, *run)
	fmt.Printf("   Config:  %s, maxSeq %d, window %.1fs", run.Search.Sequence, run.Search.MaxSeq, run.Search.TimeWindow)
	if run.Search.FullSky {
		fmt.Println(", full sky")
	} else {
		fmt.Printf(", within %.1f°\n", run.Search.DistanceDeg)
	}
	if len(records) == 0 {
		fmt.Println("\n📭 No records")
		return nil
	}

	fmt.Printf("\n%-12s %6s %6s %5s %5s %4s %7s %s\n", "statistic", "i", "j", "start", "end", "len", "matched", "separation")
	for _, r := range records {
		mark := ""
		if r.Flag {
			mark = " *"
		}
		fmt.Printf("%-12.4f %6d %6d %5d %5d %4d %7d %.1fs%s\n",
			r.Statistic, r.I, r.J, r.SeqStart, r.SeqEnd, r.SeqLength, r.Matched, r.Separation, mark)
	}
	return nil
}

func handleDelete(args []string) error {
	log := logger.GetLogger()

	if len(args) < 1 {
		fmt.Println("Usage: seqseti delete <run_id>")
		return errUsage
	}
	runID := args[0]
	if !utils.IsUUID(runID) {
		return fmt.Errorf("invalid run ID: %q is not a UUID", runID)
	}

	svc, err := openService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	// Get run info before deletion
	run, err := svc.GetRun(runID)
	if err != nil {
		log.Warnf("Run %s not found: %v", runID, err)
		return fmt.Errorf("run %s: %w", runID, err)
	}

	if err := svc.DeleteRun(runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	fmt.Printf("\n✅ Successfully deleted run:\n")
	fmt.Printf("   ID:      %s\n", run.ID)
	fmt.Printf("   Label:   %s\n", run.Label)
	fmt.Printf("   Records: %d\n", run.Records)
	log.Infof("Deleted run %s (%s)", run.ID, run.Label)
	return nil
}

func printRun(n int, run models.Run) {
	fmt.Printf("%d. %s (ID: %s)\n", n, run.Label, run.ID)
	fmt.Printf("   Max: %.4f | Records: %d | Matched: %d | Triggers: %d\n",
		run.Max, run.Records, run.Matches, run.Triggers)
	fmt.Printf("   Span: %.2f days | Min delta: %.1fs | %s\n",
		run.TotalTime/86400, run.MinDelta, run.CreatedAt.Local().Format(time.DateTime))
	fmt.Println()
}

func printUsage() {
	fmt.Println("SeqSETI - sequence search CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>        Path to SQLite database (env: SEQSETI_DB_PATH, default: seqseti.sqlite3)")
	fmt.Println("  --workers <n>      Segments searched concurrently (env: SEQSETI_WORKERS, default: CPU count)")
	fmt.Println("  --config <file>    TOML search configuration (env: SEQSETI_CONFIG)")
	fmt.Println("\nUsage:")
	fmt.Println("  seqseti [global-options] search <trigger_file> [--label <name>] [--full-sky] [--parts N]")
	fmt.Println("  seqseti [global-options] compare --foreground <file> --background <file>")
	fmt.Println("  seqseti [global-options] list")
	fmt.Println("  seqseti [global-options] show <run_id> [--top N]")
	fmt.Println("  seqseti [global-options] delete <run_id>")
	fmt.Println("\nTrigger files are CSV or XLSX with a header row (time0, phi0, theta0, phi2, theta2, ...).")
	fmt.Println("\nExamples:")
	fmt.Println("  # Search a catalog for prime sequences")
	fmt.Println("  seqseti --config search.toml search triggers.csv")
	fmt.Println()
	fmt.Println("  # Rank an on-source segment against shuffled background")
	fmt.Println("  seqseti compare --foreground onsource.xlsx --background offsource.xlsx")
}
