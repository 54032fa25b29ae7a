package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"adversa/internal/storage"
	advapi "adversa/pkg/adversa"
)

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "attack":
		return runAttack(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "classifiers":
		return runClassifiers(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: adversactl <init|attack|runs|export|classifiers> [flags]", msg)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient(storeKind, dbPath, runsDir string) (*advapi.Client, error) {
	return advapi.New(advapi.Options{
		StoreKind: storeKind,
		DBPath:    dbPath,
		RunsDir:   runsDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", envOr("ADVERSA_STORE", storage.DefaultStoreKind()), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", envOr("ADVERSA_DB", "adversa.db"), "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runAttack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("attack", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON attack config file")
	storeKind := fs.String("store", envOr("ADVERSA_STORE", storage.DefaultStoreKind()), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", envOr("ADVERSA_DB", "adversa.db"), "sqlite database path")
	runsDir := fs.String("runs-dir", envOr("ADVERSA_RUNS_DIR", "runs"), "run artifacts directory")
	classifierName := fs.String("classifier", "", "registered classifier name or http(s) service URL")
	goal := fs.String("goal", "", "attack goal: ut|t|tm")
	metric := fs.String("metric", "", "distance metric: l2|linf")
	eps := fs.Float64("eps", 0, "max distortion magnitude")
	sigma := fs.Float64("sigma", 0, "search distribution stddev")
	lr := fs.Float64("lr", 0, "initial learning rate")
	minLR := fs.Float64("min-lr", 0, "learning rate floor")
	lrTuning := fs.Bool("lr-tuning", false, "enable plateau learning-rate decay")
	plateau := fs.Int("plateau", 0, "plateau window length")
	samples := fs.Int("samples", 0, "scoring queries per gradient draw")
	maxQueries := fs.Int("max-queries", 0, "total query budget")
	seed := fs.Int64("seed", 0, "random seed")
	label := fs.Int("label", 0, "true label of the input")
	targetLabel := fs.Int("target", 0, "target label for targeted goals")
	inputInline := fs.String("input", "", "input vector as JSON array")
	inputFile := fs.String("input-file", "", "file holding the input vector as JSON array")
	verbose := fs.Bool("verbose", false, "log per-iteration progress")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := loadOrDefaultAttackRequest(*configPath)
	if err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if err := overrideFromFlags(&req, set, map[string]any{
		"classifier":  *classifierName,
		"goal":        *goal,
		"metric":      *metric,
		"eps":         *eps,
		"sigma":       *sigma,
		"lr":          *lr,
		"min-lr":      *minLR,
		"lr-tuning":   *lrTuning,
		"plateau":     *plateau,
		"samples":     *samples,
		"max-queries": *maxQueries,
		"seed":        *seed,
		"label":       *label,
		"target":      *targetLabel,
	}); err != nil {
		return err
	}
	if set["input"] {
		vec, err := parseInputVector(*inputInline)
		if err != nil {
			return err
		}
		req.Input = vec
	} else if set["input-file"] {
		vec, err := readInputVector(*inputFile)
		if err != nil {
			return err
		}
		req.Input = vec
	}
	req.Verbose = req.Verbose || *verbose

	client, err := newClient(*storeKind, *dbPath, *runsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if req.Verbose {
		logrus.SetLevel(logrus.InfoLevel)
	}

	summary, err := client.Attack(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %s\n", summary.RunID, summary.Status)
	fmt.Printf("  queries used:   %s\n", humanize.Comma(int64(summary.QueriesUsed)))
	fmt.Printf("  final label:    %d\n", summary.FinalLabel)
	fmt.Printf("  l2 distortion:  %.6f\n", summary.L2Distortion)
	fmt.Printf("  max distortion: %.6f\n", summary.MaxDistortion)
	fmt.Printf("  artifacts:      %s\n", summary.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", envOr("ADVERSA_STORE", storage.DefaultStoreKind()), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", envOr("ADVERSA_DB", "adversa.db"), "sqlite database path")
	limit := fs.Int("limit", 20, "max runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, advapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, item := range items {
		status := "exhausted"
		if item.Succeeded {
			status = "succeeded"
		}
		fmt.Printf("%s  %s  classifier=%s goal=%s metric=%s queries=%s l2=%.4f %s\n",
			item.RunID, item.CreatedAtUTC, item.Classifier, item.Goal, item.Metric,
			humanize.Comma(int64(item.QueriesUsed)), item.L2Distortion, status)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runsDir := fs.String("runs-dir", envOr("ADVERSA_RUNS_DIR", "runs"), "run artifacts directory")
	runID := fs.String("run-id", "", "run to export")
	outDir := fs.String("out", "exports", "destination directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("export requires -run-id")
	}

	client, err := newClient("", "", *runsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, advapi.ExportRequest{RunID: *runID, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Printf("exported run %s to %s\n", summary.RunID, summary.Directory)
	return nil
}

func runClassifiers(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("classifiers", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient("", "", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	for _, name := range client.Classifiers() {
		fmt.Println(name)
	}
	return nil
}
