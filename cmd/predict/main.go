// Command predict runs batch age group predictions from the command line:
// over a CSV file, a SQLite query, or a watched drop folder.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"agegroup/config"
	"agegroup/db"
	"agegroup/logging"
	"agegroup/ml"
	"agegroup/pipeline"
	"agegroup/survey"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional config file; flags override it")
		modelPath  = flag.String("model", "", "model artifact path")
		modelType  = flag.String("model-type", "", "decision_tree or random_forest")
		in         = flag.String("in", "", "input CSV file (- for stdin)")
		sqlitePath = flag.String("sqlite", "", "read the batch from this SQLite database")
		query      = flag.String("query", "", "SQL query selecting the batch when -sqlite is set")
		out        = flag.String("out", "-", "output CSV file (- for stdout)")
		watchDir   = flag.String("watch", "", "watch this directory for CSV files")
		outDir     = flag.String("out-dir", "", "where -watch writes results (defaults to the watched directory)")
		encoding   = flag.String("encoding", "", "input encoding: utf-8, utf-16, gbk, latin1, windows-1252")
		strict     = flag.Bool("strict", false, "reject rows with out of range values")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *modelPath != "" {
		cfg.Model.Path = *modelPath
	}
	if *modelType != "" {
		cfg.Model.Type = *modelType
	}
	if *strict {
		cfg.Validation.StrictBatch = true
	}
	cfg.Log.Format = "console"

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	model, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path, survey.RequiredColumns())
	if err != nil {
		logger.Fatal("failed to load model", zap.String("path", cfg.Model.Path), zap.Error(err))
	}

	opts := pipeline.BatchOptions{
		Encoding:  *encoding,
		Normalize: survey.NormalizeOptions{StrictRanges: cfg.Validation.StrictBatch},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *watchDir != "":
		inbox := pipeline.NewInbox(pipeline.InboxConfig{Dir: *watchDir, OutDir: *outDir, Options: opts}, model, logger)
		err = inbox.Run(ctx)
	case *sqlitePath != "":
		err = predictSQLite(ctx, model, *sqlitePath, *query, *out, opts)
	case *in != "":
		err = predictCSV(model, *in, *out, opts)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("prediction failed", zap.Error(err))
		os.Exit(1)
	}
}

func predictCSV(model ml.Classifier, in, out string, opts pipeline.BatchOptions) error {
	if in != "-" && out != "-" {
		_, err := pipeline.PredictFile(model, in, out, opts)
		return err
	}
	var src io.Reader = os.Stdin
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	table, err := survey.ReadCSV(src, opts.Encoding)
	if err != nil {
		return err
	}
	return writeTable(model, table, out, opts)
}

func predictSQLite(ctx context.Context, model ml.Classifier, path, query, out string, opts pipeline.BatchOptions) error {
	if query == "" {
		return fmt.Errorf("-query is required with -sqlite")
	}
	database, err := db.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()

	table, err := db.QueryTable(ctx, database, query)
	if err != nil {
		return err
	}
	return writeTable(model, table, out, opts)
}

// writeTable predicts table before opening out, so a rejected batch never
// creates or truncates the output file.
func writeTable(model ml.Classifier, table *survey.Table, out string, opts pipeline.BatchOptions) error {
	if out == "-" {
		_, err := pipeline.PredictTableTo(model, table, os.Stdout, opts)
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(out), ".predict-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	_, err = pipeline.PredictTableTo(model, table, tmp, opts)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), out)
}
