package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/batch"
	"github.com/dvloznov/hcstc-decisioning/internal/bootstrap"
	"github.com/dvloznov/hcstc-decisioning/internal/config"
	"github.com/dvloznov/hcstc-decisioning/internal/gcs"
	"github.com/dvloznov/hcstc-decisioning/internal/gcsuploader"
	"github.com/dvloznov/hcstc-decisioning/internal/ingest"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/dvloznov/hcstc-decisioning/internal/pipeline"
	"github.com/dvloznov/hcstc-decisioning/internal/report"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
	"github.com/rs/zerolog"
)

// source is where a single application is read from.
type source struct {
	file   string
	gcsURI string
}

func (s *source) register(fs *flag.FlagSet) {
	fs.StringVar(&s.file, "file", "", "Path to the application JSON ('-' for stdin)")
	fs.StringVar(&s.gcsURI, "gcs-uri", "", "GCS URI of the application JSON")
}

func (s source) validate() error {
	switch {
	case s.file == "" && s.gcsURI == "":
		return errors.New("one of -file or -gcs-uri is required")
	case s.file != "" && s.gcsURI != "":
		return errors.New("-file and -gcs-uri are mutually exclusive")
	case s.gcsURI != "" && !strings.HasPrefix(s.gcsURI, "gs://"):
		return fmt.Errorf("invalid GCS URI %q", s.gcsURI)
	}
	return nil
}

// name labels the application when its payload carries no id.
func (s source) name() string {
	switch {
	case s.gcsURI != "":
		return stem(gcsuploader.ExtractFilenameFromGCSURI(s.gcsURI))
	case s.file != "-":
		return stem(s.file)
	}
	return ""
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// read returns the raw payload. storage is only needed for GCS sources.
func (s source) read(ctx context.Context, stdin io.Reader, storage gcs.StorageService) ([]byte, error) {
	switch {
	case s.gcsURI != "":
		if storage == nil {
			return nil, fmt.Errorf("reading %s: %w: storage", s.gcsURI, pipeline.ErrMissingCapability)
		}
		return storage.FetchFromGCS(ctx, s.gcsURI)
	case s.file == "-":
		return io.ReadAll(stdin)
	default:
		return os.ReadFile(s.file)
	}
}

// decide parses raw, naming it after the source when it has no id.
func decide(ctx context.Context, p *pipeline.Pipeline, raw []byte, name string) (*pipeline.DecisionState, error) {
	app, err := ingest.ParseApplicationWithFallbackID(raw, name)
	if err != nil {
		return nil, err
	}
	return p.Decide(ctx, app)
}

// storageFor returns the configured GCS client or, for an explicit gs://
// source, a new one.
func storageFor(ctx context.Context, log zerolog.Logger, svc *bootstrap.Services, src source) gcs.StorageService {
	if svc.Storage != nil {
		return svc.Storage
	}
	if src.gcsURI == "" {
		return nil
	}
	storage, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS client")
	}
	return storage
}

// scoreOne runs a single application through the pipeline and exits on
// failure.
func scoreOne(ctx context.Context, log zerolog.Logger, svc *bootstrap.Services, src source) *pipeline.DecisionState {
	raw, err := src.read(ctx, os.Stdin, storageFor(ctx, log, svc, src))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read application")
	}
	state, err := decide(ctx, svc.Pipeline(), raw, src.name())
	if err != nil {
		log.Fatal().Err(err).Str("tag", string(batch.Classify(err))).Msg("Scoring failed")
	}
	return state
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runScore(log zerolog.Logger, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	var src source
	src.register(fs)
	persist := fs.Bool("persist", false, "Store the decision in BigQuery (needs PERSIST_DECISIONS)")
	fs.Parse(args)

	if err := src.validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid arguments")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Batch.ApplicationTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc := services(ctx, log, cfg, bootstrap.Options{SkipPersist: !*persist})
	defer svc.Close()

	state := scoreOne(ctx, log, svc, src)

	if err := writeJSON(os.Stdout, report.NewDecisionView(state)); err != nil {
		log.Fatal().Err(err).Msg("Failed to write decision")
	}
}

func runReport(log zerolog.Logger, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	var src source
	src.register(fs)
	fs.Parse(args)

	if err := src.validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid arguments")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Batch.ApplicationTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc := services(ctx, log, cfg, bootstrap.Options{SkipPersist: true})
	defer svc.Close()

	report.WriteDecision(os.Stdout, scoreOne(ctx, log, svc, src))
}

// batchOutput is the JSON form of a batch run.
type batchOutput struct {
	Decisions []report.DecisionView `json:"decisions"`
	Errors    []batchError          `json:"errors"`
	Stats     batchStats            `json:"stats"`
}

type batchError struct {
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type batchStats struct {
	Total          int            `json:"total"`
	Succeeded      int            `json:"succeeded"`
	Failed         int            `json:"failed"`
	SuccessRate    float64        `json:"success_rate"`
	AverageScore   float64        `json:"average_score"`
	DecisionCounts map[string]int `json:"decision_counts"`
	ElapsedMS      int64          `json:"elapsed_ms"`
}

func newBatchOutput(rep batch.Report) batchOutput {
	out := batchOutput{
		Decisions: []report.DecisionView{},
		Errors:    []batchError{},
		Stats: batchStats{
			Total:          rep.Stats.Total,
			Succeeded:      rep.Stats.Succeeded,
			Failed:         rep.Stats.Failed,
			SuccessRate:    rep.Stats.SuccessRate,
			AverageScore:   rep.Stats.AverageScore,
			DecisionCounts: make(map[string]int),
			ElapsedMS:      rep.Elapsed.Milliseconds(),
		},
	}
	for _, o := range rep.Outcomes {
		if o.State != nil {
			out.Decisions = append(out.Decisions, report.NewDecisionView(o.State))
		}
	}
	for _, f := range rep.Errors {
		out.Errors = append(out.Errors, batchError{Name: f.Name, Tag: string(f.Tag), Message: f.Message})
	}
	for d, n := range rep.DecisionCounts {
		out.Stats.DecisionCounts[string(d)] = n
	}
	return out
}

func runBatch(log zerolog.Logger, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	workers := fs.Int("workers", cfg.Batch.Workers, "Concurrent applications")
	timeout := fs.Duration("timeout", cfg.Batch.ApplicationTimeout, "Time limit per application")
	amount := fs.Float64("amount", 0, "Override the requested amount of every application")
	term := fs.Int("term", 0, "Override the requested term (months) of every application")
	asJSON := fs.Bool("json", false, "Write JSON instead of tables")
	persist := fs.Bool("persist", false, "Store decisions in BigQuery (needs PERSIST_DECISIONS)")
	fs.Parse(args)

	if fs.NArg() == 0 {
		log.Fatal().Msg("Usage: cli batch [options] PATH...")
	}

	inputs, err := batch.LoadInputs(fs.Args())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load applications")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc := services(ctx, log, cfg, bootstrap.Options{SkipStorage: true, SkipPersist: !*persist})
	defer svc.Close()

	processor := batch.NewProcessor(func() (*pipeline.Pipeline, error) {
		return svc.Pipeline(), nil
	}, batch.Options{
		Workers: *workers,
		Timeout: *timeout,
		Amount:  *amount,
		Term:    *term,
	})

	log.Info().Int("applications", len(inputs)).Int("workers", *workers).Msg("Starting batch")
	rep := processor.Process(ctx, inputs)

	if *asJSON {
		if err := writeJSON(os.Stdout, newBatchOutput(rep)); err != nil {
			log.Fatal().Err(err).Msg("Failed to write batch report")
		}
	} else {
		report.WriteBatch(os.Stdout, rep)
	}

	if rep.Stats.Total > 0 && rep.Stats.Succeeded == 0 {
		os.Exit(1)
	}
}

func runChart(log zerolog.Logger, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	var src source
	src.register(fs)
	out := fs.String("out", "", "Output PNG path (defaults to <application>-balance.png)")
	fs.Parse(args)

	if err := src.validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid arguments")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Batch.ApplicationTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc := services(ctx, log, cfg, bootstrap.Options{SkipNarrative: true, SkipPersist: true})
	defer svc.Close()

	state := scoreOne(ctx, log, svc, src)

	path := *out
	if path == "" {
		path = state.Application.ID + "-balance.png"
	}

	var buf bytes.Buffer
	if err := report.RenderBalanceChart(&buf, chartTitle(state), state.Metrics.Balance.Daily); err != nil {
		log.Fatal().Err(err).Msg("Failed to render chart")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write chart")
	}

	fmt.Printf("Wrote %s\n", path)
}

func chartTitle(state *pipeline.DecisionState) string {
	return fmt.Sprintf("%s: %s (%.0f)", state.Application.ID, state.Result.Decision, state.Result.Score)
}

// artefact is one file of a published report.
type artefact struct {
	name        string
	contentType string
	data        []byte
}

// reportArtefacts renders the text report, the JSON view and, when the
// balance history allows, the chart.
func reportArtefacts(state *pipeline.DecisionState) ([]artefact, error) {
	var text bytes.Buffer
	report.WriteDecision(&text, state)

	var view bytes.Buffer
	if err := writeJSON(&view, report.NewDecisionView(state)); err != nil {
		return nil, err
	}

	artefacts := []artefact{
		{name: "report.txt", contentType: "text/plain; charset=utf-8", data: text.Bytes()},
		{name: "decision.json", contentType: "application/json", data: view.Bytes()},
	}

	var chart bytes.Buffer
	err := report.RenderBalanceChart(&chart, chartTitle(state), state.Metrics.Balance.Daily)
	switch {
	case err == nil:
		artefacts = append(artefacts, artefact{name: "balance.png", contentType: "image/png", data: chart.Bytes()})
	case !errors.Is(err, report.ErrNotEnoughData):
		return nil, err
	}
	return artefacts, nil
}

func runPublishReport(log zerolog.Logger, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("publish-report", flag.ExitOnError)
	var src source
	src.register(fs)
	bucket := fs.String("bucket", cfg.GCP.Bucket, "GCS bucket (or set GCS_BUCKET env)")
	prefix := fs.String("prefix", cfg.GCP.ReportPrefix, "Object prefix for reports")
	fs.Parse(args)

	if err := src.validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid arguments")
	}
	if *bucket == "" {
		log.Fatal().Msg("Error: -bucket or GCS_BUCKET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc := services(ctx, log, cfg, bootstrap.Options{SkipStorage: true})
	defer svc.Close()

	storage, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS client")
	}
	// Closed with svc.
	svc.Storage = storage

	state := scoreOne(ctx, log, svc, src)

	artefacts, err := reportArtefacts(state)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render report")
	}

	day := time.Now().UTC()
	for _, a := range artefacts {
		object := gcsuploader.ReportObjectName(*prefix, state.Application.ID, day, a.name)
		uri, err := storage.UploadBytes(ctx, *bucket, object, a.contentType, a.data)
		if err != nil {
			log.Fatal().Err(err).Str("object", object).Msg("Upload failed")
		}
		fmt.Println(uri)
	}
}

func runUpload(log zerolog.Logger, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", cfg.GCP.Bucket, "GCS bucket name (or set GCS_BUCKET env)")
	objectName := fs.String("object", "", "GCS object name (defaults to applications/<filename>)")
	filePath := fs.String("file", "", "Path to local application JSON")
	fs.Parse(args)

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = "applications/" + filepath.Base(*filePath)
	}

	ctx := logger.WithContext(context.Background(), log)

	storage, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS client")
	}
	defer storage.Close()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := storage.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

func runValidateConfig(log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("validate-config", flag.ExitOnError)
	path := fs.String("path", os.Getenv("SCORING_CONFIG_PATH"), "Scoring rules YAML (or set SCORING_CONFIG_PATH env)")
	fs.Parse(args)

	if *path == "" {
		log.Fatal().Msg("Usage: cli validate-config -path FILE")
	}

	cfg, err := scoring.LoadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("%s is valid\n", *path)
	fmt.Printf("  max score:  %.0f\n", cfg.MaxScore)
	fmt.Printf("  bands:      approve >= %.0f, refer >= %.0f, low risk >= %.0f\n", cfg.Bands.Approve, cfg.Bands.Refer, cfg.Bands.LowRisk)
	fmt.Printf("  product:    £%.0f-£%.0f over %v months\n", cfg.Product.MinAmount, cfg.Product.MaxAmount, cfg.Product.Terms)
}
