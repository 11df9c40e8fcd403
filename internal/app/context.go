package app

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/tunein/go-logging/v7/pkg/logger"
	"github.com/tunein/go-logging/v7/pkg/logger/logtypes"
	"github.com/tunein/go-logging/v7/pkg/rootcollector"
	"github.com/tunein/go-logging/v7/pkg/rootlogger"

	"github.com/RyanBlaney/phase-pitch/configs"
	"github.com/RyanBlaney/phase-pitch/internal/benchmark"
	"github.com/RyanBlaney/phase-pitch/internal/estimation"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	JobsFile     string   // Jobs file (optional when Locations are given)
	Locations    []string // Ad hoc locations
	OutputFile   string
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
	Jobs   *estimation.JobsConfig
}

// PitchApp handles the application lifecycle
type PitchApp struct {
	ctx    *Context
	config *configs.Config
	jobs   *estimation.JobsConfig
	logger logging.Logger
}

// NewPitchApp creates a new application
func NewPitchApp(ctx *Context) (*PitchApp, error) {
	logger := setupLogging(ctx)
	ctx.Logger = logger

	config, jobs, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config
	ctx.Jobs = jobs

	if config.LogFile != "" {
		configureLogSink(config.LogFile)
	}

	fields := logging.Fields{
		"jobs_file":     ctx.JobsFile,
		"locations":     len(ctx.Locations),
		"output_format": ctx.OutputFormat,
		"preset":        config.Pitch.Preset,
	}
	if jobs != nil {
		fields["enabled_jobs"] = len(jobs.GetEnabledJobs())
	}
	logger.Debug("Pitch application initialized", fields)

	return &PitchApp{
		ctx:    ctx,
		config: config,
		jobs:   jobs,
		logger: logger,
	}, nil
}

// Config returns the merged configuration
func (app *PitchApp) Config() *configs.Config {
	return app.config
}

// Run estimates every job or location and writes the results
func (app *PitchApp) Run(ctx context.Context) error {
	orchestrator, err := benchmark.NewOrchestrator(app.config, app.jobs, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	var summary *estimation.Summary
	if app.jobs != nil {
		summary, err = orchestrator.RunJobs(ctx)
	} else {
		summary, err = orchestrator.RunLocations(ctx, app.ctx.Locations)
	}
	if err != nil {
		return fmt.Errorf("estimation failed: %w", err)
	}

	if err := app.outputResults(cleanSummary(summary, app.config.Output, app.config.Verbose)); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	app.collectResultMetrics(summary)

	if summary.Failed > 0 && summary.Successful == 0 {
		return fmt.Errorf("all estimation jobs failed")
	}

	return nil
}

// RunPruningBenchmark compares pruned and exhaustive scans of location
func (app *PitchApp) RunPruningBenchmark(ctx context.Context, location string, iterations int) (*benchmark.PruningComparison, error) {
	orchestrator, err := benchmark.NewOrchestrator(app.config, app.jobs, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	comparison, err := orchestrator.ComparePruning(ctx, location, iterations)
	if err != nil {
		return nil, fmt.Errorf("pruning benchmark failed: %w", err)
	}

	if err := app.outputResults(map[string]any{"pruning_benchmark": comparison}); err != nil {
		return nil, fmt.Errorf("failed to output results: %w", err)
	}

	return comparison, nil
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	return logging.WithFields(logging.Fields{
		"app": "phase-pitch",
	})
}

// configureLogSink sends rootlogger output to path, reopened on SIGHUP
func configureLogSink(path string) {
	err := rootlogger.Configure(logger.LogOptions{
		Out:          path,
		ReopenSignal: syscall.SIGHUP,
		Level:        logtypes.InfoLevel,
	})
	if err != nil {
		logging.Error(err, "Failed configuring log writer")
	}
}

// loadAndMergeConfig loads configuration from viper and the jobs file and
// merges CLI flags on top
func loadAndMergeConfig(ctx *Context) (*configs.Config, *estimation.JobsConfig, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load base configuration: %w", err)
	}

	mergeContext(config, ctx)

	if err := configs.ValidateConfig(config); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if ctx.JobsFile == "" {
		return config, nil, nil
	}

	jobs, err := LoadJobsConfigFromFile(ctx.JobsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load jobs configuration: %w", err)
	}

	for _, location := range ctx.Locations {
		if _, exists := jobs.Jobs[location]; !exists {
			jobs.Jobs[location] = estimation.NewJob(location)
		}
	}

	if err := jobs.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid jobs configuration: %w", err)
	}

	return config, jobs, nil
}

// mergeContext applies CLI overrides that are not bound to viper keys
func mergeContext(config *configs.Config, ctx *Context) {
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	} else {
		ctx.OutputFormat = config.OutputFormat
	}

	if ctx.Verbose {
		config.Verbose = true
	}
}

// outputResults formats data and writes it to the output file or stdout
func (app *PitchApp) outputResults(data map[string]any) error {
	if app.config.Output.Timestamps {
		data["timestamp"] = time.Now()
	}

	var formatter output.Formatter
	switch app.ctx.OutputFormat {
	case "json":
		formatter = &output.JSONFormatter{}
	case "yaml":
		formatter = &output.YAMLFormatter{}
	case "csv":
		formatter = &output.CSVFormatter{}
	case "table":
		formatter = &output.TableFormatter{}
	default:
		formatter = &output.JSONFormatter{}
	}

	formattedData, err := formatter.Format(data, true)
	if err != nil {
		// NaN and infinite values cannot be encoded; retry with them zeroed
		if strings.Contains(err.Error(), "unsupported value") {
			formattedData, err = formatter.Format(sanitizeForJSON(data), true)
		}
		if err != nil {
			return fmt.Errorf("failed to format output data: %w", err)
		}
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formattedData)
	}

	if app.ctx.Quiet {
		return nil
	}

	_, err = os.Stdout.Write(formattedData)
	return err
}

// collectResultMetrics sends per-job results to rootcollector
func (app *PitchApp) collectResultMetrics(summary *estimation.Summary) {
	if summary == nil || !app.config.Metrics.Enabled {
		return
	}

	prefix := app.config.Metrics.Prefix
	for name, m := range summary.Measurements {
		tags := append([]string{
			"job:" + name,
			"preset:" + app.config.Pitch.Preset,
		}, app.config.Metrics.Tags...)

		if m.Failed() {
			rootcollector.Metric(prefix+".failed", 1, tags)
			continue
		}

		if m.Note != nil {
			tags = append(tags, "note:"+m.Note.Name)
		}

		// integers only, so frequency is sent in millihertz
		rootcollector.Metric(prefix+".frequency.millihertz", int64(math.Round(m.Result.Frequency*1000)), tags)
		rootcollector.Metric(prefix+".phase", int64(m.Result.Phase), tags)
		rootcollector.Metric(prefix+".evaluations", m.Result.Evaluations, tags)
		rootcollector.Metric(prefix+".duration.milliseconds", m.TotalTime.Milliseconds(), tags)
	}

	app.logger.Debug("Result metrics sent", logging.Fields{
		"prefix":       prefix,
		"measurements": len(summary.Measurements),
	})
}

// cleanSummary reduces a summary to what the output formats need
func cleanSummary(summary *estimation.Summary, out configs.OutputConfig, verbose bool) map[string]any {
	measurements := make(map[string]any, len(summary.Measurements))
	for name, m := range summary.Measurements {
		measurements[name] = cleanMeasurement(m, out, verbose)
	}

	return map[string]any{
		"estimation_summary": map[string]any{
			"run_id":         summary.RunID,
			"start_time":     summary.StartTime,
			"end_time":       summary.EndTime,
			"total_duration": summary.TotalDuration.Seconds(),
			"successful":     summary.Successful,
			"failed":         summary.Failed,
			"evaluations":    summary.Evaluations,
			"statistics":     summary.Statistics,
			"measurements":   measurements,
		},
	}
}

// cleanMeasurement flattens one measurement, rounding to the output precision
func cleanMeasurement(m *estimation.Measurement, out configs.OutputConfig, verbose bool) map[string]any {
	clean := map[string]any{
		"location":      m.Job.Location,
		"total_time_ms": m.TotalTime.Milliseconds(),
	}

	if m.Failed() {
		clean["error"] = m.ErrorMessage
		return clean
	}

	clean["phase"] = m.Result.Phase
	clean["mean_phase"] = roundToDecimalPlaces(m.Result.MeanPhase, out.Precision)
	clean["frequency"] = roundToDecimalPlaces(m.Result.Frequency, out.Precision)
	clean["sample_rate"] = m.Result.SampleRate
	clean["evaluations"] = m.Result.Evaluations

	if m.Note != nil {
		clean["note"] = m.Note.Name
		clean["cents"] = roundToDecimalPlaces(m.Note.Cents, out.Precision)
	}

	if m.CrossCheck != nil {
		clean["cross_check"] = map[string]any{
			"frequency": roundToDecimalPlaces(m.CrossCheck.Frequency, out.Precision),
			"cents":     roundToDecimalPlaces(m.CrossCheck.Cents, out.Precision),
			"agrees":    m.CrossCheck.Agrees,
			"voiced":    m.CrossCheck.Voiced,
			"frames":    m.CrossCheck.Frames,
		}
	}

	if m.Validation != nil {
		clean["validation"] = m.Validation
	}

	if out.IncludeEstimates || verbose {
		clean["offsets"] = m.Offsets
		clean["estimates"] = m.Result.Estimates
	}

	if verbose {
		clean["source"] = m.Source
		clean["config"] = m.Config
		clean["load_time_ms"] = m.LoadTime.Milliseconds()
		clean["detect_time_ms"] = m.DetectTime.Milliseconds()
	}

	return clean
}

func roundToDecimalPlaces(f float64, decimals int) float64 {
	if decimals < 0 {
		return f
	}
	shift := math.Pow(10, float64(decimals))
	return math.Round(f*shift) / shift
}

// writeToFile writes data to the specified output file
func (app *PitchApp) writeToFile(data []byte) error {
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}

// sanitizeForJSON recursively cleans infinite and NaN values from any data structure
func sanitizeForJSON(data any) any {
	switch v := data.(type) {
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0.0
		}
		return v
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = sanitizeForJSON(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = sanitizeForJSON(val)
		}
		return result
	case time.Time, time.Duration:
		return v
	default:
		return sanitizeWithReflection(data)
	}
}

// sanitizeWithReflection uses reflection to sanitize struct fields
func sanitizeWithReflection(data any) any {
	if data == nil {
		return nil
	}

	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Struct:
		result := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := val.Field(i)
			fieldType := typ.Field(i)

			if !field.CanInterface() {
				continue
			}

			jsonTag := fieldType.Tag.Get("json")
			if jsonTag == "-" {
				continue
			}
			fieldName := fieldType.Name
			if name, _, _ := strings.Cut(jsonTag, ","); name != "" {
				fieldName = name
			}

			result[fieldName] = sanitizeForJSON(field.Interface())
		}
		return result
	case reflect.Slice:
		if val.IsNil() {
			return nil
		}
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = sanitizeForJSON(val.Index(i).Interface())
		}
		return result
	case reflect.Map:
		result := make(map[string]any)
		for _, key := range val.MapKeys() {
			result[fmt.Sprintf("%v", key.Interface())] = sanitizeForJSON(val.MapIndex(key).Interface())
		}
		return result
	case reflect.Float64, reflect.Float32:
		f := val.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return 0.0
		}
		return f
	default:
		return val.Interface()
	}
}
