package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2code/internal/codegen"
	"github.com/mark3labs/swagger2code/internal/generators"
	"github.com/mark3labs/swagger2code/internal/logging"
	"github.com/mark3labs/swagger2code/internal/orchestrator"
	genspec "github.com/mark3labs/swagger2code/internal/spec"
	"github.com/mark3labs/swagger2code/internal/writer"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, environment, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string
	Generators  []string
	Out         string
	Options     codegen.Options
	TemplateDir string
	IncludeTags []string
	ExcludeTags []string
	ConfigPath  string
	DryRun      bool
	Force       bool
	Verbose     bool
	Parallelism int
	LogLevel    string
	HTTPTimeout time.Duration
}

const defaultGenerator = "go-server"

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Generators: []string{defaultGenerator}, Options: codegen.Options{}}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate server or client code from an OpenAPI/Swagger document",
		Long: "Generate server or client code from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, config files, environment, or defaults.",
		Example: strings.TrimSpace(`  swagger2code generate -i spec.yaml -g jaxrs-spec -o ./out
  swagger2code generate -i spec.yaml -g spring,go-server -o ./out -D interfaceOnly=true
  swagger2code --config config.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Path or URL to the Swagger/OpenAPI document")
	flags.StringSliceP("generator", "g", nil, "Generator ids to run (see 'swagger2code list'); defaults to "+defaultGenerator)
	flags.StringP("out", "o", "", "Output directory (derived from spec when omitted)")
	flags.StringArrayP("option", "D", nil, "Generator option as key=value (repeatable)")
	flags.String("template-dir", "", "Directory whose templates override the built-in ones")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.Int("parallelism", 0, "Concurrent render tasks per run (0 uses all CPUs)")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	environment, err := loadEnvironment()
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = environment.LogLevel
	cfg.Parallelism = environment.Parallelism
	cfg.HTTPTimeout = environment.HTTPTimeout
	cfg.TemplateDir = environment.TemplateDir

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("generator") {
		value, err := flags.GetStringSlice("generator")
		if err != nil {
			return err
		}
		cfg.Generators = value
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("option") {
		values, err := flags.GetStringArray("option")
		if err != nil {
			return err
		}
		for _, kv := range values {
			key, value, err := parseOption(kv)
			if err != nil {
				return err
			}
			cfg.Options.Set(key, value)
		}
	}
	if flags.Changed("template-dir") {
		value, err := flags.GetString("template-dir")
		if err != nil {
			return err
		}
		cfg.TemplateDir = strings.TrimSpace(value)
	}
	if flags.Changed("include-tags") {
		value, err := flags.GetStringSlice("include-tags")
		if err != nil {
			return err
		}
		cfg.IncludeTags = sanitizeTags(value)
	}
	if flags.Changed("exclude-tags") {
		value, err := flags.GetStringSlice("exclude-tags")
		if err != nil {
			return err
		}
		cfg.ExcludeTags = sanitizeTags(value)
	}
	if flags.Changed("parallelism") {
		value, err := flags.GetInt("parallelism")
		if err != nil {
			return err
		}
		cfg.Parallelism = value
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

// parseOption splits a -D argument. Only the first '=' separates key and value.
func parseOption(kv string) (string, string, error) {
	key, value, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", newUsageError(fmt.Sprintf("generate: --option %q must look like key=value", kv))
	}
	return key, strings.TrimSpace(value), nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.TemplateDir = strings.TrimSpace(c.TemplateDir)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
	ids := make([]string, 0, len(c.Generators))
	for _, id := range sanitizeTags(c.Generators) {
		ids = append(ids, strings.ToLower(id))
	}
	c.Generators = sanitizeTags(ids)
	if c.Options == nil {
		c.Options = codegen.Options{}
	}
	if c.Verbose {
		c.LogLevel = "debug"
	}
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}

	if len(c.Generators) == 0 {
		c.Generators = []string{defaultGenerator}
	}
	registry := generators.Default()
	for _, id := range c.Generators {
		if !registry.Has(id) {
			return newUsageError(fmt.Sprintf("generate: unknown --generator %q (allowed: %s)", id, strings.Join(registry.List(), ", ")))
		}
	}

	if c.Parallelism < 0 {
		return newUsageError(fmt.Sprintf("generate: --parallelism must not be negative, got %d", c.Parallelism))
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

// run is one generator's target directory and outcome.
type run struct {
	id     string
	outDir string
	plan   *writer.Plan
	result *orchestrator.RunResult
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger, err := logging.NewLogger(logging.Config{Component: "swagger2code", Level: cfg.LogLevel})
	if err != nil {
		return newUsageError(fmt.Sprintf("generate: log level: %v", err))
	}
	defer func() { _ = logger.Sync() }()

	// 1) Load the spec (file or http/https URL) with validation and conversion
	loadOpts := []genspec.Option{
		genspec.WithIncludeTags(cfg.IncludeTags),
		genspec.WithExcludeTags(cfg.ExcludeTags),
	}
	if cfg.HTTPTimeout > 0 {
		loadOpts = append(loadOpts, genspec.WithHTTPTimeout(cfg.HTTPTimeout))
	}
	doc, err := genspec.Load(ctx, cfg.Input, loadOpts...)
	if err != nil {
		// Map structured spec errors into friendly messages
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}
	logger.Debug("spec loaded", zap.String("input", cfg.Input), zap.Int("schemas", len(doc.Schemas)), zap.Int("paths", len(doc.Paths)))

	// 2) Derive the output directory when omitted and refuse to clobber
	outDir := cfg.Out
	if outDir == "" {
		outDir = deriveOutDir(doc.Title)
	}
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}
	if !cfg.DryRun && !cfg.Force {
		if err := ensureEmptyOutput(absOut); err != nil {
			return err
		}
	}

	// 3) One run per generator; independent runs share only the read-only document
	runs := make([]*run, len(cfg.Generators))
	for i, id := range cfg.Generators {
		dir := absOut
		if len(cfg.Generators) > 1 {
			dir = filepath.Join(absOut, id)
		}
		runs[i] = &run{id: id, outDir: dir}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, r := range runs {
		r := r
		eg.Go(func() error {
			return executeRun(egCtx, doc, cfg, r, logger)
		})
	}
	if err := eg.Wait(); err != nil {
		var ce *codegen.ConfigError
		if errors.As(err, &ce) {
			return newUsageError(fmt.Sprintf("generate: %v", ce))
		}
		return wrapOutputError(err, absOut)
	}

	// 4) Report in generator order
	failed := 0
	for _, r := range runs {
		if cfg.DryRun {
			printPlan(r.outDir, r.plan.Files())
		} else {
			fmt.Fprintf(os.Stdout, "Generated %d files with %s in %s\n", len(r.result.Files), r.id, r.outDir)
		}
		printIssues(r.id, r.result.Issues)
		if r.result.Status == orchestrator.StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("generate: %d of %d runs failed", failed, len(runs))
	}
	return nil
}

func executeRun(ctx context.Context, doc *genspec.Document, cfg *GenerateConfig, r *run, logger *zap.Logger) error {
	gc, err := generators.NewConfig(r.id)
	if err != nil {
		return err
	}
	if err := gc.SetOptions(cfg.Options); err != nil {
		return err
	}
	if _, ok := cfg.Options[codegen.OptTemplateDir]; !ok && cfg.TemplateDir != "" {
		if err := gc.SetOption(codegen.OptTemplateDir, cfg.TemplateDir); err != nil {
			return err
		}
	}

	var w writer.Writer = &writer.FSWriter{Root: r.outDir}
	if cfg.DryRun {
		r.plan = writer.NewPlan()
		w = r.plan
	}
	g := orchestrator.New(
		orchestrator.WithWriter(w),
		orchestrator.WithLogger(logger),
		orchestrator.WithParallelism(cfg.Parallelism),
	)
	res, err := g.Generate(ctx, doc, gc)
	if err != nil {
		return fmt.Errorf("%s: %w", r.id, err)
	}
	r.result = res
	return nil
}

// ensureEmptyOutput rejects an existing, non-empty output directory.
func ensureEmptyOutput(dir string) error {
	st, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return newUsageError(fmt.Sprintf("output error for %s: %v", dir, err))
	}
	if !st.IsDir() {
		return newUsageError(fmt.Sprintf("output error for %s: not a directory", dir))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return newUsageError(fmt.Sprintf("output error for %s: %v", dir, err))
	}
	if len(entries) > 0 {
		return newUsageError(fmt.Sprintf("output directory %s is not empty\nHint: choose a different --out or use --force to overwrite.", dir))
	}
	return nil
}

func printPlan(outDir string, files []writer.PlannedFile) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(files))
	for _, f := range files {
		fmt.Fprintf(os.Stdout, "- %s\n", f.RelPath)
	}
}

func printIssues(id string, issues []orchestrator.Issue) {
	for _, i := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s %s: %s\n", id, i.Severity, i.Kind, i.Subject, i.Message)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || errors.Is(err, writer.ErrOutsideRoot) {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

// deriveOutDir turns a document title into a directory name.
func deriveOutDir(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return "generated"
	}
	t = strings.ToLower(t)
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	t = repl.Replace(t)
	parts := strings.Fields(t)
	if len(parts) == 0 {
		return "generated"
	}
	return strings.Join(parts, "-")
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	// Visit keys in a stable order so aliases resolve the same way every time.
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		fieldErr := func(err error) error {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
		switch normalizeKey(key) {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.Input = str
		case "generators", "generator", "lang":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.Generators = list
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.Out = str
		case "options":
			opts, err := valueAsOptions(value)
			if err != nil {
				return fieldErr(err)
			}
			for _, k := range opts.Keys() {
				cfg.Options.Set(k, opts[k])
			}
		case "templatedir":
			str, err := valueAsString(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.TemplateDir = str
		case "includetags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.IncludeTags = sanitizeTags(list)
		case "excludetags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.ExcludeTags = sanitizeTags(list)
		case "parallelism":
			n, err := valueAsInt(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.Parallelism = n
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.Force = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid integer value %q", val)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// valueAsOptions accepts a mapping of generator options. Numbers become
// strings; lists of strings stay lists.
func valueAsOptions(v any) (codegen.Options, error) {
	switch val := v.(type) {
	case nil:
		return codegen.Options{}, nil
	case map[string]any:
		out := make(codegen.Options, len(val))
		for key, elem := range val {
			switch e := elem.(type) {
			case string, bool, nil:
				out.Set(key, e)
			case int, float64:
				out.Set(key, fmt.Sprint(e))
			case []any:
				list, err := valueAsStringSlice(e)
				if err != nil {
					return nil, fmt.Errorf("option %q: %w", key, err)
				}
				out.Set(key, list)
			default:
				return nil, fmt.Errorf("option %q: unsupported value of type %T", key, elem)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected mapping, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
