package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mark3labs/postman2openapi/internal/collection"
	"github.com/mark3labs/postman2openapi/internal/emitter"
	"github.com/mark3labs/postman2openapi/internal/spec"
	"github.com/mark3labs/postman2openapi/internal/transpile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ConvertConfig captures all inputs that influence the convert command after
// merging defaults, config file values, and CLI overrides.
type ConvertConfig struct {
	Input       string
	Out         string
	Format      string
	IncludeTags []string
	ExcludeTags []string
	Methods     []string
	Paths       []string
	Validate    bool
	Credits     int
	ConfigPath  string
	DryRun      bool
	Force       bool
	Verbose     bool

	stdout io.Writer
	stderr io.Writer
}

func defaultConvertConfig() ConvertConfig {
	return ConvertConfig{Format: string(spec.FormatYAML), Credits: transpile.DefaultCreditBudget}
}

var convertRunner = runConvert

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a Postman collection into an OpenAPI document",
		Long: "Convert a Postman v2.x collection into an OpenAPI 3.0.3 document. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  postman2openapi convert --input collection.json --out openapi.yaml
  postman2openapi --config postman2openapi.yaml convert --format json --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConvertConfig(cmd)
			if err != nil {
				return err
			}
			cfg.stdout, cfg.stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			return convertRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Postman collection")
	flags.String("out", "", "Output file or directory; '-' or empty writes to stdout")
	flags.String("format", "", "Output format (yaml|json); defaults to yaml")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations using these HTTP methods")
	flags.StringSlice("paths", nil, "Only include paths matching these regular expressions")
	flags.Bool("validate", false, "Validate the generated document before writing it")
	flags.Int("credits", 0, "Variable substitution budget per string (default 20)")
	flags.Bool("dry-run", false, "Preview the converted endpoints without writing files")
	flags.Bool("force", false, "Overwrite an existing output file")

	return cmd
}

func resolveConvertConfig(cmd *cobra.Command) (*ConvertConfig, error) {
	cfg := defaultConvertConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConvertConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyConvertFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyConvertFlagOverrides(flags *pflag.FlagSet, cfg *ConvertConfig) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"input", &cfg.Input},
		{"out", &cfg.Out},
		{"format", &cfg.Format},
	}
	for _, s := range strs {
		if !flags.Changed(s.name) {
			continue
		}
		value, err := flags.GetString(s.name)
		if err != nil {
			return err
		}
		*s.dst = strings.TrimSpace(value)
	}

	slices := []struct {
		name string
		dst  *[]string
	}{
		{"include-tags", &cfg.IncludeTags},
		{"exclude-tags", &cfg.ExcludeTags},
		{"methods", &cfg.Methods},
		{"paths", &cfg.Paths},
	}
	for _, s := range slices {
		if !flags.Changed(s.name) {
			continue
		}
		value, err := flags.GetStringSlice(s.name)
		if err != nil {
			return err
		}
		*s.dst = sanitizeTags(value)
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"validate", &cfg.Validate},
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
	}
	for _, b := range bools {
		if !flags.Changed(b.name) {
			continue
		}
		value, err := flags.GetBool(b.name)
		if err != nil {
			return err
		}
		*b.dst = value
	}

	if flags.Changed("credits") {
		value, err := flags.GetInt("credits")
		if err != nil {
			return err
		}
		cfg.Credits = value
	}

	return nil
}

func (c *ConvertConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
	c.Paths = sanitizeTags(c.Paths)
	methods := sanitizeTags(c.Methods)
	for i, m := range methods {
		methods[i] = strings.ToLower(m)
	}
	c.Methods = methods
}

func (c *ConvertConfig) validate() error {
	if c.Input == "" {
		return newUsageError("convert: --input is required (set via flag or config file)")
	}

	format, err := spec.ParseFormat(c.Format)
	if err != nil {
		return newUsageError(fmt.Sprintf("convert: %v", err))
	}
	c.Format = string(format)

	for _, m := range c.Methods {
		switch spec.HttpMethod(m) {
		case spec.GET, spec.POST, spec.PUT, spec.DELETE, spec.PATCH, spec.OPTIONS, spec.TRACE:
		default:
			return newUsageError(fmt.Sprintf("convert: unsupported method %q (allowed: get, post, put, delete, patch, options, trace)", m))
		}
	}

	if c.Credits < 1 {
		return newUsageError(fmt.Sprintf("convert: --credits must be at least 1, got %d", c.Credits))
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("convert: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func runConvert(ctx context.Context, cfg *ConvertConfig) error {
	stdout, stderr := cfg.stdout, cfg.stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	log := newLogger(stderr, cfg.Verbose)

	// 1) Load the collection (file or http/https URL)
	c, err := collection.Load(ctx, cfg.Input)
	if err != nil {
		return friendlyError(err)
	}

	// 2) Transpile into an OpenAPI document
	doc, err := transpile.Transpile(ctx, c,
		transpile.WithLogger(log),
		transpile.WithCreditBudget(cfg.Credits),
	)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	// 3) Apply operation filters
	removed := spec.Filter(doc,
		spec.WithIncludeTags(cfg.IncludeTags),
		spec.WithExcludeTags(cfg.ExcludeTags),
		spec.WithMethods(spec.ParseMethods(cfg.Methods)),
		spec.WithPathPatterns(cfg.Paths),
	)
	log.WithFields(logrus.Fields{"removed": removed, "paths": len(doc.Paths)}).Debug("applied filters")

	// 4) Optional validation
	if cfg.Validate {
		if err := spec.Validate(ctx, doc); err != nil {
			return friendlyError(err)
		}
		log.Debug("document is valid")
	}

	// 5) Render and write
	res, err := emitter.Emit(ctx, doc, emitter.Options{
		OutPath: cfg.Out,
		Format:  spec.Format(cfg.Format),
		Force:   cfg.Force,
		DryRun:  cfg.DryRun,
		Stdout:  stdout,
	})
	if err != nil {
		return wrapOutputError(friendlyError(err), cfg.Out)
	}
	if cfg.DryRun {
		printPlan(stdout, res, spec.BuildInventory(doc))
		return nil
	}
	if res.Path != "-" {
		fmt.Fprintf(stdout, "Wrote %s (%d bytes)\n", res.Path, res.Size)
	}
	return nil
}

func printPlan(w io.Writer, res *emitter.Result, inv *spec.Inventory) {
	target := res.Path
	if target == "-" {
		target = "stdout"
	}
	fmt.Fprintf(w, "Planned write to %s (%s, %d bytes, %d operations):\n", target, res.Format, res.Size, len(inv.Endpoints))
	for _, ep := range inv.Endpoints {
		fmt.Fprintf(w, "- %s %s\n", strings.ToUpper(string(ep.Method)), ep.Path)
	}
}

func wrapOutputError(err error, out string) error {
	if errors.Is(err, emitter.ErrExists) {
		return newUsageError(err.Error())
	}
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", out, msg))
	}
	return err
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

func applyConvertConfigFromFile(cfg *ConvertConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		if err := applyConfigField(cfg, normalizeKey(key), value); err != nil {
			if errors.Is(err, errUnknownField) {
				return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
			}
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

var errUnknownField = errors.New("unknown field")

func applyConfigField(cfg *ConvertConfig, key string, value any) error {
	var err error
	switch key {
	case "input":
		cfg.Input, err = valueAsString(value)
	case "out":
		cfg.Out, err = valueAsString(value)
	case "format":
		cfg.Format, err = valueAsString(value)
	case "includetags":
		cfg.IncludeTags, err = valueAsStringSlice(value)
	case "excludetags":
		cfg.ExcludeTags, err = valueAsStringSlice(value)
	case "methods":
		cfg.Methods, err = valueAsStringSlice(value)
	case "paths":
		cfg.Paths, err = valueAsStringSlice(value)
	case "validate":
		cfg.Validate, err = valueAsBool(value)
	case "credits":
		cfg.Credits, err = valueAsInt(value)
	case "dryrun":
		cfg.DryRun, err = valueAsBool(value)
	case "force":
		cfg.Force, err = valueAsBool(value)
	case "verbose":
		cfg.Verbose, err = valueAsBool(value)
	default:
		return errUnknownField
	}
	return err
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
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
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
