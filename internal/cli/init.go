package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigName = "postman2openapi.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool

	stdout io.Writer
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample postman2openapi configuration file",
		Long:  "Scaffold a commented postman2openapi configuration file that documents the convert options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
				stdout:     cmd.OutOrStdout(),
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"

	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}

	w := cfg.stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML documents every key accepted by convert's --config file.
const sampleConfigYAML = `# postman2openapi configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path or URL to the Postman v2.x collection (http/https or local file).
# input: ./collection.json

# Output file or directory. Empty or "-" writes to stdout. A directory gets a
# file name derived from the collection name.
# out: ./openapi.yaml

# Output format (yaml|json). Defaults to yaml.
# format: yaml

# Only include operations tagged with one of these folder names.
# includeTags: [Users]

# Exclude operations tagged with any of these folder names.
# excludeTags: [Internal]

# Only include these HTTP methods.
# methods: [get, post]

# Only include paths matching one of these regular expressions.
# paths: ["^/users"]

# Validate the generated document before writing it.
# validate: false

# How many {{variable}} substitutions a single string may use.
# credits: 20

# Preview the converted endpoints without writing files.
# dryRun: false

# Overwrite an existing output file.
# force: false

# Enable verbose logging.
# verbose: false
`
