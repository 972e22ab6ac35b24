package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mark3labs/postman2openapi/internal/collection"
	"github.com/mark3labs/postman2openapi/internal/spec"
	"github.com/mark3labs/postman2openapi/internal/transpile"
	"github.com/spf13/cobra"
)

// InspectConfig captures the options for the inspect command.
type InspectConfig struct {
	Input   string
	JSON    bool
	Credits int
	Verbose bool

	stdout io.Writer
	stderr io.Writer
}

var inspectRunner = runInspect

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the endpoints a collection converts into",
		Long:  "Convert a Postman collection in memory and print the resulting endpoint inventory as a table or JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cmd.Flags().GetString("input")
			if err != nil {
				return err
			}
			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			credits, err := cmd.Flags().GetInt("credits")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InspectConfig{
				Input:   strings.TrimSpace(input),
				JSON:    asJSON,
				Credits: credits,
				Verbose: verbose,
				stdout:  cmd.OutOrStdout(),
				stderr:  cmd.ErrOrStderr(),
			}
			if cfg.Input == "" {
				return newUsageError("inspect: --input is required")
			}
			if cfg.Credits < 1 {
				return newUsageError(fmt.Sprintf("inspect: --credits must be at least 1, got %d", cfg.Credits))
			}
			return inspectRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("input", "", "Path or URL to the Postman collection")
	cmd.Flags().Bool("json", false, "Print the inventory as JSON")
	cmd.Flags().Int("credits", transpile.DefaultCreditBudget, "Variable substitution budget per string")

	return cmd
}

func runInspect(ctx context.Context, cfg *InspectConfig) error {
	stdout, stderr := cfg.stdout, cfg.stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	c, err := collection.Load(ctx, cfg.Input)
	if err != nil {
		return friendlyError(err)
	}
	doc, err := transpile.Transpile(ctx, c,
		transpile.WithLogger(newLogger(stderr, cfg.Verbose)),
		transpile.WithCreditBudget(cfg.Credits),
	)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	inv := spec.BuildInventory(doc)
	if cfg.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(inv)
	}
	return printInventory(stdout, inv)
}

func printInventory(w io.Writer, inv *spec.Inventory) error {
	fmt.Fprintf(w, "%s (%s)\n", inv.Title, inv.Version)
	for _, s := range inv.Servers {
		fmt.Fprintf(w, "Server: %s\n", s)
	}
	if len(inv.Endpoints) == 0 {
		fmt.Fprintln(w, "No endpoints.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tOPERATION\tTAGS\tRESPONSES")
	for _, ep := range inv.Endpoints {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			strings.ToUpper(string(ep.Method)),
			ep.Path,
			ep.OperationID,
			strings.Join(ep.Tags, ","),
			strings.Join(ep.ResponseCodes, ","),
		)
	}
	return tw.Flush()
}
