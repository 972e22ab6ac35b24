package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Execute runs the postman2openapi CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "postman2openapi",
		Short:         "Convert Postman collections into OpenAPI 3.0 documents",
		Long:          "postman2openapi turns a Postman v2.x collection into an OpenAPI 3.0.3 document, inferring paths, parameters, and schemas from the saved requests and examples.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagErrorFunc)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")

	for _, sub := range []*cobra.Command{newConvertCmd(), newInspectCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagErrorFunc)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagErrorFunc(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}

// newLogger returns a logger writing to w; verbose enables debug output,
// otherwise only warnings and errors are shown.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	log.Level = logrus.WarnLevel
	if verbose {
		log.Level = logrus.DebugLevel
	}
	return log
}
