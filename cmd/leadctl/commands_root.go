package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	appconfig "github.com/wolfman30/contractor-leads/internal/config"
	"github.com/wolfman30/contractor-leads/internal/forms"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// options are shared by every subcommand.
type options struct {
	formsDir string
	logLevel string
	cfg      *appconfig.Config
	logger   *logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "leadctl",
		Short:         "Inspect form catalogs and the lead delivery chain",
		Long:          "leadctl checks service form configs, previews and submits lead payloads, and reads the local queue and submission history.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.cfg = appconfig.Load()
			if opts.formsDir != "" {
				opts.cfg.FormsDir = opts.formsDir
			}
			opts.logger = logging.NewWithWriter(cmd.ErrOrStderr(), opts.logLevel)
			return opts.cfg.Validate()
		},
	}
	root.PersistentFlags().StringVar(&opts.formsDir, "forms-dir", "", "Directory of service form YAML files (defaults to FORMS_DIR or the built-in catalog)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for diagnostics written to stderr")

	registerFormsCommand(root, opts)
	registerLeadCommands(root, opts)
	registerQueueCommands(root, opts)
	registerTokenCommand(root, opts)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readValues loads a form state from a JSON file, or stdin when path is "-".
// Both a bare object and {"values": {...}} are accepted.
func readValues(path string, stdin io.Reader) (forms.State, error) {
	if path == "" {
		return nil, fmt.Errorf("--values is required")
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}

	var wrapped struct {
		Values forms.State `json:"values"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Values != nil {
		return wrapped.Values, nil
	}
	var state forms.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	return state, nil
}
