package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/contractor-leads/internal/app/bootstrap"
	"github.com/wolfman30/contractor-leads/internal/forms"
)

func registerFormsCommand(root *cobra.Command, opts *options) {
	formsCmd := &cobra.Command{
		Use:     "forms",
		Aliases: []string{"form"},
		Short:   "Inspect service form configs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List configured services",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := bootstrap.LoadRegistry(opts.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, cfg := range reg.List() {
				fmt.Fprintf(out, "  %-12s %s (%d fields)\n", cfg.ID, cfg.Title, len(cfg.Fields))
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <serviceID>",
		Short: "Show a service config split into wizard steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := bootstrap.LoadRegistry(opts.cfg)
			if err != nil {
				return err
			}
			cfg, err := reg.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[Service] %s\n  Title:       %s\n  Description: %s\n", cfg.ID, cfg.Title, cfg.Description)
			for _, step := range forms.Steps(cfg) {
				fmt.Fprintf(out, "\n  Step %d: %s\n", step.Index+1, step.Title)
				for _, f := range step.Fields {
					fmt.Fprintf(out, "    %s\n", describeField(f))
				}
			}
			return nil
		},
	}

	var checkDir string
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a form catalog against the schema and consistency rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := checkDir
			if dir == "" {
				dir = opts.cfg.FormsDir
			}
			var (
				reg *forms.Registry
				err error
			)
			if dir == "" {
				reg, err = forms.LoadDefault()
			} else {
				if _, statErr := os.Stat(dir); statErr != nil {
					return fmt.Errorf("forms dir %s: %w", dir, statErr)
				}
				reg, err = forms.LoadDir(filepath.Clean(dir))
			}
			if err != nil {
				return fmt.Errorf("catalog invalid: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d service configs valid\n", len(reg.List()))
			return nil
		},
	}
	checkCmd.Flags().StringVar(&checkDir, "dir", "", "Catalog directory to check (defaults to the built-in catalog)")

	formsCmd.AddCommand(listCmd, showCmd, checkCmd)
	root.AddCommand(formsCmd)
}

func describeField(f forms.FieldSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-9s", f.Name, f.Type)
	if f.Required {
		b.WriteString(" required")
	}
	if f.DependsOn != nil {
		cond := f.DependsOn.Condition
		if cond == "" {
			cond = forms.ConditionEquals
		}
		fmt.Fprintf(&b, " [when %s %s %s]", f.DependsOn.Field, cond, f.DependsOn.Value.Flatten())
	}
	if len(f.Options) > 0 {
		values := make([]string, 0, len(f.Options))
		for _, o := range f.Options {
			values = append(values, o.Value)
		}
		fmt.Fprintf(&b, " options=%s", strings.Join(values, ","))
	}
	return b.String()
}
