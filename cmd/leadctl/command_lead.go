package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wolfman30/contractor-leads/internal/app/bootstrap"
	"github.com/wolfman30/contractor-leads/internal/delivery"
	"github.com/wolfman30/contractor-leads/internal/forms"
	"github.com/wolfman30/contractor-leads/internal/leads"
)

func registerLeadCommands(root *cobra.Command, opts *options) {
	var valuesFile string
	previewCmd := &cobra.Command{
		Use:   "preview <serviceID>",
		Short: "Format a lead payload without delivering it",
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
			state, err := readValues(valuesFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			payload := leads.NewFormatter(opts.cfg.FormVersion).Format(cfg.ID, cfg.Title, state)
			return printJSON(cmd.OutOrStdout(), payload)
		},
	}
	previewCmd.Flags().StringVar(&valuesFile, "values", "", "JSON file with form values (- for stdin)")

	var submitValues string
	submitCmd := &cobra.Command{
		Use:   "submit <serviceID>",
		Short: "Validate and deliver a lead through the configured chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			reg, err := bootstrap.LoadRegistry(opts.cfg)
			if err != nil {
				return err
			}
			cfg, err := reg.Get(args[0])
			if err != nil {
				return err
			}
			state, err := readValues(submitValues, cmd.InOrStdin())
			if err != nil {
				return err
			}
			errs, err := validateAll(cfg, state)
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				_ = printJSON(cmd.OutOrStdout(), map[string]any{"valid": false, "errors": errs})
				return fmt.Errorf("%d field(s) failed validation", len(errs))
			}

			rt, err := openRuntime(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			pipeline, err := delivery.NewPipeline(delivery.PipelineConfig{
				Registry:   reg,
				Formatter:  leads.NewFormatter(opts.cfg.FormVersion),
				Strategies: bootstrap.BuildStrategies(opts.cfg, rt.queue, opts.logger),
				History:    rt.history,
				Notifier:   bootstrap.BuildNotifier(ctx, opts.cfg, opts.logger),
				Logger:     opts.logger,
			})
			if err != nil {
				return err
			}
			result := pipeline.Submit(ctx, cfg.ID, state)
			pipeline.Wait()
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("submission failed")
			}
			return nil
		},
	}
	submitCmd.Flags().StringVar(&submitValues, "values", "", "JSON file with form values (- for stdin)")

	root.AddCommand(previewCmd, submitCmd)
}

func validateAll(cfg *forms.ServiceConfig, state forms.State) (forms.Errors, error) {
	errs := forms.Errors{}
	for _, idx := range []forms.StepIndex{forms.StepServiceDetails, forms.StepContact} {
		stepErrs, err := forms.ValidateStep(cfg, idx, state)
		if err != nil {
			return nil, err
		}
		for name, msg := range stepErrs {
			errs[name] = msg
		}
	}
	return errs, nil
}
