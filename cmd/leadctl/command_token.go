package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	httpmiddleware "github.com/wolfman30/contractor-leads/internal/http/middleware"
)

func registerTokenCommand(root *cobra.Command, opts *options) {
	var subject string
	var ttl time.Duration
	tokenCmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Mint an admin dashboard token signed with ADMIN_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := httpmiddleware.IssueAdminToken(opts.cfg.AdminJWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&subject, "subject", "admin", "Subject claim for the token")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	root.AddCommand(tokenCmd)
}
