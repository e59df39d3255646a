package system

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ridhamz/AppointmentEase/config"
	"github.com/ridhamz/AppointmentEase/internal/repo"
	pasetotoken "github.com/ridhamz/AppointmentEase/pkg/paseto"
)

// NewTokenCommand issues an access token for an existing identity. Intended
// for operators and local testing; the API has no login flow of its own.
func NewTokenCommand() *cobra.Command {
	var (
		userID string
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a PASETO access token for a user id and role",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			if _, ok := repo.ParseRole(role); !ok {
				return fmt.Errorf("invalid --role %q: must be client, professional or admin", role)
			}

			mgr, err := pasetotoken.NewPasetoManager(cfg)
			if err != nil {
				return fmt.Errorf("failed to create token manager: %w", err)
			}
			token, err := mgr.IssueAccess(id, role, nil)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id the token is issued for")
	cmd.Flags().StringVar(&role, "role", "", "role carried by the token (client, professional, admin)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}
