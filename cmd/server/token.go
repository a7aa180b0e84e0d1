package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	jwttoken "ridergate/internal/jwt_token"
	"ridergate/internal/platform/config"
	"ridergate/pkg/domain"
)

// tokenCmd issues staff tokens for local testing. Production tokens come
// from the identity provider that shares the signing key.
func tokenCmd(configFile *string) *cobra.Command {
	var (
		role         string
		jurisdiction int
		staffID      string
		ttl          time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed staff access token",
		Example: `  ridergate token --role admin
  ridergate token --role lga_admin --jurisdiction 9 --ttl 1h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			caller := domain.Caller{
				StaffID:      domain.StaffID(uuid.New()),
				Role:         r,
				Jurisdiction: domain.JurisdictionID(jurisdiction),
			}
			if staffID != "" {
				if caller.StaffID, err = domain.ParseStaffID(staffID); err != nil {
					return err
				}
			}
			if r == domain.RoleLGAAdmin && caller.Jurisdiction.IsZero() {
				return fmt.Errorf("--jurisdiction is required for %s", r)
			}

			svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
			token, err := svc.GenerateAccessToken(caller, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "staff role")
	cmd.Flags().IntVar(&jurisdiction, "jurisdiction", 0, "jurisdiction id, required for lga_admin")
	cmd.Flags().StringVar(&staffID, "staff-id", "", "staff id (random when empty)")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")
	return cmd
}
