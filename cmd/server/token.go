package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"techie-backend/internal/config"
	"techie-backend/internal/middleware"
	"techie-backend/internal/models"
)

var (
	tokenUserID string
	tokenRole   string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed access token for a member",
	Long: `Mint an HS256 access token carrying user_id and role, signed with JWT_SECRET.
Useful for operators and for exercising the API locally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(tokenUserID)
		if err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
		switch tokenRole {
		case models.RoleUser, models.RoleManager, models.RoleAdmin:
		default:
			return fmt.Errorf("invalid --role %q: must be user, manager or admin", tokenRole)
		}

		jwtAuth := middleware.NewJWTAuth(config.LoadJWTSecret())
		token, err := jwtAuth.GenerateAccessToken(userID, tokenRole, tokenTTL)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "Member ID to embed in the token")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "user", "Role claim (user, manager or admin)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(tokenCmd)
}
