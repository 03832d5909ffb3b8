package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/service"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		email   string
		role    string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить токен для запросов к локальному стенду",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Backend.JWTSecret == "" {
				return apperrors.NewConfigurationError("секрет подписи токенов не задан", "BACKEND_JWT_SECRET")
			}
			if subject == "" {
				subject = uuid.NewString()
			} else if _, err := uuid.Parse(subject); err != nil && role != service.RoleService {
				return fmt.Errorf("--sub должен быть UUID: %w", err)
			}

			jwtSvc := service.NewJWTService(cfg.Backend.JWTSecret, cfg.Auth.TokenTTL, logger)
			token, err := jwtSvc.GenerateToken(subject, email, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "идентификатор пользователя (по умолчанию случайный)")
	cmd.Flags().StringVar(&email, "email", "", "email в claims")
	cmd.Flags().StringVar(&role, "role", "", "роль приложения: admin, service_role или пусто")
	return cmd
}
