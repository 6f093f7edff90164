package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in interactively and verify both credential flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin()
		},
	}

	return cmd
}

func runLogin() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config, err := LoadConfig()
	if err != nil {
		return err
	}

	tokens := buildTokenStore(config)

	if _, err := tokens.ServiceCredential(ctx); err != nil {
		return err
	}
	log.Info().Msg("Service credential acquired")

	cred, err := tokens.UserCredential(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Time("expires_at", cred.ExpiresAt).
		Msg("User credential acquired")

	return nil
}
