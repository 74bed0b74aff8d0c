package main

import (
	"fmt"
	"net"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dicemill/outgunned"
	"github.com/dicemill/outgunned/db"
	"github.com/dicemill/outgunned/gateway"
)

func newServeCommand(configDir *string) *cobra.Command {
	var register bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the interactions endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := newLogger()

			bot, err := outgunned.New(
				outgunned.WithLogger(logger),
				outgunned.WithConfigDir(*configDir),
			)
			if err != nil {
				return fmt.Errorf("configuring bot : %w", err)
			}
			defer bot.Close()

			database, err := db.New(filepath.Join(bot.ConfigDir, bot.Config.Database))
			if err != nil {
				return fmt.Errorf("opening database : %w", err)
			}

			err = bot.WithOptions(
				outgunned.WithRepo(db.NewBotRepo(database)),
				outgunned.WithStoredExtensions(),
			)
			if err != nil {
				return fmt.Errorf("configuring bot : %w", err)
			}

			publicKey, err := bot.Config.VerificationKey()
			if err != nil {
				return fmt.Errorf("loading verification key : %w", err)
			}

			if register {
				registrar := gateway.NewRegistrar(bot.Config.ApplicationID, bot.Config.BotToken, logger)
				if err := registrar.RegisterCommands(ctx, bot.CommandDefinitions()); err != nil {
					return fmt.Errorf("registering commands : %w", err)
				}
			}

			server := gateway.NewServer(bot, publicKey, logger)
			addr := net.JoinHostPort(bot.Config.Address, bot.Config.Port)
			return server.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().BoolVar(&register, "register", false, "bulk-overwrite the application's slash commands on startup")
	return cmd
}
