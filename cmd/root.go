package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cartCmd "github.com/edaexpress/fooddelivery/cart/cmd"
	deliveryCmd "github.com/edaexpress/fooddelivery/delivery/cmd"
	"github.com/edaexpress/fooddelivery/internal/constants"
	"github.com/edaexpress/fooddelivery/internal/log"
)

func Start() {
	logger := log.InitLogger("/var/log/fooddelivery.log").
		With().
		Str(log.KeyAppName, constants.AppMain).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{}
	commands := []*cobra.Command{
		{
			Use:   "cart",
			Short: "Run cart service",
			Run: func(cmd *cobra.Command, args []string) {
				cartCmd.RunCartService(cmd.Context())
			},
		},
		{
			Use:   "delivery",
			Short: "Run delivery service",
			Run: func(cmd *cobra.Command, args []string) {
				deliveryCmd.RunDeliveryService(cmd.Context())
			},
		},
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
