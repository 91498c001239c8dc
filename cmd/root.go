package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lojista-tools/recibo/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "recibo",
	Short: "Cielo slip digitizer and daily reconciliation",
	Long:  "Turns recognized Cielo slip text into structured receipt records and reconciles a day's receipts against the provider's settlement extract.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
