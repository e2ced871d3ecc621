package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caremetrics/stress-screen/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "stress-screen",
	Short: "Caregiver stress risk screening calculator",
	Long:  "Scores caregiver stress risk with a pretrained gradient-boosted model: web calculator, one-shot CLI scoring, and a keep-alive probe for the hosted deployment.",
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
