package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caremetrics/stress-screen/internal/config"
	"github.com/caremetrics/stress-screen/internal/keepalive"
)

var keepaliveResume bool

var keepaliveCmd = &cobra.Command{
	Use:   "keepalive",
	Short: "Visit the deployed calculator so the host does not idle it",
	Long: `Runs one keep-alive pass against the deployed calculator URL: health check,
headless browser visit, content wait, and inert interaction, retrying with
backoff. With --resume it also dismisses the hosting platform's sleep prompt.
Exits 0 when any attempt succeeds and 1 when all attempts fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The probe logs to stdout and its own append-mode log file so
		// scheduled runs leave a history on disk.
		if err := config.InitProbeLogger(cfg.Log, cfg.KeepAlive.LogFile); err != nil {
			return fmt.Errorf("init probe logger: %w", err)
		}

		probe, err := keepalive.New(cfg.KeepAlive, keepaliveResume)
		if err != nil {
			return err
		}

		if err := probe.Run(cmd.Context()); err != nil {
			zap.L().Error("keep-alive failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	keepaliveCmd.Flags().BoolVar(&keepaliveResume, "resume", false, "dismiss the hosting platform's resume prompt if present")
	rootCmd.AddCommand(keepaliveCmd)
}
