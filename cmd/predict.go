package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/caremetrics/stress-screen/internal/artifact"
	"github.com/caremetrics/stress-screen/internal/predict"
	"github.com/caremetrics/stress-screen/internal/schema"
)

var (
	predictInput       string
	predictThreshold   float64
	predictAttribution bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one record from a JSON file and print the result",
	Long:  `Reads a JSON object mapping each feature name to its raw value, scores it against the loaded artifacts, and prints the full result as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(predictInput)
		if err != nil {
			return eris.Wrapf(err, "read input file %s", predictInput)
		}
		var features map[string]float64
		if err := json.Unmarshal(raw, &features); err != nil {
			return eris.Wrap(err, "parse input file")
		}

		s, err := schema.Load()
		if err != nil {
			return err
		}
		for name, v := range features {
			if err := s.Validate(name, v); err != nil {
				return err
			}
		}

		arts, err := artifact.Load(cfg.Artifacts, s.FeatureOrder())
		if err != nil {
			return err
		}

		req := predict.Request{
			Features:        features,
			WithAttribution: predictAttribution,
		}
		if cmd.Flags().Changed("threshold") {
			if predictThreshold < 0 || predictThreshold > 1 {
				return eris.Errorf("threshold %v must be between 0 and 1", predictThreshold)
			}
			req.Threshold = &predictThreshold
		}

		res, err := predict.NewPipeline(s, arts).Run(req)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictInput, "input", "", "path to a JSON file of feature values (required)")
	predictCmd.Flags().Float64Var(&predictThreshold, "threshold", 0, "override the decision threshold")
	predictCmd.Flags().BoolVar(&predictAttribution, "attribution", false, "include per-feature contributions")
	predictCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(predictCmd)
}
