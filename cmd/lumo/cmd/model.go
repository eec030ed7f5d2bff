package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/lumo/internal/engine"
)

// modelCmd represents the model command.
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Show classifier model metadata",
	Long: `Load the configured model and print its metadata: tensor names,
shapes, layout, and the derived input resolution.

Examples:
  lumo model
  lumo model --model ./models/classifier.onnx --format json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := validateFormat(cfg.Output.Format); err != nil {
			return err
		}

		eng, err := engine.New(cfg.ToEngineConfig())
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		defer func() { _ = eng.Close() }()

		info := eng.ModelInfo()
		out := cmd.OutOrStdout()
		if cfg.Output.Format == formatText {
			keys := make([]string, 0, len(info))
			for k := range info {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "%-18s %v\n", k+":", info[k])
			}
			return nil
		}
		return encode(out, info, cfg.Output.Format)
	},
}

func init() {
	rootCmd.AddCommand(modelCmd)
}
