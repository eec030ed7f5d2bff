package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/lumo/internal/imgio"
	"github.com/MeKo-Tech/lumo/internal/pipeline"
)

// classifyResult is one still image's outcome.
type classifyResult struct {
	File       string  `json:"file" yaml:"file"`
	Index      int     `json:"index" yaml:"index"`
	Label      string  `json:"label,omitempty" yaml:"label,omitempty"`
	Confidence float32 `json:"confidence" yaml:"confidence"`
	ElapsedMs  float64 `json:"elapsed_ms" yaml:"elapsed_ms"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// classifyCmd represents the classify command.
var classifyCmd = &cobra.Command{
	Use:   "classify [image...]",
	Short: "Classify still images",
	Long: `Run the frame pipeline over one or more still images.

Each image goes through the same conversion, resampling, and normalization
path live camera frames take.

Supported formats: JPEG, PNG, BMP

Examples:
  lumo classify photo.jpg
  lumo classify *.png --format json
  lumo classify cat.jpg --model model.onnx --labels labels.txt`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		if err := validateFormat(cfg.Output.Format); err != nil {
			return err
		}

		classifier, err := buildClassifier(cfg, nil)
		if err != nil {
			return fmt.Errorf("build pipeline: %w", err)
		}
		defer func() { _ = classifier.Close() }()

		results := make([]classifyResult, 0, len(args))
		for _, path := range args {
			results = append(results, classifyOne(classifier, path))
		}

		w, done, err := outputWriter(cfg)
		if err != nil {
			return err
		}
		defer done()
		return renderClassifyResults(w, results, cfg.Output.Format)
	},
}

func classifyOne(c *pipeline.Classifier, path string) classifyResult {
	res := classifyResult{File: path, Index: -1}

	img, _, err := imgio.Load(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	pred, err := c.ClassifyImage(img)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Index = pred.Index
	res.Label = pred.Label
	res.Confidence = pred.Confidence
	res.ElapsedMs = float64(pred.Elapsed.Microseconds()) / 1000.0
	return res
}

func renderClassifyResults(w io.Writer, results []classifyResult, format string) error {
	if format != formatText {
		return encode(w, results, format)
	}
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s: error: %s\n", r.File, r.Error)
			continue
		}
		label := r.Label
		if r.Index < 0 {
			label = "none"
		} else if label == "" {
			label = fmt.Sprintf("class %d", r.Index)
		}
		fmt.Fprintf(w, "%s: %s (%.2f) in %.1fms\n", r.File, label, r.Confidence, r.ElapsedMs)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().String("output", "", "write results to file instead of stdout")
	_ = viper.BindPFlag("output.file", classifyCmd.Flags().Lookup("output"))
}
