package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/lumo/internal/config"
	"github.com/MeKo-Tech/lumo/internal/models"
	"github.com/MeKo-Tech/lumo/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lumo",
	Short: "Live camera-frame classification pipeline",
	Long: `Classify camera frames with a fixed-shape ONNX model.

lumo converts planar YUV frames to RGB, resamples them to the model's
input resolution, normalizes them into a float tensor, runs inference,
and decodes the result to a class label, at minimal per-frame latency.

Examples:
  lumo classify photo.jpg
  lumo live --source synthetic --fps 15
  lumo serve --port 8080
  lumo model --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.PersistentFlags().GetBool("version"); v {
			printVersion(cmd)
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command so tests can execute commands
// without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func printVersion(cmd *cobra.Command) {
	v, commit, date := version.Info()
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "lumo version %s\n", v)
	_, _ = fmt.Fprintf(out, "Commit: %s\n", commit)
	_, _ = fmt.Fprintf(out, "Date: %s\n", date)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/lumo, /etc/lumo)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	defaultModelsDir := models.DefaultModelsDir
	if envDir := os.Getenv(models.EnvModelsDir); envDir != "" {
		defaultModelsDir = envDir
	}
	rootCmd.PersistentFlags().String("models-dir", defaultModelsDir,
		"directory containing model artifacts (can also be set via LUMO_MODELS_DIR)")

	rootCmd.PersistentFlags().String("model", "", "classifier model path (overrides models-dir resolution)")
	rootCmd.PersistentFlags().String("labels", "", "label table path, one class name per line")
	rootCmd.PersistentFlags().Float64("mean", 0, "normalization mean: tensor = (pixel - mean) / scale")
	rootCmd.PersistentFlags().Float64("scale", 255, "normalization scale: tensor = (pixel - mean) / scale")
	rootCmd.PersistentFlags().Bool("softmax", false, "report softmax probabilities (for logit-output models)")
	rootCmd.PersistentFlags().Int("threads", 0, "inference thread count (0 = auto)")
	rootCmd.PersistentFlags().Int("warmup", 0, "warmup inference passes at startup")
	rootCmd.PersistentFlags().Bool("gpu", false, "enable GPU acceleration")
	rootCmd.PersistentFlags().String("format", "text", "output format (text, json, yaml)")

	rootCmd.PersistentFlags().Bool("version", false, "print version information and exit")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("models_dir", rootCmd.PersistentFlags().Lookup("models-dir"))
	_ = viper.BindPFlag("model.path", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("model.labels_path", rootCmd.PersistentFlags().Lookup("labels"))
	_ = viper.BindPFlag("model.mean", rootCmd.PersistentFlags().Lookup("mean"))
	_ = viper.BindPFlag("model.scale", rootCmd.PersistentFlags().Lookup("scale"))
	_ = viper.BindPFlag("model.softmax", rootCmd.PersistentFlags().Lookup("softmax"))
	_ = viper.BindPFlag("model.num_threads", rootCmd.PersistentFlags().Lookup("threads"))
	_ = viper.BindPFlag("pipeline.warmup_iterations", rootCmd.PersistentFlags().Lookup("warmup"))
	_ = viper.BindPFlag("gpu.enabled", rootCmd.PersistentFlags().Lookup("gpu"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if globalConfig == nil {
			initConfig()
		}

		var logLevel slog.Level
		if globalConfig.Verbose {
			logLevel = slog.LevelDebug
		} else {
			switch globalConfig.LogLevel {
			case "debug":
				logLevel = slog.LevelDebug
			case "warn":
				logLevel = slog.LevelWarn
			case "error":
				logLevel = slog.LevelError
			default:
				logLevel = slog.LevelInfo
			}
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configLoader = config.NewLoader()

	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFile(cfgFile)
	} else {
		globalConfig, err = configLoader.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the effective configuration, re-unmarshaled so CLI flag
// bindings registered after the initial load are included.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}

	loader := GetConfigLoader()
	var cfg config.Config
	if err := loader.GetViper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig
	}
	return &cfg
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}
