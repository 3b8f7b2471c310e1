// Deep Q-Learning training harness. The train command builds an
// environment, an agent variant, and a Trainer from a configuration
// file and runs the full training procedure, optionally resuming from
// a saved state or starting from a deployed checkpoint.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/NishantPrabhu/RL-Experiments/agent"
	_ "github.com/NishantPrabhu/RL-Experiments/agent/doubledqn"
	"github.com/NishantPrabhu/RL-Experiments/tracker"
	"github.com/NishantPrabhu/RL-Experiments/trainer"
)

var (
	configFile string
	resumeDir  string
	loadDir    string
	outputRoot string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "rl-experiments",
	Short: "Deep Q-Learning training harness",
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train an agent on a pixel environment",
	Long: `Train builds the environment, agent, and replay memory described by
the configuration file and runs episodic training with periodic
evaluation. The full training state is saved every epoch, and the
agent alone is checkpointed whenever an evaluation pass strictly
improves on the best observed return.`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&configFile, "config", "config.yaml",
		"training configuration file")
	trainCmd.Flags().StringVar(&resumeDir, "resume", "",
		"directory holding a saved training state to resume from")
	trainCmd.Flags().StringVar(&loadDir, "load", "",
		"directory holding an agent checkpoint to start from")
	trainCmd.Flags().StringVar(&outputRoot, "output-root", "outputs",
		"root directory for run outputs")
	trainCmd.Flags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")

	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}

	config, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	env, err := config.Environment.CreateEnv(config.FramesPerSample,
		config.Seed)
	if err != nil {
		return fmt.Errorf("could not create environment: %v", err)
	}

	stack := env.ObservationStack()
	a, err := agent.Create(config.Agent.Type, agent.Spec{
		Features:   stack.Len(),
		NumActions: env.ActionSpace().N(),
		BatchSize:  config.BatchSize,
		Seed:       config.Seed,
	}, config.Agent.Options)
	if err != nil {
		return fmt.Errorf("could not create agent: %v", err)
	}

	runDir := filepath.Join(outputRoot, string(config.Environment.EnvName),
		uuid.New().String())
	reporter := tracker.Multi{
		tracker.NewLog(logger),
		tracker.NewSeries(runDir),
		tracker.NewPlot(runDir),
	}

	t, err := trainer.New(config, env, a, reporter, logger, runDir,
		os.Stdout)
	if err != nil {
		return fmt.Errorf("could not create trainer: %v", err)
	}

	if resumeDir != "" {
		if err := t.Resume(resumeDir); err != nil {
			return err
		}
	}
	if loadDir != "" {
		if err := t.Load(loadDir); err != nil {
			return err
		}
	}

	logger.Info().Str("output_dir", t.OutputDir()).
		Str("environment", string(config.Environment.EnvName)).
		Str("agent", string(config.Agent.Type)).Msg("starting run")
	return t.Train()
}

// loadConfig reads the training configuration mapping from a viper
// supported configuration file.
func loadConfig(path string) (trainer.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return trainer.Config{}, fmt.Errorf("could not read "+
			"configuration: %v", err)
	}

	var config trainer.Config
	if err := v.Unmarshal(&config); err != nil {
		return trainer.Config{}, fmt.Errorf("could not parse "+
			"configuration: %v", err)
	}
	if err := config.Validate(); err != nil {
		return trainer.Config{}, fmt.Errorf("invalid configuration: %v",
			err)
	}
	return config, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %v",
			level, err)
	}
	writer := zerolog.NewConsoleWriter()
	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger(),
		nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
