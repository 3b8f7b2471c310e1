// Package trainer implements the training harness: replay memory
// initialization, episodic training with interleaved learning
// updates, periodic evaluation, and checkpointing with resumption.
package trainer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/NishantPrabhu/RL-Experiments/agent"
	"github.com/NishantPrabhu/RL-Experiments/environment"
	"github.com/NishantPrabhu/RL-Experiments/expreplay"
	"github.com/NishantPrabhu/RL-Experiments/timestep"
	"github.com/NishantPrabhu/RL-Experiments/tracker"
	"github.com/NishantPrabhu/RL-Experiments/utils/progressbar"
)

// Persisted artifact filenames. The state file is the resumability
// snapshot written every epoch; the checkpoint file holds the agent
// only and is written on strict evaluation improvement.
const (
	StateFilename      = "last_state.bin"
	CheckpointFilename = "checkpoint.bin"
)

const barWidth = 50

// state is the resumability snapshot persisted after every training
// epoch. The agent is stored as its opaque gob encoding so that the
// snapshot format does not depend on the agent variant in use.
type state struct {
	Epoch      int
	BestReturn float64
	Memory     *expreplay.Memory
	Agent      []byte
}

// Metrics holds the averaged results of one or more episodes
type Metrics struct {
	Loss   float64
	Reward float64
}

// Trainer orchestrates the interaction between an environment, an
// agent, and a replay memory: it populates the memory, runs episodic
// training with learning updates at a fixed action cadence, evaluates
// periodically, and persists both a resumability snapshot and a
// best-performance checkpoint.
//
// Trainers are single-threaded: environment steps, memory writes, and
// learning updates happen strictly sequentially, and no method may be
// called concurrently with another.
type Trainer struct {
	config   Config
	env      environment.Environment
	agent    agent.Agent
	memory   *expreplay.Memory
	reporter tracker.Reporter
	logger   zerolog.Logger

	outputDir  string
	startEpoch int
	bestReturn float64
	progress   io.Writer
}

// New creates a Trainer that trains a on env, reporting metrics
// through reporter and writing persisted artifacts to outputDir.
// Progress bars are drawn on progress; pass nil to disable them.
func New(config Config, env environment.Environment, a agent.Agent,
	reporter tracker.Reporter, logger zerolog.Logger, outputDir string,
	progress io.Writer) (*Trainer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: invalid configuration: %v", err)
	}

	stack := env.ObservationStack()
	if stack.StackSize != config.FramesPerSample {
		return nil, fmt.Errorf("new: environment observation stack does "+
			"not match the configuration \n\twant(%v frames) \n\thave(%v)",
			config.FramesPerSample, stack.StackSize)
	}

	memory, err := expreplay.New(config.MemorySize, stack, config.Seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create replay memory: %v",
			err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("new: could not create output directory: %v",
			err)
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Trainer{
		config:     config,
		env:        env,
		agent:      a,
		memory:     memory,
		reporter:   reporter,
		logger:     logger,
		outputDir:  outputDir,
		startEpoch: 1,
		progress:   progress,
	}, nil
}

// OutputDir returns the directory persisted artifacts are written to
func (t *Trainer) OutputDir() string {
	return t.outputDir
}

// StartEpoch returns the first epoch the next call to Train will run
func (t *Trainer) StartEpoch() int {
	return t.startEpoch
}

// BestReturn returns the best evaluation-average reward observed so
// far
func (t *Trainer) BestReturn() float64 {
	return t.bestReturn
}

// Memory returns the Trainer's replay memory
func (t *Trainer) Memory() *expreplay.Memory {
	return t.memory
}

// SaveState persists the resumability snapshot for the argument epoch:
// the epoch number, the best evaluation return, the full replay
// memory, and the agent.
func (t *Trainer) SaveState(epoch int) error {
	agentBytes, err := t.agent.GobEncode()
	if err != nil {
		return &TrainerError{Op: "savestate", Err: err}
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	snapshot := state{
		Epoch:      epoch,
		BestReturn: t.bestReturn,
		Memory:     t.memory,
		Agent:      agentBytes,
	}
	if err := enc.Encode(snapshot); err != nil {
		return &TrainerError{Op: "savestate", Err: err}
	}

	filename := filepath.Join(t.outputDir, StateFilename)
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return &TrainerError{Op: "savestate", Err: err}
	}
	return nil
}

// Resume restores the Trainer from the resumability snapshot in dir.
// The replay memory, agent, and best return are replaced wholesale,
// training will continue from the epoch after the saved one, and all
// subsequent artifacts are written to dir. If dir holds no snapshot,
// Resume fails with an error satisfying IsMissingState.
func (t *Trainer) Resume(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, StateFilename))
	if os.IsNotExist(err) {
		return &TrainerError{Op: "resume", Err: errMissingState}
	} else if err != nil {
		return &TrainerError{Op: "resume", Err: err}
	}

	var snapshot state
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&snapshot); err != nil {
		return &TrainerError{Op: "resume", Err: err}
	}
	if err := t.agent.GobDecode(snapshot.Agent); err != nil {
		return &TrainerError{Op: "resume", Err: err}
	}

	t.memory = snapshot.Memory
	t.bestReturn = snapshot.BestReturn
	t.startEpoch = snapshot.Epoch + 1
	t.outputDir = dir

	t.logger.Info().Str("dir", dir).Int("start_epoch", t.startEpoch).
		Msg("resuming training from saved state")
	return nil
}

// SaveCheckpoint persists the agent alone as the best-performance
// checkpoint, the artifact intended for deployment.
func (t *Trainer) SaveCheckpoint() error {
	agentBytes, err := t.agent.GobEncode()
	if err != nil {
		return &TrainerError{Op: "savecheckpoint", Err: err}
	}

	filename := filepath.Join(t.outputDir, CheckpointFilename)
	if err := os.WriteFile(filename, agentBytes, 0o644); err != nil {
		return &TrainerError{Op: "savecheckpoint", Err: err}
	}
	return nil
}

// Load restores only the agent from the best-performance checkpoint
// in dir and redirects subsequent artifacts there. The replay memory,
// epoch, and best return are untouched. If dir holds no checkpoint,
// Load fails with an error satisfying IsMissingCheckpoint.
func (t *Trainer) Load(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, CheckpointFilename))
	if os.IsNotExist(err) {
		return &TrainerError{Op: "load", Err: errMissingCheckpoint}
	} else if err != nil {
		return &TrainerError{Op: "load", Err: err}
	}

	if err := t.agent.GobDecode(data); err != nil {
		return &TrainerError{Op: "load", Err: err}
	}
	t.outputDir = dir

	t.logger.Info().Str("dir", dir).Msg("loaded agent checkpoint")
	return nil
}

// InitializeMemory populates the replay memory with transitions from
// uniformly random actions so that early learning updates never draw
// from a near-empty sample pool. At every learning_interval-th step, a
// learning update runs once the memory holds more transitions than one
// batch.
func (t *Trainer) InitializeMemory() error {
	bar := progressbar.New(t.progress, barWidth, t.config.MemoryInitSteps,
		"Initializing memory")
	defer bar.Close()

	obs, err := t.env.Reset()
	if err != nil {
		return fmt.Errorf("initializememory: %v", err)
	}

	for step := 0; step < t.config.MemoryInitSteps; step++ {
		action := t.env.ActionSpace().Sample()
		next, reward, done, err := t.env.Step(action)
		if err != nil {
			return fmt.Errorf("initializememory: %v", err)
		}
		err = t.memory.Add(timestep.New(obs, action, next, reward, done))
		if err != nil {
			return fmt.Errorf("initializememory: %v", err)
		}

		if !done {
			obs = next
		} else if obs, err = t.env.Reset(); err != nil {
			return fmt.Errorf("initializememory: %v", err)
		}

		if step%t.config.LearningInterval == 0 &&
			t.memory.Filled() > t.config.BatchSize {
			batch, err := t.memory.Batch(t.config.BatchSize)
			if err != nil {
				return fmt.Errorf("initializememory: %v", err)
			}
			if _, err := t.agent.LearnFromBatch(batch); err != nil {
				return fmt.Errorf("initializememory: %v", err)
			}
		}

		bar.Increment("")
		bar.Display()
	}
	return nil
}

// TrainEpisode runs a single training episode to its terminal state
// and returns its averaged loss and cumulative reward. The agent
// selects actions with exploration enabled, every transition is
// stored, and a learning update fires whenever the agent's lifetime
// action count is an exact multiple of learning_interval. An episode
// during which no update fired reports zero loss.
func (t *Trainer) TrainEpisode() (Metrics, error) {
	var losses []float64
	totalReward := 0.0

	obs, err := t.env.Reset()
	if err != nil {
		return Metrics{}, fmt.Errorf("trainepisode: %v", err)
	}

	for finished := false; !finished; {
		action, err := t.agent.SelectAction(obs, true)
		if err != nil {
			return Metrics{}, fmt.Errorf("trainepisode: %v", err)
		}
		next, reward, done, err := t.env.Step(action)
		if err != nil {
			return Metrics{}, fmt.Errorf("trainepisode: %v", err)
		}
		err = t.memory.Add(timestep.New(obs, action, next, reward, done))
		if err != nil {
			return Metrics{}, fmt.Errorf("trainepisode: %v", err)
		}

		totalReward += reward
		if done {
			finished = true
		} else {
			obs = next
		}

		if t.agent.ActionSteps()%t.config.LearningInterval == 0 {
			batch, err := t.memory.Batch(t.config.BatchSize)
			if err != nil {
				return Metrics{}, fmt.Errorf("trainepisode: %v", err)
			}
			loss, err := t.agent.LearnFromBatch(batch)
			if err != nil {
				return Metrics{}, fmt.Errorf("trainepisode: %v", err)
			}
			losses = append(losses, loss)
		}
	}

	metrics := Metrics{Reward: totalReward}
	if len(losses) > 0 {
		metrics.Loss = stat.Mean(losses, nil)
	}
	return metrics, nil
}

// EvalEpisode runs a single evaluation episode to its terminal state
// and returns its cumulative reward. The agent acts greedily, and no
// transitions are stored and no learning updates run.
func (t *Trainer) EvalEpisode() (float64, error) {
	totalReward := 0.0

	obs, err := t.env.Reset()
	if err != nil {
		return 0, fmt.Errorf("evalepisode: %v", err)
	}

	for finished := false; !finished; {
		action, err := t.agent.SelectAction(obs, false)
		if err != nil {
			return 0, fmt.Errorf("evalepisode: %v", err)
		}
		next, reward, done, err := t.env.Step(action)
		if err != nil {
			return 0, fmt.Errorf("evalepisode: %v", err)
		}

		totalReward += reward
		if done {
			finished = true
		} else {
			obs = next
		}
	}
	return totalReward, nil
}

// Train runs the full training procedure: memory initialization, then
// train_epochs epochs of episodic training with the resumability
// snapshot saved after every epoch and an evaluation pass every
// eval_every epochs. When an evaluation pass strictly improves on the
// best observed return, the best-performance checkpoint is
// overwritten. Metrics are reported per epoch and the reporter is
// flushed before returning.
func (t *Trainer) Train() error {
	t.logger.Info().Int("steps", t.config.MemoryInitSteps).
		Msg("initializing replay memory")
	if err := t.InitializeMemory(); err != nil {
		return fmt.Errorf("train: %v", err)
	}

	t.logger.Info().Int("start_epoch", t.startEpoch).
		Int("train_epochs", t.config.TrainEpochs).Msg("beginning training")

	for epoch := t.startEpoch; epoch <= t.config.TrainEpochs; epoch++ {
		if err := t.trainEpoch(epoch); err != nil {
			return fmt.Errorf("train: %v", err)
		}
		if err := t.SaveState(epoch); err != nil {
			return fmt.Errorf("train: %v", err)
		}

		if epoch%t.config.EvalEvery == 0 {
			if err := t.evalEpoch(epoch); err != nil {
				return fmt.Errorf("train: %v", err)
			}
		}
	}

	if err := t.reporter.Flush(); err != nil {
		return fmt.Errorf("train: could not flush metrics: %v", err)
	}
	t.logger.Info().Float64("best_return", t.bestReturn).
		Msg("completed training")
	return nil
}

// trainEpoch runs the training episodes of one epoch and reports
// their averaged metrics.
func (t *Trainer) trainEpoch(epoch int) error {
	t.agent.Train()

	desc := fmt.Sprintf("[TRAIN] Epoch %3d/%3d", epoch,
		t.config.TrainEpochs)
	bar := progressbar.New(t.progress, barWidth, t.config.EpisodesPerEpoch,
		desc)
	defer bar.Close()

	losses := make([]float64, 0, t.config.EpisodesPerEpoch)
	rewards := make([]float64, 0, t.config.EpisodesPerEpoch)
	for episode := 0; episode < t.config.EpisodesPerEpoch; episode++ {
		metrics, err := t.TrainEpisode()
		if err != nil {
			return err
		}
		losses = append(losses, metrics.Loss)
		rewards = append(rewards, metrics.Reward)

		bar.Increment(fmt.Sprintf("loss: %.4f  reward: %.4f",
			stat.Mean(losses, nil), stat.Mean(rewards, nil)))
		bar.Display()
	}

	loss, reward := stat.Mean(losses, nil), stat.Mean(rewards, nil)
	t.reporter.Record(epoch, map[string]float64{
		"train_loss":   loss,
		"train_reward": reward,
	})
	t.logger.Info().Int("epoch", epoch).Float64("train_loss", loss).
		Float64("train_reward", reward).Msg("completed training epoch")
	return nil
}

// evalEpoch runs the evaluation episodes of one epoch, reports their
// averaged reward, and overwrites the best-performance checkpoint on
// strict improvement.
func (t *Trainer) evalEpoch(epoch int) error {
	t.agent.Eval()

	desc := fmt.Sprintf("[VALID] Epoch %3d/%3d", epoch,
		t.config.TrainEpochs)
	bar := progressbar.New(t.progress, barWidth,
		t.config.EvalEpisodesPerEpoch, desc)
	defer bar.Close()

	rewards := make([]float64, 0, t.config.EvalEpisodesPerEpoch)
	for episode := 0; episode < t.config.EvalEpisodesPerEpoch; episode++ {
		reward, err := t.EvalEpisode()
		if err != nil {
			return err
		}
		rewards = append(rewards, reward)

		bar.Increment(fmt.Sprintf("reward: %.4f", stat.Mean(rewards, nil)))
		bar.Display()
	}

	reward := stat.Mean(rewards, nil)
	t.reporter.Record(epoch, map[string]float64{"eval_reward": reward})
	t.logger.Info().Int("epoch", epoch).Float64("eval_reward", reward).
		Msg("completed evaluation epoch")

	if reward > t.bestReturn {
		t.bestReturn = reward
		if err := t.SaveCheckpoint(); err != nil {
			return err
		}
		t.logger.Info().Float64("best_return", t.bestReturn).
			Msg("saved new best checkpoint")
	}
	return nil
}
