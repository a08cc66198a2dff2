package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/born-ml/siamese/internal/backend/cpu"
	"github.com/born-ml/siamese/internal/config"
	"github.com/born-ml/siamese/internal/dataset"
	"github.com/born-ml/siamese/internal/models"
	"github.com/born-ml/siamese/internal/nn"
	"github.com/born-ml/siamese/internal/train"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// Runner executes experiments against one configuration and one pair of datasets.
type Runner struct {
	cfg     *config.Config
	backend *cpu.CPUBackend
	out     io.Writer
	logger  *slog.Logger
	rng     *rand.Rand

	trainSet *dataset.PairDataset
	testSet  *dataset.PairDataset
}

// NewRunner validates cfg and prepares a runner writing its report to out.
// logger may be nil.
func NewRunner(cfg *config.Config, out io.Writer, logger *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if out == nil {
		out = io.Discard
	}

	backend := cpu.New()
	logger.Info("device selected", "device", cfg.Run.Device, "backend", backend.Describe())

	return &Runner{
		cfg:     cfg,
		backend: backend,
		out:     out,
		logger:  logger,
		rng:     rand.New(rand.NewSource(cfg.Data.Seed)),
	}, nil
}

// Summary aggregates the final-epoch metrics of every round of one run.
type Summary struct {
	RunID     string
	Histories []*train.History

	TrainLoss Stat
	TrainAcc  Stat
	TestLoss  Stat
	TestAcc   Stat
}

// Stat is the mean and sample standard deviation of a metric over rounds.
// Std is zero for a single round.
type Stat struct {
	Mean float64
	Std  float64
}

func newStat(values []float64) Stat {
	if len(values) < 2 {
		return Stat{Mean: stat.Mean(values, nil)}
	}
	mean, std := stat.MeanStdDev(values, nil)
	return Stat{Mean: mean, Std: std}
}

func summarize(runID string, histories []*train.History) Summary {
	var trainLoss, trainAcc, testLoss, testAcc []float64
	for _, h := range histories {
		tr, te := h.Final()
		trainLoss = append(trainLoss, tr.Loss)
		trainAcc = append(trainAcc, tr.Accuracy)
		testLoss = append(testLoss, te.Loss)
		testAcc = append(testAcc, te.Accuracy)
	}
	return Summary{
		RunID:     runID,
		Histories: histories,
		TrainLoss: newStat(trainLoss),
		TrainAcc:  newStat(trainAcc),
		TestLoss:  newStat(testLoss),
		TestAcc:   newStat(testAcc),
	}
}

// GridResult is the outcome of one grid entry.
type GridResult struct {
	Entry Entry
	Summary
}

// Run trains every grid entry cfg.Run.Rounds times with its best architecture.
func (r *Runner) Run(ctx context.Context) ([]GridResult, error) {
	if err := r.loadData(); err != nil {
		return nil, err
	}

	var results []GridResult
	for _, entry := range Grid() {
		arch := BestArchitecture(r.cfg, entry.Kind)
		printHeader(r.out, entry)

		summary, err := r.rounds(ctx, entry.String(), func(logger *slog.Logger) (*train.History, error) {
			return r.trainSiamese(ctx, arch, entry.WeightSharing, entry.AuxLoss, logger)
		})
		if err != nil {
			return results, fmt.Errorf("%s: %w", entry, err)
		}
		results = append(results, GridResult{Entry: entry, Summary: summary})
	}
	printSeparator(r.out)
	return results, nil
}

// Baseline trains BasicNet cfg.Run.Rounds times.
func (r *Runner) Baseline(ctx context.Context) (Summary, error) {
	if err := r.loadData(); err != nil {
		return Summary{}, err
	}

	printSeparator(r.out)
	fmt.Fprintf(r.out, "\nBasicNet (nb_hidden=%d, hidden=%d)\n", r.cfg.Basic.NbHidden, r.cfg.Basic.HiddenLayer)

	summary, err := r.rounds(ctx, "BasicNet", func(logger *slog.Logger) (*train.History, error) {
		model := models.NewBasicNet(r.cfg.Basic.NbHidden, r.cfg.Basic.HiddenLayer, r.backend, r.rng)
		logger.Debug("model built", "model", model.String(), "parameters", nn.CountParameters(model))
		opts := r.trainOptions(logger)
		opts.LR = r.cfg.Basic.LearningRate
		return train.TrainBasic(ctx, model, r.trainSet, r.testSet, opts)
	})
	if err != nil {
		return summary, fmt.Errorf("basic: %w", err)
	}
	printSeparator(r.out)
	return summary, nil
}

// rounds repeats run cfg.Run.Rounds times under one run ID and reports each round.
func (r *Runner) rounds(ctx context.Context, name string, run func(logger *slog.Logger) (*train.History, error)) (Summary, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID, "run", name)

	var histories []*train.History
	for round := 1; round <= r.cfg.Run.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return summarize(runID, histories), err
		}
		roundLogger := logger.With("round", round)
		roundLogger.Info("train beginning")
		fmt.Fprintln(r.out, "\nTrain beginning...")

		history, err := run(roundLogger)
		if err != nil {
			return summarize(runID, histories), err
		}
		histories = append(histories, history)

		fmt.Fprintln(r.out, "\nTrain complete !")
		printFinal(r.out, history)
		_, test := history.Final()
		roundLogger.Info("train complete", "test_loss", test.Loss, "test_acc", test.Accuracy)
	}

	summary := summarize(runID, histories)
	if len(histories) > 1 {
		printRounds(r.out, summary)
	}
	return summary, nil
}

func (r *Runner) trainOptions(logger *slog.Logger) train.Options {
	return train.Options{
		Epochs:        r.cfg.Train.Epochs,
		LR:            r.cfg.Train.LearningRate,
		Gamma:         r.cfg.Train.LRGamma,
		BatchSize:     r.cfg.Train.TrainBatchSize,
		TestBatchSize: r.cfg.Train.TestBatchSize,
		Rand:          r.rng,
		Logger:        logger,
	}
}

// trainSiamese builds a fresh Siamese model for arch and trains it once.
func (r *Runner) trainSiamese(ctx context.Context, arch Architecture, weightSharing, auxLoss bool, logger *slog.Logger) (*train.History, error) {
	left := models.NewSubnet(arch.Subnet, r.backend, r.rng)
	var right nn.Module
	if !weightSharing {
		right = models.NewSubnet(arch.Subnet, r.backend, r.rng)
	}
	model := models.NewSiameseNet(left, right, arch.Head.NbHidden, arch.Head.HiddenLayer, r.backend, r.rng)

	params := 0
	for _, p := range model.Parameters() {
		params += p.Tensor().NumElements()
	}
	logger.Debug("model built", "model", model.String(), "parameters", params)

	opts := r.trainOptions(logger)
	opts.AuxLoss = auxLoss
	opts.Alpha = arch.Alpha
	return train.TrainSiamese(ctx, model, r.trainSet, r.testSet, opts)
}

func (r *Runner) loadData() error {
	if r.trainSet != nil {
		return nil
	}
	trainSet, testSet, err := dataset.Load(r.cfg.Data.Dir, r.cfg.Data.Synthetic, r.cfg.Data.NbSamples, r.rng, r.logger)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	r.trainSet, r.testSet = trainSet, testSet
	r.logger.Info("pair sets ready", "train", trainSet.Len(), "test", testSet.Len())
	return nil
}
