package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1000, cfg.Data.NbSamples)
	assert.Equal(t, 5, cfg.Train.TrainBatchSize)
	assert.Equal(t, cfg.Data.NbSamples, cfg.Train.TestBatchSize)
	assert.Equal(t, 20, cfg.Train.Epochs)
	assert.InDelta(t, 0.001, cfg.Train.LearningRate, 1e-9)
	assert.InDelta(t, 0.9, cfg.Train.LRGamma, 1e-7)
	assert.InDelta(t, 0.5, cfg.Aux.Alpha, 1e-7)
	assert.Equal(t, 48, cfg.Best.CNN.BaseChannelSize)
	assert.Len(t, cfg.Search.Alphas, 10)
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 10)
	require.Len(t, got, 10)
	assert.Equal(t, float32(0), got[0])
	assert.Equal(t, float32(1), got[9])
	assert.InDelta(t, 1.0/9.0, got[1], 1e-6)

	assert.Equal(t, []float32{2}, Linspace(2, 5, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
train:
  epochs: 3
  train_batch_size: 10
cnn:
  kernel_size: 5
search:
  alphas: [0.0, 0.5, 1.0]
`))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Train.Epochs)
	assert.Equal(t, 10, cfg.Train.TrainBatchSize)
	assert.Equal(t, 5, cfg.CNN.KernelSize)
	assert.Equal(t, []float32{0, 0.5, 1}, cfg.Search.Alphas)

	// untouched sections keep their defaults
	assert.Equal(t, 1000, cfg.Data.NbSamples)
	assert.Equal(t, 64, cfg.CNN.HiddenLayer)
	assert.InDelta(t, 0.001, cfg.Train.LearningRate, 1e-9)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("train: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run:\n  rounds: 4\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Run.Rounds)
}

func TestLoadShippedDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "default.yaml"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Data, cfg.Data)
	assert.Equal(t, want.Train, cfg.Train)
	assert.Equal(t, want.Best, cfg.Best)
	assert.Equal(t, want.Run, cfg.Run)
	assert.InDeltaSlice(t, want.Search.Alphas, cfg.Search.Alphas, 1e-4)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run:\n  device: cuda\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Train.Epochs = 7

	raw, err := cfg.Marshal()
	require.NoError(t, err)

	back, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{
		Epochs:    2,
		NbSamples: 100,
		Rounds:    3,
		DataDir:   "/tmp/mnist",
		Synthetic: true,
		Seed:      42,
		LogLevel:  "debug",
	})

	assert.Equal(t, 2, cfg.Train.Epochs)
	assert.Equal(t, 100, cfg.Data.NbSamples)
	assert.Equal(t, 100, cfg.Train.TestBatchSize)
	assert.Equal(t, 3, cfg.Run.Rounds)
	assert.Equal(t, "/tmp/mnist", cfg.Data.Dir)
	assert.True(t, cfg.Data.Synthetic)
	assert.Equal(t, int64(42), cfg.Data.Seed)
	assert.Equal(t, "debug", cfg.Run.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestApplyOverridesZeroKeepsValues(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{})
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"zero epochs", func(c *Config) { c.Train.Epochs = 0 }, "train.epochs"},
		{"negative batch", func(c *Config) { c.Train.TrainBatchSize = -1 }, "train.train_batch_size"},
		{"zero rounds", func(c *Config) { c.Run.Rounds = 0 }, "run.rounds"},
		{"zero lr", func(c *Config) { c.Train.LearningRate = 0 }, "train.learning_rate"},
		{"gamma too large", func(c *Config) { c.Train.LRGamma = 1.5 }, "train.lr_gamma"},
		{"alpha out of range", func(c *Config) { c.Aux.Alpha = 1.2 }, "alpha"},
		{"even kernel", func(c *Config) { c.Search.KernelSizes = []int{4} }, "kernel size"},
		{"gpu device", func(c *Config) { c.Run.Device = "gpu" }, "unsupported device"},
		{"log level", func(c *Config) { c.Run.LogLevel = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrInvalidConfig)
}
