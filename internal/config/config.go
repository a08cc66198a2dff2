// Package config holds the hyperparameters of the digit-pair experiments.
//
// A run starts from Default, optionally merges a YAML file over it with Load,
// applies command-line Overrides and finally checks the result with Validate.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config captures every knob of a training run.
type Config struct {
	Data    DataConfig   `yaml:"data"`
	Train   TrainConfig  `yaml:"train"`
	Aux     AuxConfig    `yaml:"aux"`
	FCN     FCNConfig    `yaml:"fcn"`
	CNN     CNNConfig    `yaml:"cnn"`
	Siamese HeadConfig   `yaml:"siamese"`
	Basic   BasicConfig  `yaml:"basic"`
	Best    BestConfig   `yaml:"best"`
	Search  SearchConfig `yaml:"search"`
	Run     RunConfig    `yaml:"run"`
}

// DataConfig selects where pairs come from and how many are drawn.
type DataConfig struct {
	NbSamples int    `yaml:"nb_samples"`
	Dir       string `yaml:"data_dir"`
	Synthetic bool   `yaml:"synthetic"`
	Seed      int64  `yaml:"seed"`
}

// TrainConfig is the optimizer and loop setup shared by all models.
type TrainConfig struct {
	LearningRate   float32 `yaml:"learning_rate"`
	TrainBatchSize int     `yaml:"train_batch_size"`
	TestBatchSize  int     `yaml:"test_batch_size"`
	Epochs         int     `yaml:"epochs"`
	LRGamma        float32 `yaml:"lr_gamma"`
}

// AuxConfig weights the main loss against the auxiliary digit losses.
type AuxConfig struct {
	Alpha float32 `yaml:"alpha"`
}

// FCNConfig sizes the fully-connected digit subnet.
type FCNConfig struct {
	HiddenLayer int `yaml:"hidden_layer"`
	NbHidden    int `yaml:"nb_hidden"`
}

// CNNConfig sizes the convolutional digit subnet.
type CNNConfig struct {
	HiddenLayer     int `yaml:"hidden_layer"`
	BaseChannelSize int `yaml:"base_channel_size"`
	NbHidden        int `yaml:"nb_hidden"`
	KernelSize      int `yaml:"kernel_size"`
}

// HeadConfig sizes the comparison head of the Siamese network.
type HeadConfig struct {
	HiddenLayer int `yaml:"hidden_layer"`
	NbHidden    int `yaml:"nb_hidden"`
}

// BasicConfig sizes the baseline network that sees both images at once.
type BasicConfig struct {
	HiddenLayer  int     `yaml:"hidden_layer"`
	NbHidden     int     `yaml:"nb_hidden"`
	LearningRate float32 `yaml:"learning_rate"`
}

// BestConfig holds the settings found by Search and used by the grid.
type BestConfig struct {
	AlphaFCN   float32    `yaml:"alpha_fcn"`
	AlphaCNN   float32    `yaml:"alpha_cnn"`
	FCN        FCNConfig  `yaml:"fcn"`
	CNN        CNNConfig  `yaml:"cnn"`
	SiameseFCN HeadConfig `yaml:"siamese_fcn"`
	SiameseCNN HeadConfig `yaml:"siamese_cnn"`
}

// SearchConfig lists the candidate values explored by each search.
type SearchConfig struct {
	KernelSizes []int     `yaml:"kernel_sizes"`
	NbChannels  []int     `yaml:"nb_channels"`
	FCNeurons   []int     `yaml:"fc_neurons"`
	NbLayers    []int     `yaml:"nb_layers"`
	Alphas      []float32 `yaml:"alphas"`
}

// RunConfig controls repetition, placement and verbosity.
type RunConfig struct {
	Rounds   int    `yaml:"rounds"`
	Device   string `yaml:"device"`
	LogLevel string `yaml:"log_level"`
}

// Overrides captures CLI supplied values. Zero values leave the config untouched.
type Overrides struct {
	Epochs    int
	NbSamples int
	Rounds    int
	DataDir   string
	Synthetic bool
	Seed      int64
	LogLevel  string
}

// Default returns the configuration the experiments were tuned with.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			NbSamples: 1000,
			Dir:       "./data",
		},
		Train: TrainConfig{
			LearningRate:   0.001,
			TrainBatchSize: 5,
			TestBatchSize:  1000,
			Epochs:         20,
			LRGamma:        0.9,
		},
		Aux:     AuxConfig{Alpha: 0.5},
		FCN:     FCNConfig{HiddenLayer: 64, NbHidden: 1},
		CNN:     CNNConfig{HiddenLayer: 64, BaseChannelSize: 4, NbHidden: 1, KernelSize: 3},
		Siamese: HeadConfig{HiddenLayer: 128, NbHidden: 2},
		Basic:   BasicConfig{HiddenLayer: 512, NbHidden: 1, LearningRate: 0.00001},
		Best: BestConfig{
			AlphaFCN:   0.22,
			AlphaCNN:   0.22,
			FCN:        FCNConfig{HiddenLayer: 64, NbHidden: 1},
			CNN:        CNNConfig{HiddenLayer: 64, BaseChannelSize: 48, NbHidden: 1, KernelSize: 3},
			SiameseFCN: HeadConfig{HiddenLayer: 128, NbHidden: 2},
			SiameseCNN: HeadConfig{HiddenLayer: 128, NbHidden: 2},
		},
		Search: SearchConfig{
			KernelSizes: []int{3, 5},
			NbChannels:  []int{4, 8, 16, 24, 48},
			FCNeurons:   []int{32, 64, 128, 256, 512},
			NbLayers:    []int{1, 2, 3},
			Alphas:      Linspace(0, 1, 10),
		},
		Run: RunConfig{
			Rounds:   1,
			Device:   "cpu",
			LogLevel: "info",
		},
	}
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over Default. Keys absent from raw keep their defaults.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Epochs > 0 {
		c.Train.Epochs = o.Epochs
	}
	if o.NbSamples > 0 {
		c.Data.NbSamples = o.NbSamples
		c.Train.TestBatchSize = o.NbSamples
	}
	if o.Rounds > 0 {
		c.Run.Rounds = o.Rounds
	}
	if o.DataDir != "" {
		c.Data.Dir = o.DataDir
	}
	if o.Synthetic {
		c.Data.Synthetic = true
	}
	if o.Seed != 0 {
		c.Data.Seed = o.Seed
	}
	if o.LogLevel != "" {
		c.Run.LogLevel = o.LogLevel
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	positive := []struct {
		name  string
		value int
	}{
		{"data.nb_samples", c.Data.NbSamples},
		{"train.train_batch_size", c.Train.TrainBatchSize},
		{"train.test_batch_size", c.Train.TestBatchSize},
		{"train.epochs", c.Train.Epochs},
		{"fcn.hidden_layer", c.FCN.HiddenLayer},
		{"fcn.nb_hidden", c.FCN.NbHidden},
		{"cnn.hidden_layer", c.CNN.HiddenLayer},
		{"cnn.base_channel_size", c.CNN.BaseChannelSize},
		{"cnn.nb_hidden", c.CNN.NbHidden},
		{"cnn.kernel_size", c.CNN.KernelSize},
		{"siamese.hidden_layer", c.Siamese.HiddenLayer},
		{"siamese.nb_hidden", c.Siamese.NbHidden},
		{"basic.hidden_layer", c.Basic.HiddenLayer},
		{"basic.nb_hidden", c.Basic.NbHidden},
		{"best.fcn.hidden_layer", c.Best.FCN.HiddenLayer},
		{"best.fcn.nb_hidden", c.Best.FCN.NbHidden},
		{"best.cnn.hidden_layer", c.Best.CNN.HiddenLayer},
		{"best.cnn.base_channel_size", c.Best.CNN.BaseChannelSize},
		{"best.cnn.nb_hidden", c.Best.CNN.NbHidden},
		{"best.cnn.kernel_size", c.Best.CNN.KernelSize},
		{"best.siamese_fcn.hidden_layer", c.Best.SiameseFCN.HiddenLayer},
		{"best.siamese_fcn.nb_hidden", c.Best.SiameseFCN.NbHidden},
		{"best.siamese_cnn.hidden_layer", c.Best.SiameseCNN.HiddenLayer},
		{"best.siamese_cnn.nb_hidden", c.Best.SiameseCNN.NbHidden},
		{"run.rounds", c.Run.Rounds},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be > 0 (got %d)", ErrInvalidConfig, p.name, p.value)
		}
	}

	if c.Train.LearningRate <= 0 {
		return fmt.Errorf("%w: train.learning_rate must be > 0 (got %g)", ErrInvalidConfig, c.Train.LearningRate)
	}
	if c.Basic.LearningRate <= 0 {
		return fmt.Errorf("%w: basic.learning_rate must be > 0 (got %g)", ErrInvalidConfig, c.Basic.LearningRate)
	}
	if c.Train.LRGamma <= 0 || c.Train.LRGamma > 1 {
		return fmt.Errorf("%w: train.lr_gamma must be in (0, 1] (got %g)", ErrInvalidConfig, c.Train.LRGamma)
	}

	alphas := append([]float32{c.Aux.Alpha, c.Best.AlphaFCN, c.Best.AlphaCNN}, c.Search.Alphas...)
	for _, a := range alphas {
		if a < 0 || a > 1 {
			return fmt.Errorf("%w: alpha must be in [0, 1] (got %g)", ErrInvalidConfig, a)
		}
	}

	// Two 2x2 poolings must leave at least one pixel of the 14x14 input.
	for _, k := range append([]int{c.CNN.KernelSize, c.Best.CNN.KernelSize}, c.Search.KernelSizes...) {
		if k <= 0 || k%2 == 0 || k > 7 {
			return fmt.Errorf("%w: kernel size must be odd and in [1, 7] (got %d)", ErrInvalidConfig, k)
		}
	}

	if c.Run.Device != "cpu" {
		return fmt.Errorf("%w: unsupported device %q (only \"cpu\" is available)", ErrInvalidConfig, c.Run.Device)
	}

	switch c.Run.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Run.LogLevel)
	}
	return nil
}

// Linspace returns n evenly spaced values over [start, stop], both included.
func Linspace(start, stop float32, n int) []float32 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float32{start}
	}
	out := make([]float32, n)
	step := (stop - start) / float32(n-1)
	for i := range out {
		out[i] = start + float32(i)*step
	}
	out[n-1] = stop
	return out
}
