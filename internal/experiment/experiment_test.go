package experiment

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/born-ml/siamese/internal/config"
	"github.com/born-ml/siamese/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tinyConfig shrinks every network and the data so a full grid trains in a blink.
func tinyConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Dir = t.TempDir()
	cfg.Data.Synthetic = true
	cfg.Data.NbSamples = 10
	cfg.Data.Seed = 7
	cfg.Train.Epochs = 2
	cfg.Train.TestBatchSize = 10
	cfg.Basic = config.BasicConfig{HiddenLayer: 8, NbHidden: 1, LearningRate: 0.001}
	cfg.Siamese = config.HeadConfig{HiddenLayer: 8, NbHidden: 1}
	cfg.FCN = config.FCNConfig{HiddenLayer: 8, NbHidden: 1}
	cfg.CNN = config.CNNConfig{HiddenLayer: 8, BaseChannelSize: 2, NbHidden: 1, KernelSize: 3}
	cfg.Best.FCN = cfg.FCN
	cfg.Best.CNN = cfg.CNN
	cfg.Best.SiameseFCN = cfg.Siamese
	cfg.Best.SiameseCNN = cfg.Siamese
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestGrid(t *testing.T) {
	entries := Grid()
	require.Len(t, entries, 8)

	want := []string{
		"FCN/separate/plain", "CNN/separate/plain",
		"FCN/separate/aux", "CNN/separate/aux",
		"FCN/shared/plain", "CNN/shared/plain",
		"FCN/shared/aux", "CNN/shared/aux",
	}
	for i, e := range entries {
		assert.Equal(t, want[i], e.String())
	}
}

func TestBestArchitecture(t *testing.T) {
	cfg := config.Default()

	fcn := BestArchitecture(cfg, models.KindFCN)
	assert.Equal(t, models.KindFCN, fcn.Subnet.Kind)
	assert.Equal(t, cfg.Best.FCN.HiddenLayer, fcn.Subnet.Hidden)
	assert.Equal(t, cfg.Best.SiameseFCN, fcn.Head)
	assert.Equal(t, cfg.Best.AlphaFCN, fcn.Alpha)

	cnn := BestArchitecture(cfg, models.KindCNN)
	assert.Equal(t, 48, cnn.Subnet.BaseChannels)
	assert.Equal(t, 3, cnn.Subnet.KernelSize)
	assert.Equal(t, cfg.Best.SiameseCNN, cnn.Head)

	def := DefaultArchitecture(cfg, models.KindCNN)
	assert.Equal(t, 4, def.Subnet.BaseChannels)
	assert.Equal(t, cfg.Aux.Alpha, def.Alpha)

	assert.Panics(t, func() { BestArchitecture(cfg, "RNN") })
}

func TestCandidates(t *testing.T) {
	cfg := config.Default()

	fcn := Candidates(cfg, SearchFCN)
	require.Len(t, fcn, 3*5)
	assert.Equal(t, "nb_layers=1 fc_neurons=32", fcn[0].Name)
	assert.Equal(t, 3, fcn[14].Arch.Subnet.NbHidden)
	assert.Equal(t, 512, fcn[14].Arch.Subnet.Hidden)

	cnn := Candidates(cfg, SearchCNN)
	require.Len(t, cnn, 2*5)
	assert.Equal(t, 5, cnn[9].Arch.Subnet.KernelSize)
	assert.Equal(t, 48, cnn[9].Arch.Subnet.BaseChannels)

	alphas := Candidates(cfg, SearchAlpha)
	require.Len(t, alphas, 10)
	assert.Equal(t, float32(0), alphas[0].Arch.Alpha)
	assert.Equal(t, float32(1), alphas[9].Arch.Alpha)
	assert.Equal(t, "alpha=1.00", alphas[9].Name)
}

func TestParseSearchKind(t *testing.T) {
	k, err := ParseSearchKind("alpha")
	require.NoError(t, err)
	assert.Equal(t, SearchAlpha, k)

	_, err = ParseSearchKind("depth")
	assert.Error(t, err)
}

func TestRank(t *testing.T) {
	results := []SearchResult{
		{Candidate: Candidate{Name: "a"}, Summary: Summary{TestAcc: Stat{Mean: 0.7}}},
		{Candidate: Candidate{Name: "b"}, Summary: Summary{TestAcc: Stat{Mean: 0.9}}},
		{Candidate: Candidate{Name: "c"}, Summary: Summary{TestAcc: Stat{Mean: 0.8}}},
	}
	ranked := rank(results)
	names := []string{ranked[0].Name, ranked[1].Name, ranked[2].Name}
	assert.Equal(t, []string{"b", "c", "a"}, names)
}

func TestNewStat(t *testing.T) {
	s := newStat([]float64{0.8})
	assert.InDelta(t, 0.8, s.Mean, 1e-12)
	assert.Zero(t, s.Std)

	s = newStat([]float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	// sample standard deviation
	assert.InDelta(t, 1.2909944, s.Std, 1e-6)
}

func TestRun(t *testing.T) {
	cfg := tinyConfig(t)
	var out bytes.Buffer
	runner, err := NewRunner(cfg, &out, nil)
	require.NoError(t, err)

	results, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 8)

	report := out.String()
	assert.Equal(t, 8, strings.Count(report, "Train complete !"))
	assert.Equal(t, 8, strings.Count(report, "In epoch 2, on the train set we obtain a loss of "))
	assert.Equal(t, 8, strings.Count(report, "In epoch 2, on the test set we obtain a loss of "))
	assert.Equal(t, 9, strings.Count(report, strings.Repeat("=", 100)))
	assert.Contains(t, report, "Subnet: CNN   Weight sharing: true   Aux loss: true")

	seen := make(map[string]bool)
	for i, res := range results {
		assert.Equal(t, Grid()[i], res.Entry)
		require.Len(t, res.Histories, 1)
		assert.Equal(t, 2, res.Histories[0].Epochs())
		assert.GreaterOrEqual(t, res.TestAcc.Mean, 0.0)
		assert.LessOrEqual(t, res.TestAcc.Mean, 1.0)

		_, err := uuid.Parse(res.RunID)
		assert.NoError(t, err)
		assert.False(t, seen[res.RunID])
		seen[res.RunID] = true
	}
}

func TestBaselineRounds(t *testing.T) {
	cfg := tinyConfig(t)
	cfg.Run.Rounds = 3
	var out bytes.Buffer
	runner, err := NewRunner(cfg, &out, nil)
	require.NoError(t, err)

	summary, err := runner.Baseline(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Histories, 3)
	assert.Contains(t, out.String(), "BasicNet (nb_hidden=1, hidden=8)")
	assert.Contains(t, out.String(), "Over 3 rounds, test loss")
	assert.GreaterOrEqual(t, summary.TestAcc.Std, 0.0)
}

func TestSearchAlpha(t *testing.T) {
	cfg := tinyConfig(t)
	cfg.Search.Alphas = []float32{0, 0.5, 1}
	var out bytes.Buffer
	runner, err := NewRunner(cfg, &out, nil)
	require.NoError(t, err)

	ranked, err := runner.Search(context.Background(), SearchAlpha)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].TestAcc.Mean, ranked[i].TestAcc.Mean)
	}
	assert.Contains(t, out.String(), "Search alpha ranking by test accuracy:")
}

func TestSearchNoCandidates(t *testing.T) {
	cfg := tinyConfig(t)
	cfg.Search.NbLayers = nil
	runner, err := NewRunner(cfg, nil, nil)
	require.NoError(t, err)

	_, err = runner.Search(context.Background(), SearchFCN)
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	runner, err := NewRunner(tinyConfig(t), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Run.Device = "gpu"
	_, err := NewRunner(cfg, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
