package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/born-ml/siamese/internal/config"
	"github.com/born-ml/siamese/internal/models"
	"github.com/born-ml/siamese/internal/train"
	"gonum.org/v1/gonum/floats"
)

// SearchKind selects which hyperparameters a search explores.
type SearchKind string

// Available searches.
const (
	// SearchFCN explores FCN depth (search.nb_layers) and width (search.fc_neurons).
	SearchFCN SearchKind = "fcn"
	// SearchCNN explores CNN kernel size (search.kernel_sizes) and base channels (search.nb_channels).
	SearchCNN SearchKind = "cnn"
	// SearchAlpha explores the auxiliary loss weight (search.alphas) on the best FCN.
	SearchAlpha SearchKind = "alpha"
)

// ParseSearchKind validates a search name.
func ParseSearchKind(s string) (SearchKind, error) {
	switch k := SearchKind(s); k {
	case SearchFCN, SearchCNN, SearchAlpha:
		return k, nil
	default:
		return "", fmt.Errorf("unknown search %q (want fcn, cnn or alpha)", s)
	}
}

// Candidate is one point of a search.
type Candidate struct {
	Name string
	Arch Architecture
}

// SearchResult is a trained candidate.
type SearchResult struct {
	Candidate
	Summary
}

// Candidates lists the architectures a search of the given kind trains.
//
// Every candidate uses weight sharing and the auxiliary loss.
func Candidates(cfg *config.Config, kind SearchKind) []Candidate {
	var out []Candidate
	switch kind {
	case SearchFCN:
		for _, layers := range cfg.Search.NbLayers {
			for _, neurons := range cfg.Search.FCNeurons {
				arch := DefaultArchitecture(cfg, models.KindFCN)
				arch.Subnet.NbHidden = layers
				arch.Subnet.Hidden = neurons
				out = append(out, Candidate{Name: fmt.Sprintf("nb_layers=%d fc_neurons=%d", layers, neurons), Arch: arch})
			}
		}
	case SearchCNN:
		for _, kernel := range cfg.Search.KernelSizes {
			for _, channels := range cfg.Search.NbChannels {
				arch := DefaultArchitecture(cfg, models.KindCNN)
				arch.Subnet.KernelSize = kernel
				arch.Subnet.BaseChannels = channels
				out = append(out, Candidate{Name: fmt.Sprintf("kernel_size=%d nb_channels=%d", kernel, channels), Arch: arch})
			}
		}
	case SearchAlpha:
		for _, alpha := range cfg.Search.Alphas {
			arch := BestArchitecture(cfg, models.KindFCN)
			arch.Alpha = alpha
			out = append(out, Candidate{Name: fmt.Sprintf("alpha=%.2f", alpha), Arch: arch})
		}
	}
	return out
}

// Search trains every candidate of kind and returns them ranked by mean
// final test accuracy, best first.
func (r *Runner) Search(ctx context.Context, kind SearchKind) ([]SearchResult, error) {
	candidates := Candidates(r.cfg, kind)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("search %s: no candidates", kind)
	}
	if err := r.loadData(); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		printSeparator(r.out)
		fmt.Fprintf(r.out, "\nSearch %s: %s\n", kind, c.Name)

		summary, err := r.rounds(ctx, c.Name, func(logger *slog.Logger) (*train.History, error) {
			return r.trainSiamese(ctx, c.Arch, true, true, logger)
		})
		if err != nil {
			return nil, fmt.Errorf("search %s, %s: %w", kind, c.Name, err)
		}
		results = append(results, SearchResult{Candidate: c, Summary: summary})
	}

	ranked := rank(results)
	printRanking(r.out, kind, ranked)
	return ranked, nil
}

// rank orders results by decreasing mean test accuracy.
func rank(results []SearchResult) []SearchResult {
	keys := make([]float64, len(results))
	for i, res := range results {
		keys[i] = -res.TestAcc.Mean
	}
	inds := make([]int, len(keys))
	floats.Argsort(keys, inds)

	ranked := make([]SearchResult, len(results))
	for i, j := range inds {
		ranked[i] = results[j]
	}
	return ranked
}

func printRanking(w io.Writer, kind SearchKind, ranked []SearchResult) {
	printSeparator(w)
	fmt.Fprintf(w, "\nSearch %s ranking by test accuracy:\n", kind)
	for i, res := range ranked {
		fmt.Fprintf(w, "%2d. %-32s test accuracy %.2f ± %.2f  test loss %.2f\n",
			i+1, res.Name, res.TestAcc.Mean, res.TestAcc.Std, res.TestLoss.Mean)
	}
	printSeparator(w)
}
