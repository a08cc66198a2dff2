// Package experiment drives the digit-pair comparison study.
//
// A Runner loads the pair sets once and then trains the configurations of
// the grid, the BasicNet baseline or a hyperparameter search, printing the
// final-epoch metrics of every run.
package experiment

import (
	"fmt"

	"github.com/born-ml/siamese/internal/config"
	"github.com/born-ml/siamese/internal/models"
)

// Entry is one configuration of the grid.
type Entry struct {
	Kind          models.Kind
	WeightSharing bool
	AuxLoss       bool
}

// String returns a compact label such as "CNN/shared/aux".
func (e Entry) String() string {
	sharing, aux := "separate", "plain"
	if e.WeightSharing {
		sharing = "shared"
	}
	if e.AuxLoss {
		aux = "aux"
	}
	return fmt.Sprintf("%s/%s/%s", e.Kind, sharing, aux)
}

// Grid returns the four (weight sharing, auxiliary loss) combinations in
// order, each with the FCN subnet followed by the CNN subnet.
func Grid() []Entry {
	var entries []Entry
	for _, weightSharing := range []bool{false, true} {
		for _, auxLoss := range []bool{false, true} {
			for _, kind := range []models.Kind{models.KindFCN, models.KindCNN} {
				entries = append(entries, Entry{Kind: kind, WeightSharing: weightSharing, AuxLoss: auxLoss})
			}
		}
	}
	return entries
}

// Architecture is a complete Siamese setup: the digit subnet, the
// comparison head and the auxiliary loss weight.
type Architecture struct {
	Subnet models.SubnetConfig
	Head   config.HeadConfig
	Alpha  float32
}

// BestArchitecture returns the tuned setup of the given subnet kind.
func BestArchitecture(cfg *config.Config, kind models.Kind) Architecture {
	switch kind {
	case models.KindFCN:
		return Architecture{
			Subnet: models.SubnetConfig{
				Kind:     models.KindFCN,
				NbHidden: cfg.Best.FCN.NbHidden,
				Hidden:   cfg.Best.FCN.HiddenLayer,
			},
			Head:  cfg.Best.SiameseFCN,
			Alpha: cfg.Best.AlphaFCN,
		}
	case models.KindCNN:
		return Architecture{
			Subnet: models.SubnetConfig{
				Kind:         models.KindCNN,
				NbHidden:     cfg.Best.CNN.NbHidden,
				Hidden:       cfg.Best.CNN.HiddenLayer,
				BaseChannels: cfg.Best.CNN.BaseChannelSize,
				KernelSize:   cfg.Best.CNN.KernelSize,
			},
			Head:  cfg.Best.SiameseCNN,
			Alpha: cfg.Best.AlphaCNN,
		}
	default:
		panic(fmt.Sprintf("experiment: unknown subnet kind %q", kind))
	}
}

// DefaultArchitecture returns the untuned setup of the given subnet kind,
// used as the starting point of a search.
func DefaultArchitecture(cfg *config.Config, kind models.Kind) Architecture {
	arch := Architecture{Head: cfg.Siamese, Alpha: cfg.Aux.Alpha}
	switch kind {
	case models.KindFCN:
		arch.Subnet = models.SubnetConfig{
			Kind:     models.KindFCN,
			NbHidden: cfg.FCN.NbHidden,
			Hidden:   cfg.FCN.HiddenLayer,
		}
	case models.KindCNN:
		arch.Subnet = models.SubnetConfig{
			Kind:         models.KindCNN,
			NbHidden:     cfg.CNN.NbHidden,
			Hidden:       cfg.CNN.HiddenLayer,
			BaseChannels: cfg.CNN.BaseChannelSize,
			KernelSize:   cfg.CNN.KernelSize,
		}
	default:
		panic(fmt.Sprintf("experiment: unknown subnet kind %q", kind))
	}
	return arch
}
