package optim

import "math"

// LRScheduler adjusts an optimizer's learning rate between epochs.
type LRScheduler interface {
	// Step advances the schedule by one epoch and applies the new rate.
	Step()
	// GetLR returns the rate the schedule currently prescribes.
	GetLR() float32
	// Name returns the scheduler name.
	Name() string
}

// StepLR decays the learning rate by Gamma every StepSize epochs.
//
//	lr_epoch = base_lr * gamma^(floor(epoch / step_size))
//
// With StepSize 1 and Gamma 0.9 the rate shrinks by 10% after every epoch.
type StepLR struct {
	optimizer Optimizer
	baseLR    float32
	stepSize  int
	gamma     float32
	epoch     int
}

// StepLRConfig holds configuration for StepLR.
type StepLRConfig struct {
	StepSize int     // Epochs between decays (default: 1)
	Gamma    float32 // Multiplicative decay factor (default: 0.1)
}

// NewStepLR creates a StepLR scheduler driving optimizer.
func NewStepLR(optimizer Optimizer, config StepLRConfig) *StepLR {
	if config.StepSize <= 0 {
		config.StepSize = 1
	}
	if config.Gamma == 0 {
		config.Gamma = 0.1
	}
	return &StepLR{
		optimizer: optimizer,
		baseLR:    optimizer.GetLR(),
		stepSize:  config.StepSize,
		gamma:     config.Gamma,
	}
}

// Step advances one epoch and updates the optimizer's learning rate.
func (s *StepLR) Step() {
	s.epoch++
	s.optimizer.SetLR(s.GetLR())
}

// GetLR returns the learning rate for the current epoch.
func (s *StepLR) GetLR() float32 {
	decays := s.epoch / s.stepSize
	return s.baseLR * float32(math.Pow(float64(s.gamma), float64(decays)))
}

// Name returns the scheduler name.
func (s *StepLR) Name() string {
	return "StepLR"
}
