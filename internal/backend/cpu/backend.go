// Package cpu implements the CPU backend with gonum BLAS and goroutine-parallel kernels.
package cpu

import (
	"fmt"
	"strings"

	"github.com/born-ml/siamese/internal/parallel"
	"github.com/born-ml/siamese/internal/tensor"
	"github.com/klauspost/cpuid/v2"
)

// CPUBackend implements tensor kernels on the host CPU.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend sized to the host's physical cores.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Workers returns the number of goroutines kernels may use.
func (cpu *CPUBackend) Workers() int {
	if !cpu.par.Enabled {
		return 1
	}
	return cpu.par.NumWorkers
}

// Describe returns a one-line description of the host CPU, e.g.
// "Intel(R) Xeon(R) ... (8 cores, AVX2, FMA3)".
func (cpu *CPUBackend) Describe() string {
	brand := strings.TrimSpace(cpuid.CPU.BrandName)
	if brand == "" {
		brand = "unknown CPU"
	}

	var features []string
	for _, f := range []struct {
		id   cpuid.FeatureID
		name string
	}{
		{cpuid.AVX512F, "AVX512F"},
		{cpuid.AVX2, "AVX2"},
		{cpuid.FMA3, "FMA3"},
		{cpuid.ASIMD, "ASIMD"},
	} {
		if cpuid.CPU.Supports(f.id) {
			features = append(features, f.name)
		}
	}

	desc := fmt.Sprintf("%s (%d workers", brand, cpu.Workers())
	if len(features) > 0 {
		desc += ", " + strings.Join(features, ", ")
	}
	return desc + ")"
}

// Compile-time check that CPUBackend satisfies the tensor.Backend interface.
var _ tensor.Backend = (*CPUBackend)(nil)
