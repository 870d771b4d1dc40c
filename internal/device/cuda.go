//go:build cuda

package device

import (
	"fmt"

	"gorgonia.org/cu"
)

func cudaContext(gpu int) (Context, error) {
	n, err := cu.NumDevices()
	if err != nil {
		return Context{}, fmt.Errorf("device: enumerate CUDA devices: %w", err)
	}
	if gpu >= n {
		return Context{}, fmt.Errorf("%w: %d (found %d CUDA devices)", ErrInvalidDevice, gpu, n)
	}
	dev := cu.Device(gpu)
	name, err := dev.Name()
	if err != nil {
		return Context{}, fmt.Errorf("device: name of GPU %d: %w", gpu, err)
	}
	mem, err := dev.TotalMem()
	if err != nil {
		return Context{}, fmt.Errorf("device: memory of GPU %d: %w", gpu, err)
	}
	major, _ := dev.Attribute(cu.ComputeCapabilityMajor)
	minor, _ := dev.Attribute(cu.ComputeCapabilityMinor)
	return Context{
		Kind:     GPU,
		Index:    gpu,
		Name:     name,
		MemBytes: mem,
		Features: []string{fmt.Sprintf("sm_%d%d", major, minor)},
	}, nil
}
