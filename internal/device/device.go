// Package device resolves the compute context selected with --gpu.
package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// ErrNoCUDA is returned for a GPU index when the binary was built without
// the cuda tag.
var ErrNoCUDA = errors.New("device: built without CUDA support (rebuild with -tags cuda)")

// ErrInvalidDevice is returned for a GPU index that does not exist.
var ErrInvalidDevice = errors.New("device: invalid GPU index")

// Kind is the class of compute device.
type Kind string

const (
	CPU Kind = "cpu"
	GPU Kind = "gpu"
)

// Context describes the device a run is bound to.
type Context struct {
	Kind     Kind
	Index    int
	Name     string
	Cores    int
	MemBytes int64
	Features []string
}

func (c Context) String() string {
	s := fmt.Sprintf("%s(%d) %q", c.Kind, c.Index, c.Name)
	if c.Cores > 0 {
		s += fmt.Sprintf(" cores=%d", c.Cores)
	}
	if c.MemBytes > 0 {
		s += fmt.Sprintf(" mem=%dMiB", c.MemBytes>>20)
	}
	if len(c.Features) > 0 {
		s += " features=" + strings.Join(c.Features, ",")
	}
	return s
}

// Resolve returns the CPU context for a negative index and the CUDA device
// with that ordinal otherwise.
func Resolve(gpu int) (Context, error) {
	if gpu < 0 {
		return cpuContext(), nil
	}
	return cudaContext(gpu)
}

func cpuContext() Context {
	ctx := Context{
		Kind:  CPU,
		Index: 0,
		Name:  strings.TrimSpace(cpuid.CPU.BrandName),
		Cores: cpuid.CPU.LogicalCores,
	}
	if ctx.Name == "" {
		ctx.Name = cpuid.CPU.VendorString
	}
	for _, f := range []struct {
		id   cpuid.FeatureID
		name string
	}{
		{cpuid.SSE4, "sse4.1"},
		{cpuid.AVX, "avx"},
		{cpuid.AVX2, "avx2"},
		{cpuid.FMA3, "fma"},
		{cpuid.AVX512F, "avx512f"},
		{cpuid.ASIMD, "neon"},
	} {
		if cpuid.CPU.Supports(f.id) {
			ctx.Features = append(ctx.Features, f.name)
		}
	}
	return ctx
}
