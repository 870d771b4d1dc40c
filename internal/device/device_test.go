//go:build !cuda

package device

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveCPU(t *testing.T) {
	ctx, err := Resolve(-1)
	if err != nil {
		t.Fatalf("Resolve(-1): %v", err)
	}
	if ctx.Kind != CPU {
		t.Fatalf("expected cpu context, got %s", ctx.Kind)
	}
	if !strings.HasPrefix(ctx.String(), "cpu(0)") {
		t.Fatalf("unexpected description %q", ctx.String())
	}
}

func TestResolveGPUWithoutCUDA(t *testing.T) {
	_, err := Resolve(0)
	if !errors.Is(err, ErrNoCUDA) {
		t.Fatalf("expected ErrNoCUDA, got %v", err)
	}
}
