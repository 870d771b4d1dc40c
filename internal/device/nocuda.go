//go:build !cuda

package device

func cudaContext(gpu int) (Context, error) {
	return Context{}, ErrNoCUDA
}
