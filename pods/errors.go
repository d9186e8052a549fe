package pods

import "golang.org/x/xerrors"

var (
	// ErrNoGPU is returned by the default backend when no device was opened.
	ErrNoGPU = xerrors.New("gpu unavailable")

	// ErrEmptyInput is returned for zero-length inputs.
	ErrEmptyInput = xerrors.New("empty input")
)
