package gpu

import "golang.org/x/xerrors"

var (
	// ErrDeviceUnavailable is returned when no compatible adapter or device
	// could be opened.
	ErrDeviceUnavailable = xerrors.New("gpu: device unavailable")

	// ErrKernelCompilation is returned when the compute kernel fails to
	// build into a pipeline.
	ErrKernelCompilation = xerrors.New("gpu: kernel compilation failed")

	// ErrTransfer is returned when data cannot be moved between host and
	// device memory.
	ErrTransfer = xerrors.New("gpu: transfer failed")

	// ErrEmptyInput is returned for zero-length inputs. No GPU work is
	// issued for them.
	ErrEmptyInput = xerrors.New("gpu: empty input")

	// ErrInvalidConfig is returned when the config is malformed or asks for
	// more than the opened device supports.
	ErrInvalidConfig = xerrors.New("gpu: invalid config")

	// ErrInputTooLarge is returned when the input does not fit the device
	// limits of a single dispatch.
	ErrInputTooLarge = xerrors.New("gpu: input exceeds device limits")
)

// wrap annotates err with op and tags it with the kind sentinel so that
// callers can match it with xerrors.Is.
func wrap(kind error, op string, err error) error {
	if err == nil {
		return xerrors.Errorf("%s: %w", op, kind)
	}
	return xerrors.Errorf("%s: %v: %w", op, err, kind)
}
