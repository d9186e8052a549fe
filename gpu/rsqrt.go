package gpu

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ComputeInverseSqrt uploads input, runs the inverse square root kernel over
// it once and returns a slice of the same length holding 1/sqrt(x) for each
// element. Zero inputs yield NaN and negative inputs whatever the hardware
// inverseSqrt returns for them. All device resources allocated for the call
// are released before it returns.
func ComputeInverseSqrt(ctx *Context, input []float32) ([]float32, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}
	if ctx == nil || ctx.Device == nil {
		return nil, wrap(ErrDeviceUnavailable, "nil context", nil)
	}
	if err := ctx.checkLimits(len(input)); err != nil {
		return nil, err
	}

	k := &InverseSqrtKernel{Spec: InverseSqrtSpec{
		Size:          len(input),
		WorkgroupSize: ctx.WorkgroupSize(),
	}}
	defer k.Cleanup()

	const label = "InverseSqrt"
	if err := k.Compile(ctx, label); err != nil {
		return nil, err
	}
	if err := k.AllocateBuffers(ctx, label, input); err != nil {
		return nil, err
	}
	if err := k.CreateBindGroup(ctx, label); err != nil {
		return nil, err
	}

	ctx.logger.WithFields(logrus.Fields{
		"elements":       k.Spec.Size,
		"workgroup_size": k.Spec.WorkgroupSize,
		"workgroups":     k.Spec.Workgroups(),
	}).Debug("dispatching inverse sqrt kernel")

	if err := k.Run(ctx, label); err != nil {
		return nil, err
	}
	return k.Download(ctx)
}

func (ctx *Context) checkLimits(n int) error {
	if ctx.Report == nil {
		return nil
	}
	if err := ctx.checkWorkgroupSize(); err != nil {
		return err
	}
	lim := ctx.Report.Limits
	bytes := uint64(n) * 4
	if lim.MaxStorageBufferBindingSize != 0 && bytes > lim.MaxStorageBufferBindingSize {
		return wrap(ErrInputTooLarge, fmt.Sprintf("%d bytes exceed max storage binding size %d", bytes, lim.MaxStorageBufferBindingSize), nil)
	}
	wg := ctx.WorkgroupSize()
	groups := (uint64(n) + uint64(wg) - 1) / uint64(wg)
	if lim.MaxComputeWorkgroupsPerDimension != 0 && groups > uint64(lim.MaxComputeWorkgroupsPerDimension) {
		return wrap(ErrInputTooLarge, fmt.Sprintf("%d workgroups exceed per-dimension limit %d", groups, lim.MaxComputeWorkgroupsPerDimension), nil)
	}
	return nil
}

// Runner exposes a Context as a GPU backend for the pods package.
type Runner struct {
	Ctx *Context
}

// DispatchInverseSqrtF32 runs ComputeInverseSqrt on the wrapped context.
func (r Runner) DispatchInverseSqrtF32(in []float32) ([]float32, error) {
	return ComputeInverseSqrt(r.Ctx, in)
}
