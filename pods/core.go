package pods

import "context"

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/openfluke/rsqrt/pods GPUHooks

// Pod is a unit of work.
type Pod interface {
	Name() string
	Run(ctx *ExecContext, in any) (out any, err error)
}

// ExecContext carries execution choices and capabilities.
type ExecContext struct {
	Ctx    context.Context // checked before work is dispatched
	UseGPU bool            // high-level knob; pods may override per-op
	GPU    GPUHooks        // noop unless a device was opened
}

func NewContext(ctx context.Context) *ExecContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecContext{
		Ctx:    ctx,
		UseGPU: false,
		GPU:    noopGPU{},
	}
}

func (ec *ExecContext) WithGPU(g GPUHooks) *ExecContext {
	ec.GPU = g
	ec.UseGPU = g != nil
	return ec
}
