package pods

// GPUHooks describes the optional GPU backend. Keep it slice-based so CPU fallback is easy.
type GPUHooks interface {
	DispatchInverseSqrtF32(in []float32) ([]float32, error)
}

type noopGPU struct{}

func (noopGPU) DispatchInverseSqrtF32([]float32) ([]float32, error) { return nil, ErrNoGPU }
