package pods

import (
	"math"

	"golang.org/x/xerrors"
)

type InverseSqrtIn struct{ X []float32 }
type InverseSqrtOut struct{ Y []float32 }

// InverseSqrtPod computes y[i] = 1/sqrt(x[i]) on the GPU backend when one is
// enabled, and on the CPU otherwise.
type InverseSqrtPod struct{}

func (InverseSqrtPod) Name() string { return "math/rsqrt" }

func (InverseSqrtPod) Run(x *ExecContext, in any) (any, error) {
	args, ok := in.(InverseSqrtIn)
	if !ok {
		return nil, xerrors.New("InverseSqrtIn expected")
	}
	if len(args.X) == 0 {
		return nil, ErrEmptyInput
	}
	if x != nil && x.Ctx != nil {
		if err := x.Ctx.Err(); err != nil {
			return nil, xerrors.Errorf("%s: %w", InverseSqrtPod{}.Name(), err)
		}
	}
	if x != nil && x.UseGPU && x.GPU != nil {
		y, err := x.GPU.DispatchInverseSqrtF32(args.X)
		if err != nil {
			return nil, xerrors.Errorf("%s: %w", InverseSqrtPod{}.Name(), err)
		}
		if len(y) != len(args.X) {
			return nil, xerrors.Errorf("%s: backend returned %d values for %d inputs", InverseSqrtPod{}.Name(), len(y), len(args.X))
		}
		return InverseSqrtOut{Y: y}, nil
	}
	return InverseSqrtOut{Y: InverseSqrtCPU(args.X)}, nil
}

// InverseSqrtCPU is the host reference for the GPU kernel: zero maps to NaN,
// negatives to NaN, everything else to 1/sqrt(x).
func InverseSqrtCPU(in []float32) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		if v == 0 {
			out[i] = float32(math.NaN())
			continue
		}
		out[i] = float32(1 / math.Sqrt(float64(v)))
	}
	return out
}

// Mismatch returns the index of the first element of got that differs from
// want by more than relTol relative error, or -1. NaNs match NaNs.
func Mismatch(got, want []float32, relTol float64) int {
	if len(got) != len(want) {
		return 0
	}
	for i := range want {
		g, w := float64(got[i]), float64(want[i])
		if math.IsNaN(w) || math.IsNaN(g) {
			if math.IsNaN(w) != math.IsNaN(g) {
				return i
			}
			continue
		}
		if math.IsInf(w, 0) || math.IsInf(g, 0) {
			if g != w {
				return i
			}
			continue
		}
		if math.Abs(g-w) > relTol*math.Abs(w) {
			return i
		}
	}
	return -1
}
