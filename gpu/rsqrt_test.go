package gpu

import (
	"math"
	"time"

	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(InverseSqrtTestSuite))

// InverseSqrtTestSuite runs against a real adapter and is skipped when none
// is available.
type InverseSqrtTestSuite struct {
	ctx *Context
}

func (s *InverseSqrtTestSuite) SetUpSuite(c *gc.C) {
	ctx, err := NewContext(Config{})
	if xerrors.Is(err, ErrDeviceUnavailable) {
		c.Skip(err.Error())
	}
	c.Assert(err, gc.IsNil)
	s.ctx = ctx
}

func (s *InverseSqrtTestSuite) TearDownSuite(c *gc.C) {
	if s.ctx != nil {
		s.ctx.Release()
	}
}

func (s *InverseSqrtTestSuite) TestFixedInput(c *gc.C) {
	out, err := ComputeInverseSqrt(s.ctx, []float32{4, 25, 100})
	c.Assert(err, gc.IsNil)
	assertRelClose(c, out, []float32{0.5, 0.2, 0.1}, 1e-3)
}

func (s *InverseSqrtTestSuite) TestSingleElement(c *gc.C) {
	out, err := ComputeInverseSqrt(s.ctx, []float32{1})
	c.Assert(err, gc.IsNil)
	assertRelClose(c, out, []float32{1}, 1e-3)
}

func (s *InverseSqrtTestSuite) TestSweep(c *gc.C) {
	in := make([]float32, 0, math.MaxInt16-1)
	for i := 1; i < math.MaxInt16; i++ {
		in = append(in, float32(i))
	}
	out, err := ComputeInverseSqrt(s.ctx, in)
	c.Assert(err, gc.IsNil)
	c.Assert(out, gc.HasLen, len(in))

	exp := make([]float32, len(in))
	for i, v := range in {
		exp[i] = float32(1 / math.Sqrt(float64(v)))
	}
	assertRelClose(c, out, exp, 1e-3)
}

func (s *InverseSqrtTestSuite) TestZeroYieldsNaN(c *gc.C) {
	out, err := ComputeInverseSqrt(s.ctx, []float32{0})
	c.Assert(err, gc.IsNil)
	c.Assert(math.IsNaN(float64(out[0])), gc.Equals, true)
}

func (s *InverseSqrtTestSuite) TestEmptyInputRejected(c *gc.C) {
	_, err := ComputeInverseSqrt(s.ctx, nil)
	c.Assert(xerrors.Is(err, ErrEmptyInput), gc.Equals, true)
}

func (s *InverseSqrtTestSuite) TestRepeatedCallsAgree(c *gc.C) {
	in := []float32{2, 3, 5, 7, 11}
	first, err := ComputeInverseSqrt(s.ctx, in)
	c.Assert(err, gc.IsNil)
	second, err := ComputeInverseSqrt(s.ctx, in)
	c.Assert(err, gc.IsNil)
	c.Assert(second, gc.DeepEquals, first)
}

func (s *InverseSqrtTestSuite) TestIndependentContexts(c *gc.C) {
	other, err := NewContext(Config{})
	c.Assert(err, gc.IsNil)
	defer other.Release()

	out, err := Runner{Ctx: other}.DispatchInverseSqrtF32([]float32{16})
	c.Assert(err, gc.IsNil)
	assertRelClose(c, out, []float32{0.25}, 1e-3)

	// Releasing twice is a no-op.
	other.Release()
}

func (s *InverseSqrtTestSuite) TestBoundedReadback(c *gc.C) {
	ctx, err := NewContext(Config{ReadbackTimeout: time.Second})
	c.Assert(err, gc.IsNil)
	defer ctx.Release()

	out, err := ComputeInverseSqrt(ctx, []float32{4, 25, 100})
	c.Assert(err, gc.IsNil)
	assertRelClose(c, out, []float32{0.5, 0.2, 0.1}, 1e-3)
}

func (s *InverseSqrtTestSuite) TestReportUsesDeviceLimits(c *gc.C) {
	lim := s.ctx.Report.Limits
	wg := s.ctx.WorkgroupSize()
	c.Assert(wg <= lim.MaxComputeWorkgroupSizeX, gc.Equals, true)
	c.Assert(wg <= lim.MaxComputeInvocationsPerWorkgroup, gc.Equals, true)
}

func (s *InverseSqrtTestSuite) TestOversizedWorkgroupRejected(c *gc.C) {
	ctx, err := NewContext(Config{WorkgroupSize: 4096})
	c.Assert(ctx, gc.IsNil)
	c.Assert(xerrors.Is(err, ErrInvalidConfig), gc.Equals, true)
	c.Assert(xerrors.Is(err, ErrKernelCompilation), gc.Equals, false)
}

func assertRelClose(c *gc.C, got, want []float32, tol float64) {
	c.Assert(got, gc.HasLen, len(want))
	for i := range want {
		g, w := float64(got[i]), float64(want[i])
		c.Assert(math.Abs(g-w) <= tol*math.Abs(w), gc.Equals, true,
			gc.Commentf("element %d: got %v, want %v", i, g, w))
	}
}
