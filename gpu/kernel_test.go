package gpu

import (
	"strings"

	"github.com/openfluke/rsqrt/detector"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(KernelTestSuite))

type KernelTestSuite struct{}

func (s *KernelTestSuite) TestWorkgroups(c *gc.C) {
	specs := []struct {
		spec InverseSqrtSpec
		exp  uint32
	}{
		{InverseSqrtSpec{Size: 3, WorkgroupSize: 64}, 1},
		{InverseSqrtSpec{Size: 64, WorkgroupSize: 64}, 1},
		{InverseSqrtSpec{Size: 65, WorkgroupSize: 64}, 2},
		{InverseSqrtSpec{Size: 32766, WorkgroupSize: 256}, 128},
		{InverseSqrtSpec{Size: 5, WorkgroupSize: 0}, 5},
	}
	for _, tc := range specs {
		c.Check(tc.spec.Workgroups(), gc.Equals, tc.exp, gc.Commentf("spec %+v", tc.spec))
	}
}

func (s *KernelTestSuite) TestShaderUsesWorkgroupSize(c *gc.C) {
	k := &InverseSqrtKernel{Spec: InverseSqrtSpec{Size: 3, WorkgroupSize: 128}}
	src := k.GenerateShader()
	c.Assert(strings.Contains(src, "@workgroup_size(128, 1, 1)"), gc.Equals, true)
	c.Assert(strings.Contains(src, "inverseSqrt(x)"), gc.Equals, true)
	c.Assert(strings.Contains(src, "arrayLength(&input)"), gc.Equals, true)
}

func (s *KernelTestSuite) TestCleanupOnEmptyKernel(c *gc.C) {
	// Nothing allocated; must not touch nil handles.
	(&InverseSqrtKernel{}).Cleanup()
}

func (s *KernelTestSuite) TestEmptyInputNeedsNoDevice(c *gc.C) {
	out, err := ComputeInverseSqrt(nil, []float32{})
	c.Assert(out, gc.IsNil)
	c.Assert(xerrors.Is(err, ErrEmptyInput), gc.Equals, true)
}

func (s *KernelTestSuite) TestNilContextIsDeviceUnavailable(c *gc.C) {
	_, err := ComputeInverseSqrt(nil, []float32{4})
	c.Assert(xerrors.Is(err, ErrDeviceUnavailable), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, "nil context: .*")
}

func (s *KernelTestSuite) TestStorageBindingLimit(c *gc.C) {
	ctx := limitedContext(Config{}, detector.Limits{MaxStorageBufferBindingSize: 8})
	err := ctx.checkLimits(3)
	c.Assert(xerrors.Is(err, ErrInputTooLarge), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, "12 bytes exceed max storage binding size 8: .*")
	c.Assert(ctx.checkLimits(2), gc.IsNil)
}

func (s *KernelTestSuite) TestWorkgroupsPerDimensionLimit(c *gc.C) {
	ctx := limitedContext(Config{WorkgroupSize: 64}, detector.Limits{
		MaxComputeWorkgroupSizeX:          256,
		MaxComputeInvocationsPerWorkgroup: 256,
		MaxComputeWorkgroupsPerDimension:  2,
	})
	c.Assert(ctx.checkLimits(128), gc.IsNil)
	err := ctx.checkLimits(129)
	c.Assert(xerrors.Is(err, ErrInputTooLarge), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, "3 workgroups exceed per-dimension limit 2: .*")
}

func (s *KernelTestSuite) TestWorkgroupSizeAboveDeviceLimits(c *gc.C) {
	lim := detector.Limits{MaxComputeWorkgroupSizeX: 256, MaxComputeInvocationsPerWorkgroup: 128}

	ctx := limitedContext(Config{WorkgroupSize: 512}, lim)
	err := ctx.checkLimits(3)
	c.Assert(xerrors.Is(err, ErrInvalidConfig), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, `workgroup size 512 exceeds device limits \(x: 256, invocations: 128\): .*`)

	// Within x but above the total invocation limit.
	ctx = limitedContext(Config{WorkgroupSize: 256}, lim)
	c.Assert(xerrors.Is(ctx.checkWorkgroupSize(), ErrInvalidConfig), gc.Equals, true)

	ctx = limitedContext(Config{WorkgroupSize: 128}, lim)
	c.Assert(ctx.checkWorkgroupSize(), gc.IsNil)
	c.Assert(ctx.checkLimits(3), gc.IsNil)
}

func limitedContext(cfg Config, lim detector.Limits) *Context {
	rep := &detector.Report{}
	rep.UseLimits(lim)
	return &Context{cfg: cfg, Report: rep}
}
