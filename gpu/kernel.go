package gpu

import (
	"fmt"

	"github.com/openfluke/webgpu/wgpu"
)

// InverseSqrtSpec defines the launch configuration of the kernel.
type InverseSqrtSpec struct {
	Size          int    // Number of elements
	WorkgroupSize uint32 // Threads per workgroup
}

// Workgroups returns the number of workgroups needed to cover Size elements.
func (s InverseSqrtSpec) Workgroups() uint32 {
	wg := s.WorkgroupSize
	if wg == 0 {
		wg = 1
	}
	return (uint32(s.Size) + wg - 1) / wg
}

// InverseSqrtKernel holds the GPU resources for one elementwise 1/sqrt(x)
// dispatch.
type InverseSqrtKernel struct {
	Spec InverseSqrtSpec

	module          *wgpu.ShaderModule
	bindGroupLayout *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout
	pipeline        *wgpu.ComputePipeline
	bindGroup       *wgpu.BindGroup

	InputBuffer  *wgpu.Buffer
	OutputBuffer *wgpu.Buffer
}

// GenerateShader returns the WGSL source. Zero maps to NaN; everything else
// goes through the hardware inverseSqrt.
func (k *InverseSqrtKernel) GenerateShader() string {
	return fmt.Sprintf(`
		@group(0) @binding(0) var<storage, read> input : array<f32>;
		@group(0) @binding(1) var<storage, read_write> output : array<f32>;

		@compute @workgroup_size(%d, 1, 1)
		fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
			let i = gid.x;
			if (i >= arrayLength(&input)) { return; }

			let x = input[i];
			if (x == 0.0) {
				// x is +-0, so OR-ing in the quiet NaN bits yields NaN.
				output[i] = bitcast<f32>(bitcast<u32>(x) | 0x7fc00000u);
				return;
			}
			output[i] = inverseSqrt(x);
		}
	`, k.Spec.WorkgroupSize)
}

// Compile builds the shader module and compute pipeline with an explicit
// two-binding layout.
func (k *InverseSqrtKernel) Compile(ctx *Context, labelPrefix string) error {
	var err error
	k.module, err = ctx.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          labelPrefix + "_Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: k.GenerateShader()},
	})
	if err != nil {
		return wrap(ErrKernelCompilation, "create shader module", err)
	}

	k.bindGroupLayout, err = ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: labelPrefix + "_BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}}, // Input
			{Binding: 1, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},         // Output
		},
	})
	if err != nil {
		return wrap(ErrKernelCompilation, "create bind group layout", err)
	}

	k.pipelineLayout, err = ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            labelPrefix + "_Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{k.bindGroupLayout},
	})
	if err != nil {
		return wrap(ErrKernelCompilation, "create pipeline layout", err)
	}

	k.pipeline, err = ctx.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   labelPrefix + "_Pipe",
		Layout:  k.pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{Module: k.module, EntryPoint: "main"},
	})
	if err != nil {
		return wrap(ErrKernelCompilation, "create compute pipeline", err)
	}
	return nil
}

// AllocateBuffers uploads input and creates the output buffer.
func (k *InverseSqrtKernel) AllocateBuffers(ctx *Context, labelPrefix string, input []float32) error {
	var err error
	k.InputBuffer, err = NewFloatBuffer(ctx, labelPrefix+"_In", input,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst|wgpu.BufferUsageCopySrc)
	if err != nil {
		return err
	}
	k.OutputBuffer, err = NewStorageBuffer(ctx, labelPrefix+"_Out", k.Spec.Size)
	return err
}

// CreateBindGroup binds the input and output buffers.
func (k *InverseSqrtKernel) CreateBindGroup(ctx *Context, labelPrefix string) error {
	var err error
	k.bindGroup, err = ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  labelPrefix + "_Bind",
		Layout: k.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: k.InputBuffer, Size: k.InputBuffer.GetSize()},
			{Binding: 1, Buffer: k.OutputBuffer, Size: k.OutputBuffer.GetSize()},
		},
	})
	if err != nil {
		return wrap(ErrKernelCompilation, "create bind group", err)
	}
	return nil
}

// Dispatch records the kernel into pass.
func (k *InverseSqrtKernel) Dispatch(pass *wgpu.ComputePassEncoder) {
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, k.bindGroup, nil)
	pass.DispatchWorkgroups(k.Spec.Workgroups(), 1, 1)
}

// Run encodes a compute pass with the kernel and submits it.
func (k *InverseSqrtKernel) Run(ctx *Context, labelPrefix string) error {
	enc, err := ctx.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: labelPrefix + "_Enc"})
	if err != nil {
		return wrap(ErrTransfer, "create command encoder", err)
	}
	pass := enc.BeginComputePass(nil)
	k.Dispatch(pass)
	pass.End()

	cmd, err := enc.Finish(nil)
	if err != nil {
		return wrap(ErrTransfer, "finish compute commands", err)
	}
	ctx.Queue.Submit(cmd)
	return nil
}

// Download reads the output buffer back to the host.
func (k *InverseSqrtKernel) Download(ctx *Context) ([]float32, error) {
	return ReadBuffer(ctx, k.OutputBuffer, k.Spec.Size)
}

// Cleanup releases every resource held by the kernel.
func (k *InverseSqrtKernel) Cleanup() {
	if k.InputBuffer != nil {
		k.InputBuffer.Destroy()
	}
	if k.OutputBuffer != nil {
		k.OutputBuffer.Destroy()
	}
	if k.bindGroup != nil {
		k.bindGroup.Release()
	}
	if k.pipeline != nil {
		k.pipeline.Release()
	}
	if k.pipelineLayout != nil {
		k.pipelineLayout.Release()
	}
	if k.bindGroupLayout != nil {
		k.bindGroupLayout.Release()
	}
	if k.module != nil {
		k.module.Release()
	}
}
