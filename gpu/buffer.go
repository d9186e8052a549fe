package gpu

import (
	"time"

	"github.com/openfluke/webgpu/wgpu"
	"golang.org/x/xerrors"
)

// NewFloatBuffer creates a buffer initialized with the given float32 data.
func NewFloatBuffer(ctx *Context, label string, data []float32, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: wgpu.ToBytes(data),
		Usage:    usage,
	})
	if err != nil {
		return nil, wrap(ErrTransfer, "create buffer "+label, err)
	}
	return buf, nil
}

// NewStorageBuffer creates an uninitialized storage buffer holding size
// float32 values.
func NewStorageBuffer(ctx *Context, label string, size int) (*wgpu.Buffer, error) {
	buf, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(size * 4),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, wrap(ErrTransfer, "create buffer "+label, err)
	}
	return buf, nil
}

// ReadBuffer copies the first size float32 values of buffer into host memory
// through a temporary staging buffer.
func ReadBuffer(ctx *Context, buffer *wgpu.Buffer, size int) ([]float32, error) {
	sizeBytes := uint64(size * 4)
	stagingBuf, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ReadStaging",
		Size:  sizeBytes,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, wrap(ErrTransfer, "create staging buffer", err)
	}
	defer stagingBuf.Destroy()

	encoder, err := ctx.Device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, wrap(ErrTransfer, "create command encoder", err)
	}
	encoder.CopyBufferToBuffer(buffer, 0, stagingBuf, 0, sizeBytes)
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return nil, wrap(ErrTransfer, "finish readback commands", err)
	}
	ctx.Queue.Submit(cmd)

	done := make(chan struct{})
	var mapErr error
	err = stagingBuf.MapAsync(wgpu.MapModeRead, 0, sizeBytes, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = xerrors.Errorf("map status %v", status)
		}
		close(done)
	})
	if err != nil {
		return nil, wrap(ErrTransfer, "map staging buffer", err)
	}

	if err = ctx.waitForMap(done); err != nil {
		return nil, err
	}
	if mapErr != nil {
		return nil, wrap(ErrTransfer, "map staging buffer", mapErr)
	}

	data := stagingBuf.GetMappedRange(0, uint(sizeBytes))
	if data == nil {
		return nil, wrap(ErrTransfer, "get mapped range", nil)
	}

	result := make([]float32, size)
	copy(result, wgpu.FromBytes[float32](data))
	stagingBuf.Unmap()

	return result, nil
}

// waitForMap drives the device until done is closed. With no readback
// timeout configured the device is polled in blocking mode.
func (ctx *Context) waitForMap(done <-chan struct{}) error {
	if ctx.cfg.ReadbackTimeout == 0 {
		for {
			ctx.Device.Poll(true, nil)
			select {
			case <-done:
				return nil
			default:
			}
		}
	}

	timeout := time.After(ctx.cfg.ReadbackTimeout)
	for {
		ctx.Device.Poll(false, nil)
		select {
		case <-done:
			return nil
		case <-timeout:
			return wrap(ErrTransfer, "readback timed out after "+ctx.cfg.ReadbackTimeout.String(), nil)
		default:
			time.Sleep(time.Millisecond)
		}
	}
}
