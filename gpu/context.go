package gpu

import (
	"fmt"
	"sync"

	"github.com/openfluke/rsqrt/detector"
	"github.com/openfluke/webgpu/wgpu"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Context holds an opened WebGPU device and its queue. Each Context is owned
// by its creator and must be released with Release; independent contexts
// may coexist.
type Context struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue

	// Report describes the selected adapter.
	Report *detector.Report

	cfg         Config
	logger      *logrus.Entry
	releaseOnce sync.Once
}

// NewContext selects an adapter according to cfg and opens a device on it.
// Failures to find an adapter or open a device are reported as
// ErrDeviceUnavailable; a config the opened device cannot honour as
// ErrInvalidConfig.
func NewContext(cfg Config) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, xerrors.Errorf("gpu config validation failed: %v: %w", err, ErrInvalidConfig)
	}

	ctx := &Context{cfg: cfg, logger: cfg.Logger}
	ctx.Instance = wgpu.CreateInstance(nil)
	if ctx.Instance == nil {
		return nil, wrap(ErrDeviceUnavailable, "create WebGPU instance", nil)
	}

	if err := ctx.selectAdapter(); err != nil {
		ctx.Release()
		return nil, err
	}

	ctx.Report = detector.Describe(ctx.Adapter)
	ctx.logger.WithField("adapter", ctx.Report.String()).Info("using GPU adapter")

	var err error
	ctx.Device, err = ctx.Adapter.RequestDevice(nil)
	if err != nil || ctx.Device == nil {
		ctx.Release()
		return nil, wrap(ErrDeviceUnavailable, "request device", err)
	}

	ctx.Queue = ctx.Device.GetQueue()
	if ctx.Queue == nil {
		ctx.Release()
		return nil, wrap(ErrDeviceUnavailable, "get device queue", nil)
	}

	// A device opened without required limits gets the defaults, which may
	// be lower than what the adapter reported.
	ctx.Report.UseLimits(detector.LimitsOf(ctx.Device.GetLimits()))
	if err = ctx.checkWorkgroupSize(); err != nil {
		ctx.Release()
		return nil, err
	}

	return ctx, nil
}

func (ctx *Context) selectAdapter() error {
	if ctx.cfg.PreferVendor != "" {
		for _, a := range ctx.Instance.EnumerateAdapters(nil) {
			info := a.GetInfo()
			ctx.logger.WithFields(logrus.Fields{
				"name":      info.Name,
				"vendor":    info.VendorName,
				"vendor_id": info.VendorId,
				"device_id": info.DeviceId,
			}).Debug("enumerated adapter")
			if ctx.Adapter == nil && detector.MatchesVendor(info.Name, info.VendorName, ctx.cfg.PreferVendor) {
				ctx.Adapter = a
				continue
			}
			a.Release()
		}
		if ctx.Adapter != nil {
			return nil
		}
		ctx.logger.WithField("vendor", ctx.cfg.PreferVendor).Warn("no adapter matches preferred vendor; falling back")
	}

	var lastErr error
	for _, opts := range ctx.cfg.adapterOptions() {
		a, err := ctx.Instance.RequestAdapter(opts)
		if err == nil && a != nil {
			ctx.Adapter = a
			return nil
		}
		lastErr = err
		ctx.logger.WithField("err", err).Debug("adapter request failed; trying next option")
	}
	return wrap(ErrDeviceUnavailable, "all adapter attempts failed", lastErr)
}

// WorkgroupSize returns the kernel workgroup size for this context.
func (ctx *Context) WorkgroupSize() uint32 {
	if ctx.cfg.WorkgroupSize != 0 {
		return ctx.cfg.WorkgroupSize
	}
	if ctx.Report != nil && ctx.Report.Recommended.WorkgroupX != 0 {
		return ctx.Report.Recommended.WorkgroupX
	}
	return 64
}

// checkWorkgroupSize rejects a configured workgroup size the device cannot
// launch.
func (ctx *Context) checkWorkgroupSize() error {
	wg := ctx.cfg.WorkgroupSize
	if wg == 0 || ctx.Report == nil {
		return nil
	}
	lim := ctx.Report.Limits
	if wg > lim.MaxComputeWorkgroupSizeX || wg > lim.MaxComputeInvocationsPerWorkgroup {
		return wrap(ErrInvalidConfig, fmt.Sprintf(
			"workgroup size %d exceeds device limits (x: %d, invocations: %d)",
			wg, lim.MaxComputeWorkgroupSizeX, lim.MaxComputeInvocationsPerWorkgroup), nil)
	}
	return nil
}

// Release frees the queue, device, adapter and instance. It is safe to call
// more than once.
func (ctx *Context) Release() {
	ctx.releaseOnce.Do(func() {
		if ctx.Queue != nil {
			ctx.Queue.Release()
		}
		if ctx.Device != nil {
			ctx.Device.Release()
		}
		if ctx.Adapter != nil {
			ctx.Adapter.Release()
		}
		if ctx.Instance != nil {
			ctx.Instance.Release()
		}
	})
}
