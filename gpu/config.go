package gpu

import (
	"io/ioutil"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/openfluke/webgpu/wgpu"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Supported values for Config.PowerPreference.
const (
	PowerPreferenceAuto            = ""
	PowerPreferenceHighPerformance = "high-performance"
	PowerPreferenceLowPower        = "low-power"
)

// Config encapsulates the options used when opening a device context.
type Config struct {
	// Adapter power preference. When left empty, high-performance, low-power
	// and the platform default are tried in that order.
	PowerPreference string

	// Request a software (fallback) adapter.
	ForceFallbackAdapter bool

	// If set, enumerated adapters whose name or vendor contains this
	// string (case-insensitive) are picked before any power-preference
	// request is made.
	PreferVendor string

	// Threads per workgroup for the kernel. Zero selects the detector
	// recommendation for the chosen adapter.
	WorkgroupSize uint32

	// Upper bound for waiting on a readback mapping. Zero blocks until the
	// device reports completion.
	ReadbackTimeout time.Duration

	// A logger instance to use. If not specified, a null logger will be
	// used instead.
	Logger *logrus.Entry
}

// Validate the config options.
func (cfg *Config) Validate() error {
	var err error
	switch cfg.PowerPreference {
	case PowerPreferenceAuto, PowerPreferenceHighPerformance, PowerPreferenceLowPower:
	default:
		err = multierror.Append(err, xerrors.Errorf("unsupported power preference %q", cfg.PowerPreference))
	}
	if cfg.WorkgroupSize != 0 && cfg.WorkgroupSize&(cfg.WorkgroupSize-1) != 0 {
		err = multierror.Append(err, xerrors.Errorf("workgroup size %d is not a power of two", cfg.WorkgroupSize))
	}
	if cfg.ReadbackTimeout < 0 {
		err = multierror.Append(err, xerrors.Errorf("readback timeout must not be negative"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// adapterOptions returns the adapter requests to attempt, in order.
func (cfg *Config) adapterOptions() []*wgpu.RequestAdapterOptions {
	switch cfg.PowerPreference {
	case PowerPreferenceHighPerformance:
		return []*wgpu.RequestAdapterOptions{{
			PowerPreference:      wgpu.PowerPreferenceHighPerformance,
			ForceFallbackAdapter: cfg.ForceFallbackAdapter,
		}}
	case PowerPreferenceLowPower:
		return []*wgpu.RequestAdapterOptions{{
			PowerPreference:      wgpu.PowerPreferenceLowPower,
			ForceFallbackAdapter: cfg.ForceFallbackAdapter,
		}}
	}

	opts := []*wgpu.RequestAdapterOptions{
		{PowerPreference: wgpu.PowerPreferenceHighPerformance, ForceFallbackAdapter: cfg.ForceFallbackAdapter},
		{PowerPreference: wgpu.PowerPreferenceLowPower, ForceFallbackAdapter: cfg.ForceFallbackAdapter},
	}
	if cfg.ForceFallbackAdapter {
		return append(opts, &wgpu.RequestAdapterOptions{ForceFallbackAdapter: true})
	}
	// nil lets the implementation pick its default adapter.
	return append(opts, nil)
}
