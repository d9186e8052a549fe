package detector

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/openfluke/webgpu/wgpu"
)

/* ---------- public API ---------- */

// Report is a portable summary of the selected adapter's caps. Limits
// describe the opened device once one exists.
type Report struct {
	WhenISO     string          `json:"when_iso"`
	Runtime     string          `json:"runtime"` // "native" or "wasm" (best-effort)
	Backend     string          `json:"backend"`
	AdapterType string          `json:"adapter_type"`
	VendorID    string          `json:"vendor_id_hex"`
	DeviceID    string          `json:"device_id_hex"`
	Name        string          `json:"name"`
	Vendor      string          `json:"vendor"`
	Driver      string          `json:"driver"`
	Recommended Recommendations `json:"recommended"`
	Limits      Limits          `json:"limits"`
	Features    []string        `json:"features"`
}

type Limits struct {
	MaxComputeInvocationsPerWorkgroup uint32 `json:"max_compute_invocations_per_workgroup"`
	MaxComputeWorkgroupSizeX          uint32 `json:"max_compute_workgroup_size_x"`
	MaxComputeWorkgroupsPerDimension  uint32 `json:"max_compute_workgroups_per_dimension"`
	MaxStorageBufferBindingSize       uint64 `json:"max_storage_buffer_binding_size"`
	MaxBufferSize                     uint64 `json:"max_buffer_size"`
}

type Recommendations struct {
	// Conservative 1D workgroup that should run everywhere.
	WorkgroupX uint32 `json:"workgroup_x"`
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// String returns a one-line description of the adapter.
func (r *Report) String() string {
	return fmt.Sprintf("%s (vendor: %s, backend: %s, type: %s)", r.Name, r.Vendor, r.Backend, r.AdapterType)
}

// Describe probes an already selected adapter and synthesizes a report.
func Describe(adapter *wgpu.Adapter) *Report {
	info := adapter.GetInfo()
	limits := adapter.GetLimits()

	var feats []string
	for _, f := range adapter.EnumerateFeatures() {
		feats = append(feats, featureName(f))
	}

	rep := &Report{
		WhenISO:     time.Now().UTC().Format(time.RFC3339),
		Runtime:     detectRuntime(),
		Backend:     backendName(info.BackendType),
		AdapterType: adapterTypeName(info.AdapterType),
		VendorID:    fmt.Sprintf("0x%04x", info.VendorId),
		DeviceID:    fmt.Sprintf("0x%04x", info.DeviceId),
		Name:        strings.TrimSpace(info.Name),
		Vendor:      strings.TrimSpace(info.VendorName),
		Driver:      strings.TrimSpace(info.DriverDescription),
		Features:    feats,
	}
	rep.UseLimits(LimitsOf(limits))
	return rep
}

// LimitsOf extracts the limits the report tracks.
func LimitsOf(l wgpu.SupportedLimits) Limits {
	return Limits{
		MaxComputeInvocationsPerWorkgroup: l.Limits.MaxComputeInvocationsPerWorkgroup,
		MaxComputeWorkgroupSizeX:          l.Limits.MaxComputeWorkgroupSizeX,
		MaxComputeWorkgroupsPerDimension:  l.Limits.MaxComputeWorkgroupsPerDimension,
		MaxStorageBufferBindingSize:       l.Limits.MaxStorageBufferBindingSize,
		MaxBufferSize:                     l.Limits.MaxBufferSize,
	}
}

// UseLimits replaces the report limits, e.g. with those of an opened device,
// and recomputes the recommendations from them.
func (r *Report) UseLimits(l Limits) {
	r.Limits = l
	r.Recommended = Recommendations{
		WorkgroupX: ChooseWorkgroup(l.MaxComputeWorkgroupSizeX, l.MaxComputeInvocationsPerWorkgroup),
	}
}

// MatchesVendor reports whether an adapter name or vendor contains want,
// ignoring case.
func MatchesVendor(name, vendor, want string) bool {
	if want == "" {
		return false
	}
	want = strings.ToLower(want)
	return strings.Contains(strings.ToLower(name), want) ||
		strings.Contains(strings.ToLower(vendor), want)
}

// ChooseWorkgroup returns the largest power-of-two 1D workgroup size, up to
// 256, allowed by both per-dimension and total invocation limits.
func ChooseWorkgroup(maxX, maxInvocations uint32) uint32 {
	candidates := []uint32{256, 128, 64, 32, 16, 8, 4, 1}
	for _, c := range candidates {
		if c <= maxX && c <= maxInvocations {
			return c
		}
	}
	// absolute portability fallback
	return 1
}

/* ---------- helpers ---------- */

func featureName(f wgpu.FeatureName) string     { return f.String() }
func backendName(b wgpu.BackendType) string     { return b.String() }
func adapterTypeName(t wgpu.AdapterType) string { return t.String() }

func detectRuntime() string {
	if runtime.GOOS == "js" {
		return "wasm"
	}
	return "native"
}
