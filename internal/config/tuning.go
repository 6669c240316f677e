package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"
)

// DefaultConfigPath is the path to the tuning defaults file shipped with the repo.
const DefaultConfigPath = "config/tuning.defaults.hujson"

// Built-in defaults. They were tuned empirically on handheld devices and
// are kept configurable so that replayed device traces can validate changes.
const (
	DefaultHitNormalDot        = 0.90
	DefaultHitNormalDotStrict  = 0.97
	DefaultFloorMinBelowCamera = 0.45
	DefaultHeightBand          = 0.01
	DefaultSmoothing           = 0.25
	DefaultCloseSnapRadius     = 0.12
	DefaultLockRayMinDirY      = -0.06
	DefaultLockRayMaxDistance  = 20.0
	DefaultOcclusionEpsilon    = 0.03
	DefaultSurfaceOcclusionEps = 0.03
	DefaultSurfaceOcclusionBia = 0.01
	DefaultSurfaceFloatEpsilon = 0.001
	DefaultPatternSize         = 0.3
	DefaultSurfaceFade         = 360 * time.Millisecond
	DefaultCameraNear          = 0.01
	DefaultCameraFar           = 100.0
)

// Tuning holds the tunable parameters of the floor placement core.
// Every field is optional; Get* accessors fall back to the built-in defaults
// so partial files are safe.
type Tuning struct {
	// Reticle / hit-test
	HitNormalDot        *float64 `json:"hit_normal_dot,omitempty"`
	HitNormalDotStrict  *float64 `json:"hit_normal_dot_strict,omitempty"`
	FloorMinBelowCamera *float64 `json:"floor_min_below_camera,omitempty"`
	HeightBand          *float64 `json:"height_band,omitempty"`
	Smoothing           *float64 `json:"smoothing,omitempty"`
	LockRayMinDirY      *float64 `json:"lock_ray_min_dir_y,omitempty"`
	LockRayMaxDistance  *float64 `json:"lock_ray_max_distance,omitempty"`

	// Contour
	CloseSnapRadius *float64 `json:"close_snap_radius,omitempty"`

	// Surface
	SurfaceFloatEpsilon *float64 `json:"surface_float_epsilon,omitempty"`
	SurfaceFade         *string  `json:"surface_fade,omitempty"` // duration string like "360ms"
	PatternSize         *float64 `json:"pattern_size,omitempty"`

	// Occlusion
	OcclusionEpsilon        *float64 `json:"occlusion_epsilon,omitempty"`
	SurfaceOcclusionEpsilon *float64 `json:"surface_occlusion_epsilon,omitempty"`
	SurfaceOcclusionBias    *float64 `json:"surface_occlusion_bias,omitempty"`
	CameraNear              *float64 `json:"camera_near,omitempty"`
	CameraFar               *float64 `json:"camera_far,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

// Empty returns a Tuning with every field unset.
func Empty() *Tuning {
	return &Tuning{}
}

// Defaults returns a Tuning with every field set to its built-in default.
func Defaults() *Tuning {
	return &Tuning{
		HitNormalDot:            ptrFloat64(DefaultHitNormalDot),
		HitNormalDotStrict:      ptrFloat64(DefaultHitNormalDotStrict),
		FloorMinBelowCamera:     ptrFloat64(DefaultFloorMinBelowCamera),
		HeightBand:              ptrFloat64(DefaultHeightBand),
		Smoothing:               ptrFloat64(DefaultSmoothing),
		LockRayMinDirY:          ptrFloat64(DefaultLockRayMinDirY),
		LockRayMaxDistance:      ptrFloat64(DefaultLockRayMaxDistance),
		CloseSnapRadius:         ptrFloat64(DefaultCloseSnapRadius),
		SurfaceFloatEpsilon:     ptrFloat64(DefaultSurfaceFloatEpsilon),
		SurfaceFade:             ptrString(DefaultSurfaceFade.String()),
		PatternSize:             ptrFloat64(DefaultPatternSize),
		OcclusionEpsilon:        ptrFloat64(DefaultOcclusionEpsilon),
		SurfaceOcclusionEpsilon: ptrFloat64(DefaultSurfaceOcclusionEps),
		SurfaceOcclusionBias:    ptrFloat64(DefaultSurfaceOcclusionBia),
		CameraNear:              ptrFloat64(DefaultCameraNear),
		CameraFar:               ptrFloat64(DefaultCameraFar),
	}
}

// Load reads a Tuning from a JSON or HuJSON file (comments and trailing
// commas allowed). Fields omitted from the file keep their defaults.
func Load(path string) (*Tuning, error) {
	cfg := Empty()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DecodeFile reads a JSON or HuJSON file into v with the same path and
// size checks as Load. Material catalogs use it too.
func DecodeFile(path string, v any) error {
	return decodeFile(path, v)
}

func decodeFile(path string, v any) error {
	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".json", ".hujson", ".jsonc":
	default:
		return fmt.Errorf("config file must have .json, .jsonc or .hujson extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return Decode(data, v)
}

// Decode parses JSON or HuJSON bytes into v.
func Decode(data []byte, v any) error {
	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := json.Unmarshal(std, v); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return nil
}

// Validate checks that the configured values are usable.
func (c *Tuning) Validate() error {
	unit := func(name string, v *float64) error {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
		return nil
	}
	positive := func(name string, v *float64) error {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
		return nil
	}
	nonNegative := func(name string, v *float64) error {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative, got %f", name, *v)
		}
		return nil
	}

	for _, err := range []error{
		unit("hit_normal_dot", c.HitNormalDot),
		unit("hit_normal_dot_strict", c.HitNormalDotStrict),
		unit("smoothing", c.Smoothing),
		nonNegative("floor_min_below_camera", c.FloorMinBelowCamera),
		nonNegative("height_band", c.HeightBand),
		positive("close_snap_radius", c.CloseSnapRadius),
		positive("lock_ray_max_distance", c.LockRayMaxDistance),
		nonNegative("surface_float_epsilon", c.SurfaceFloatEpsilon),
		positive("pattern_size", c.PatternSize),
		nonNegative("occlusion_epsilon", c.OcclusionEpsilon),
		nonNegative("surface_occlusion_epsilon", c.SurfaceOcclusionEpsilon),
		positive("camera_near", c.CameraNear),
		positive("camera_far", c.CameraFar),
	} {
		if err != nil {
			return err
		}
	}

	if c.Smoothing != nil && *c.Smoothing == 0 {
		return fmt.Errorf("smoothing must be greater than 0, got %f", *c.Smoothing)
	}
	if c.LockRayMinDirY != nil && (*c.LockRayMinDirY >= 0 || *c.LockRayMinDirY < -1) {
		return fmt.Errorf("lock_ray_min_dir_y must be in [-1, 0), got %f", *c.LockRayMinDirY)
	}
	if c.GetCameraNear() >= c.GetCameraFar() {
		return fmt.Errorf("camera_near (%f) must be less than camera_far (%f)", c.GetCameraNear(), c.GetCameraFar())
	}
	if c.SurfaceFade != nil && *c.SurfaceFade != "" {
		if _, err := time.ParseDuration(*c.SurfaceFade); err != nil {
			return fmt.Errorf("invalid surface_fade '%s': %w", *c.SurfaceFade, err)
		}
	}
	return nil
}

func getFloat(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

// GetHitNormalDot returns the minimum plane-normal alignment for placement hits.
func (c *Tuning) GetHitNormalDot() float64 {
	return getFloat(c.HitNormalDot, DefaultHitNormalDot)
}

// GetHitNormalDotStrict returns the alignment required when calibrating.
// It is never looser than GetHitNormalDot.
func (c *Tuning) GetHitNormalDotStrict() float64 {
	v := getFloat(c.HitNormalDotStrict, DefaultHitNormalDotStrict)
	if n := c.GetHitNormalDot(); v < n {
		return n
	}
	return v
}

// GetFloorMinBelowCamera returns how far below the camera a floor must be.
func (c *Tuning) GetFloorMinBelowCamera() float64 {
	return getFloat(c.FloorMinBelowCamera, DefaultFloorMinBelowCamera)
}

// GetHeightBand returns the band within which candidate heights count as equal.
func (c *Tuning) GetHeightBand() float64 {
	return getFloat(c.HeightBand, DefaultHeightBand)
}

// GetSmoothing returns the reticle blend factor.
func (c *Tuning) GetSmoothing() float64 {
	return getFloat(c.Smoothing, DefaultSmoothing)
}

// GetLockRayMinDirY returns the maximum (most upward) ray direction Y that
// still intersects the locked floor.
func (c *Tuning) GetLockRayMinDirY() float64 {
	return getFloat(c.LockRayMinDirY, DefaultLockRayMinDirY)
}

// GetLockRayMaxDistance returns the maximum locked-floor intersection distance.
func (c *Tuning) GetLockRayMaxDistance() float64 {
	return getFloat(c.LockRayMaxDistance, DefaultLockRayMaxDistance)
}

// GetCloseSnapRadius returns the contour auto-close radius.
func (c *Tuning) GetCloseSnapRadius() float64 {
	return getFloat(c.CloseSnapRadius, DefaultCloseSnapRadius)
}

// GetSurfaceFloatEpsilon returns the lift applied under every surface.
func (c *Tuning) GetSurfaceFloatEpsilon() float64 {
	return getFloat(c.SurfaceFloatEpsilon, DefaultSurfaceFloatEpsilon)
}

// GetSurfaceFade returns the fade-in duration of a new surface.
func (c *Tuning) GetSurfaceFade() time.Duration {
	if c.SurfaceFade != nil && *c.SurfaceFade != "" {
		if d, err := time.ParseDuration(*c.SurfaceFade); err == nil {
			return d
		}
	}
	return DefaultSurfaceFade
}

// GetPatternSize returns the repeat size used when a material has none.
func (c *Tuning) GetPatternSize() float64 {
	return getFloat(c.PatternSize, DefaultPatternSize)
}

// GetOcclusionEpsilon returns the default occlusion tolerance in meters.
func (c *Tuning) GetOcclusionEpsilon() float64 {
	return getFloat(c.OcclusionEpsilon, DefaultOcclusionEpsilon)
}

// GetSurfaceOcclusionEpsilon returns the occlusion tolerance for floor surfaces.
func (c *Tuning) GetSurfaceOcclusionEpsilon() float64 {
	return getFloat(c.SurfaceOcclusionEpsilon, DefaultSurfaceOcclusionEps)
}

// GetSurfaceOcclusionBias returns the occlusion bias for floor surfaces.
func (c *Tuning) GetSurfaceOcclusionBias() float64 {
	return getFloat(c.SurfaceOcclusionBias, DefaultSurfaceOcclusionBia)
}

// GetCameraNear returns the default camera near plane.
func (c *Tuning) GetCameraNear() float64 {
	return getFloat(c.CameraNear, DefaultCameraNear)
}

// GetCameraFar returns the default camera far plane.
func (c *Tuning) GetCameraFar() float64 {
	return getFloat(c.CameraFar, DefaultCameraFar)
}
