package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tailscale/hujson"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEmptyUsesDefaults(t *testing.T) {
	cfg := Empty()
	assert.Equal(t, DefaultHitNormalDot, cfg.GetHitNormalDot())
	assert.Equal(t, DefaultHitNormalDotStrict, cfg.GetHitNormalDotStrict())
	assert.Equal(t, DefaultCloseSnapRadius, cfg.GetCloseSnapRadius())
	assert.Equal(t, DefaultSmoothing, cfg.GetSmoothing())
	assert.Equal(t, DefaultSurfaceFade, cfg.GetSurfaceFade())
	assert.Equal(t, DefaultLockRayMaxDistance, cfg.GetLockRayMaxDistance())
	assert.NoError(t, cfg.Validate())
}

func TestDefaultsValidate(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestStrictNeverLooserThanNormal(t *testing.T) {
	loose, strict := 0.99, 0.95
	cfg := &Tuning{HitNormalDot: &loose, HitNormalDotStrict: &strict}
	assert.Equal(t, 0.99, cfg.GetHitNormalDotStrict())
}

func TestLoadHuJSON(t *testing.T) {
	path := writeFile(t, "tuning.hujson", `{
		// snap a little wider on small rooms
		"close_snap_radius": 0.2,
		"surface_fade": "500ms",
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.GetCloseSnapRadius())
	assert.Equal(t, 500*time.Millisecond, cfg.GetSurfaceFade())
	// Unset fields keep defaults.
	assert.Equal(t, DefaultHitNormalDot, cfg.GetHitNormalDot())
}

func TestLoadShippedDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)

	def := Defaults()
	assert.Equal(t, def.GetHitNormalDot(), cfg.GetHitNormalDot())
	assert.Equal(t, def.GetFloorMinBelowCamera(), cfg.GetFloorMinBelowCamera())
	assert.Equal(t, def.GetLockRayMinDirY(), cfg.GetLockRayMinDirY())
	assert.Equal(t, def.GetSurfaceFade(), cfg.GetSurfaceFade())
	assert.Equal(t, def.GetCameraFar(), cfg.GetCameraFar())
}

// Every key in the shipped file must be a known tunable and every tunable
// must be listed with its built-in value.
func TestShippedDefaultsMatchTunables(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)
	data, err = hujson.Standardize(data)
	require.NoError(t, err)

	var cfg Tuning
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	require.NoError(t, dec.Decode(&cfg))

	if diff := cmp.Diff(Defaults(), &cfg); diff != "" {
		t.Errorf("shipped defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBadExtension(t *testing.T) {
	path := writeFile(t, "tuning.yaml", `{}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeFile(t, "tuning.json", `{"smoothing": }`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	s := func(v string) *string { return &v }

	cases := map[string]*Tuning{
		"normal dot above one":  {HitNormalDot: f(1.5)},
		"zero smoothing":        {Smoothing: f(0)},
		"negative snap radius":  {CloseSnapRadius: f(-0.1)},
		"upward lock ray":       {LockRayMinDirY: f(0.1)},
		"near beyond far":       {CameraNear: f(5), CameraFar: f(1)},
		"bad fade duration":     {SurfaceFade: s("soon")},
		"negative pattern size": {PatternSize: f(-1)},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}
}
