// Package config loads application configuration from the environment and
// an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/s0oraj/roadmapgalaxy/internal/camera"
	"github.com/s0oraj/roadmapgalaxy/internal/errors"
	"github.com/s0oraj/roadmapgalaxy/internal/galaxy"
	"github.com/s0oraj/roadmapgalaxy/internal/lod"
	"github.com/s0oraj/roadmapgalaxy/internal/navstore"
)

type Config struct {
	Galaxy  GalaxyConfig
	Camera  CameraConfig
	LOD     lod.Config
	Store   navstore.Config
	Logging LoggingConfig
	UI      UIConfig
}

type GalaxyConfig struct {
	Geometry galaxy.GeometryConfig
	Tiers    []galaxy.LODTier
	Seed     uint64 // 0 draws a fresh seed each run
}

type CameraConfig struct {
	Start       r3.Vec
	Target      r3.Vec
	MinDistance float64
	MaxDistance float64
	Transition  camera.Config
}

type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

type UIConfig struct {
	FrameInterval time.Duration
	MaxPoints     int
	SpinPerFrame  float64 // radians about Y per frame
	TargetLevel   int
	TargetLabel   string
}

// Default returns the built-in configuration, before any environment
// overrides.
func Default() *Config {
	return &Config{
		Galaxy: GalaxyConfig{
			Geometry: galaxy.DefaultConfig(),
			Tiers:    galaxy.DefaultTiers(),
		},
		Camera: CameraConfig{
			Start:       r3.Vec{X: 0, Y: 3, Z: 10},
			Target:      r3.Vec{X: 6.67, Y: 0.2, Z: 4},
			MinDistance: camera.DefaultMinDistance,
			MaxDistance: camera.DefaultMaxDistance,
			Transition:  camera.DefaultConfig(),
		},
		LOD:   lod.DefaultConfig(),
		Store: navstore.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		UI: UIConfig{
			FrameInterval: 33 * time.Millisecond,
			MaxPoints:     6000,
			SpinPerFrame:  0.002,
			TargetLevel:   1,
			TargetLabel:   "Level 1",
		},
	}
}

// Load reads .env files (a missing file is not an error), applies the
// environment over Default and validates the result.
func Load(filenames ...string) (*Config, error) {
	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load(filenames...)

	cfg, err := load()
	if err != nil {
		return nil, errors.WrapConfiguration("failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load() (*Config, error) {
	d := Default()
	p := &parser{}

	cfg := &Config{
		Galaxy:  loadGalaxyConfig(p, d.Galaxy),
		Camera:  loadCameraConfig(p, d.Camera),
		LOD:     loadLODConfig(p, d.LOD),
		Store:   loadStoreConfig(p, d.Store),
		Logging: loadLoggingConfig(d.Logging),
		UI:      loadUIConfig(p, d.UI),
	}

	if len(p.errs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(p.errs, "; "))
	}
	return cfg, nil
}

func loadGalaxyConfig(p *parser, d GalaxyConfig) GalaxyConfig {
	g := d.Geometry

	g.ParticleCountHint = p.getInt("GALAXY_PARTICLES", g.ParticleCountHint)
	g.Radius = p.getFloat("GALAXY_RADIUS", g.Radius)
	g.Branches = p.getInt("GALAXY_BRANCHES", g.Branches)
	g.Spin = p.getFloat("GALAXY_SPIN", g.Spin)
	g.RandomnessPower = p.getFloat("GALAXY_RANDOMNESS_POWER", g.RandomnessPower)
	g.BulgeSize = p.getFloat("GALAXY_BULGE_SIZE", g.BulgeSize)
	g.CoreIntensity = p.getFloat("GALAXY_CORE_INTENSITY", g.CoreIntensity)
	g.ArmWidth = p.getFloat("GALAXY_ARM_WIDTH", g.ArmWidth)
	g.DustLanes = p.getBool("GALAXY_DUST_LANES", g.DustLanes)
	g.DustNearOnly = p.getBool("GALAXY_DUST_NEAR_ONLY", g.DustNearOnly)
	g.InsideColor = p.getColor("GALAXY_INSIDE_COLOR", g.InsideColor)
	g.OutsideColor = p.getColor("GALAXY_OUTSIDE_COLOR", g.OutsideColor)
	g.DustColor = p.getColor("GALAXY_DUST_COLOR", g.DustColor)

	return GalaxyConfig{
		Geometry: g,
		Tiers:    d.Tiers,
		Seed:     p.getUint64("GALAXY_SEED", d.Seed),
	}
}

func loadCameraConfig(p *parser, d CameraConfig) CameraConfig {
	t := d.Transition
	t.Step = p.getFloat("CAMERA_STEP", t.Step)
	t.ArcHeight = p.getFloat("CAMERA_ARC_HEIGHT", t.ArcHeight)
	t.ProximityEpsilon = p.getFloat("CAMERA_PROXIMITY_EPSILON", t.ProximityEpsilon)
	t.AutoReset = p.getBool("CAMERA_AUTO_RESET", t.AutoReset)

	return CameraConfig{
		Start:       p.getVec("CAMERA_START", d.Start),
		Target:      p.getVec("CAMERA_TARGET", d.Target),
		MinDistance: p.getFloat("CAMERA_MIN_DISTANCE", d.MinDistance),
		MaxDistance: p.getFloat("CAMERA_MAX_DISTANCE", d.MaxDistance),
		Transition:  t,
	}
}

func loadLODConfig(p *parser, d lod.Config) lod.Config {
	return lod.Config{
		QuietWindow: p.getMillis("LOD_QUIET_WINDOW_MS", d.QuietWindow),
		MinInterval: p.getMillis("LOD_MIN_INTERVAL_MS", d.MinInterval),
		Burst:       p.getInt("LOD_BURST", d.Burst),
		Epsilon:     p.getFloat("LOD_EPSILON", d.Epsilon),
	}
}

func loadStoreConfig(p *parser, d navstore.Config) navstore.Config {
	return navstore.Config{
		Backend:  GetEnv("STORE_BACKEND", d.Backend),
		URL:      GetEnv("REDIS_URL", d.URL),
		Host:     GetEnv("REDIS_HOST", d.Host),
		Port:     GetEnv("REDIS_PORT", d.Port),
		Password: GetEnv("REDIS_PASSWORD", d.Password),
		DB:       p.getInt("REDIS_DB", d.DB),
		Key:      GetEnv("STORE_KEY", d.Key),
		Timeout:  p.getMillis("STORE_TIMEOUT_MS", d.Timeout),
	}
}

func loadLoggingConfig(d LoggingConfig) LoggingConfig {
	return LoggingConfig{
		Level:  GetEnv("LOG_LEVEL", d.Level),
		Format: GetEnv("LOG_FORMAT", d.Format),
		File:   GetEnv("LOG_FILE", d.File),
	}
}

func loadUIConfig(p *parser, d UIConfig) UIConfig {
	return UIConfig{
		FrameInterval: p.getMillis("UI_FRAME_MS", d.FrameInterval),
		MaxPoints:     p.getInt("UI_MAX_POINTS", d.MaxPoints),
		SpinPerFrame:  p.getFloat("UI_SPIN_PER_FRAME", d.SpinPerFrame),
		TargetLevel:   p.getInt("UI_TARGET_LEVEL", d.TargetLevel),
		TargetLabel:   GetEnv("UI_TARGET_LABEL", d.TargetLabel),
	}
}

// Validate rejects configurations the generator or camera would refuse.
func (c *Config) Validate() error {
	if err := c.Galaxy.Geometry.Validate(); err != nil {
		return err
	}
	sel, err := galaxy.NewSelector(c.Galaxy.Tiers)
	if err != nil {
		return err
	}
	if max := sel.MaxParticleCount(); max > c.Galaxy.Geometry.ParticleCountHint {
		return errors.Configurationf("GALAXY_PARTICLES %d is below the largest tier budget %d",
			c.Galaxy.Geometry.ParticleCountHint, max)
	}
	if err := c.Camera.Transition.Validate(); err != nil {
		return err
	}
	if !(c.Camera.MinDistance > 0) || !(c.Camera.MinDistance < c.Camera.MaxDistance) {
		return errors.Configurationf("camera distance bounds must satisfy 0 < min < max, got [%v, %v]",
			c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if err := c.LOD.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.UI.FrameInterval <= 0 {
		return errors.Configurationf("UI_FRAME_MS must be positive, got %v", c.UI.FrameInterval)
	}
	if c.UI.MaxPoints <= 0 {
		return errors.Configurationf("UI_MAX_POINTS must be positive, got %d", c.UI.MaxPoints)
	}
	return nil
}

// GetEnv returns the value of key, or defaultValue when unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser reads typed values and collects every malformed one.
type parser struct {
	errs []string
}

func (p *parser) fail(key, value, want string) {
	p.errs = append(p.errs, fmt.Sprintf("%s=%q is not a valid %s", key, value, want))
}

func (p *parser) getInt(key string, d int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return d
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, "integer")
		return d
	}
	return v
}

func (p *parser) getUint64(key string, d uint64) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return d
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		p.fail(key, raw, "unsigned integer")
		return d
	}
	return v
}

func (p *parser) getFloat(key string, d float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return d
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, "number")
		return d
	}
	return v
}

func (p *parser) getBool(key string, d bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return d
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, "boolean")
		return d
	}
	return v
}

func (p *parser) getMillis(key string, d time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return d
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, "millisecond count")
		return d
	}
	return time.Duration(v) * time.Millisecond
}

// getVec parses "x,y,z".
func (p *parser) getVec(key string, d r3.Vec) r3.Vec {
	raw := os.Getenv(key)
	if raw == "" {
		return d
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		p.fail(key, raw, "x,y,z triple")
		return d
	}
	var xyz [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			p.fail(key, raw, "x,y,z triple")
			return d
		}
		xyz[i] = v
	}
	return r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
}

func (p *parser) getColor(key string, d colorful.Color) colorful.Color {
	raw := os.Getenv(key)
	if raw == "" {
		return d
	}
	c, err := galaxy.ParseColor(raw)
	if err != nil {
		p.fail(key, raw, "#rrggbb color")
		return d
	}
	return c
}
