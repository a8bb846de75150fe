// Package config loads encounter configuration from JSON or YAML files.
//
// Every field is optional. Get* accessors fall back to the built-in default
// for any field left unset, so partial files are safe and can be layered
// over a named preset with Merge.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/banshee-data/intercept/internal/evasion"
	"github.com/banshee-data/intercept/internal/guidance"
	"github.com/banshee-data/intercept/internal/sim"
)

// maxFileSize caps configuration files at 1 MB.
const maxFileSize = 1 * 1024 * 1024

// Vec2 is a point or vector in a configuration file.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vec2) r2() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

// Rect bounds the randomised interceptor start.
type Rect struct {
	Min Vec2 `json:"min" yaml:"min"`
	Max Vec2 `json:"max" yaml:"max"`
}

// Config is the file schema for one encounter.
type Config struct {
	// Run
	CollisionThreshold *float64 `json:"collision_threshold,omitempty" yaml:"collision_threshold,omitempty"`
	MaxTicks           *int     `json:"max_ticks,omitempty" yaml:"max_ticks,omitempty"`
	Seed               *int64   `json:"seed,omitempty" yaml:"seed,omitempty"`

	// Initial state
	TargetPosition      *Vec2 `json:"target_position,omitempty" yaml:"target_position,omitempty"`
	TargetVelocity      *Vec2 `json:"target_velocity,omitempty" yaml:"target_velocity,omitempty"`
	InterceptorPosition *Vec2 `json:"interceptor_position,omitempty" yaml:"interceptor_position,omitempty"`
	InterceptorVelocity *Vec2 `json:"interceptor_velocity,omitempty" yaml:"interceptor_velocity,omitempty"`
	RandomStart         *Rect `json:"random_start,omitempty" yaml:"random_start,omitempty"`

	// Interceptor
	InterceptorSpeed *float64 `json:"interceptor_speed,omitempty" yaml:"interceptor_speed,omitempty"`
	GuidanceMode     *string  `json:"guidance_mode,omitempty" yaml:"guidance_mode,omitempty"`
	EnforceMinAngle  *bool    `json:"enforce_min_angle,omitempty" yaml:"enforce_min_angle,omitempty"`
	MinApproachDeg   *float64 `json:"min_approach_deg,omitempty" yaml:"min_approach_deg,omitempty"`
	AngleBufferDeg   *float64 `json:"angle_buffer_deg,omitempty" yaml:"angle_buffer_deg,omitempty"`

	// Target
	EvasionEnabled    *bool    `json:"evasion_enabled,omitempty" yaml:"evasion_enabled,omitempty"`
	ReferenceAltitude *float64 `json:"reference_altitude,omitempty" yaml:"reference_altitude,omitempty"`
	EvasionWeight     *float64 `json:"evasion_weight,omitempty" yaml:"evasion_weight,omitempty"`
	EvasionGain       *float64 `json:"evasion_gain,omitempty" yaml:"evasion_gain,omitempty"`
	MaxDeviationDeg   *float64 `json:"max_deviation_deg,omitempty" yaml:"max_deviation_deg,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyConfig returns a Config with every field unset.
func EmptyConfig() *Config {
	return &Config{}
}

// DefaultConfig returns the "evasive" preset with every field populated.
func DefaultConfig() *Config {
	cfg, _ := Preset(PresetEvasive)
	return cfg
}

// LoadConfig reads a .json, .yaml or .yml file and validates it. Fields the
// file omits stay nil.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if ext == ".json" {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Merge returns a new Config holding base with every field set in overlay
// taking precedence. Neither argument is modified.
func Merge(base, overlay *Config) (*Config, error) {
	out := EmptyConfig()
	for _, c := range []*Config{base, overlay} {
		if c == nil {
			continue
		}
		data, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	return out, nil
}

// Validate checks the fields that are set.
func (c *Config) Validate() error {
	if c.MaxTicks != nil && *c.MaxTicks <= 0 {
		return fmt.Errorf("max_ticks must be positive, got %d", *c.MaxTicks)
	}
	if c.InterceptorSpeed != nil && *c.InterceptorSpeed < 0 {
		return fmt.Errorf("interceptor_speed must be non-negative, got %f", *c.InterceptorSpeed)
	}
	if c.EvasionWeight != nil && (*c.EvasionWeight < 0 || *c.EvasionWeight > 1) {
		return fmt.Errorf("evasion_weight must be between 0 and 1, got %f", *c.EvasionWeight)
	}
	if c.MaxDeviationDeg != nil && *c.MaxDeviationDeg < 0 {
		return fmt.Errorf("max_deviation_deg must be non-negative, got %f", *c.MaxDeviationDeg)
	}
	if c.GuidanceMode != nil {
		if _, err := guidance.ParseMode(*c.GuidanceMode); err != nil {
			return fmt.Errorf("guidance_mode: %w", err)
		}
	}
	if c.MinApproachDeg != nil && (*c.MinApproachDeg < 0 || *c.MinApproachDeg >= 180) {
		return fmt.Errorf("min_approach_deg must be in [0, 180), got %f", *c.MinApproachDeg)
	}
	if c.AngleBufferDeg != nil && *c.AngleBufferDeg < 0 {
		return fmt.Errorf("angle_buffer_deg must be non-negative, got %f", *c.AngleBufferDeg)
	}
	if rs := c.RandomStart; rs != nil && (rs.Min.X > rs.Max.X || rs.Min.Y > rs.Max.Y) {
		return fmt.Errorf("random_start min %+v must not exceed max %+v", rs.Min, rs.Max)
	}
	return nil
}

// GetCollisionThreshold returns the collision_threshold value or the default.
func (c *Config) GetCollisionThreshold() float64 {
	if c.CollisionThreshold == nil {
		return sim.DefaultCollisionThreshold
	}
	return *c.CollisionThreshold
}

// GetMaxTicks returns the max_ticks value or the default.
func (c *Config) GetMaxTicks() int {
	if c.MaxTicks == nil {
		return sim.DefaultMaxTicks
	}
	return *c.MaxTicks
}

// GetSeed returns the seed value or the default.
func (c *Config) GetSeed() int64 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

// GetTargetPosition returns the target_position value or the default.
func (c *Config) GetTargetPosition() r2.Vec {
	if c.TargetPosition == nil {
		return r2.Vec{X: 0, Y: 20}
	}
	return c.TargetPosition.r2()
}

// GetTargetVelocity returns the target_velocity value or the default.
func (c *Config) GetTargetVelocity() r2.Vec {
	if c.TargetVelocity == nil {
		return r2.Vec{X: 2, Y: 0}
	}
	return c.TargetVelocity.r2()
}

// GetInterceptorPosition returns the interceptor_position value or the origin.
func (c *Config) GetInterceptorPosition() r2.Vec {
	if c.InterceptorPosition == nil {
		return r2.Vec{}
	}
	return c.InterceptorPosition.r2()
}

// GetInterceptorVelocity returns the interceptor_velocity value or zero.
func (c *Config) GetInterceptorVelocity() r2.Vec {
	if c.InterceptorVelocity == nil {
		return r2.Vec{}
	}
	return c.InterceptorVelocity.r2()
}

// GetInterceptorSpeed returns the interceptor_speed value or the default.
func (c *Config) GetInterceptorSpeed() float64 {
	if c.InterceptorSpeed == nil {
		return sim.DefaultInterceptorSpeed
	}
	return *c.InterceptorSpeed
}

// GetGuidanceMode returns the guidance_mode value or lead pursuit.
func (c *Config) GetGuidanceMode() guidance.Mode {
	if c.GuidanceMode == nil {
		return guidance.ModeLead
	}
	m, err := guidance.ParseMode(*c.GuidanceMode)
	if err != nil {
		return guidance.ModeLead // default on parse error
	}
	return m
}

// GetEnforceMinAngle returns the enforce_min_angle value or the default.
func (c *Config) GetEnforceMinAngle() bool {
	if c.EnforceMinAngle == nil {
		return true
	}
	return *c.EnforceMinAngle
}

// GetMinApproachDeg returns the min_approach_deg value or the default.
func (c *Config) GetMinApproachDeg() float64 {
	if c.MinApproachDeg == nil {
		return guidance.DefaultMinApproachDeg
	}
	return *c.MinApproachDeg
}

// GetAngleBufferDeg returns the angle_buffer_deg value or the default.
func (c *Config) GetAngleBufferDeg() float64 {
	if c.AngleBufferDeg == nil {
		return guidance.DefaultAngleBufferDeg
	}
	return *c.AngleBufferDeg
}

// GetEvasionEnabled returns the evasion_enabled value or the default.
func (c *Config) GetEvasionEnabled() bool {
	if c.EvasionEnabled == nil {
		return true
	}
	return *c.EvasionEnabled
}

// GetReferenceAltitude returns the reference_altitude value, defaulting to
// the target's starting altitude.
func (c *Config) GetReferenceAltitude() float64 {
	if c.ReferenceAltitude == nil {
		return c.GetTargetPosition().Y
	}
	return *c.ReferenceAltitude
}

// GetEvasionWeight returns the evasion_weight value or the default.
func (c *Config) GetEvasionWeight() float64 {
	if c.EvasionWeight == nil {
		return 0.6
	}
	return *c.EvasionWeight
}

// GetEvasionGain returns the evasion_gain value or the default.
func (c *Config) GetEvasionGain() float64 {
	if c.EvasionGain == nil {
		return 0.1
	}
	return *c.EvasionGain
}

// GetMaxDeviationDeg returns the max_deviation_deg value or the default.
func (c *Config) GetMaxDeviationDeg() float64 {
	if c.MaxDeviationDeg == nil {
		return evasion.DefaultMaxDeviationDeg
	}
	return *c.MaxDeviationDeg
}

// GetRandomStart returns the random_start rectangle, or nil when unset.
func (c *Config) GetRandomStart() *sim.Rect {
	if c.RandomStart == nil {
		return nil
	}
	return &sim.Rect{Min: c.RandomStart.Min.r2(), Max: c.RandomStart.Max.r2()}
}

// ToParams resolves every field into simulation parameters.
func (c *Config) ToParams() sim.Params {
	return sim.Params{
		CollisionThreshold:  c.GetCollisionThreshold(),
		MaxTicks:            c.GetMaxTicks(),
		TargetPosition:      c.GetTargetPosition(),
		TargetVelocity:      c.GetTargetVelocity(),
		InterceptorPosition: c.GetInterceptorPosition(),
		InterceptorVelocity: c.GetInterceptorVelocity(),
		InterceptorSpeed:    c.GetInterceptorSpeed(),
		EvasionEnabled:      c.GetEvasionEnabled(),
		Evasion: evasion.Params{
			ReferenceAltitude: c.GetReferenceAltitude(),
			Weight:            c.GetEvasionWeight(),
			Gain:              c.GetEvasionGain(),
			MaxDeviationDeg:   c.GetMaxDeviationDeg(),
		},
		Guidance: guidance.Params{
			Mode:            c.GetGuidanceMode(),
			EnforceMinAngle: c.GetEnforceMinAngle(),
			MinApproachDeg:  c.GetMinApproachDeg(),
			AngleBufferDeg:  c.GetAngleBufferDeg(),
		},
		RandomStart: c.GetRandomStart(),
		Seed:        c.GetSeed(),
	}
}

// Named presets.
const (
	PresetEvasive = "evasive" // altitude-holding evader, correction weight 0.6
	PresetRandom  = "random"  // purely stochastic evader, correction weight 0
	PresetPursuit = "pursuit" // non-evading target, plain pure pursuit
	PresetLead    = "lead"    // non-evading target, lead pursuit with angle floor
)

var presets = map[string]func() *Config{
	PresetEvasive: func() *Config {
		c := baseline()
		c.EvasionWeight = ptrFloat64(0.6)
		c.EvasionGain = ptrFloat64(0.1)
		return c
	},
	PresetRandom: func() *Config {
		c := baseline()
		c.EvasionWeight = ptrFloat64(0.0)
		c.EvasionGain = ptrFloat64(0.0)
		return c
	},
	PresetPursuit: func() *Config {
		c := baseline()
		c.EvasionEnabled = ptrBool(false)
		c.GuidanceMode = ptrString(string(guidance.ModePure))
		c.EnforceMinAngle = ptrBool(false)
		return c
	},
	PresetLead: func() *Config {
		c := baseline()
		c.EvasionEnabled = ptrBool(false)
		return c
	},
}

// baseline is the reference encounter with every field set.
func baseline() *Config {
	return &Config{
		CollisionThreshold:  ptrFloat64(sim.DefaultCollisionThreshold),
		MaxTicks:            ptrInt(sim.DefaultMaxTicks),
		Seed:                ptrInt64(1),
		TargetPosition:      &Vec2{X: 0, Y: 20},
		TargetVelocity:      &Vec2{X: 2, Y: 0},
		InterceptorPosition: &Vec2{},
		InterceptorVelocity: &Vec2{},
		InterceptorSpeed:    ptrFloat64(sim.DefaultInterceptorSpeed),
		GuidanceMode:        ptrString(string(guidance.ModeLead)),
		EnforceMinAngle:     ptrBool(true),
		MinApproachDeg:      ptrFloat64(guidance.DefaultMinApproachDeg),
		AngleBufferDeg:      ptrFloat64(guidance.DefaultAngleBufferDeg),
		EvasionEnabled:      ptrBool(true),
		ReferenceAltitude:   ptrFloat64(20),
		EvasionWeight:       ptrFloat64(0.6),
		EvasionGain:         ptrFloat64(0.1),
		MaxDeviationDeg:     ptrFloat64(evasion.DefaultMaxDeviationDeg),
	}
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (*Config, error) {
	f, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return f(), nil
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
