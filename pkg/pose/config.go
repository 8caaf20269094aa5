package pose

import "fmt"

// Config holds all tunable parameters for landmark processing.
type Config struct {
	// Smoothing
	SmoothingFactor float64 // Weight on the previous smoothed value (0-1, higher = smoother)
	JitterThreshold float64 // Discard position changes below this distance (normalized units)

	// Velocity
	VelocitySmoothing float64 // Exponential smoothing factor for velocity (0-1)

	// Confidence
	ConsistencyScale float64 // Displacement at which movement consistency reaches zero

	// History
	HistorySize int // Ring buffer capacity for angular-velocity lookback

	// NominalFrameRate is assumed when computing angular velocity
	// between buffered frames.
	NominalFrameRate float64
}

// DefaultConfig returns the recommended configuration for 30 fps input.
func DefaultConfig() Config {
	return Config{
		SmoothingFactor:   0.6,   // 60% old, 40% new
		JitterThreshold:   0.005, // Ignore sub-half-percent movement
		VelocitySmoothing: 0.5,
		ConsistencyScale:  0.1,
		HistorySize:       10,
		NominalFrameRate:  30.0,
	}
}

// ResponsiveConfig returns a configuration that trusts new readings
// more, for fast movements at the cost of visible jitter.
func ResponsiveConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothingFactor = 0.3
	cfg.JitterThreshold = 0.002
	cfg.VelocitySmoothing = 0.3
	return cfg
}

// SmoothConfig returns a configuration for slow, deliberate exercises
// where stability matters more than latency.
func SmoothConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothingFactor = 0.8
	cfg.JitterThreshold = 0.01
	cfg.VelocitySmoothing = 0.7
	return cfg
}

// Validate checks that all parameters are in their legal ranges.
func (c Config) Validate() error {
	if c.SmoothingFactor < 0 || c.SmoothingFactor >= 1 {
		return fmt.Errorf("smoothing factor must be in [0, 1): got %v", c.SmoothingFactor)
	}
	if c.VelocitySmoothing < 0 || c.VelocitySmoothing >= 1 {
		return fmt.Errorf("velocity smoothing must be in [0, 1): got %v", c.VelocitySmoothing)
	}
	if c.JitterThreshold < 0 {
		return fmt.Errorf("jitter threshold must be non-negative: got %v", c.JitterThreshold)
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("history size must be at least 1: got %d", c.HistorySize)
	}
	if c.NominalFrameRate <= 0 {
		return fmt.Errorf("nominal frame rate must be positive: got %v", c.NominalFrameRate)
	}
	return nil
}

// ConfigPatch is a partial configuration update. Nil fields leave the
// current value unchanged.
type ConfigPatch struct {
	SmoothingFactor   *float64
	JitterThreshold   *float64
	VelocitySmoothing *float64
	ConsistencyScale  *float64
	NominalFrameRate  *float64
}

// apply merges the patch into the config.
func (p ConfigPatch) apply(c Config) Config {
	if p.SmoothingFactor != nil {
		c.SmoothingFactor = *p.SmoothingFactor
	}
	if p.JitterThreshold != nil {
		c.JitterThreshold = *p.JitterThreshold
	}
	if p.VelocitySmoothing != nil {
		c.VelocitySmoothing = *p.VelocitySmoothing
	}
	if p.ConsistencyScale != nil {
		c.ConsistencyScale = *p.ConsistencyScale
	}
	if p.NominalFrameRate != nil {
		c.NominalFrameRate = *p.NominalFrameRate
	}
	return c
}

// Float64 returns a pointer to v, for building a ConfigPatch inline.
func Float64(v float64) *float64 {
	return &v
}
