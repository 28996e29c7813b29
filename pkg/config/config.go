package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for configurations the pipeline cannot run with.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration.
type Config struct {
	Sensor      SensorConfig      `yaml:"sensor"`
	Filter      FilterConfig      `yaml:"filter"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Output      OutputConfig      `yaml:"output"`
	Sampling    SamplingConfig    `yaml:"sampling"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Mock        MockConfig        `yaml:"mock"`
}

// SensorConfig selects where raw lux readings come from.
type SensorConfig struct {
	Source   string `yaml:"source"`    // serial, udp or mock
	Port     string `yaml:"port"`      // Serial port of the sensor node
	BaudRate int    `yaml:"baud_rate"` // Serial baud rate
	UDPAddr  string `yaml:"udp_addr"`  // Listen address for UDP sensor nodes
	Combine  string `yaml:"combine"`   // How readings of several sensors are merged: mean, first or max
}

// FilterConfig selects and parametrizes the smoothing filter.
type FilterConfig struct {
	Kind      string  `yaml:"kind"`       // sma, ema or sg
	Window    int     `yaml:"window"`     // SMA and Savitzky-Golay window length
	Alpha     float64 `yaml:"alpha"`      // EMA smoothing factor
	PolyOrder int     `yaml:"poly_order"` // Savitzky-Golay polynomial degree
}

// CalibrationConfig contains the adaptive range parameters.
type CalibrationConfig struct {
	WindowSize        int     `yaml:"window_size"`  // Filtered samples kept for robust statistics (0 disables)
	BoundsAlpha       float64 `yaml:"bounds_alpha"` // Blend factor of new bounds into the tracked ones
	InitialMin        float64 `yaml:"initial_min"`
	InitialMax        float64 `yaml:"initial_max"`
	Epsilon           float64 `yaml:"epsilon"`     // Smallest accepted span before it is forced open
	MinSpan           float64 `yaml:"min_span"`    // Span forced when bounds collapse
	SpanPolicy        string  `yaml:"span_policy"` // anchor_min or centered
	Stride            int     `yaml:"stride"`      // Recompute bounds every N ticks
	RequireFullWindow bool    `yaml:"require_full_window"`
}

// OutputConfig contains the actuator command range.
type OutputConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// SamplingConfig contains tick timing and history parameters.
type SamplingConfig struct {
	Period  time.Duration `yaml:"period"`  // Resampling period (0 = one tick per received reading)
	History time.Duration `yaml:"history"` // Telemetry history kept for display
}

// MQTTConfig contains telemetry broker configuration.
type MQTTConfig struct {
	Broker      string `yaml:"broker"` // Empty disables MQTT
	Port        int    `yaml:"port"`
	TopicPrefix string `yaml:"topic_prefix"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	UseTLS      bool   `yaml:"use_tls"`
	QoS         byte   `yaml:"qos"`
}

// TelemetryConfig contains local telemetry outputs.
type TelemetryConfig struct {
	CSVPath  string `yaml:"csv_path"`  // Empty disables CSV recording
	HTTPAddr string `yaml:"http_addr"` // Empty disables the live feed
}

// MockConfig contains simulated sensor configuration.
type MockConfig struct {
	BaseLux     float64       `yaml:"base_lux"`     // Mean illuminance (lx)
	Amplitude   float64       `yaml:"amplitude"`    // Slow variation amplitude (lx)
	Period      time.Duration `yaml:"period"`       // Slow variation period
	NoiseLevel  float64       `yaml:"noise_level"`  // Gaussian noise sigma (lx)
	OutlierRate float64       `yaml:"outlier_rate"` // Probability of a gross outlier per sample
	OutlierLux  float64       `yaml:"outlier_lux"`  // Outlier magnitude (lx)
	SampleRate  time.Duration `yaml:"sample_rate"`  // Time between simulated readings
	Sensors     int           `yaml:"sensors"`      // Number of simulated sensors per reading
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Sensor: SensorConfig{
			Source:   "serial",
			Port:     "/dev/ttyUSB0",
			BaudRate: 115200,
			UDPAddr:  ":8888",
			Combine:  "mean",
		},
		Filter: FilterConfig{
			Kind:      "ema",
			Window:    11,
			Alpha:     0.1,
			PolyOrder: 3,
		},
		Calibration: CalibrationConfig{
			WindowSize:  600, // 5 minutes at 500ms
			BoundsAlpha: 0.05,
			InitialMin:  0,
			InitialMax:  1000,
			Epsilon:     1e-3,
			MinSpan:     1.0,
			SpanPolicy:  "anchor_min",
			Stride:      1,
		},
		Output: OutputConfig{
			Min: 0,
			Max: 255,
		},
		Sampling: SamplingConfig{
			Period:  500 * time.Millisecond,
			History: 5 * time.Minute,
		},
		MQTT: MQTTConfig{
			Port:        1883,
			TopicPrefix: "golux",
		},
		Mock: MockConfig{
			BaseLux:     300,
			Amplitude:   150,
			Period:      2 * time.Minute,
			NoiseLevel:  8,
			OutlierRate: 0.01,
			OutlierLux:  5000,
			SampleRate:  500 * time.Millisecond,
			Sensors:     2,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the parameters that are not recoverable at runtime.
// Filter parameters are validated by the filter constructors.
func (c *Config) Validate() error {
	cal := c.Calibration
	if cal.WindowSize < 0 {
		return fmt.Errorf("%w: calibration window_size must be >= 0, got %d", ErrInvalid, cal.WindowSize)
	}
	if cal.BoundsAlpha < 0 || cal.BoundsAlpha > 1 {
		return fmt.Errorf("%w: calibration bounds_alpha must be in [0, 1], got %g", ErrInvalid, cal.BoundsAlpha)
	}
	if cal.Epsilon < 0 {
		return fmt.Errorf("%w: calibration epsilon must be >= 0, got %g", ErrInvalid, cal.Epsilon)
	}
	if cal.MinSpan <= cal.Epsilon {
		return fmt.Errorf("%w: calibration min_span (%g) must exceed epsilon (%g)", ErrInvalid, cal.MinSpan, cal.Epsilon)
	}
	if cal.InitialMax <= cal.InitialMin {
		return fmt.Errorf("%w: calibration initial_max (%g) must exceed initial_min (%g)", ErrInvalid, cal.InitialMax, cal.InitialMin)
	}
	if cal.Stride < 1 {
		return fmt.Errorf("%w: calibration stride must be >= 1, got %d", ErrInvalid, cal.Stride)
	}
	switch cal.SpanPolicy {
	case "anchor_min", "centered":
	default:
		return fmt.Errorf("%w: unknown calibration span_policy %q", ErrInvalid, cal.SpanPolicy)
	}
	if c.Output.Max <= c.Output.Min {
		return fmt.Errorf("%w: output max (%d) must exceed min (%d)", ErrInvalid, c.Output.Max, c.Output.Min)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Sensor.Source == "" {
		c.Sensor.Source = def.Sensor.Source
	}
	if c.Sensor.Port == "" {
		c.Sensor.Port = def.Sensor.Port
	}
	if c.Sensor.BaudRate == 0 {
		c.Sensor.BaudRate = def.Sensor.BaudRate
	}
	if c.Sensor.UDPAddr == "" {
		c.Sensor.UDPAddr = def.Sensor.UDPAddr
	}
	if c.Sensor.Combine == "" {
		c.Sensor.Combine = def.Sensor.Combine
	}

	if c.Filter.Kind == "" {
		c.Filter.Kind = def.Filter.Kind
	}
	if c.Filter.Window == 0 {
		c.Filter.Window = def.Filter.Window
	}
	if c.Filter.Alpha == 0 {
		c.Filter.Alpha = def.Filter.Alpha
	}

	if c.Calibration.BoundsAlpha == 0 {
		c.Calibration.BoundsAlpha = def.Calibration.BoundsAlpha
	}
	if c.Calibration.InitialMax == 0 && c.Calibration.InitialMin == 0 {
		c.Calibration.InitialMax = def.Calibration.InitialMax
	}
	if c.Calibration.Epsilon == 0 {
		c.Calibration.Epsilon = def.Calibration.Epsilon
	}
	if c.Calibration.MinSpan == 0 {
		c.Calibration.MinSpan = def.Calibration.MinSpan
	}
	if c.Calibration.SpanPolicy == "" {
		c.Calibration.SpanPolicy = def.Calibration.SpanPolicy
	}
	if c.Calibration.Stride == 0 {
		c.Calibration.Stride = def.Calibration.Stride
	}

	if c.Output.Max == 0 && c.Output.Min == 0 {
		c.Output = def.Output
	}

	if c.Sampling.History == 0 {
		c.Sampling.History = def.Sampling.History
	}

	if c.MQTT.Port == 0 {
		c.MQTT.Port = def.MQTT.Port
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = def.MQTT.TopicPrefix
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
	if c.Mock.Sensors == 0 {
		c.Mock.Sensors = def.Mock.Sensors
	}
}
