// Package config loads the node configuration from configs/config.yml,
// IRRIGATION_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const EnvPrefix = "IRRIGATION"

// Driver names for sensors and actuators.
const (
	DriverPeriph = "periph"
	DriverSim    = "sim"

	SoilIIO    = "iio"
	SoilModbus = "modbus"
)

type Config struct {
	Log       Log       `mapstructure:"log"`
	Serial    Serial    `mapstructure:"serial"`
	Node      Node      `mapstructure:"node"`
	Sensors   Sensors   `mapstructure:"sensors"`
	Actuators Actuators `mapstructure:"actuators"`
	DB        DB        `mapstructure:"db"`
	HTTP      HTTP      `mapstructure:"http"`
	Auth      Auth      `mapstructure:"auth"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// Serial is the link to the companion module (8N1).
type Serial struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`
}

type Node struct {
	TelemetryPeriod time.Duration `mapstructure:"telemetry_period"`
	CommandPeriod   time.Duration `mapstructure:"command_period"`
	HeartbeatPeriod time.Duration `mapstructure:"heartbeat_period"`
	StatusPeriod    time.Duration `mapstructure:"status_period"`
	LineCapacity    int           `mapstructure:"line_capacity"`
	CommandQueue    int           `mapstructure:"command_queue"`
}

type Sensors struct {
	Driver     string `mapstructure:"driver"`
	LightBus   string `mapstructure:"light_bus"`   // BH1750
	ClimateBus string `mapstructure:"climate_bus"` // SHTC3
	Soil       Soil   `mapstructure:"soil"`
}

type Soil struct {
	Source  string     `mapstructure:"source"`
	IIOPath string     `mapstructure:"iio_path"`
	ADCMax  float64    `mapstructure:"adc_max"`
	Modbus  ModbusSoil `mapstructure:"modbus"`
}

// ModbusSoil describes an RS-485 soil probe read over Modbus RTU.
type ModbusSoil struct {
	Port     string        `mapstructure:"port"`
	Baud     int           `mapstructure:"baud"`
	SlaveID  uint8         `mapstructure:"slave_id"`
	Register uint16        `mapstructure:"register"`
	Scale    float64       `mapstructure:"scale"` // register units to percent
	Timeout  time.Duration `mapstructure:"timeout"`
}

type Actuators struct {
	Driver        string `mapstructure:"driver"`
	PumpPin       string `mapstructure:"pump_pin"`
	FanPin        string `mapstructure:"fan_pin"`
	LightPin      string `mapstructure:"light_pin"`
	HeartbeatPin  string `mapstructure:"heartbeat_pin"`
	PumpActiveLow bool   `mapstructure:"pump_active_low"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

type HTTP struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
}

type Auth struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// SetDefaults registers the value of every key that may be left out.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("serial.port", "/dev/ttyS1")
	v.SetDefault("serial.baud", 115200)

	v.SetDefault("node.telemetry_period", 300*time.Millisecond)
	v.SetDefault("node.command_period", 20*time.Millisecond)
	v.SetDefault("node.heartbeat_period", 500*time.Millisecond)
	v.SetDefault("node.status_period", 5*time.Second)
	v.SetDefault("node.line_capacity", 128)
	v.SetDefault("node.command_queue", 8)

	v.SetDefault("sensors.driver", DriverPeriph)
	v.SetDefault("sensors.light_bus", "/dev/i2c-1")
	v.SetDefault("sensors.climate_bus", "/dev/i2c-0")
	v.SetDefault("sensors.soil.source", SoilIIO)
	v.SetDefault("sensors.soil.iio_path", "/sys/bus/iio/devices/iio:device0/in_voltage0_raw")
	v.SetDefault("sensors.soil.adc_max", 65535)
	v.SetDefault("sensors.soil.modbus.port", "/dev/ttyUSB0")
	v.SetDefault("sensors.soil.modbus.baud", 9600)
	v.SetDefault("sensors.soil.modbus.slave_id", 1)
	v.SetDefault("sensors.soil.modbus.register", 0)
	v.SetDefault("sensors.soil.modbus.scale", 0.1)
	v.SetDefault("sensors.soil.modbus.timeout", time.Second)

	v.SetDefault("actuators.driver", DriverPeriph)
	v.SetDefault("actuators.pump_pin", "GPIO17")
	v.SetDefault("actuators.fan_pin", "GPIO27")
	v.SetDefault("actuators.light_pin", "GPIO22")
	v.SetDefault("actuators.heartbeat_pin", "")
	v.SetDefault("actuators.pump_active_low", true)

	v.SetDefault("db.path", "irrigation.db")

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.port", "8080")

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
}

// Load reads the config file at path (or configs/config.yml when path is
// empty), applies environment overrides and validates the result. A missing
// default file is not an error; a missing explicit file is.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once, each wrapped with ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		bad("log.level %q", c.Log.Level)
	}

	if c.Serial.Port == "" {
		bad("serial.port is empty")
	}
	if c.Serial.Baud <= 0 {
		bad("serial.baud %d", c.Serial.Baud)
	}

	for key, d := range map[string]time.Duration{
		"node.telemetry_period": c.Node.TelemetryPeriod,
		"node.command_period":   c.Node.CommandPeriod,
		"node.heartbeat_period": c.Node.HeartbeatPeriod,
		"node.status_period":    c.Node.StatusPeriod,
	} {
		if d <= 0 {
			bad("%s must be positive, got %s", key, d)
		}
	}
	if c.Node.LineCapacity < 16 {
		bad("node.line_capacity %d is below 16", c.Node.LineCapacity)
	}
	if c.Node.CommandQueue <= 0 {
		bad("node.command_queue %d", c.Node.CommandQueue)
	}

	switch c.Sensors.Driver {
	case DriverSim:
	case DriverPeriph:
		if c.Sensors.LightBus == "" || c.Sensors.ClimateBus == "" {
			bad("sensors.light_bus and sensors.climate_bus are required")
		}
		c.Sensors.Soil.validate(bad)
	default:
		bad("sensors.driver %q", c.Sensors.Driver)
	}

	switch c.Actuators.Driver {
	case DriverSim:
	case DriverPeriph:
		if c.Actuators.PumpPin == "" || c.Actuators.FanPin == "" || c.Actuators.LightPin == "" {
			bad("actuators.pump_pin, fan_pin and light_pin are required")
		}
	default:
		bad("actuators.driver %q", c.Actuators.Driver)
	}

	if c.DB.Path == "" {
		bad("db.path is empty")
	}
	if c.HTTP.Enabled {
		if c.HTTP.Port == "" {
			bad("http.port is empty")
		}
		if len(c.Auth.SigningKey) < 16 {
			bad("auth.signing_key must be at least 16 bytes when http is enabled")
		}
	}

	return errors.Join(errs...)
}

func (s Soil) validate(bad func(string, ...any)) {
	switch s.Source {
	case SoilIIO:
		if s.IIOPath == "" {
			bad("sensors.soil.iio_path is empty")
		}
		if s.ADCMax <= 0 {
			bad("sensors.soil.adc_max must be positive")
		}
	case SoilModbus:
		if s.Modbus.Port == "" {
			bad("sensors.soil.modbus.port is empty")
		}
		if s.Modbus.Baud <= 0 {
			bad("sensors.soil.modbus.baud %d", s.Modbus.Baud)
		}
		if s.Modbus.Scale == 0 {
			bad("sensors.soil.modbus.scale is zero")
		}
	default:
		bad("sensors.soil.source %q", s.Source)
	}
}
