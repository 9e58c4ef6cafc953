// Package config loads the build/runtime constants for the host runner:
// defaults first, an optional config.yaml, then THERMONODE_* environment
// overrides. The result is read once at process start and injected; nothing
// is mutable after that.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"thermonode-go/types"
)

// Sensor variant names accepted in config.
const (
	SensorDS18B20 = "ds18b20"
	SensorAHT20   = "aht20"
)

// Config holds everything the firmware treats as a build-time constant.
type Config struct {
	Device    string `mapstructure:"device"`
	ServerURL string `mapstructure:"server_url"`
	DataDir   string `mapstructure:"data_dir"`

	Sensor     string `mapstructure:"sensor"`
	OneWirePin int    `mapstructure:"one_wire_pin"`
	I2CSDA     int    `mapstructure:"i2c_sda"`
	I2CSCL     int    `mapstructure:"i2c_scl"`
	LEDPin     int    `mapstructure:"led_pin"`

	SampleInterval time.Duration `mapstructure:"sample_interval"`
	JoinTimeout    time.Duration `mapstructure:"join_timeout"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`

	ResyncEveryWakes int      `mapstructure:"resync_every_wakes"`
	TimeServers      []string `mapstructure:"time_servers"`

	Networks []types.Credential `mapstructure:"networks"`
}

// LoadConfig loads configuration from path and the environment.
func LoadConfig(path string) (*Config, error) {
	def := GetDefaultConfig()
	viper.SetDefault("device", def.Device)
	viper.SetDefault("server_url", def.ServerURL)
	viper.SetDefault("data_dir", def.DataDir)
	viper.SetDefault("sensor", def.Sensor)
	viper.SetDefault("one_wire_pin", def.OneWirePin)
	viper.SetDefault("i2c_sda", def.I2CSDA)
	viper.SetDefault("i2c_scl", def.I2CSCL)
	viper.SetDefault("led_pin", def.LEDPin)
	viper.SetDefault("sample_interval", def.SampleInterval)
	viper.SetDefault("join_timeout", def.JoinTimeout)
	viper.SetDefault("http_timeout", def.HTTPTimeout)
	viper.SetDefault("resync_every_wakes", def.ResyncEveryWakes)
	viper.SetDefault("time_servers", def.TimeServers)

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("thermonode")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No file is fine; defaults and env carry the day.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if cfg.Sensor != SensorDS18B20 && cfg.Sensor != SensorAHT20 {
		return nil, fmt.Errorf("unknown sensor variant %q", cfg.Sensor)
	}
	return &cfg, nil
}

// GetDefaultConfig mirrors the board's stock constants.
func GetDefaultConfig() *Config {
	return &Config{
		Device:           "thermonode_host",
		ServerURL:        "https://wifitemp.example.com",
		DataDir:          "data",
		Sensor:           SensorDS18B20,
		OneWirePin:       4,
		I2CSDA:           21,
		I2CSCL:           22,
		LEDPin:           2,
		SampleInterval:   10 * time.Second,
		JoinTimeout:      20 * time.Second,
		HTTPTimeout:      10 * time.Second,
		ResyncEveryWakes: 20,
		TimeServers:      []string{"pool.ntp.org", "time.nist.gov"},
	}
}
