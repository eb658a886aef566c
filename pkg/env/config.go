// Package env provides configuration of the commands.
//
// Defaults are overridden by UARTFRAME_* environment variables, then by
// an optional TOML file, then by command line flags.
package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the configuration shared by the commands.
type Config struct {
	// Port is a serial device, tcp://host:port to dial or
	// listen://host:port to accept a single connection.
	Port        string        `toml:"port"`
	Baud        int           `toml:"baud"`
	ReadTimeout time.Duration `toml:"read_timeout"`

	HostID   uint `toml:"host_id"`
	DeviceID uint `toml:"device_id"`
	// TimerFreq is the simulated PWM timer clock.
	TimerFreq uint `toml:"timer_freq"`

	// MQTTURL specifies the MQTT broker, e.g. mqtt://host:port/topic-prefix
	MQTTURL       string `toml:"mqtt_url"`
	ClientID      string `toml:"client_id"`
	WSListen      string `toml:"ws_listen"`
	MetricsListen string `toml:"metrics_listen"`

	ConfigFile string `toml:"-"`
}

var defaultConfig = Config{
	Port:      "/dev/ttyUSB0",
	Baud:      115200,
	HostID:    1,
	DeviceID:  100,
	TimerFreq: 84000000,
}

func init() {
	applyEnv(&defaultConfig, os.Getenv)
	if defaultConfig.ClientID == "" {
		defaultConfig.ClientID = DefaultClientID()
	}
}

func applyEnv(c *Config, getenv func(string) string) {
	if val := getenv("UARTFRAME_PORT"); val != "" {
		c.Port = val
	}
	if val, err := strconv.Atoi(getenv("UARTFRAME_BAUD")); err == nil {
		c.Baud = val
	}
	if val, err := strconv.ParseUint(getenv("UARTFRAME_HOST_ID"), 0, 8); err == nil {
		c.HostID = uint(val)
	}
	if val, err := strconv.ParseUint(getenv("UARTFRAME_DEVICE_ID"), 0, 8); err == nil {
		c.DeviceID = uint(val)
	}
	if val := getenv("UARTFRAME_MQTT_URL"); val != "" {
		c.MQTTURL = val
	}
	if val := getenv("UARTFRAME_CLIENT_ID"); val != "" {
		c.ClientID = val
	}
	if val := getenv("UARTFRAME_CONFIG"); val != "" {
		c.ConfigFile = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	c := &defaultConfig
	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "TOML config file.")
	flag.StringVar(&c.Port, "port", c.Port, "Serial port, tcp://host:port or listen://host:port.")
	flag.IntVar(&c.Baud, "baud", c.Baud, "Serial port baud rate.")
	flag.DurationVar(&c.ReadTimeout, "read-timeout", c.ReadTimeout, "Serial port read timeout, 0 blocks.")
	flag.UintVar(&c.HostID, "host-id", c.HostID, "Frame id of the host.")
	flag.UintVar(&c.DeviceID, "device-id", c.DeviceID, "Frame id of the device.")
	flag.UintVar(&c.TimerFreq, "timer-freq", c.TimerFreq, "Simulated timer clock in Hz.")
	flag.StringVar(&c.MQTTURL, "mqtt", c.MQTTURL, "MQTT broker URL.")
	flag.StringVar(&c.ClientID, "client-id", c.ClientID, "MQTT client id.")
	flag.StringVar(&c.WSListen, "ws", c.WSListen, "Websocket listen address.")
	flag.StringVar(&c.MetricsListen, "metrics", c.MetricsListen, "Metrics listen address.")
}

// Parse parses command line flags into the default config.
// A config file is loaded in between so that flags take precedence.
func Parse() (*Config, error) {
	flag.Parse()
	if path := defaultConfig.ConfigFile; path != "" {
		if err := defaultConfig.LoadFile(path); err != nil {
			return nil, err
		}
		flag.Parse()
	}
	if err := defaultConfig.Validate(); err != nil {
		return nil, err
	}
	return &defaultConfig, nil
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile overrides c with values present in a TOML file.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	return nil
}

// Validate checks ranges of the values.
func (c *Config) Validate() error {
	if c.HostID > 0xff {
		return fmt.Errorf("host id %d out of range", c.HostID)
	}
	if c.DeviceID > 0xff {
		return fmt.Errorf("device id %d out of range", c.DeviceID)
	}
	if c.HostID == c.DeviceID {
		return fmt.Errorf("host and device share id %d", c.HostID)
	}
	if c.TimerFreq == 0 || c.TimerFreq > 0xffffffff {
		return fmt.Errorf("invalid timer frequency %d", c.TimerFreq)
	}
	if c.Port == "" {
		return fmt.Errorf("port must be specified")
	}
	return nil
}

// Host returns the host id as a frame id.
func (c *Config) Host() byte {
	return byte(c.HostID)
}

// Device returns the device id as a frame id.
func (c *Config) Device() byte {
	return byte(c.DeviceID)
}
