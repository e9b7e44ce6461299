// Package config loads and validates the configuration of the controller
// daemon and of nodes.
//
// Values are layered: built-in defaults, then the YAML file, then
// environment variables, then command line flags. Durations are written
// as strings, e.g. "200ms".
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"
)

// Transports
const (
	TransportRS485 = "rs485"
	TransportUDP   = "udp"
	TransportBoth  = "both"
)

// Direction control modes of the RS-485 driver.
const (
	DirectionNone = "none"
	DirectionRTS  = "rts"
	DirectionGPIO = "gpio"
)

// SerialConfig describes the RS-485 port.
type SerialConfig struct {
	Port      string `yaml:"port"`
	BaudRate  int    `yaml:"baudrate"`
	Direction string `yaml:"direction"`
	DEPin     string `yaml:"de_pin"`
	Invert    bool   `yaml:"invert"`
}

// PollConfig configures the poller.
type PollConfig struct {
	Sensors   []int         `yaml:"sensors"`
	Interval  time.Duration `yaml:"interval"`
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	InterByte time.Duration `yaml:"inter_byte"`
}

// UDPConfig configures the push receiver.
type UDPConfig struct {
	Listen string `yaml:"listen"`
}

// MQTTConfig configures publishing. Empty URL disables it.
type MQTTConfig struct {
	URL      string `yaml:"url"`
	Topic    string `yaml:"topic"`
	Encoding string `yaml:"encoding"`
}

// HTTPConfig configures the metrics and live feed server. Empty Listen
// disables it.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// Config is the controller configuration.
type Config struct {
	Transport  string        `yaml:"transport"`
	DB         string        `yaml:"db"`
	Serial     SerialConfig  `yaml:"serial"`
	Poll       PollConfig    `yaml:"poll"`
	UDP        UDPConfig     `yaml:"udp"`
	MQTT       MQTTConfig    `yaml:"mqtt"`
	HTTP       HTTPConfig    `yaml:"http"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

var defaultConfig = Config{
	Transport: TransportRS485,
	DB:        "tmon.db",
	Serial: SerialConfig{
		Port:      "/dev/ttyUSB0",
		BaudRate:  9600,
		Direction: DirectionNone,
	},
	Poll: PollConfig{
		Interval:  60 * time.Second,
		Timeout:   200 * time.Millisecond,
		Retries:   2,
		InterByte: 50 * time.Millisecond,
	},
	UDP:        UDPConfig{Listen: ":5005"},
	MQTT:       MQTTConfig{Topic: "readings", Encoding: "json"},
	HTTP:       HTTPConfig{Listen: ":9105"},
	StaleAfter: 5 * time.Minute,
}

// command line and environment overrides, applied after the file.
var (
	configFile string
	dbPath     string
	mqttURL    string
	httpListen string
	nodeAddr   int
)

func init() {
	configFile = os.Getenv("TMON_CONFIG")
	dbPath = os.Getenv("TMON_DB")
	mqttURL = os.Getenv("TMON_MQTT_URL")
	httpListen = os.Getenv("TMON_HTTP")
	if val := os.Getenv("TMON_NODE_ADDR"); val != "" {
		if addr, err := strconv.Atoi(val); err == nil {
			nodeAddr = addr
		}
	}
}

// SetupFlags sets command line flags of the controller.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "Configuration file (YAML)")
	flag.StringVar(&dbPath, "db", dbPath, "Override sqlite database path")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "Override MQTT broker URL")
	flag.StringVar(&httpListen, "http", httpListen, "Override HTTP listen address")
}

// Default gets a copy of the default config.
func Default() *Config {
	conf := defaultConfig
	conf.Poll.Sensors = append([]int(nil), defaultConfig.Poll.Sensors...)
	return &conf
}

// Load reads the file at path over the defaults and validates.
func Load(path string) (*Config, error) {
	conf := Default()
	if err := loadFile(path, conf); err != nil {
		return nil, err
	}
	return conf, conf.Validate()
}

// NewConfig builds the config from defaults, -config file, environment
// and flags, and validates it.
func NewConfig() (*Config, error) {
	conf, err := Resolve()
	if err != nil {
		return nil, err
	}
	return conf, conf.Validate()
}

// Resolve is NewConfig without validation, for tools which only use
// part of the config.
func Resolve() (*Config, error) {
	conf := Default()
	if configFile != "" {
		if err := loadFile(configFile, conf); err != nil {
			return nil, err
		}
	}
	if dbPath != "" {
		conf.DB = dbPath
	}
	if mqttURL != "" {
		conf.MQTT.URL = mqttURL
	}
	if httpListen != "" {
		conf.HTTP.Listen = httpListen
	}
	return conf, nil
}

// MustNewConfig is NewConfig but fails on error.
func MustNewConfig() *Config {
	conf, err := NewConfig()
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	return conf
}

func loadFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// UsesSerial tells whether the RS-485 poller runs.
func (c *Config) UsesSerial() bool {
	return c.Transport == TransportRS485 || c.Transport == TransportBoth
}

// UsesUDP tells whether the push receiver runs.
func (c *Config) UsesUDP() bool {
	return c.Transport == TransportUDP || c.Transport == TransportBoth
}

// Addresses returns the polled node addresses in order.
func (c *Config) Addresses() []byte {
	addrs := make([]byte, len(c.Poll.Sensors))
	for i, addr := range c.Poll.Sensors {
		addrs[i] = byte(addr)
	}
	return addrs
}
