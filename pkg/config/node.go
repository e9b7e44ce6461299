package config

import (
	"flag"
	"time"

	"github.com/golang/glog"
)

// Sensor kinds
const (
	SensorsSim   = "sim"
	SensorsHwmon = "hwmon"
)

// PushConfig configures a UDP node.
type PushConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Interval time.Duration `yaml:"interval"`
}

// SensorsConfig selects the sensor provider.
type SensorsConfig struct {
	Kind   string        `yaml:"kind"`
	Paths  []string      `yaml:"paths"`
	Sample time.Duration `yaml:"sample"`
}

// LEDConfig configures the status LED. Empty Pin logs instead.
type LEDConfig struct {
	Pin       string `yaml:"pin"`
	ActiveLow bool   `yaml:"active_low"`
}

// NodeConfig is the configuration of a node, loaded at startup.
type NodeConfig struct {
	Address   int           `yaml:"address"`
	Transport string        `yaml:"transport"`
	Serial    SerialConfig  `yaml:"serial"`
	Push      PushConfig    `yaml:"push"`
	Sensors   SensorsConfig `yaml:"sensors"`
	LED       LEDConfig     `yaml:"led"`
	Tick      time.Duration `yaml:"tick"`
	InterByte time.Duration `yaml:"inter_byte"`
	Buffer    int           `yaml:"buffer"`
}

var defaultNodeConfig = NodeConfig{
	Transport: TransportRS485,
	Serial: SerialConfig{
		Port:      "/dev/ttyS0",
		BaudRate:  9600,
		Direction: DirectionNone,
	},
	Push: PushConfig{
		Port:     5005,
		Interval: 10 * time.Second,
	},
	Sensors: SensorsConfig{
		Kind:   SensorsSim,
		Sample: time.Second,
	},
	Tick:      10 * time.Millisecond,
	InterByte: 50 * time.Millisecond,
	Buffer:    64,
}

// SetupNodeFlags sets command line flags of a node.
func SetupNodeFlags() {
	flag.StringVar(&configFile, "config", configFile, "Configuration file (YAML)")
	flag.IntVar(&nodeAddr, "addr", nodeAddr, "Override node address")
}

// DefaultNode gets a copy of the default node config.
func DefaultNode() *NodeConfig {
	conf := defaultNodeConfig
	conf.Sensors.Paths = append([]string(nil), defaultNodeConfig.Sensors.Paths...)
	return &conf
}

// LoadNode reads the file at path over the defaults and validates.
func LoadNode(path string) (*NodeConfig, error) {
	conf := DefaultNode()
	if err := loadFile(path, conf); err != nil {
		return nil, err
	}
	return conf, conf.Validate()
}

// NewNodeConfig builds the node config from defaults, -config file,
// environment and flags.
func NewNodeConfig() (*NodeConfig, error) {
	conf := DefaultNode()
	if configFile != "" {
		if err := loadFile(configFile, conf); err != nil {
			return nil, err
		}
	}
	if nodeAddr != 0 {
		conf.Address = nodeAddr
	}
	return conf, conf.Validate()
}

// MustNewNodeConfig is NewNodeConfig but fails on error.
func MustNewNodeConfig() *NodeConfig {
	conf, err := NewNodeConfig()
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	return conf
}
