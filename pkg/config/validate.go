package config

import (
	"errors"
	"fmt"

	fx "github.com/robotalks/tmon/pkg/framework"
	"github.com/robotalks/tmon/pkg/msgs"
	"github.com/robotalks/tmon/pkg/proto"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}

func validAddress(addr int) bool {
	return addr >= int(proto.MinAddress) && addr <= int(proto.MaxAddress)
}

func (c *SerialConfig) validate(errs *fx.AggregatedError) {
	if c.Port == "" {
		errs.Add(invalid("serial.port is required"))
	}
	if c.BaudRate <= 0 {
		errs.Add(invalid("serial.baudrate must be positive"))
	}
	switch c.Direction {
	case "", DirectionNone, DirectionRTS:
	case DirectionGPIO:
		if c.DEPin == "" {
			errs.Add(invalid("serial.de_pin is required for gpio direction"))
		}
	default:
		errs.Add(invalid("unknown serial.direction %q", c.Direction))
	}
}

// Validate checks the controller config.
func (c *Config) Validate() error {
	var errs fx.AggregatedError
	switch c.Transport {
	case TransportRS485, TransportUDP, TransportBoth:
	default:
		errs.Add(invalid("unknown transport %q", c.Transport))
	}
	if c.DB == "" {
		errs.Add(invalid("db is required"))
	}
	if c.UsesSerial() {
		c.Serial.validate(&errs)
		if len(c.Poll.Sensors) == 0 {
			errs.Add(invalid("poll.sensors is required for %s", c.Transport))
		}
		seen := make(map[int]bool)
		for _, addr := range c.Poll.Sensors {
			if !validAddress(addr) {
				errs.Add(invalid("poll.sensors: address %d out of range %d-%d", addr, proto.MinAddress, proto.MaxAddress))
			} else if seen[addr] {
				errs.Add(invalid("poll.sensors: duplicate address %d", addr))
			}
			seen[addr] = true
		}
		if c.Poll.Interval <= 0 || c.Poll.Timeout <= 0 || c.Poll.InterByte <= 0 {
			errs.Add(invalid("poll durations must be positive"))
		}
		if c.Poll.Retries < 0 {
			errs.Add(invalid("poll.retries must not be negative"))
		}
	}
	if c.UsesUDP() && c.UDP.Listen == "" {
		errs.Add(invalid("udp.listen is required for %s", c.Transport))
	}
	if _, err := msgs.ParseEncoding(c.MQTT.Encoding); err != nil {
		errs.Add(invalid("mqtt.encoding: %v", err))
	}
	if c.StaleAfter < 0 {
		errs.Add(invalid("stale_after must not be negative"))
	}
	return errs.Aggregate()
}

// Validate checks the node config.
func (c *NodeConfig) Validate() error {
	var errs fx.AggregatedError
	if !validAddress(c.Address) {
		errs.Add(invalid("address %d out of range %d-%d", c.Address, proto.MinAddress, proto.MaxAddress))
	}
	switch c.Transport {
	case TransportRS485:
		c.Serial.validate(&errs)
	case TransportUDP:
		if c.Push.Host == "" {
			errs.Add(invalid("push.host is required for udp"))
		}
		if c.Push.Port <= 0 || c.Push.Port > 65535 {
			errs.Add(invalid("push.port %d out of range", c.Push.Port))
		}
		if c.Push.Interval <= 0 {
			errs.Add(invalid("push.interval must be positive"))
		}
	default:
		errs.Add(invalid("unknown transport %q", c.Transport))
	}
	switch c.Sensors.Kind {
	case SensorsSim:
	case SensorsHwmon:
		if len(c.Sensors.Paths) == 0 || len(c.Sensors.Paths) > proto.Channels {
			errs.Add(invalid("sensors.paths must list 1-%d files", proto.Channels))
		}
	default:
		errs.Add(invalid("unknown sensors.kind %q", c.Sensors.Kind))
	}
	if c.Sensors.Sample <= 0 || c.Tick <= 0 || c.InterByte <= 0 {
		errs.Add(invalid("durations must be positive"))
	}
	if c.Buffer < proto.Overhead+proto.ReplyPayloadLen {
		errs.Add(invalid("buffer must hold at least %d bytes", proto.Overhead+proto.ReplyPayloadLen))
	}
	return errs.Aggregate()
}
