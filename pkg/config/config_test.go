package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "tmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
transport: both
db: /var/lib/tmon/tmon.db
serial:
  port: /dev/ttyAMA0
  baudrate: 19200
  direction: rts
poll:
  sensors: [3, 1, 7]
  interval: 30s
  timeout: 150ms
udp:
  listen: ":6000"
mqtt:
  url: mqtt://broker:1883/home/
  encoding: proto
stale_after: 2m
`)
	conf, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, TransportBoth, conf.Transport)
	require.True(t, conf.UsesSerial())
	require.True(t, conf.UsesUDP())
	require.Equal(t, "/dev/ttyAMA0", conf.Serial.Port)
	require.Equal(t, 19200, conf.Serial.BaudRate)
	require.Equal(t, []byte{3, 1, 7}, conf.Addresses())
	require.Equal(t, 30*time.Second, conf.Poll.Interval)
	require.Equal(t, 150*time.Millisecond, conf.Poll.Timeout)
	require.Equal(t, 2, conf.Poll.Retries)
	require.Equal(t, 50*time.Millisecond, conf.Poll.InterByte)
	require.Equal(t, ":6000", conf.UDP.Listen)
	require.Equal(t, "readings", conf.MQTT.Topic)
	require.Equal(t, 2*time.Minute, conf.StaleAfter)
}

func TestLoadUDPOnly(t *testing.T) {
	conf, err := Load(writeFile(t, "transport: udp\n"))
	require.NoError(t, err)
	require.False(t, conf.UsesSerial())
	require.Empty(t, conf.Addresses())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"transport":      "transport: can\n",
		"no sensors":     "transport: rs485\n",
		"address 0":      "poll: {sensors: [0]}\n",
		"address 248":    "poll: {sensors: [248]}\n",
		"duplicate":      "poll: {sensors: [3, 3]}\n",
		"timeout":        "poll: {sensors: [3], timeout: 0s}\n",
		"retries":        "poll: {sensors: [3], retries: -1}\n",
		"direction":      "poll: {sensors: [3]}\nserial: {direction: dtr}\n",
		"gpio pin":       "poll: {sensors: [3]}\nserial: {direction: gpio}\n",
		"encoding":       "transport: udp\nmqtt: {encoding: xml}\n",
		"udp listen":     "transport: udp\nudp: {listen: ''}\n",
		"negative stale": "transport: udp\nstale_after: -1s\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, content))
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalid), "%v", err)
		})
	}
}

func TestLoadBadFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	_, err = Load(writeFile(t, "poll: [\n"))
	require.Error(t, err)
}

func TestNewConfigOverrides(t *testing.T) {
	saved := []string{configFile, dbPath, mqttURL, httpListen}
	defer func() {
		configFile, dbPath, mqttURL, httpListen = saved[0], saved[1], saved[2], saved[3]
	}()
	configFile = writeFile(t, "transport: udp\ndb: file.db\n")
	dbPath, mqttURL, httpListen = "flag.db", "mqtt://x:1883", ""
	conf, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, "flag.db", conf.DB)
	require.Equal(t, "mqtt://x:1883", conf.MQTT.URL)
	require.Equal(t, ":9105", conf.HTTP.Listen)
}

func TestDefaultIsACopy(t *testing.T) {
	conf := Default()
	conf.Poll.Sensors = append(conf.Poll.Sensors, 9)
	conf.DB = "changed"
	require.Empty(t, Default().Poll.Sensors)
	require.Equal(t, "tmon.db", Default().DB)
}

func TestLoadNode(t *testing.T) {
	conf, err := LoadNode(writeFile(t, `
address: 12
transport: udp
push:
  host: 192.168.1.10
  interval: 30s
sensors:
  kind: hwmon
  paths: [/sys/class/hwmon/hwmon0/temp1_input]
led:
  pin: GPIO17
`))
	require.NoError(t, err)
	require.Equal(t, 12, conf.Address)
	require.Equal(t, 5005, conf.Push.Port)
	require.Equal(t, 30*time.Second, conf.Push.Interval)
	require.Equal(t, "GPIO17", conf.LED.Pin)
	require.Equal(t, 10*time.Millisecond, conf.Tick)
}

func TestNodeValidateRejects(t *testing.T) {
	cases := map[string]string{
		"missing address": "transport: rs485\n",
		"address 0":       "address: 0\n",
		"address 248":     "address: 248\n",
		"transport":       "address: 3\ntransport: wifi\n",
		"push host":       "address: 3\ntransport: udp\n",
		"push port":       "address: 3\ntransport: udp\npush: {host: h, port: 70000}\n",
		"sensors kind":    "address: 3\nsensors: {kind: adc}\n",
		"hwmon paths":     "address: 3\nsensors: {kind: hwmon, paths: [a, b, c, d, e]}\n",
		"tick":            "address: 3\ntick: 0s\n",
		"buffer":          "address: 3\nbuffer: 8\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadNode(writeFile(t, content))
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalid), "%v", err)
		})
	}
}

func TestNewNodeConfigAddressOverride(t *testing.T) {
	savedFile, savedAddr := configFile, nodeAddr
	defer func() { configFile, nodeAddr = savedFile, savedAddr }()
	configFile, nodeAddr = "", 42
	conf, err := NewNodeConfig()
	require.NoError(t, err)
	require.Equal(t, 42, conf.Address)
}
