// Package codec adds frame codec commands to the shell. They work
// without a bus.
package codec

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/tmon/pkg/cli/sh"
	"github.com/robotalks/tmon/pkg/proto"
	"github.com/robotalks/tmon/pkg/reading"
)

// ParseHex accepts bytes written as "01 03 01 00", "01:03" or "010301".
func ParseHex(args ...string) ([]byte, error) {
	s := strings.NewReplacer(" ", "", ":", "", "0x", "", ",", "").Replace(strings.Join(args, ""))
	return hex.DecodeString(s)
}

// ParseCommand accepts POLL, REPLY or a number.
func ParseCommand(s string) (byte, error) {
	switch strings.ToUpper(s) {
	case "POLL":
		return proto.CmdPoll, nil
	case "REPLY":
		return proto.CmdReply, nil
	}
	val, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid CMD %q", s)
	}
	return byte(val), nil
}

// ParseAddress parses a node address without range checks, so invalid
// ones can be tried against the codec.
func ParseAddress(s string) (byte, error) {
	val, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid ADDR %q", s)
	}
	return byte(val), nil
}

// Decoded is the JSON output of decode.
type Decoded struct {
	Address byte     `json:"address"`
	Command string   `json:"command"`
	Payload string   `json:"payload"`
	Temps   []string `json:"temps,omitempty"`
}

// DecodeFrame decodes a frame for display.
func DecodeFrame(p []byte) (*Decoded, error) {
	f, err := proto.Decode(p)
	if err != nil {
		return nil, err
	}
	d := &Decoded{
		Address: f.Address,
		Command: proto.CommandName(f.Command),
		Payload: hex.EncodeToString(f.Payload),
	}
	if f.Command == proto.CmdReply {
		if temps, err := proto.ParseReply(f.Payload); err == nil {
			for _, ch := range reading.FromTemps(time.Time{}, f.Address, temps).Channels {
				d.Temps = append(d.Temps, ch.String())
			}
		}
	}
	return d, nil
}

var (
	// CRCCmd computes the checksum.
	CRCCmd = ishell.Cmd{
		Name: "crc",
		Help: "HEX",
		Func: func(c *ishell.Context) {
			data, err := ParseHex(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			crc := proto.Checksum(data)
			sh.Output(c, map[string]interface{}{"crc": crc},
				fmt.Sprintf("0x%04X (wire: %02x %02x)", crc, byte(crc), byte(crc>>8)))
		},
	}

	// EncodeCmd encodes a frame.
	EncodeCmd = ishell.Cmd{
		Name:    "encode",
		Aliases: []string{"enc"},
		Help:    "ADDR CMD [HEX]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("ADDR and CMD required"))
				return
			}
			addr, err := ParseAddress(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			cmd, err := ParseCommand(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			payload, err := ParseHex(c.Args[2:]...)
			if err != nil {
				c.Err(err)
				return
			}
			frame, err := proto.Encode(addr, cmd, payload)
			if err != nil {
				c.Err(err)
				return
			}
			sh.Output(c, map[string]string{"frame": hex.EncodeToString(frame)}, fmt.Sprintf("% x", frame))
		},
	}

	// DecodeCmd decodes a frame.
	DecodeCmd = ishell.Cmd{
		Name:    "decode",
		Aliases: []string{"dec"},
		Help:    "HEX",
		Func: func(c *ishell.Context) {
			data, err := ParseHex(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			d, err := DecodeFrame(data)
			if err != nil {
				c.Err(err)
				return
			}
			line := fmt.Sprintf("%s addr=%d payload=%s", d.Command, d.Address, d.Payload)
			if len(d.Temps) > 0 {
				line += " temps=[" + strings.Join(d.Temps, ", ") + "]"
			}
			sh.Output(c, d, line)
		},
	}
)

func init() {
	sh.AddCmds(&CRCCmd, &EncodeCmd, &DecodeCmd)
}
