// Package proto implements the tmon wire protocol.
package proto

// The protocol is spoken between a controller and up to 247 sensor nodes,
// either over a shared half-duplex RS-485 bus or as UDP datagrams.
// Every exchange is a single frame:
//
//	START ADDR CMD LEN PAYLOAD... CRC_LO CRC_HI
//
// START is always 0x01. ADDR is the node address (1-247) in both
// directions. The checksum is CRC-16/MODBUS computed over ADDR, CMD, LEN
// and PAYLOAD and stored little-endian.
//
// The controller sends POLL with an empty payload, the addressed node
// answers with REPLY carrying four little-endian int16 temperatures in
// tenths of a degree. 0x7fff marks a channel without a sensor.
//
// Producer: sensor nodes
// Consumer: controller
