// Package node implements the sensor node: it answers POLL frames on a
// shared RS-485 bus or pushes unsolicited REPLY frames over UDP.
//
// Everything runs inside one framework.Loop. Controllers never block: the
// byte stream is pumped by a background Runnable and the identify blink is
// a tick-driven state machine.
package node
