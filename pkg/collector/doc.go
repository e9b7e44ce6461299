// Package collector is the controller side: a Poller sweeps RS-485 nodes
// one at a time and a Receiver accepts readings pushed over UDP. Both
// hand readings to a reading.Sink.
package collector
