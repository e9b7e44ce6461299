// Package link turns raw byte streams into frame attempts and guards
// transmission on a half-duplex bus.
package link

// There is no length-prefix synchronisation on the wire. A run of bytes
// ends when the line stays silent for longer than the inter-byte timeout,
// and the whole run is handed to the frame decoder. A corrupted byte
// anywhere in a run invalidates the run; the next silence starts over.
//
// On RS-485 only one device may drive the pair at a time. HalfDuplex makes
// transmit mode a scoped resource: the line is always returned to receive
// after the body runs, whatever happens inside it.
