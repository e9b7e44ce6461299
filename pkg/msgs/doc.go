// Package msgs defines the messages readings are published as.
//
// Two encodings are supported: JSON telemetry with temperatures in
// degrees Celsius (null for invalid channels), and a protobuf message
// carrying tenths of a degree with each channel wrapped so an invalid
// channel is simply absent.
package msgs
