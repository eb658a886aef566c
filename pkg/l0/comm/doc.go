// Package comm provides the L0 link on top of package frame.
package comm

// The L0 link connects a host (terminal, bridge) and a device over a
// peer-to-peer byte stream (e.g. serial port), and recovers from lost or
// corrupted bytes by resynchronizing on frame delimiters.
//
// Device side: RxLink models the receive interrupt feeding a ring buffer and
// the foreground extraction of frames from it; TxQueue models the transmit
// ring drained one byte per completion. Endpoint wires both to an
// io.ReadWriter.
//
// Host side: Parser assembles frames byte by byte from a stream, and Client
// matches replies to commands.
