// Package comm provides L0 protocol support.
package comm

// L0 protocol is communicated between L0 firmware and the host controller
// over a single full-duplex byte link (e.g. serial port) which has no
// framing, addressing or error detection of its own.
//
// Up to 16 logical channels are multiplexed onto the link. Each packet is
// sent as one frame:
//
//	[sizeLow][sizeHigh][fold<<4 | channel][payload...][checksum][DELIM]
//
// Every byte before DELIM equal to ESC or DELIM is prefixed with ESC.
// fold is the XOR of both nibbles of sizeLow^sizeHigh and protects the size
// field. checksum makes the XOR of all unescaped bytes of the frame zero.
//
// The protocol is best-effort: there is no acknowledgement or retransmission.
// Failures are never returned from the operation that detected them; they
// are accumulated in a sticky ErrorFlags bitmap which is drained by polling.
//
// Producer: L0 firmware and host controller
// Consumer: L0 firmware and host controller
