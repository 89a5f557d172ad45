// Package link implements the transport between the Bean's CPU and the
// radio co-processor.
//
// The two sides talk over a serial port using a small sequence based
// framing. A link is synchronized by a handshake (0xff REQ, 0xfe ACK,
// each followed by the sender's next sequence number), after which each
// side sends packets with consecutive sequence numbers:
//
//	[seq] [ctl] [id] [len]? [data...]
//
// ctl carries the notify flag (bit 7), the payload length in bits 6-4
// (7 means an explicit length byte follows) and the high 4 bits of the
// 12-bit message id. A sequence mismatch forces a resync. There is no
// checksum, parity can be enabled on the port if needed.
//
// Commands are answered by a packet with the same message id carrying
// [request seq] [status] [payload...]. Notifications are never answered.
package link
