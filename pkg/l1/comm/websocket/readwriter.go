// Package websocket carries L1 packets over websocket, one binary frame
// per packet, for browsers and clients behind HTTP proxies.
package websocket

import (
	"context"
	"net"

	"golang.org/x/net/websocket"

	"github.com/robotalks/bean.go/pkg/l1/comm"
)

// ReadWriter implements PacketConn.
type ReadWriter struct {
	conn *websocket.Conn
}

// New wraps websocket.Conn. Receiving a frame over MaxPacketSize
// fails with websocket.ErrFrameTooLarge.
func New(conn *websocket.Conn) *ReadWriter {
	conn.PayloadType = websocket.BinaryFrame
	conn.MaxPayloadBytes = comm.MaxPacketSize
	return &ReadWriter{conn: conn}
}

// Dial connects to a websocket Server, url is like ws://host:port/l1.
// Only the deadline of ctx applies to the handshake.
func Dial(ctx context.Context, url string) (*ReadWriter, error) {
	config, err := websocket.NewConfig(url, "http://localhost/")
	if err != nil {
		return nil, err
	}
	config.Dialer = &net.Dialer{}
	if deadline, ok := ctx.Deadline(); ok {
		config.Dialer.Deadline = deadline
	}
	conn, err := websocket.DialConfig(config)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive(p.conn, &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if err := comm.CheckPacketSize(len(pkt)); err != nil {
		return err
	}
	return websocket.Message.Send(p.conn, pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return p.conn.Close()
}
