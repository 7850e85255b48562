package server

import (
	"net"
	"sync"

	"github.com/eternalApril/moonresp/internal/resp"
)

// Peer represents a connected client.
// It wraps a network connection and provides synchronized methods for reading and writing RESP-encoded data
type Peer struct {
	conn   net.Conn
	reader *resp.Decoder
	writer *resp.Encoder
	mu     sync.Mutex
}

var _ resp.Stream = (*Peer)(nil)

// NewPeer initializes a new client peer from a network connection
func NewPeer(conn net.Conn, opts ...resp.Option) *Peer {
	return &Peer{
		conn:   conn,
		reader: resp.NewDecoder(conn, opts...),
		writer: resp.NewEncoder(conn, opts...),
	}
}

// Write encodes and sends a RESP value to the client.
// This method is thread-safe and can be called from multiple goroutines
func (p *Peer) Write(v resp.Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer.Write(v)
}

// Read reads and decodes the next RESP value from the client's input stream
func (p *Peer) Read() (resp.Value, error) {
	return p.reader.Read()
}

// Close terminates the underlying network connection
func (p *Peer) Close() error {
	return p.conn.Close()
}

// Addr returns the remote address of the client
func (p *Peer) Addr() string {
	return p.conn.RemoteAddr().String()
}
