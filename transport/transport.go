// Package transport provides the dialers the client connects through. The
// wire protocol itself is transport-agnostic: anything that yields an ordered
// byte stream works.
package transport

import (
	"context"
	"io"
)

// Transport defines an interface for establishing server connections.
type Transport interface {
	// Dial connects to the specified address and returns an io.ReadWriteCloser.
	// It returns an error if the connection cannot be established.
	Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error)
}
