package logging

import (
	"bytes"
	"io"
	"sync"
)

// Gate is a writer that can hold output back, e.g. while a full-screen
// program owns the terminal. Held output is written on Release.
type Gate struct {
	mu   sync.Mutex
	w    io.Writer
	held bytes.Buffer
	hold bool
}

// NewGate returns an open gate writing to w.
func NewGate(w io.Writer) *Gate {
	return &Gate{w: w}
}

func (g *Gate) Write(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hold {
		return g.held.Write(p)
	}
	return g.w.Write(p)
}

// Hold buffers writes until Release.
func (g *Gate) Hold() {
	g.mu.Lock()
	g.hold = true
	g.mu.Unlock()
}

// Release writes what was held and lets writes through again.
func (g *Gate) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hold = false
	if g.held.Len() == 0 {
		return nil
	}
	_, err := g.w.Write(g.held.Bytes())
	g.held.Reset()
	return err
}
