// Package transport owns the serial link to the companion module.
package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("transport: closed")

// readChunk bounds a single Read from the port.
const readChunk = 256

// Port is the part of serial.Port the transport relies on.
type Port interface {
	io.ReadWriteCloser
	Drain() error
	SetReadTimeout(t time.Duration) error
}

// Serial serializes every read and write on one port behind a single lock,
// so records written by concurrent callers never interleave.
type Serial struct {
	mu     sync.Mutex
	port   Port
	chunk  []byte
	closed bool
}

// Open opens portName in 8N1 mode at baud.
func Open(portName string, baud int) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	s, err := New(port)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened port. Reads are switched to non-blocking.
func New(port Port) (*Serial, error) {
	// A zero timeout makes Read return immediately when nothing is queued.
	if err := port.SetReadTimeout(0); err != nil {
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return &Serial{port: port, chunk: make([]byte, readChunk)}, nil
}

// ListPorts returns the serial ports present on the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

// Write sends all of p and waits until the port reports it flushed.
// On error part of p may already be on the wire; the caller drops the line.
func (s *Serial) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for len(p) > 0 {
		n, err := s.port.Write(p)
		if err != nil {
			return fmt.Errorf("serial write: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("serial write: %w", io.ErrShortWrite)
		}
		p = p[n:]
	}
	if err := s.port.Drain(); err != nil {
		return fmt.Errorf("serial drain: %w", err)
	}
	return nil
}

// ReadAvailable returns whatever bytes are queued right now, possibly none.
// It never waits for more data to arrive.
func (s *Serial) ReadAvailable() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	var out []byte
	for {
		n, err := s.port.Read(s.chunk)
		if n > 0 {
			out = append(out, s.chunk[:n]...)
		}
		if err != nil {
			return out, fmt.Errorf("serial read: %w", err)
		}
		if n < len(s.chunk) {
			return out, nil
		}
	}
}

// Close releases the port. Further calls fail with ErrClosed.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
