package protocol

// DefaultLineCapacity is the inbound line buffer size in bytes.
const DefaultLineCapacity = 128

// LineAssembler rebuilds terminated lines from an arbitrary byte stream
// using a fixed buffer. Bytes past capacity are dropped until the next
// terminator, which always resets the buffer.
type LineAssembler struct {
	buf       []byte
	n         int
	truncated bool
}

// NewLineAssembler returns an assembler holding at most capacity bytes per line.
func NewLineAssembler(capacity int) *LineAssembler {
	if capacity <= 0 {
		capacity = DefaultLineCapacity
	}
	return &LineAssembler{buf: make([]byte, capacity)}
}

// Feed consumes data and calls onLine for every completed line, without the
// terminator. truncated reports that bytes were dropped from that line.
// The line slice is only valid for the duration of the call.
func (a *LineAssembler) Feed(data []byte, onLine func(line []byte, truncated bool)) {
	for _, b := range data {
		if b == LineTerminator {
			line, truncated := a.buf[:a.n], a.truncated
			a.Reset()
			if onLine != nil {
				onLine(line, truncated)
			}
			continue
		}
		if a.n < len(a.buf) {
			a.buf[a.n] = b
			a.n++
		} else {
			a.truncated = true
		}
	}
}

// Pending returns the number of buffered bytes of the current partial line.
func (a *LineAssembler) Pending() int { return a.n }

// Capacity returns the maximum line length kept.
func (a *LineAssembler) Capacity() int { return len(a.buf) }

// Reset drops any partial line.
func (a *LineAssembler) Reset() {
	a.n = 0
	a.truncated = false
}
