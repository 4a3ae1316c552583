package insight

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Frame types the server emits.
const (
	FrameStatus   = "status"
	FrameContent  = "content"
	FrameComplete = "complete"
	FrameError    = "error"
)

// Frame is one decoded server event.
type Frame struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Content string `json:"content,omitempty"`
}

var dataPrefix = []byte("data: ")

// LineParser reassembles complete lines from arbitrarily split byte
// chunks. It is transport-agnostic: feed it whatever the reader yields
// and it only ever hands back whole lines.
type LineParser struct {
	pending []byte
}

// Feed appends a chunk and returns every line completed by it, without
// trailing newline or carriage return. Partial trailing data stays
// buffered for the next chunk.
func (p *LineParser) Feed(chunk []byte) [][]byte {
	p.pending = append(p.pending, chunk...)

	var lines [][]byte
	for {
		i := bytes.IndexByte(p.pending, '\n')
		if i < 0 {
			return lines
		}
		line := bytes.TrimRight(p.pending[:i], "\r")
		out := make([]byte, len(line))
		copy(out, line)
		lines = append(lines, out)
		p.pending = p.pending[i+1:]
	}
}

// Pending returns the unterminated tail still buffered.
func (p *LineParser) Pending() []byte {
	return p.pending
}

// DecodeFrame parses one complete line. Blank lines and lines without the
// data prefix are protocol padding and decode to ok=false; a data line
// with invalid JSON is an error.
func DecodeFrame(line []byte) (Frame, bool, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || !bytes.HasPrefix(line, dataPrefix) {
		return Frame{}, false, nil
	}

	var f Frame
	if err := json.Unmarshal(bytes.TrimPrefix(line, dataPrefix), &f); err != nil {
		return Frame{}, false, fmt.Errorf("decode frame: %w", err)
	}
	return f, true, nil
}
