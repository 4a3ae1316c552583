package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedReassemblesSplitLines(t *testing.T) {
	var p LineParser

	// A frame split at an arbitrary byte boundary only completes once
	// the newline arrives.
	lines := p.Feed([]byte(`data: {"type":"sta`))
	assert.Empty(t, lines)

	lines = p.Feed([]byte("tus\",\"message\":\"working\"}\n"))
	require.Len(t, lines, 1)
	assert.Equal(t, `data: {"type":"status","message":"working"}`, string(lines[0]))
	assert.Empty(t, p.Pending())
}

func TestFeedEveryPossibleSplitPoint(t *testing.T) {
	payload := "data: {\"type\":\"content\",\"content\":\"partial text\"}\n\ndata: {\"type\":\"complete\"}\n\n"

	for split := 0; split <= len(payload); split++ {
		var p LineParser
		var all [][]byte
		all = append(all, p.Feed([]byte(payload[:split]))...)
		all = append(all, p.Feed([]byte(payload[split:]))...)

		var frames []Frame
		for _, line := range all {
			f, ok, err := DecodeFrame(line)
			require.NoError(t, err, "split at %d", split)
			if ok {
				frames = append(frames, f)
			}
		}
		require.Len(t, frames, 2, "split at %d", split)
		assert.Equal(t, FrameContent, frames[0].Type)
		assert.Equal(t, "partial text", frames[0].Content)
		assert.Equal(t, FrameComplete, frames[1].Type)
	}
}

func TestFeedSingleByteChunks(t *testing.T) {
	payload := "data: {\"type\":\"status\",\"message\":\"m\"}\n\n"
	var p LineParser
	var all [][]byte
	for i := 0; i < len(payload); i++ {
		all = append(all, p.Feed([]byte{payload[i]})...)
	}

	decoded := 0
	for _, line := range all {
		if _, ok, _ := DecodeFrame(line); ok {
			decoded++
		}
	}
	assert.Equal(t, 1, decoded)
}

func TestFeedStripsCarriageReturn(t *testing.T) {
	var p LineParser
	lines := p.Feed([]byte("data: {\"type\":\"complete\"}\r\n"))
	require.Len(t, lines, 1)

	f, ok, err := DecodeFrame(lines[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FrameComplete, f.Type)
}

func TestDecodeFrameSkipsPadding(t *testing.T) {
	_, ok, err := DecodeFrame([]byte(""))
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = DecodeFrame([]byte(": heartbeat comment"))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeFrameInvalidJSON(t *testing.T) {
	_, ok, err := DecodeFrame([]byte("data: {broken"))
	assert.Error(t, err)
	assert.False(t, ok)
}
