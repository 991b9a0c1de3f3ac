package core

import "io"

// ChunkStream is a lazy, single-consumption, forward-only chunk sequence.
// Recv returns io.EOF after the final chunk; a mid-stream failure (e.g. a
// malformed vendor event) surfaces as a *ProviderError from Recv without
// invalidating chunks already delivered. Close releases the underlying
// connection and must stop byte-stream consumption; it is safe to call Close
// before exhaustion and more than once.
type ChunkStream interface {
	Recv() (StreamChunk, error)
	Close() error
}

// sliceStream replays a fixed set of chunks in order.
type sliceStream struct {
	chunks []StreamChunk
	pos    int
}

// NewSliceStream wraps pre-assembled chunks in a ChunkStream.
func NewSliceStream(chunks []StreamChunk) ChunkStream {
	return &sliceStream{chunks: chunks}
}

func (s *sliceStream) Recv() (StreamChunk, error) {
	if s.pos >= len(s.chunks) {
		return StreamChunk{}, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}

func (s *sliceStream) Close() error {
	s.pos = len(s.chunks)
	return nil
}
