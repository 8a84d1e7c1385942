package player

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rizzle-org/rizzle-golang/rizzle/crypto"
	"github.com/rizzle-org/rizzle-golang/rizzle/errs"
)

// TrackStream decrypts an obfuscated CDN download on the fly. It is an io.ReadCloser accepting reads of any size:
// the underlying source is always consumed in whole chunks so the chunk numbering stays aligned with the source
// offsets, and whatever a read does not need is kept for the next one.
//
// A read that reaches the end of the source returns fewer bytes than requested; the read after that returns
// io.EOF. If the source ended before its announced length, that last read returns an errs.ErrDecode error instead.
//
// A TrackStream is not safe for concurrent use.
type TrackStream struct {
	source    io.ReadCloser
	decrypter *ChunkDecrypter
	logger    *zap.Logger
	trackId   uint64

	// count is the number of chunks taken from the source so far
	count int
	// pending holds decrypted bytes not yet handed to the caller
	pending []byte
	// scratch is reused for source reads
	scratch []byte
	// sourceBytes is the total read from the source
	sourceBytes int64

	eof       bool
	truncated bool
	err       error
}

// NewTrackStream wraps source, which must yield the CDN bytes from offset zero.
func NewTrackStream(source io.ReadCloser, key crypto.ContentKey) (*TrackStream, error) {
	decrypter, err := NewChunkDecrypter(key)
	if err != nil {
		return nil, errors.Wrap(err, "create chunk decrypter")
	}

	return &TrackStream{
		source:    source,
		decrypter: decrypter,
		logger:    zap.NewNop(),
	}, nil
}

// Chunks returns the number of chunks processed so far, full or partial.
func (s *TrackStream) Chunks() int {
	return s.count
}

// Read is an implementation of the io.Reader interface.
func (s *TrackStream) Read(buf []byte) (int, error) {
	length := len(buf)
	if length == 0 {
		return 0, nil
	}

	// Enough decrypted data is already waiting: no need to touch the source
	if len(s.pending) >= length {
		copy(buf, s.pending[:length])
		s.pending = s.pending[length:]
		return length, nil
	}

	written := copy(buf, s.pending)
	s.pending = s.pending[:0]

	if s.err != nil {
		return written, s.err
	}
	if s.eof {
		if written > 0 {
			return written, nil
		}
		return 0, s.endOfStream()
	}

	// Always read whole chunks, so the chunk index of every source byte is known
	need := length - written
	toRead := (need + kChunkSize - 1) / kChunkSize * kChunkSize

	if cap(s.scratch) < toRead {
		s.scratch = make([]byte, toRead)
	}
	data := s.scratch[:toRead]

	got, err := readFull(s.source, data)
	s.sourceBytes += int64(got)
	data = data[:got]

	switch {
	case err == nil:
	case err == io.EOF:
		s.eof = true
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
		s.truncated = true
	default:
		// The chunks read so far may be cut mid-chunk; they cannot be decrypted reliably
		s.err = err
		return written, err
	}

	s.count += s.decrypter.DecryptChunks(s.count, data)

	if got >= need {
		copy(buf[written:], data[:need])
		s.pending = append(s.pending, data[need:]...)
		return length, nil
	}

	// Last, short read
	copy(buf[written:], data)
	if written+got == 0 {
		return 0, s.endOfStream()
	}

	return written + got, nil
}

// Close closes the underlying source.
func (s *TrackStream) Close() error {
	s.logger.Debug("track stream closed",
		zap.Uint64("track_id", s.trackId),
		zap.Int("chunks", s.count),
		zap.Int64("source_bytes", s.sourceBytes),
		zap.Bool("truncated", s.truncated))

	s.pending = nil
	return s.source.Close()
}

func (s *TrackStream) endOfStream() error {
	if s.truncated {
		return errs.New(errs.Decode, "stream read", "source ended early after %d bytes", s.sourceBytes)
	}
	return io.EOF
}

// readFull reads until buf is full, the source ends, or fails. Unlike io.ReadFull it reports the source's own
// errors untouched, so a truncated source (io.ErrUnexpectedEOF) stays distinguishable from a clean end (io.EOF).
func readFull(r io.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n

		if err != nil {
			return total, err
		}
	}

	return total, nil
}
