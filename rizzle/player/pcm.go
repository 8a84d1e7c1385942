package player

import (
	"encoding/binary"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"

	"github.com/rizzle-org/rizzle-golang/rizzle/errs"
)

// SamplesPerFrame is the number of samples per channel returned by PCMStream.Next, one MPEG-1 Layer III frame.
const SamplesPerFrame = 1152

// PCMFormat describes decoded audio.
type PCMFormat struct {
	SampleRate int
	Channels   int
}

// PCMStream decodes a decrypted MP3 stream. Frames are pulled one at a time with Next; Read offers the same audio
// as interleaved signed 16 bit little endian samples. The sequence is finite and cannot be restarted.
type PCMStream struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	samples  [][2]float64
	pending  []byte
	done     bool
	err      error
}

// NewPCMStream takes ownership of source, usually a TrackStream, and closes it on Close.
func NewPCMStream(source io.ReadCloser) (*PCMStream, error) {
	streamer, format, err := mp3.Decode(source)
	if err != nil {
		return nil, errs.Wrap(errs.Decode, "mp3 decode", err)
	}

	return &PCMStream{
		streamer: streamer,
		format:   format,
		samples:  make([][2]float64, SamplesPerFrame),
	}, nil
}

func (p *PCMStream) Format() PCMFormat {
	return PCMFormat{
		SampleRate: int(p.format.SampleRate),
		Channels:   p.format.NumChannels,
	}
}

// Next returns the next frame of stereo samples in [-1, 1], or io.EOF once the stream is drained.
func (p *PCMStream) Next() ([][2]float32, error) {
	if p.done {
		return nil, p.endError()
	}

	n, ok := p.streamer.Stream(p.samples)
	if !ok || n == 0 {
		p.done = true
		if err := p.streamer.Err(); err != nil {
			p.err = errs.Wrap(errs.Decode, "mp3 decode", err)
		}
		return nil, p.endError()
	}

	frame := make([][2]float32, n)
	for i := 0; i < n; i++ {
		frame[i][0] = float32(p.samples[i][0])
		frame[i][1] = float32(p.samples[i][1])
	}

	return frame, nil
}

// Read is an implementation of the io.Reader interface.
func (p *PCMStream) Read(buf []byte) (int, error) {
	for len(p.pending) < len(buf) {
		frame, err := p.Next()
		if err != nil {
			if len(p.pending) == 0 {
				return 0, err
			}
			break
		}

		for _, sample := range frame {
			p.pending = binary.LittleEndian.AppendUint16(p.pending, uint16(toInt16(sample[0])))
			p.pending = binary.LittleEndian.AppendUint16(p.pending, uint16(toInt16(sample[1])))
		}
	}

	n := copy(buf, p.pending)
	p.pending = p.pending[n:]

	return n, nil
}

func (p *PCMStream) Close() error {
	return p.streamer.Close()
}

func (p *PCMStream) endError() error {
	if p.err != nil {
		return p.err
	}
	return io.EOF
}

func toInt16(v float32) int16 {
	switch {
	case v >= 1:
		return 32767
	case v <= -1:
		return -32768
	}
	return int16(v * 32767)
}
