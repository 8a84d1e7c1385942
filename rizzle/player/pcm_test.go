package player

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizzle-org/rizzle-golang/rizzle/errs"
)

// silentMP3 builds frames of MPEG-1 Layer III, 128 kbit/s, 44.1 kHz stereo, with empty side info. They decode to
// silence.
func silentMP3(frames int) []byte {
	const frameSize = 144 * 128000 / 44100

	var buf bytes.Buffer
	for i := 0; i < frames; i++ {
		frame := make([]byte, frameSize)
		copy(frame, []byte{0xff, 0xfb, 0x90, 0x00})
		buf.Write(frame)
	}
	return buf.Bytes()
}

func TestPCMStreamOverDecryptedTrack(t *testing.T) {
	var paths []string
	p := serveTrack(t, silentMP3(40), &paths)

	stream, err := p.LoadTrack(context.Background(), testDetails, QualityMP3128)
	require.NoError(t, err)

	pcm, err := NewPCMStream(stream)
	require.NoError(t, err)
	defer pcm.Close()

	assert.Equal(t, PCMFormat{SampleRate: 44100, Channels: 2}, pcm.Format())

	samples := 0
	for i := 0; ; i++ {
		require.Less(t, i, 1000, "stream never ended")

		frame, err := pcm.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.LessOrEqual(t, len(frame), SamplesPerFrame)

		for _, s := range frame {
			assert.Zero(t, s[0])
			assert.Zero(t, s[1])
		}
		samples += len(frame)
	}
	assert.Positive(t, samples)

	// Finite and not restartable
	_, err = pcm.Next()
	assert.Equal(t, io.EOF, err)
}

func TestPCMStreamRead(t *testing.T) {
	pcm, err := NewPCMStream(io.NopCloser(bytes.NewReader(silentMP3(10))))
	require.NoError(t, err)
	defer pcm.Close()

	data, err := io.ReadAll(pcm)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// Interleaved 16 bit stereo
	assert.Zero(t, len(data)%4)
	assert.Equal(t, make([]byte, len(data)), data)
}

func TestPCMStreamRejectsGarbage(t *testing.T) {
	_, err := NewPCMStream(io.NopCloser(bytes.NewReader(nil)))
	assert.True(t, errors.Is(err, errs.ErrDecode), "got %v", err)
}

func TestToInt16(t *testing.T) {
	assert.Equal(t, int16(0), toInt16(0))
	assert.Equal(t, int16(32767), toInt16(1))
	assert.Equal(t, int16(32767), toInt16(3.5))
	assert.Equal(t, int16(-32768), toInt16(-1))
	assert.Equal(t, int16(-32768), toInt16(-2))
	assert.Equal(t, int16(16383), toInt16(0.5))
}
