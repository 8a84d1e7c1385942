package player

import (
	"golang.org/x/crypto/blowfish"

	"github.com/rizzle-org/rizzle-golang/rizzle/crypto"
)

const (
	// Size in bytes of one obfuscation chunk
	kChunkSize = 2048
	// Every kChunkStride-th full chunk is encrypted
	kChunkStride   = 3
	kCipherBlock   = blowfish.BlockSize
	kBlocksInChunk = kChunkSize / kCipherBlock
)

// AUDIO_IV seeds the chaining value at the start of every encrypted chunk.
var AUDIO_IV = [kCipherBlock]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}

// ChunkDecrypter applies the per-chunk Blowfish CBC transform of the CDN streams.
type ChunkDecrypter struct {
	cipher *blowfish.Cipher
}

func NewChunkDecrypter(key crypto.ContentKey) (*ChunkDecrypter, error) {
	c, err := blowfish.NewCipher(key.Bytes())
	if err != nil {
		return nil, err
	}

	return &ChunkDecrypter{cipher: c}, nil
}

// IsEncrypted reports whether the chunk at index, of the given length, was encrypted by the CDN. A short chunk is
// only possible at the end of the stream and is never encrypted.
func IsEncrypted(index int, length int) bool {
	return length == kChunkSize && index%kChunkStride == 0
}

// DecryptChunk decrypts one full chunk in place. The chaining value starts from AUDIO_IV and does not carry over
// from the previous chunk.
func (d *ChunkDecrypter) DecryptChunk(chunk []byte) {
	iv := AUDIO_IV
	var ciphertext [kCipherBlock]byte

	for i := 0; i < kBlocksInChunk; i++ {
		block := chunk[i*kCipherBlock : (i+1)*kCipherBlock]
		copy(ciphertext[:], block)

		d.cipher.Decrypt(block, block)
		for j := range block {
			block[j] ^= iv[j]
		}

		iv = ciphertext
	}
}

// EncryptChunk is the inverse of DecryptChunk. The CDN does this server side; it is kept for tests and tooling
// that need to produce obfuscated data.
func (d *ChunkDecrypter) EncryptChunk(chunk []byte) {
	iv := AUDIO_IV

	for i := 0; i < kBlocksInChunk; i++ {
		block := chunk[i*kCipherBlock : (i+1)*kCipherBlock]
		for j := range block {
			block[j] ^= iv[j]
		}

		d.cipher.Encrypt(block, block)
		copy(iv[:], block)
	}
}

// DecryptChunks walks data in kChunkSize steps, starting at chunk number first, and decrypts the chunks that need
// it. It returns the number of chunks visited, full or partial.
func (d *ChunkDecrypter) DecryptChunks(first int, data []byte) int {
	count := 0
	for offset := 0; offset < len(data); offset += kChunkSize {
		end := min(offset+kChunkSize, len(data))
		if IsEncrypted(first+count, end-offset) {
			d.DecryptChunk(data[offset:end])
		}
		count++
	}

	return count
}

// EncryptChunks mirrors DecryptChunks.
func (d *ChunkDecrypter) EncryptChunks(first int, data []byte) int {
	count := 0
	for offset := 0; offset < len(data); offset += kChunkSize {
		end := min(offset+kChunkSize, len(data))
		if IsEncrypted(first+count, end-offset) {
			d.EncryptChunk(data[offset:end])
		}
		count++
	}

	return count
}

// min helper function for integers
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
