package crypto

import (
	"crypto/aes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
)

const (
	// Separator between the fields hashed into the URL fragment
	fieldSeparator = 0xa4

	// DefaultCDNTemplate is the content-delivery URL. The host index is the first hex character of the origin hash.
	DefaultCDNTemplate = "https://e-cdns-proxy-%c.dzcdn.net/mobile/1/%s"
)

var contentKeySecret = [16]byte{'g', '4', 'e', 'l', '5', '8', 'w', 'c', '0', 'z', 'v', 'f', '9', 'n', 'a', '1'}

var urlKey = []byte("jo6aey6haid2Teih")

// ContentKey is the 16 byte Blowfish key of a single track. It must stay a byte array: the bytes are raw key
// material, not text.
type ContentKey [16]byte

// Bytes returns the key as a slice, ready for a cipher constructor.
func (k ContentKey) Bytes() []byte {
	return k[:]
}

func (k ContentKey) String() string {
	return hex.EncodeToString(k[:])
}

// DeriveContentKey folds the hex MD5 digest of the decimal track id in half and XORs it with the embedded secret.
func DeriveContentKey(trackId uint64) ContentKey {
	digest := md5Hex([]byte(strconv.FormatUint(trackId, 10)))

	var key ContentKey
	for i := 0; i < len(key); i++ {
		key[i] = digest[i] ^ digest[i+16] ^ contentKeySecret[i]
	}

	return key
}

// DeriveURLFragment builds the encrypted, hex encoded path fragment that addresses one track revision at a given
// quality on the CDN.
func DeriveURLFragment(trackId uint64, md5Origin string, mediaVersion uint64, quality int) string {
	data := make([]byte, 0, 64)
	data = append(data, md5Origin...)
	data = append(data, fieldSeparator)
	data = strconv.AppendInt(data, int64(quality), 10)
	data = append(data, fieldSeparator)
	data = strconv.AppendUint(data, trackId, 10)
	data = append(data, fieldSeparator)
	data = strconv.AppendUint(data, mediaVersion, 10)

	digest := md5Hex(data)

	full := make([]byte, 0, len(digest)+len(data)+2+aes.BlockSize)
	full = append(full, digest...)
	full = append(full, fieldSeparator)
	full = append(full, data...)
	full = append(full, fieldSeparator)
	if missing := len(full) % aes.BlockSize; missing != 0 {
		full = append(full, make([]byte, aes.BlockSize-missing)...)
	}

	block, err := aes.NewCipher(urlKey)
	if err != nil {
		// urlKey is a fixed 16 byte key
		panic(err)
	}

	// Plain ECB: every block on its own, same key, no chaining
	for i := 0; i < len(full); i += aes.BlockSize {
		block.Encrypt(full[i:i+aes.BlockSize], full[i:i+aes.BlockSize])
	}

	return hex.EncodeToString(full)
}

// StreamURL expands a CDN template (see DefaultCDNTemplate) for the given origin hash and URL fragment.
func StreamURL(template string, md5Origin string, fragment string) string {
	if template == "" {
		template = DefaultCDNTemplate
	}

	var host byte = '0'
	if len(md5Origin) > 0 {
		host = md5Origin[0]
	}

	return fmt.Sprintf(template, host, fragment)
}

func md5Hex(data []byte) []byte {
	sum := md5.Sum(data)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}
