package utils

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rizzle-org/rizzle-golang/rizzle/core"
)

// Field numbers of the blob encoding. Numbers are never reused.
const (
	fieldSessionID    protowire.Number = 1
	fieldAccountToken protowire.Number = 2
	fieldAccessToken  protowire.Number = 3
	fieldLicenseToken protowire.Number = 4
	fieldSavedAt      protowire.Number = 5
)

// BlobInfo is what a client persists between runs: the credentials a session handed back on close, and when.
type BlobInfo struct {
	Credentials core.Credentials
	SavedAt     time.Time
}

func NewBlobInfo(creds core.Credentials) BlobInfo {
	return BlobInfo{Credentials: creds, SavedAt: time.Now()}
}

// Marshal encodes the blob in the protobuf wire format. Empty fields are left out.
func (b *BlobInfo) Marshal() []byte {
	var buf []byte
	appendString := func(num protowire.Number, v string) {
		if v == "" {
			return
		}
		buf = protowire.AppendTag(buf, num, protowire.BytesType)
		buf = protowire.AppendString(buf, v)
	}

	appendString(fieldSessionID, b.Credentials.SessionID)
	appendString(fieldAccountToken, b.Credentials.AccountToken)
	appendString(fieldAccessToken, b.Credentials.AccessToken)
	appendString(fieldLicenseToken, b.Credentials.LicenseToken)

	if !b.SavedAt.IsZero() {
		buf = protowire.AppendTag(buf, fieldSavedAt, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(b.SavedAt.Unix()))
	}

	return buf
}

// UnmarshalBlobInfo decodes a blob written by Marshal. Unknown fields are skipped.
func UnmarshalBlobInfo(data []byte) (BlobInfo, error) {
	result := BlobInfo{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return BlobInfo{}, errors.Wrap(protowire.ParseError(n), "blob tag")
		}
		data = data[n:]

		switch {
		case typ == protowire.BytesType && num >= fieldSessionID && num <= fieldLicenseToken:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return BlobInfo{}, errors.Wrapf(protowire.ParseError(n), "blob field %d", num)
			}
			data = data[n:]

			switch num {
			case fieldSessionID:
				result.Credentials.SessionID = v
			case fieldAccountToken:
				result.Credentials.AccountToken = v
			case fieldAccessToken:
				result.Credentials.AccessToken = v
			case fieldLicenseToken:
				result.Credentials.LicenseToken = v
			}

		case typ == protowire.VarintType && num == fieldSavedAt:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return BlobInfo{}, errors.Wrap(protowire.ParseError(n), "blob saved_at")
			}
			data = data[n:]
			result.SavedAt = time.Unix(int64(v), 0)

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return BlobInfo{}, errors.Wrapf(protowire.ParseError(n), "blob field %d", num)
			}
			data = data[n:]
		}
	}

	return result, nil
}

func lockFor(path string) *flock.Flock {
	return flock.New(path + ".lock")
}

// BlobFromFile restores a blob from the specified path
func BlobFromFile(path string) (BlobInfo, error) {
	// A missing blob must not leave a lock file behind
	if _, err := os.Stat(path); err != nil {
		return BlobInfo{}, err
	}

	lock := lockFor(path)
	if err := lock.RLock(); err != nil {
		return BlobInfo{}, errors.Wrap(err, "lock credentials file")
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return BlobInfo{}, err
	}

	blob, err := UnmarshalBlobInfo(data)
	if err != nil {
		return BlobInfo{}, errors.Wrapf(err, "decode %s", path)
	}
	return blob, nil
}

// SaveToFile saves the blob to the specified path. The file is replaced atomically and is only readable by its
// owner.
func (b *BlobInfo) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "create credentials directory")
	}

	lock := lockFor(path)
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "lock credentials file")
	}
	defer lock.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b.Marshal(), 0o600); err != nil {
		return errors.Wrap(err, "write credentials")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "replace credentials")
	}
	return nil
}
