// Package cas implements the configuration cache snapshot stores.
//
// Every backend stores the same encoded entry: a magic header, the cache
// format version and a zstd compressed msgpack snapshot of the build model.
package cas

import (
	"bytes"
	"encoding/binary"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

var magic = []byte("KILNCC")

const headerLen = 6 + 2

// The zstd encoder and decoder are safe for concurrent EncodeAll and DecodeAll calls.
var (
	sharedEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	sharedDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil)
	})
)

// Codec converts build models to and from their stored form.
type Codec struct {
	toolVersion string
	now         func() time.Time
	encoder     func() (*zstd.Encoder, error)
	decoder     func() (*zstd.Decoder, error)
}

// NewCodec creates a Codec that stamps entries with the given kiln version.
func NewCodec(toolVersion string) *Codec {
	return &Codec{
		toolVersion: toolVersion,
		now:         time.Now,
		encoder:     sharedEncoder,
		decoder:     sharedDecoder,
	}
}

// Encode serializes model as the entry for fp.
func (c *Codec) Encode(fp domain.Fingerprint, model *domain.BuildModel) ([]byte, error) {
	if model == nil || model.Settings == nil {
		return nil, zerr.With(domain.ErrStoreWriteFailed, "reason", "incomplete model")
	}

	encoder, err := c.encoder()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "reason", "zstd encoder unavailable")
	}

	payload, err := msgpack.Marshal(toSnapshot(fp, c.now().UTC(), c.toolVersion, model))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	out := make([]byte, headerLen, headerLen+len(payload)/2)
	copy(out, magic)
	binary.BigEndian.PutUint16(out[len(magic):], uint16(domain.CacheFormatVersion))
	return encoder.EncodeAll(payload, out), nil
}

// Decode parses an entry read for fp.
// Entries written for another format version or fingerprint are rejected.
func (c *Codec) Decode(fp domain.Fingerprint, data []byte) (*domain.CacheEntry, error) {
	if len(data) < headerLen || !bytes.Equal(data[:len(magic)], magic) {
		return nil, zerr.With(domain.ErrCacheEntryCorrupt, "reason", "bad header")
	}

	version := int(binary.BigEndian.Uint16(data[len(magic):headerLen]))
	if version != domain.CacheFormatVersion {
		err := zerr.With(domain.ErrCacheFormatMismatch, "expected", domain.CacheFormatVersion)
		return nil, zerr.With(err, "actual", version)
	}

	decoder, err := c.decoder()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "reason", "zstd decoder unavailable")
	}

	payload, err := decoder.DecodeAll(data[headerLen:], nil)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrCacheEntryCorrupt.Error())
	}

	var snap snapshot
	if err := msgpack.Unmarshal(payload, &snap); err != nil {
		return nil, zerr.Wrap(err, domain.ErrCacheEntryCorrupt.Error())
	}

	if domain.Fingerprint(snap.Fingerprint) != fp {
		err := zerr.With(domain.ErrCacheFingerprintMismatch, "expected", fp.String())
		return nil, zerr.With(err, "actual", snap.Fingerprint)
	}

	model, err := snap.model()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrCacheEntryCorrupt.Error())
	}

	return &domain.CacheEntry{
		FormatVersion: version,
		Fingerprint:   fp,
		CreatedAt:     snap.CreatedAt,
		ToolVersion:   snap.ToolVersion,
		Model:         model,
	}, nil
}
