package cas

import (
	"time"

	"github.com/klauspost/compress/zstd"
)

// SetClock replaces the clock used to stamp entries.
func (c *Codec) SetClock(now func() time.Time) {
	c.now = now
}

// SetCompression replaces the zstd encoder and decoder constructors.
func (c *Codec) SetCompression(
	encoder func() (*zstd.Encoder, error),
	decoder func() (*zstd.Decoder, error),
) {
	c.encoder = encoder
	c.decoder = decoder
}
