package repository

import (
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ZstdExt marks zstd compressed files.
const ZstdExt = ".zst"

// IsCompressed reports whether path names a zstd compressed file.
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ZstdExt)
}

// NewCompressedWriter wraps w in a zstd encoder. Closing the result flushes
// the encoder and then closes w if it is an io.Closer.
func NewCompressedWriter(w io.Writer) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	return &zstdWriteCloser{enc: enc, under: w}, nil
}

// NewCompressedReader wraps r in a zstd decoder. Closing the result releases
// the decoder and closes r if it is an io.Closer.
func NewCompressedReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{dec: dec, under: r}, nil
}

type zstdWriteCloser struct {
	enc   *zstd.Encoder
	under io.Writer
}

func (z *zstdWriteCloser) Write(p []byte) (int, error) { return z.enc.Write(p) }

func (z *zstdWriteCloser) Close() error {
	err := z.enc.Close()
	if c, ok := z.under.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type zstdReadCloser struct {
	dec   *zstd.Decoder
	under io.Reader
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	if c, ok := z.under.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
