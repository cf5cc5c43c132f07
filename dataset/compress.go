package dataset

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the codec implied by a file name suffix.
type Compression int

const (
	// CompressionNone is a plain file.
	CompressionNone Compression = iota
	// CompressionZstd is a ".zst" file.
	CompressionZstd
	// CompressionGzip is a ".gz" file.
	CompressionGzip
	// CompressionLZ4 is a ".lz4" file.
	CompressionLZ4
)

var suffixes = map[string]Compression{
	".zst": CompressionZstd,
	".gz":  CompressionGzip,
	".lz4": CompressionLZ4,
}

// SplitCompression returns the name without its compression suffix and the
// compression the suffix implies.
func SplitCompression(name string) (string, Compression) {
	ext := strings.ToLower(path.Ext(name))
	if c, ok := suffixes[ext]; ok {
		return strings.TrimSuffix(name, path.Ext(name)), c
	}
	return name, CompressionNone
}

// Decompress wraps rc with the decoder its name suffix implies. Closing the
// result closes rc.
func Decompress(name string, rc io.ReadCloser) (io.ReadCloser, error) {
	_, c := SplitCompression(name)

	switch c {
	case CompressionZstd:
		dec, err := zstd.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return &readCloser{Reader: dec, close: func() error { dec.Close(); return rc.Close() }}, nil
	case CompressionGzip:
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &readCloser{Reader: gz, close: func() error {
			gerr := gz.Close()
			if err := rc.Close(); err != nil {
				return err
			}
			return gerr
		}}, nil
	case CompressionLZ4:
		return &readCloser{Reader: lz4.NewReader(rc), close: rc.Close}, nil
	default:
		return rc, nil
	}
}

// Compress wraps w with the encoder its name suffix implies. Closing the
// result flushes the encoder but does not close w.
func Compress(name string, w io.Writer) (io.WriteCloser, error) {
	_, c := SplitCompression(name)

	switch c {
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return enc, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error { return r.close() }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
