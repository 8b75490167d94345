// Package logsrc opens fsync logs, transparently decompressing them.
//
// Proton logs of a few minutes of gameplay easily reach gigabytes, so they
// are often kept compressed. The compression is detected from the first bytes
// of the stream, not from the file name.
package logsrc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies the container of a log stream.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionSnappy
)

// String returns the string representation of Compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionSnappy:
		return "snappy"
	default:
		return "unknown"
	}
}

var (
	gzipMagic   = []byte{0x1f, 0x8b}
	zstdMagic   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

// Detect returns the compression whose magic number prefixes header.
func Detect(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(header, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(header, snappyMagic):
		return CompressionSnappy
	default:
		return CompressionNone
	}
}

// Source is an opened log.
type Source struct {
	io.Reader
	Name        string
	Compression Compression
	// Size is the on-disk size in bytes, or 0 when unknown (stdin). For
	// compressed logs it is the compressed size.
	Size int64

	closers []func() error
}

// Close releases the decoder and the underlying file.
func (s *Source) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

// Open opens path, or standard input when path is "-".
func Open(path string) (*Source, error) {
	if path == "-" {
		return Wrap(os.Stdin, "<stdin>")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	src, err := Wrap(f, path)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info, statErr := f.Stat(); statErr == nil && info.Mode().IsRegular() {
		src.Size = info.Size()
	}
	src.closers = append([]func() error{f.Close}, src.closers...)
	return src, nil
}

// Wrap detects the compression of r and returns a decompressing Source.
// Closing the Source does not close r.
func Wrap(r io.Reader, name string) (*Source, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	header, err := br.Peek(len(snappyMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	src := &Source{Name: name, Compression: Detect(header)}
	switch src.Compression {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid gzip stream: %w", name, err)
		}
		src.Reader = zr
		src.closers = append(src.closers, zr.Close)
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid zstd stream: %w", name, err)
		}
		src.Reader = zr
		src.closers = append(src.closers, func() error {
			zr.Close()
			return nil
		})
	case CompressionSnappy:
		src.Reader = snappy.NewReader(br)
	default:
		src.Reader = br
	}
	return src, nil
}
