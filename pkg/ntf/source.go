package ntf

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies how an NTF file is compressed on disk.
type Compression int

const (
	// CompressionAuto detects compression from the file name, or from the
	// first bytes for readers.
	CompressionAuto Compression = iota
	CompressionNone
	CompressionGZ
	CompressionBZ2
	CompressionXZ
	CompressionZSTD
)

const (
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

func (c Compression) String() string {
	switch c {
	case CompressionAuto:
		return "auto"
	case CompressionNone:
		return "none"
	case CompressionGZ:
		return "gzip"
	case CompressionBZ2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// Extension returns the file suffix of the compression, empty for none.
func (c Compression) Extension() string {
	switch c {
	case CompressionGZ:
		return extGZ
	case CompressionBZ2:
		return extBZ2
	case CompressionXZ:
		return extXZ
	case CompressionZSTD:
		return extZSTD
	default:
		return ""
	}
}

// DetectCompression returns the compression implied by a file name.
func DetectCompression(path string) Compression {
	path = strings.ToLower(path)

	switch {
	case strings.HasSuffix(path, extGZ):
		return CompressionGZ
	case strings.HasSuffix(path, extBZ2):
		return CompressionBZ2
	case strings.HasSuffix(path, extXZ):
		return CompressionXZ
	case strings.HasSuffix(path, extZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// sniffCompression recognises the magic numbers of the supported formats.
func sniffCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, []byte{0x1f, 0x8b}):
		return CompressionGZ
	case bytes.HasPrefix(head, []byte("BZh")):
		return CompressionBZ2
	case bytes.HasPrefix(head, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}):
		return CompressionXZ
	case bytes.HasPrefix(head, []byte{0x28, 0xb5, 0x2f, 0xfd}):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// isNTFPath reports whether a file name looks like an NTF file, compressed
// or not.
func isNTFPath(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	if ext := DetectCompression(name).Extension(); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return strings.HasSuffix(name, ".ntf")
}

type nopSeekCloser struct {
	io.ReadSeeker
}

func (nopSeekCloser) Close() error { return nil }

// OpenSource opens an NTF file for reading. Uncompressed files are read in
// place; compressed files are decompressed into memory so that the reader
// can seek back to the start of the section.
func OpenSource(path string, c Compression) (io.ReadSeekCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open source")
	}
	if c == CompressionAuto {
		c = DetectCompression(path)
	}
	if c == CompressionNone {
		return f, nil
	}
	defer f.Close()

	rs, err := decompress(f, c)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return nopSeekCloser{rs}, nil
}

// newSource prepares a caller supplied stream. A CompressionAuto stream is
// sniffed; a plain io.ReadSeeker is used as is.
func newSource(r io.Reader, c Compression) (io.Reader, error) {
	if c == CompressionAuto {
		if rs, ok := r.(io.ReadSeeker); ok {
			start, err := rs.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, errors.Wrap(err, "sniff compression")
			}
			head := make([]byte, 6)
			n, err := io.ReadFull(rs, head)
			if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
				return nil, errors.Wrap(err, "sniff compression")
			}
			if _, err := rs.Seek(start, io.SeekStart); err != nil {
				return nil, errors.Wrap(err, "sniff compression")
			}
			c = sniffCompression(head[:n])
		} else {
			br := bufio.NewReader(r)
			head, err := br.Peek(6)
			if err != nil && err != io.EOF {
				return nil, errors.Wrap(err, "sniff compression")
			}
			c = sniffCompression(head)
			r = br
		}
	}
	if c == CompressionNone {
		return r, nil
	}
	return decompress(r, c)
}

// decompress reads the whole compressed stream into memory.
func decompress(r io.Reader, c Compression) (io.ReadSeeker, error) {
	var (
		dr  io.Reader
		err error
	)
	switch c {
	case CompressionGZ:
		var gz *gzip.Reader
		gz, err = gzip.NewReader(r)
		if err == nil {
			defer gz.Close()
			dr = gz
		}
	case CompressionBZ2:
		dr = bzip2.NewReader(r)
	case CompressionXZ:
		dr, err = xz.NewReader(r)
	case CompressionZSTD:
		var zr *zstd.Decoder
		zr, err = zstd.NewReader(r)
		if err == nil {
			defer zr.Close()
			dr = zr
		}
	default:
		return nil, errors.Newf("unsupported compression %v", c)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "create %v reader", c)
	}

	data, err := io.ReadAll(dr)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress %v", c)
	}
	return bytes.NewReader(data), nil
}
