package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Physical line limits. The line end must appear within the first
// maxLineLen bytes of a line.
const (
	maxRecordLen = 160
	maxLineLen   = maxRecordLen + 2
)

// recordReader turns a byte stream into logical records, merging
// continuation lines. It tracks the byte offset of the stream so that a
// seekable source can be rewound to any record boundary.
type recordReader struct {
	src    io.Reader
	br     *bufio.Reader
	offset int64
}

func newRecordReader(src io.Reader) *recordReader {
	return &recordReader{src: src, br: bufio.NewReader(src)}
}

// Offset returns the byte offset of the next unread line.
func (rr *recordReader) Offset() int64 { return rr.offset }

// Seek repositions the reader at an absolute byte offset. The underlying
// source must implement io.Seeker.
func (rr *recordReader) Seek(offset int64) error {
	seeker, ok := rr.src.(io.Seeker)
	if !ok {
		return errors.New("ntf: source does not support seeking")
	}
	if _, err := seeker.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seek to %d", offset)
	}
	rr.br.Reset(rr.src)
	rr.offset = offset
	return nil
}

// readLine returns one physical line without its CR/LF. A CR LF or LF CR
// pair counts as a single line end. io.EOF is returned only when no bytes
// remain; a final line without line end is returned as is.
func (rr *recordReader) readLine() (string, int64, error) {
	start := rr.offset
	var sb strings.Builder
	for {
		c, err := rr.br.ReadByte()
		if err == io.EOF {
			if sb.Len() == 0 {
				return "", start, io.EOF
			}
			return sb.String(), start, nil
		}
		if err != nil {
			return "", start, errors.Wrap(err, "read line")
		}
		rr.offset++
		if c == '\n' || c == '\r' {
			if next, err := rr.br.Peek(1); err == nil && (next[0] == '\n' || next[0] == '\r') && next[0] != c {
				_, _ = rr.br.ReadByte()
				rr.offset++
			}
			return sb.String(), start, nil
		}
		if sb.Len() == maxLineLen-1 {
			return "", start, formatError(&ErrLineTooLong{Offset: start, Limit: maxLineLen})
		}
		sb.WriteByte(c)
	}
}

// Next reads the next logical record. It returns io.EOF when the stream is
// exhausted before a record starts. Malformed lines yield errors marked
// ErrFormat.
func (rr *recordReader) Next() (*Record, error) {
	var (
		data    strings.Builder
		started bool
		first   int64
	)
	for {
		line, offset, err := rr.readLine()
		if err == io.EOF {
			if !started {
				return nil, io.EOF
			}
			// Truncated continuation: keep what was read.
			return newRecordAt(data.String(), first), nil
		}
		if err != nil {
			return nil, err
		}

		line = strings.TrimRight(line, " ")
		if len(line) < 2 || line[len(line)-1] != '%' {
			return nil, formatError(&ErrMissingTerminator{Offset: offset, Line: line})
		}

		if !started {
			started = true
			first = offset
			data.WriteString(line[:len(line)-2])
		} else {
			if len(line) < 4 || !strings.HasPrefix(line, "00") {
				return nil, formatError(&ErrInvalidContinuation{Offset: offset, Line: line})
			}
			data.WriteString(line[2 : len(line)-2])
		}

		if line[len(line)-2] != '1' {
			return newRecordAt(data.String(), first), nil
		}
	}
}
