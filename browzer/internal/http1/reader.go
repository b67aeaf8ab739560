package http1

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var (
	ErrLineTooLong    = errors.New("http1: header line too long")
	ErrHeaderTooLarge = errors.New("http1: header block too large")
)

// Reader collects the request line and header lines of one request.
// Zero limits disable the corresponding check.
type Reader struct {
	BR *bufio.Reader
	// MaxLineBytes bounds a single line, excluding its terminator.
	MaxLineBytes int
	// MaxHeaderBytes bounds the whole block, terminators included.
	MaxHeaderBytes int
}

// ReadHeaderLines returns every line up to, but not including, the first
// empty line. Lines may end in CRLF or a bare LF. Reaching EOF after at least
// one line ends the block early; EOF before any line yields io.EOF.
func (r *Reader) ReadHeaderLines() ([]string, error) {
	var (
		lines []string
		total int
	)
	for {
		line, n, err := r.readLine()
		total += n
		if r.MaxHeaderBytes > 0 && total > r.MaxHeaderBytes {
			return nil, ErrHeaderTooLarge
		}
		if err == io.EOF {
			if line != "" {
				lines = append(lines, line)
			}
			if len(lines) == 0 {
				return nil, io.EOF
			}
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		if line == "" {
			if len(lines) == 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return lines, nil
		}
		lines = append(lines, line)
	}
}

// readLine reads one line, dropping CR bytes, and reports the raw byte count.
func (r *Reader) readLine() (string, int, error) {
	var (
		sb strings.Builder
		n  int
	)
	for {
		b, err := r.BR.ReadByte()
		if err != nil {
			return sb.String(), n, err
		}
		n++
		if b == '\n' {
			break
		}
		if b != '\r' {
			sb.WriteByte(b)
		}
		if r.MaxLineBytes > 0 && sb.Len() > r.MaxLineBytes {
			return "", n, ErrLineTooLong
		}
	}
	return sb.String(), n, nil
}
