package core

// streaming.go normalizes the byte stream in front of the CSV reader:
//
//   - a leading UTF-8 byte order mark (Excel on Windows) is dropped
//   - invalid UTF-8 is replaced with U+FFFD so one bad cell cannot fail the file
//
// Both transforms work in constant memory regardless of upload size.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const sanitizeChunk = 32 * 1024

// WrapForStreaming returns r with the BOM stripped and invalid UTF-8 replaced.
func WrapForStreaming(r io.Reader) io.Reader {
	br := bufio.NewReaderSize(r, sanitizeChunk)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return &utf8Sanitizer{src: br, chunk: make([]byte, sanitizeChunk)}
}

// utf8Sanitizer holds back a trailing partial rune until the next read
// completes it or the source ends.
type utf8Sanitizer struct {
	src   io.Reader
	chunk []byte
	held  []byte
	out   []byte
	err   error
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		n, err := s.src.Read(s.chunk)
		s.held = append(s.held, s.chunk[:n]...)
		s.err = err
		s.out = s.drain(err != nil)
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// drain converts held bytes to valid UTF-8. Unless final, an incomplete
// sequence at the end stays held.
func (s *utf8Sanitizer) drain(final bool) []byte {
	data := s.held
	if utf8.Valid(data) {
		out := append([]byte(nil), data...)
		s.held = s.held[:0]
		return out
	}

	out := make([]byte, 0, len(data)+8)
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			if !final && !utf8.FullRune(data) {
				break
			}
			out = append(out, "�"...)
			data = data[1:]
			continue
		}
		out = append(out, data[:size]...)
		data = data[size:]
	}

	s.held = append(s.held[:0], data...)
	return out
}
