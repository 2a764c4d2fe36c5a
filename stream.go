package mcsv

// stream.go provides the byte-stream wrappers applied before tokenization:
//
//   - bomSkippingReader: removes a UTF-8 BOM (0xEF 0xBB 0xBF) from files
//     produced by Windows tools
//   - utf8ValidatingReader: rejects invalid UTF-8 with the byte offset of
//     the offending sequence
//
// Both operate in O(buffer_size) memory regardless of file size.

import (
	"errors"
	"io"
	"unicode/utf8"
)

// bomSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type bomSkippingReader struct {
	reader     io.Reader
	bomChecked bool
	buf        [3]byte
	bufData    []byte
	bufOffset  int
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read it checks for and skips the BOM.
func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.bomChecked {
		r.bomChecked = true

		n, err := io.ReadFull(r.reader, r.buf[:])
		if n == 0 {
			if err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			return 0, err
		}

		if n >= 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF {
			r.bufData = nil
		} else {
			r.bufData = r.buf[:n]
			r.bufOffset = 0
		}

		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(r.bufData) > r.bufOffset {
		copied := copy(p, r.bufData[r.bufOffset:])
		r.bufOffset += copied
		if r.bufOffset >= len(r.bufData) {
			r.bufData = nil
		}
		return copied, nil
	}

	return r.reader.Read(p)
}

// utf8ValidatingReader wraps an io.Reader and fails with a StreamError when
// the stream contains invalid UTF-8. Incomplete multi-byte sequences at a
// read boundary are held back until the next read completes them.
type utf8ValidatingReader struct {
	reader  io.Reader
	pending []byte
	offset  int64 // bytes delivered so far
	err     error // sticky validation failure
}

func newUTF8ValidatingReader(r io.Reader) *utf8ValidatingReader {
	return &utf8ValidatingReader{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (v *utf8ValidatingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if v.err != nil {
		return 0, v.err
	}

	offset := 0
	if len(v.pending) > 0 {
		offset = copy(p, v.pending)
		v.pending = v.pending[:0]
	}

	n, err := v.reader.Read(p[offset:])
	n += offset

	if n == 0 {
		if err == io.EOF && offset == 0 && len(v.pending) == 0 {
			return 0, err
		}
		return 0, err
	}

	data := p[:n]
	atEOF := err == io.EOF

	if utf8.Valid(data) {
		if !atEOF {
			if trailing := incompleteTrailingBytes(data); trailing > 0 {
				v.pending = append(v.pending, data[n-trailing:]...)
				n -= trailing
			}
		}
		v.offset += int64(n)
		return n, err
	}

	// Locate the first invalid byte for the error offset. The valid prefix
	// is still delivered; the error is returned with it and then sticks.
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])
		if !atEOF && isIncompleteRune(data[read:]) {
			v.pending = append(v.pending, data[read:]...)
			v.offset += int64(read)
			return read, nil
		}
		if r == utf8.RuneError && size == 1 {
			v.err = &StreamError{Offset: v.offset + int64(read), Err: errInvalidUTF8}
			v.offset += int64(read)
			return read, v.err
		}
		read += size
	}

	v.offset += int64(n)
	return n, err
}

var errInvalidUTF8 = errors.New("invalid UTF-8 sequence")

// incompleteTrailingBytes returns the number of bytes at the end of data that
// could start an incomplete multi-byte UTF-8 sequence.
func incompleteTrailingBytes(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	for i := 1; i <= 3 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			if i < runeLen(b) {
				return i
			}
			return 0
		}
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}

// runeLen returns the expected length of a UTF-8 sequence starting with byte b.
func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0 // continuation byte
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// isIncompleteRune reports whether data could be a truncated multi-byte
// sequence that a later read would complete.
func isIncompleteRune(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	expected := runeLen(data[0])
	return expected > len(data)
}
