package alsparse

import (
	"bytes"
	"compress/gzip"
	"io"
	"unicode/utf8"

	"github.com/ulikunitz/xz"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

func isGzip(content []byte) bool { return bytes.HasPrefix(content, gzipMagic) }
func isXZ(content []byte) bool   { return bytes.HasPrefix(content, xzMagic) }

// isXML reports whether content looks like the start of an XML document.
// Live always writes a UTF-8 declaration, but fixtures produced by other
// tooling may start straight at the root element, so a leading '<' after
// optional BOM/whitespace is accepted too.
func isXML(content []byte) bool {
	content = bytes.TrimPrefix(content, []byte{0xef, 0xbb, 0xbf})
	content = bytes.TrimLeft(content, " \t\r\n")
	return bytes.HasPrefix(content, []byte("<"))
}

// decompress turns raw .als bytes into UTF-8 XML text. Gzip is the normal
// framing for Live sets, xz shows up in archived fixture collections, and
// plain XML passes through untouched. Anything else, or compressed content
// that does not decode to text, is a FormatError.
func decompress(content []byte) ([]byte, error) {
	switch {
	case isGzip(content):
		zr, err := gzip.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, formatErrf(err, "invalid gzip stream")
		}
		defer zr.Close()
		content, err = io.ReadAll(zr)
		if err != nil {
			return nil, formatErrf(err, "gzip decompression failed")
		}
	case isXZ(content):
		xr, err := xz.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, formatErrf(err, "invalid xz stream")
		}
		content, err = io.ReadAll(xr)
		if err != nil {
			return nil, formatErrf(err, "xz decompression failed")
		}
	}

	if !utf8.Valid(content) {
		return nil, &FormatError{Reason: "content is not UTF-8 text", Offset: int64(invalidUTF8Offset(content))}
	}
	if !isXML(content) {
		return nil, &FormatError{Reason: "content is not XML", Offset: 0}
	}
	return content, nil
}

func invalidUTF8Offset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return 0
}
