package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM drops a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	peeked, err := br.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(peeked, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}

// Decode returns a UTF-8 reader for an upload in the named encoding.
func Decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8, "utf8":
		return SkipBOM(r), nil
	case EncodingWindows1252, "cp1252", "latin1":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificação não suportada: %s", encoding)
	}
}

// Encode wraps w so UTF-8 text written to it comes out in the named
// encoding. UTF-8 output starts with a BOM so spreadsheets detect it.
func Encode(w io.Writer, encoding string) (io.Writer, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingWindows1252, "cp1252", "latin1":
		return transform.NewWriter(w, charmap.Windows1252.NewEncoder()), nil
	case EncodingUTF8, "utf8":
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("codificação não suportada: %s", encoding)
	}
}

func getColIndex(header []string, required []string) (map[string]int, error) {
	colIndex := make(map[string]int)
	for i, colName := range header {
		colIndex[strings.ToLower(strings.TrimSpace(colName))] = i
	}
	for _, req := range required {
		if _, ok := colIndex[req]; !ok {
			return nil, fmt.Errorf("cabeçalho obrigatório ausente: %s", req)
		}
	}
	return colIndex, nil
}
