package scripting

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Source is one script after decoding.
type Source struct {
	Name string // chunk name shown in Lua errors
	Text string // UTF-8
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSource reads a script file and decodes it from enc (a WHATWG encoding
// label such as "utf-8", "big5", "gbk" or "shift_jis") to UTF-8.
func ReadSource(path, enc string) (Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read script %s: %w", path, err)
	}
	text, err := Decode(raw, enc)
	if err != nil {
		return Source{}, fmt.Errorf("decode script %s: %w", path, err)
	}
	return Source{Name: path, Text: text}, nil
}

// Decode converts raw script bytes in the named encoding to a UTF-8 string.
func Decode(raw []byte, enc string) (string, error) {
	codec, err := lookupEncoding(enc)
	if err != nil {
		return "", err
	}
	if codec == unicode.UTF8 {
		return string(bytes.TrimPrefix(raw, utf8BOM)), nil
	}
	out, err := codec.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func lookupEncoding(label string) (encoding.Encoding, error) {
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return unicode.UTF8, nil
	}
	codec, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown script encoding %q: %w", label, err)
	}
	return codec, nil
}

// Fingerprint hashes the names and texts of sources, in order, with
// blake2b-256. Failure reports carry it.
func Fingerprint(sources []Source) string {
	h, _ := blake2b.New256(nil) // only errors on an oversized key
	for _, s := range sources {
		h.Write([]byte(s.Name))
		h.Write([]byte{0})
		h.Write([]byte(s.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
