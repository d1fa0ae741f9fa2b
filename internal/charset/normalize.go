// Package charset turns uploaded bytes into canonical UTF-8 text.
//
// Start lists arrive either as UTF-8 (with or without a BOM) or in the
// legacy 8-bit code page of older federation export tools. Detection order:
//
//  1. UTF-8 BOM present: strip it and decode as UTF-8.
//  2. Valid UTF-8 that the Heuristic accepts.
//  3. The legacy code page, if the Heuristic accepts the decoded text.
//  4. Best-effort UTF-8 with invalid bytes replaced by U+FFFD.
//
// Normalization never fails; step 4 is reported through Result.Ambiguous.
package charset

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Encoding names reported in Result.Encoding.
const (
	EncodingUTF8BOM   = "utf-8-bom"
	EncodingUTF8      = "utf-8"
	EncodingUTF8Lossy = "utf-8-lossy"
)

// DefaultLegacy is the code page used by Polish federation export tools.
const DefaultLegacy = "windows-1250"

var bom = []byte{0xEF, 0xBB, 0xBF}

// Result is normalized text plus how it was obtained.
type Result struct {
	Text      string
	Encoding  string
	Ambiguous bool
}

// Normalizer detects the source encoding of a byte buffer.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	heuristic  Heuristic
	legacy     encoding.Encoding
	legacyName string
}

// NewNormalizer creates a normalizer for the named legacy code page.
// An empty name selects windows-1250; a nil heuristic selects DefaultAlphabet.
func NewNormalizer(h Heuristic, legacyName string) (*Normalizer, error) {
	if h == nil {
		h = DefaultAlphabet()
	}
	if legacyName == "" {
		legacyName = DefaultLegacy
	}

	enc, err := lookupLegacy(legacyName)
	if err != nil {
		return nil, err
	}

	return &Normalizer{
		heuristic:  h,
		legacy:     enc,
		legacyName: strings.ToLower(legacyName),
	}, nil
}

// Default returns a windows-1250 normalizer with the default alphabet.
func Default() *Normalizer {
	return &Normalizer{
		heuristic:  DefaultAlphabet(),
		legacy:     charmap.Windows1250,
		legacyName: DefaultLegacy,
	}
}

func lookupLegacy(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown legacy encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("legacy encoding %q is not supported", name)
	}
	return enc, nil
}

// LegacyName returns the configured legacy code page name.
func (n *Normalizer) LegacyName() string {
	return n.legacyName
}

// Normalize converts data to UTF-8 text. It is deterministic and never fails.
func (n *Normalizer) Normalize(data []byte) Result {
	if rest, ok := bytes.CutPrefix(data, bom); ok {
		// Some tools write the mark twice when re-saving.
		for bytes.HasPrefix(rest, bom) {
			rest = rest[len(bom):]
		}
		// A BOM is an explicit declaration; trust it even if the body is damaged.
		if utf8.Valid(rest) {
			return Result{Text: string(rest), Encoding: EncodingUTF8BOM}
		}
		return Result{Text: sanitize(rest), Encoding: EncodingUTF8BOM, Ambiguous: true}
	}

	if utf8.Valid(data) {
		text := string(data)
		if n.heuristic.Accept(text) {
			return Result{Text: text, Encoding: EncodingUTF8}
		}
	}

	if text, err := n.decodeLegacy(data); err == nil && n.heuristic.Accept(text) {
		return Result{Text: text, Encoding: n.legacyName}
	}

	return Result{Text: sanitize(data), Encoding: EncodingUTF8Lossy, Ambiguous: true}
}

func (n *Normalizer) decodeLegacy(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(n.legacy.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// sanitize replaces every invalid UTF-8 byte with U+FFFD.
func sanitize(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	var b strings.Builder
	b.Grow(len(data) + len(data)/4)
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(data[read : read+size])
		}
		read += size
	}
	return b.String()
}
