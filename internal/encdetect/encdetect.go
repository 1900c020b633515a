// Package encdetect guesses the text encoding of raw file bytes and decodes
// them to UTF-8.
//
// Detection is heuristic and confidence-scored. Callers treat a low-confidence
// guess as "unknown" and fall back to Fallback rather than aborting; decoding
// a delimited data file must be best-effort.
package encdetect

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Fallback is used when detection confidence is below MinConfidence.
// Windows-1252 decodes every byte sequence, so a load can never fail here.
const Fallback = "windows-1252"

// MinConfidence is the threshold under which the detected encoding is
// discarded in favor of Fallback.
const MinConfidence = 0.5

// Result is a detected encoding plus a confidence score in [0, 1].
type Result struct {
	Encoding   string
	Confidence float64
}

// Detector guesses the encoding of raw bytes.
type Detector interface {
	Detect(data []byte) Result
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(data []byte) Result

func (f DetectorFunc) Detect(data []byte) Result { return f(data) }

// Default is the built-in heuristic detector.
var Default Detector = DetectorFunc(detect)

// detect sniffs BOMs first, then byte-pattern heuristics. It is intentionally
// conservative: anything it cannot positively identify comes back with a
// confidence below MinConfidence.
func detect(data []byte) Result {
	if len(data) == 0 {
		return Result{Encoding: "utf-8", Confidence: 0}
	}

	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return Result{Encoding: "utf-8", Confidence: 1}
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return Result{Encoding: "utf-16le", Confidence: 1}
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return Result{Encoding: "utf-16be", Confidence: 1}
	}

	// BOM-less UTF-16 text shows NUL bytes in alternating positions.
	if enc, conf := sniffUTF16(data); conf > 0 {
		return Result{Encoding: enc, Confidence: conf}
	}

	ascii := true
	for _, b := range data {
		if b >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return Result{Encoding: "ascii", Confidence: 1}
	}

	if utf8.Valid(data) {
		return Result{Encoding: "utf-8", Confidence: 0.9}
	}

	// Arbitrary single-byte data. Windows-1252 is the usual suspect for
	// spreadsheet exports, but we cannot know for sure.
	return Result{Encoding: "windows-1252", Confidence: 0.4}
}

func sniffUTF16(data []byte) (string, float64) {
	if len(data) < 4 {
		return "", 0
	}
	n := len(data)
	if n > 4096 {
		n = 4096
	}
	var evenNul, oddNul int
	for i := 0; i < n; i++ {
		if data[i] != 0 {
			continue
		}
		if i%2 == 0 {
			evenNul++
		} else {
			oddNul++
		}
	}
	pairs := n / 2
	switch {
	case evenNul > pairs/2 && oddNul == 0:
		return "utf-16be", 0.8
	case oddNul > pairs/2 && evenNul == 0:
		return "utf-16le", 0.8
	}
	return "", 0
}

// NewReader wraps r so that reads yield UTF-8 text decoded from the named
// encoding. Unknown encodings are rejected; callers are expected to pass a
// detector Result (after fallback), not arbitrary user input.
func NewReader(r io.Reader, encoding string) (io.Reader, error) {
	switch encoding {
	case "", "ascii", "utf-8":
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	case "utf-16le":
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case "utf-16be":
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	case "windows-1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("encdetect: unsupported encoding %q", encoding)
	}
}

// Decode detects the encoding of data with det (Default when nil), applies the
// low-confidence fallback, and returns the UTF-8 bytes together with the
// Result actually used for decoding.
func Decode(data []byte, det Detector) ([]byte, Result, error) {
	if det == nil {
		det = Default
	}
	res := det.Detect(data)
	if res.Confidence < MinConfidence {
		res = Result{Encoding: Fallback, Confidence: res.Confidence}
	}
	r, err := NewReader(bytes.NewReader(data), res.Encoding)
	if err != nil {
		return nil, res, err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, res, fmt.Errorf("decode %s: %w", res.Encoding, err)
	}
	return out, res, nil
}
