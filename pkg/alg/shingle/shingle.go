// Package shingle extracts a deterministic set of n-gram shingles from
// text for use as MinHash input.
//
// A Shingler owns its compiled tokenizer regexp so that no process-wide
// state is shared across instances, the same per-instance-resource
// discipline pkg/alg/minhash and pkg/alg/lsh use for their seeds and band
// maps.
package shingle

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// defaultPattern matches (a) http(s) URLs as single tokens and (b) Unicode
// words optionally prefixed by a currency/social sigil and optionally
// suffixed by a percentage or plus sign.
const defaultPattern = `https?://[^\s]+` +
	`|[#@$£€¥₩฿]?[\p{L}\p{N}_]+[%+]?`

// Separator joins the tokens of a Shingle into its canonical string form,
// used for hashing and equality comparisons.
const Separator = "\x1f"

// ErrZeroSpan is returned when constructing a Shingler with span < 1.
var ErrZeroSpan = errors.New("shingle: span must be at least 1")

// ErrInvalidUTF8 is returned when Shingles receives non-UTF-8 bytes.
var ErrInvalidUTF8 = errors.New("shingle: input must be valid UTF-8")

// Shingle is an ordered tuple of span consecutive tokens.
type Shingle []string

// Key returns a canonical string form of the shingle suitable as a map key
// or hash-function input; distinct token sequences never collide on Key.
func (s Shingle) Key() string {
	return strings.Join(s, Separator)
}

// Shingler tokenizes and normalizes text, then assembles n-gram shingles.
type Shingler struct {
	span int
	re   *regexp.Regexp
}

// New creates a Shingler with the given shingle span (n-gram width, >= 1)
// and an optional custom tokenizer pattern. A nil or empty pattern falls
// back to defaultPattern.
func New(span int, pattern string) (*Shingler, error) {
	if span < 1 {
		return nil, ErrZeroSpan
	}

	if pattern == "" {
		pattern = defaultPattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	return &Shingler{span: span, re: re}, nil
}

// Normalize decodes HTML entities and lowercases text, repeating both steps
// until the text stops changing. It is idempotent:
// Normalize(Normalize(x)) == Normalize(x) for any x, including multiply
// escaped input such as "&amp;lt;", which decodes all the way to "<".
func (s *Shingler) Normalize(text string) string {
	for {
		next := strings.ToLower(html.UnescapeString(text))
		if next == text {
			return next
		}

		text = next
	}
}

// Tokenize splits normalized text into the token list the tokenizer regexp
// matches, in order of appearance.
func (s *Shingler) Tokenize(text string) []string {
	return s.re.FindAllString(text, -1)
}

// Shingles returns the deduplicated set of n-gram shingles found in text.
// If the token list has fewer than span tokens, the single shingle
// consisting of the whole (possibly empty) token list is emitted instead.
// Returns ErrInvalidUTF8 if text is not valid UTF-8.
func (s *Shingler) Shingles(text string) (map[string]Shingle, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidUTF8
	}

	tokens := s.Tokenize(s.Normalize(text))

	out := make(map[string]Shingle)

	if len(tokens) < s.span {
		sh := append(Shingle(nil), tokens...)
		out[sh.Key()] = sh

		return out, nil
	}

	for i := 0; i+s.span <= len(tokens); i++ {
		sh := append(Shingle(nil), tokens[i:i+s.span]...)
		out[sh.Key()] = sh
	}

	return out, nil
}

// Span returns the configured n-gram width.
func (s *Shingler) Span() int {
	return s.span
}

// Jaccard computes the exact Jaccard similarity |A∩B| / |A∪B| between two
// shingle sets. It is a test/diagnostic helper only; the runtime clustering
// path always uses the MinHash estimator instead of this exact computation.
func Jaccard(a, b map[string]Shingle) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	inter := 0

	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}

	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}

	return float64(inter) / float64(union)
}
