// Package scorer compares typed input against a mantra and suggests the next word.
package scorer

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/japa/internal/mantra"
)

// PerfectScore is the accuracy at which a repetition is accepted.
const PerfectScore = 100

const (
	minLengthRatio = 0.8
	minSimilarity  = 85.0
	terminators    = "।॥.!?,"
)

// ErrEmptyTarget is returned when a target has no comparable content.
var ErrEmptyTarget = errors.New("target text is empty")

// Result is a full evaluation of one input against the target.
type Result struct {
	Accuracy   int
	Accepted   bool
	Similarity float64
	Suggestion string
}

// Scorer binds a target text to its variant.
type Scorer struct {
	target     string
	normalized string
	variant    mantra.Variant
}

// New returns a Scorer for target. The normalized target must not be empty.
func New(target string, variant mantra.Variant) (*Scorer, error) {
	normalized := Normalize(target)
	if normalized == "" {
		return nil, ErrEmptyTarget
	}
	return &Scorer{target: target, normalized: normalized, variant: variant}, nil
}

// MustNew is like New but panics on an empty target.
func MustNew(target string, variant mantra.Variant) *Scorer {
	s, err := New(target, variant)
	if err != nil {
		panic(err)
	}
	return s
}

// Target returns the reference text.
func (s *Scorer) Target() string {
	return s.target
}

// Variant returns the script the target is written in.
func (s *Scorer) Variant() mantra.Variant {
	return s.variant
}

// Score returns the accuracy of input in the range [0, 100].
func (s *Scorer) Score(input string) int {
	acc, _ := score(Normalize(AutoCorrect(input, s.variant)), s.normalized)
	return acc
}

// Suggest proposes the word currently being typed, or the next one.
func (s *Scorer) Suggest(input string) string {
	return Suggest(input, s.target)
}

// Evaluate scores input and computes the suggestion in one pass.
func (s *Scorer) Evaluate(input string) Result {
	acc, sim := score(Normalize(AutoCorrect(input, s.variant)), s.normalized)
	return Result{
		Accuracy:   acc,
		Accepted:   acc == PerfectScore,
		Similarity: sim,
		Suggestion: s.Suggest(input),
	}
}

// Score compares input with target for the given variant.
func Score(input, target string, variant mantra.Variant) int {
	acc, _ := score(Normalize(AutoCorrect(input, variant)), Normalize(target))
	return acc
}

// Normalize strips sentence terminators, lowercases and trims s.
func Normalize(s string) string {
	return strings.TrimSpace(Fold(s))
}

// Fold is Normalize without the trim: NFC composition, terminator removal
// and lowercasing. Surrounding whitespace is kept so a caller can follow
// the typing position.
func Fold(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if IsTerminator(r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(s)
}

// IsTerminator reports whether Normalize drops r.
func IsTerminator(r rune) bool {
	return strings.ContainsRune(terminators, r)
}

// AutoCorrect rewrites the whole words "om" and "aum" to the variant's
// opening token. A word is a run of letters, marks and digits in any
// script, so "omभूर" is left alone.
func AutoCorrect(s string, variant mantra.Variant) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); {
		if !isWordRune(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && isWordRune(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		if strings.EqualFold(word, "om") || strings.EqualFold(word, "aum") {
			word = variant.OpeningToken()
		}
		b.WriteString(word)
		i = j
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.In(r, unicode.L, unicode.M, unicode.N)
}

// Similarity is the share of position-wise equal characters, ignoring
// whitespace, measured against the target's length. Both arguments are
// expected to be normalized.
func Similarity(input, target string) float64 {
	in := []rune(stripSpace(input))
	tg := []rune(stripSpace(target))
	if len(tg) == 0 {
		return 0
	}
	n := min(len(in), len(tg))
	matched := 0
	for i := 0; i < n; i++ {
		if in[i] == tg[i] {
			matched++
		}
	}
	return float64(matched*100) / float64(len(tg))
}

func score(input, target string) (int, float64) {
	if input == target {
		return PerfectScore, 100
	}
	inLen := len([]rune(stripSpace(input)))
	tgLen := len([]rune(stripSpace(target)))
	sim := Similarity(input, target)
	if tgLen > 0 && float64(inLen) >= minLengthRatio*float64(tgLen) && sim >= minSimilarity {
		return PerfectScore, sim
	}
	return wordAccuracy(input, target), sim
}

func wordAccuracy(input, target string) int {
	targetWords := strings.Split(target, " ")
	inputWords := strings.Split(input, " ")
	n := min(len(targetWords), len(inputWords))
	matched := 0
	for i := 0; i < n; i++ {
		if inputWords[i] == targetWords[i] {
			matched++
		}
	}
	return matched * 100 / len(targetWords)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
