package scorer

import (
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/japa/internal/mantra"
)

const shortTarget = "Om bhur bhuvah"

func TestScoreExactMatch(t *testing.T) {
	if got := Score("Om bhur bhuvah", shortTarget, mantra.Roman); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestScoreIgnoresCaseTerminatorsAndPadding(t *testing.T) {
	target := "Om namah shivaya."
	if got := Score("  om NAMAH shivaya  ", target, mantra.Roman); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if got := Score("ॐ नमः शिवाय", "ॐ नमः शिवाय॥", mantra.Devanagari); got != 100 {
		t.Fatalf("expected 100 for devanagari without danda, got %d", got)
	}
}

func TestScoreTolerantMatch(t *testing.T) {
	// One trailing character wrong: 11 of 12 non-space characters match.
	if got := Score("Om bhur bhuvan", shortTarget, mantra.Roman); got != 100 {
		t.Fatalf("expected tolerant accept, got %d", got)
	}
	sim := Similarity(Normalize("Om bhur bhuvan"), Normalize(shortTarget))
	if sim < 91 || sim > 92 {
		t.Fatalf("unexpected similarity %.2f", sim)
	}
}

func TestScorePartialWords(t *testing.T) {
	if got := Score("Om", shortTarget, mantra.Roman); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
	if got := Score("Om bhur", shortTarget, mantra.Roman); got != 66 {
		t.Fatalf("expected 66, got %d", got)
	}
}

func TestScoreEmptyInput(t *testing.T) {
	for _, target := range []string{shortTarget, mantra.Builtin(mantra.Roman), mantra.Builtin(mantra.Devanagari)} {
		if got := Score("", target, mantra.Roman); got != 0 {
			t.Fatalf("expected 0 for empty input against %q, got %d", target, got)
		}
	}
}

func TestScoreWordCountMismatch(t *testing.T) {
	if got := Score("Om bhur bhuvah swaha tat savitur", "Om bhur", mantra.Roman); got != 100 {
		t.Fatalf("expected extra words past the target to be ignored by the tolerant match, got %d", got)
	}
	if got := Score("bhur", shortTarget, mantra.Roman); got != 0 {
		t.Fatalf("expected misaligned word to score 0, got %d", got)
	}
}

func TestScoreNaivePositionalComparison(t *testing.T) {
	// An early insertion shifts every following character, so the tolerant
	// match fails and only the word comparison remains.
	if got := Score("Oom bhur bhuvah", shortTarget, mantra.Roman); got != 66 {
		t.Fatalf("expected 66, got %d", got)
	}
}

func TestScoreTargetLengthDivisor(t *testing.T) {
	// Similarity is measured against the target's length only. Trailing
	// content beyond the target is never compared, so it cannot reject an
	// otherwise matching input.
	target := "Om namah shivaya"
	input := target + " completely unrelated trailing words"
	if got := Score(input, target, mantra.Roman); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	// With a long target, up to 15% of trailing characters can be wrong.
	long := strings.Repeat("a", 100)
	typed := strings.Repeat("a", 85) + strings.Repeat("z", 15)
	if got := Score(typed, long, mantra.Roman); got != 100 {
		t.Fatalf("expected 100 for 85%% positional match, got %d", got)
	}
	typed = strings.Repeat("a", 84) + strings.Repeat("z", 16)
	if got := Score(typed, long, mantra.Roman); got == 100 {
		t.Fatalf("expected rejection below 85%%")
	}
}

func TestScoreShortInputNeverTolerant(t *testing.T) {
	// 9 of 12 characters typed: below the 80% length gate.
	if got := Score("Om bhur bh", shortTarget, mantra.Roman); got == 100 {
		t.Fatalf("expected short input to be rejected")
	}
}

func TestAutoCorrect(t *testing.T) {
	if got := Score("AUM namaha", "Om namaha", mantra.Roman); got != 100 {
		t.Fatalf("expected AUM to be corrected, got %d", got)
	}
	if got := AutoCorrect("aum namah", mantra.Devanagari); got != "ॐ namah" {
		t.Fatalf("unexpected devanagari correction %q", got)
	}
	if got := AutoCorrect("om. shanti om", mantra.Roman); got != "Om. shanti Om" {
		t.Fatalf("unexpected correction %q", got)
	}
}

func TestAutoCorrectWholeWordOnly(t *testing.T) {
	for _, in := range []string{"aumx namaha", "soma", "homa", "omkara"} {
		if got := AutoCorrect(in, mantra.Roman); got != in {
			t.Fatalf("expected %q unchanged, got %q", in, got)
		}
	}
	for _, in := range []string{"omभूर", "भूरom", "om१", "ॐom"} {
		if got := AutoCorrect(in, mantra.Devanagari); got != in {
			t.Fatalf("expected %q unchanged, got %q", in, got)
		}
	}
	if got := AutoCorrect("om भूर्भुवः॥om", mantra.Devanagari); got != "ॐ भूर्भुवः॥ॐ" {
		t.Fatalf("expected terminator to separate words, got %q", got)
	}
	if got := Score("aumx namaha", "Om namaha", mantra.Roman); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestFoldKeepsWhitespace(t *testing.T) {
	if got := Fold(" Om Bhur. "); got != " om bhur " {
		t.Fatalf("unexpected fold %q", got)
	}
	if got := Normalize(" Om Bhur. "); got != "om bhur" {
		t.Fatalf("unexpected normalize %q", got)
	}
	if !IsTerminator('॥') || IsTerminator('a') {
		t.Fatalf("unexpected terminator classification")
	}
}

func TestNewRejectsEmptyTarget(t *testing.T) {
	for _, target := range []string{"", "   ", "॥ . !"} {
		if _, err := New(target, mantra.Roman); !errors.Is(err, ErrEmptyTarget) {
			t.Fatalf("expected ErrEmptyTarget for %q, got %v", target, err)
		}
	}
}

func TestMustNewPanicsOnEmptyTarget(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustNew("", mantra.Roman)
}

func TestEvaluate(t *testing.T) {
	s := MustNew(shortTarget, mantra.Roman)
	res := s.Evaluate("Om bh")
	if res.Accepted {
		t.Fatalf("expected partial input to not be accepted")
	}
	if res.Accuracy != 33 {
		t.Fatalf("expected 33, got %d", res.Accuracy)
	}
	if res.Suggestion != "bhur" {
		t.Fatalf("expected suggestion bhur, got %q", res.Suggestion)
	}
	res = s.Evaluate("aum bhur bhuvah")
	if !res.Accepted || res.Accuracy != 100 {
		t.Fatalf("expected accepted result, got %+v", res)
	}
}
