package tui

import (
	"strings"
	"unicode"

	"github.com/verte-zerg/japa/internal/mantra"
	"github.com/verte-zerg/japa/internal/scorer"
)

// markKind is how one displayed target rune is drawn.
type markKind int

const (
	markPending markKind = iota
	markCurrentWord
	markCorrect
	markIncorrect
	// markWrongSpace is a target space where the user typed something else.
	markWrongSpace
)

type targetMark struct {
	r      rune
	kind   markKind
	cursor bool
}

type wordRange struct {
	start int
	end   int
}

// markTarget compares the input the way the scorer sees it (auto-corrected
// and folded) with the folded target, then maps every comparison back to the
// displayed rune it came from. Runes the scorer ignores take the state of
// the rune before them.
func markTarget(target []rune, input string, variant mantra.Variant) []targetMark {
	typed := foldInput(input, variant)
	slots := comparableSlots(target)

	marks := make([]targetMark, len(target))
	last := markPending
	k := 0
	for i, r := range target {
		marks[i] = targetMark{r: r, kind: markPending}
		if k < len(slots) && slots[k] == i {
			if k < len(typed) {
				marks[i].kind = compareRune(typed[k], unicode.ToLower(r))
			}
			last = marks[i].kind
			k++
			continue
		}
		if last == markWrongSpace {
			marks[i].kind = markIncorrect
		} else {
			marks[i].kind = last
		}
	}

	if len(typed) >= len(slots) {
		return marks
	}
	cursor := slots[len(typed)]
	marks[cursor].cursor = true
	if word, ok := wordFrom(findWords(target), cursor); ok {
		for i := word.start; i < word.end; i++ {
			if marks[i].kind == markPending {
				marks[i].kind = markCurrentWord
			}
		}
	}
	return marks
}

func compareRune(got, want rune) markKind {
	switch {
	case got == want:
		return markCorrect
	case unicode.IsSpace(want):
		return markWrongSpace
	default:
		return markIncorrect
	}
}

func foldInput(input string, variant mantra.Variant) []rune {
	folded := scorer.Fold(scorer.AutoCorrect(input, variant))
	return []rune(strings.TrimLeftFunc(folded, unicode.IsSpace))
}

// comparableSlots lists the target indexes that survive normalization, in order.
func comparableSlots(target []rune) []int {
	first, last := -1, -1
	for i, r := range target {
		if unicode.IsSpace(r) || scorer.IsTerminator(r) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	slots := make([]int, 0, len(target))
	if first < 0 {
		return slots
	}
	for i := first; i <= last; i++ {
		if !scorer.IsTerminator(target[i]) {
			slots = append(slots, i)
		}
	}
	return slots
}

func findWords(target []rune) []wordRange {
	var words []wordRange
	start := -1
	for i, r := range target {
		switch {
		case unicode.IsSpace(r) && start >= 0:
			words = append(words, wordRange{start: start, end: i})
			start = -1
		case !unicode.IsSpace(r) && start < 0:
			start = i
		}
	}
	if start >= 0 {
		words = append(words, wordRange{start: start, end: len(target)})
	}
	return words
}

// wordFrom returns the word holding index, or the next one when index sits
// on a space.
func wordFrom(words []wordRange, index int) (wordRange, bool) {
	for _, w := range words {
		if index < w.end {
			return w, true
		}
	}
	return wordRange{}, false
}
