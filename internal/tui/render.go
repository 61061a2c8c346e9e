package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

func styleFor(kind markKind) lipgloss.Style {
	switch kind {
	case markCorrect:
		return correctStyle
	case markIncorrect, markWrongSpace:
		return incorrectStyle
	case markCurrentWord:
		return currentWordStyle
	default:
		return pendingStyle
	}
}

// buildStyledRunes draws the marked target. A mistyped space shows as a dot.
func buildStyledRunes(marks []targetMark) []styledRune {
	out := make([]styledRune, 0, len(marks))
	for _, m := range marks {
		shown := m.r
		if m.kind == markWrongSpace {
			shown = '•'
		}
		style := styleFor(m.kind)
		if m.cursor {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:       style.Render(string(shown)),
			width:   runewidth.RuneWidth(shown),
			isSpace: m.r == ' ',
		})
	}
	return out
}

// buildInputRunes renders what the user typed so far, with a trailing cursor.
func buildInputRunes(inputRunes []rune) []styledRune {
	out := make([]styledRune, 0, len(inputRunes)+1)
	for _, r := range inputRunes {
		out = append(out, styledRune{
			s:       correctStyle.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return append(out, styledRune{s: cursorStyle.Render(" "), width: 1})
}

// wordChunk is a word with the spaces in front of it.
type wordChunk struct {
	gap  []styledRune
	word []styledRune
}

func chunkWords(runes []styledRune) []wordChunk {
	var chunks []wordChunk
	var cur wordChunk
	for _, r := range runes {
		if r.isSpace {
			if len(cur.word) > 0 {
				chunks = append(chunks, cur)
				cur = wordChunk{}
			}
			cur.gap = append(cur.gap, r)
			continue
		}
		cur.word = append(cur.word, r)
	}
	if len(cur.gap)+len(cur.word) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}

// wrapStyledRunes lays runes out in lines at most width cells wide, breaking
// between words. The spaces at a break are dropped. A word wider than a
// line is split where it overflows.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return joinStyled(runes)
	}
	var lines []string
	var line []styledRune
	used := 0
	for _, c := range chunkWords(runes) {
		if len(line) > 0 && used+cellWidth(c.gap)+cellWidth(c.word) > width {
			lines = append(lines, joinStyled(line))
			line, used = nil, 0
		} else {
			line = append(line, c.gap...)
			used += cellWidth(c.gap)
		}
		for _, r := range c.word {
			if len(line) > 0 && used+r.width > width {
				lines = append(lines, joinStyled(line))
				line, used = nil, 0
			}
			line = append(line, r)
			used += r.width
		}
	}
	return strings.Join(append(lines, joinStyled(line)), "\n")
}

func joinStyled(runes []styledRune) string {
	var b strings.Builder
	for _, r := range runes {
		b.WriteString(r.s)
	}
	return b.String()
}

func cellWidth(runes []styledRune) int {
	total := 0
	for _, r := range runes {
		total += r.width
	}
	return total
}
