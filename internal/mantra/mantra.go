package mantra

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const (
	gayatriDevanagari = "ॐ भूर्भुवः स्वः तत्सवितुर्वरेण्यं भर्गो देवस्य धीमहि धियो यो नः प्रचोदयात्॥"
	gayatriRoman      = "Om Bhur Bhuvah Swaha Tat Savitur Varenyam Bhargo Devasya Dhimahi Dhiyo Yo Nah Prachodayat."
)

// Builtin returns the bundled mantra for a variant.
func Builtin(v Variant) string {
	if v == Devanagari {
		return gayatriDevanagari
	}
	return gayatriRoman
}

// LoadText reads a mantra from a file, joining non-blank lines with single spaces.
func LoadText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only text.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		words = append(words, strings.Fields(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(words) == 0 {
		return "", fmt.Errorf("mantra text is empty")
	}
	return strings.Join(words, " "), nil
}

// Resolve returns the text at path when set, otherwise the builtin text.
func Resolve(v Variant, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(v), nil
	}
	text, err := LoadText(path)
	if err != nil {
		return "", fmt.Errorf("failed to load %s text: %w", v, err)
	}
	return text, nil
}
