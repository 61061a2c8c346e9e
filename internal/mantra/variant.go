// Package mantra provides the reference texts users practice.
package mantra

import (
	"fmt"
	"strings"
)

// Variant selects the script a mantra is typed in.
type Variant int

const (
	// Devanagari is the native-script form.
	Devanagari Variant = iota
	// Roman is the transliterated form.
	Roman
)

// Variants lists every supported variant.
func Variants() []Variant {
	return []Variant{Devanagari, Roman}
}

// ParseVariant resolves a variant name. Empty input selects Roman.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "roman", "latin", "iast":
		return Roman, nil
	case "devanagari", "deva", "native":
		return Devanagari, nil
	default:
		return Roman, fmt.Errorf("unknown variant %q (available: devanagari, roman)", name)
	}
}

func (v Variant) String() string {
	switch v {
	case Devanagari:
		return "devanagari"
	case Roman:
		return "roman"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// OpeningToken is the canonical spelling of the sacred syllable for the variant.
func (v Variant) OpeningToken() string {
	if v == Devanagari {
		return "ॐ"
	}
	return "Om"
}
