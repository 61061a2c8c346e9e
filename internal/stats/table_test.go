package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"User", "Points", "Sessions"}
	rows := [][]string{
		{"asha", "1,250", "125"},
		{"ravindra", "30", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "User     Points Sessions" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "asha      1,250      125" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "ravindra     30        3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableUsesDisplayWidth(t *testing.T) {
	lines := formatTable([]string{"Name", "N"}, [][]string{{"ॐ", "1"}, {"ab", "2"}}, nil)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[2] != "ab   2" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 10); got != "abcdef" {
		t.Fatalf("unexpected truncate result: %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("unexpected truncate result: %q", got)
	}
}
