package historywriter

import "testing"

func TestCleanTitleCollapsesWhitespaceAndQuotes(t *testing.T) {
	got := cleanTitle("  \"Planning   a trip\"  \n")
	want := "Planning a trip"
	if got != want {
		t.Fatalf("cleanTitle() = %q, want %q", got, want)
	}
}

func TestCleanTitleEmptyInput(t *testing.T) {
	if got := cleanTitle("   "); got != "" {
		t.Fatalf("cleanTitle() = %q, want empty string", got)
	}
}
