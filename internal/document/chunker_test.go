package document

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitTextShortPassesThrough(t *testing.T) {
	text := "One short sentence."
	chunks := SplitText(text, 1000)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("chunks = %q", chunks)
	}
}

func TestSplitTextSentenceAligned(t *testing.T) {
	sentence := strings.Repeat("word ", 8) + "end"
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString(sentence)
		b.WriteString(". ")
	}

	chunks := SplitText(b.String(), 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > 100 {
			t.Errorf("chunk %d exceeds size: %d runes", i, utf8.RuneCountInString(chunk))
		}
		if !strings.Contains(chunk, "word") {
			t.Errorf("chunk %d lost sentence text: %q", i, chunk)
		}
	}
}

func TestSplitTextHardSplitsLongSentence(t *testing.T) {
	text := strings.Repeat("x", 2500)
	chunks := SplitText(text, 1000)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 1000 || len(chunks[1]) != 1000 || len(chunks[2]) != 500 {
		t.Errorf("chunk sizes = %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestSplitTextCountsRunesNotBytes(t *testing.T) {
	// Three bytes per rune; byte-based splitting would tear characters.
	text := strings.Repeat("한", 600)
	chunks := SplitText(text, 500)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
	}
	if utf8.RuneCountInString(chunks[0]) != 500 {
		t.Errorf("first chunk = %d runes, want 500", utf8.RuneCountInString(chunks[0]))
	}
}

func TestSplitTextZeroSizeUsesDefault(t *testing.T) {
	text := strings.Repeat("y", DefaultChunkSize+1)
	chunks := SplitText(text, 0)
	if len(chunks) != 2 {
		t.Errorf("chunks = %d, want 2", len(chunks))
	}
}
