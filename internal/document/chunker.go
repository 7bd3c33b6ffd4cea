package document

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize bounds episode content length when callers pass none.
const DefaultChunkSize = 1000

// SplitText splits text into chunks of at most chunkSize runes, aligned
// to sentence boundaries. Sentences longer than the chunk size are split
// mid-sentence at rune boundaries.
func SplitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if utf8.RuneCountInString(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	current := ""
	for _, sentence := range strings.Split(text, ". ") {
		if utf8.RuneCountInString(sentence) > chunkSize {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
				current = ""
			}
			runes := []rune(sentence)
			for i := 0; i < len(runes); i += chunkSize {
				end := i + chunkSize
				if end > len(runes) {
					end = len(runes)
				}
				chunks = append(chunks, string(runes[i:end]))
			}
			continue
		}

		potential := current + sentence + ". "
		if utf8.RuneCountInString(potential) > chunkSize {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current = sentence + ". "
		} else {
			current = potential
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}
