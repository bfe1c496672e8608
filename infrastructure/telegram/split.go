package telegram

import "strings"

// SplitMessage splits text into chunks of at most limit characters,
// breaking on line boundaries and preserving line order. Joining the
// chunks back with newlines reproduces the original text. A single line
// longer than the limit is hard-split as a last resort.
func SplitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var chunks []string
	var lines []string
	chunkLen := 0

	flush := func() {
		if len(lines) > 0 {
			chunks = append(chunks, strings.Join(lines, "\n"))
			lines = nil
			chunkLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)

		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		lineLen := len(runes)

		// +1 for the newline joining this line into the chunk
		if len(lines) > 0 && chunkLen+1+lineLen > limit {
			flush()
		}
		if len(lines) > 0 {
			chunkLen++
		}
		lines = append(lines, string(runes))
		chunkLen += lineLen
	}
	flush()

	if len(chunks) == 0 {
		chunks = []string{""}
	}
	return chunks
}
