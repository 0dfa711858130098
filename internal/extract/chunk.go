package extract

import "strings"

// defaultChunkSize bounds how much report text goes into a single prompt.
const defaultChunkSize = 4000

// SplitIntoChunks splits text into chunks of at most max bytes without
// breaking a line across two chunks. A single line longer than max becomes
// its own oversized chunk rather than being cut mid-line.
func SplitIntoChunks(text string, max int) []string {
	if max <= 0 {
		max = defaultChunkSize
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= max {
		return []string{text}
	}

	var (
		chunks []string
		b      strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			chunks = append(chunks, b.String())
			b.Reset()
		}
	}
	for _, line := range strings.Split(text, "\n") {
		need := len(line)
		if b.Len() > 0 {
			need++ // joining newline
		}
		if b.Len() > 0 && b.Len()+need > max {
			flush()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if b.Len() >= max {
			flush()
		}
	}
	flush()
	return chunks
}
