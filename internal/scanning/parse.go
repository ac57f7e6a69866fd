package scanning

import "strings"

// parseLines turns a model transcription into lines. Markdown fences and
// blank lines are dropped; the line before a timestamp must be the speaker.
func parseLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
