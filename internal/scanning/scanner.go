package scanning

import "context"

// Scanner extracts the text lines of a chat screenshot
type Scanner interface {
	// ExtractLines returns the lines of text in the image, top to bottom
	ExtractLines(ctx context.Context, imageData []byte, contentType string) ([]string, error)
	// Close closes the scanner and releases resources
	Close() error
}

// transcriptionPrompt is the shared prompt used by all vision backends
const transcriptionPrompt = `You are transcribing a screenshot of a chat conversation (for example WhatsApp, Messenger, Slack or SMS).

Read every piece of text in the image from top to bottom and write it out exactly as it appears:
- One visual line of text per output line, in reading order
- Keep sender names, timestamps (e.g. "14:30", "9:05 PM") and date separators (e.g. "3rd June 2023") on their own lines, as they appear
- Do not translate, correct, summarize or reorder anything
- Do not add commentary, labels, bullet points or markdown
- If the image contains no text, return nothing`
