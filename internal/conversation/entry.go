package conversation

import "context"

// Sentinel is the speaker recorded when no name is recognized in the probe line
const Sentinel = "You"

// Entry is one speaker-attributed turn of a reconstructed conversation
type Entry struct {
	Speaker string `json:"speaker"`
	Message string `json:"message"`
	Time    string `json:"time"`           // verbatim timestamp token
	Date    string `json:"date,omitempty"` // verbatim date token, empty when none was seen
}

// NameExtractor recognizes person names in a short fragment of text
type NameExtractor interface {
	// ExtractPersonNames returns the person names found in text, in order of appearance
	ExtractPersonNames(ctx context.Context, text string) ([]string, error)
}
