package digest

import (
	"time"

	"github.com/zombor/chat-digest/internal/conversation"
)

// Digest is the stored result of summarizing one chat screenshot
type Digest struct {
	ID          string               `json:"id"`
	Filename    string               `json:"filename,omitempty"` // stored upload, empty for text-only requests
	ContentType string               `json:"content_type,omitempty"`
	Lines       []string             `json:"lines"`   // text as extracted, before cleaning
	Entries     []conversation.Entry `json:"entries"` // reconstructed turns, in order
	Summary     string               `json:"summary"`
	CreatedAt   time.Time            `json:"created_at"`
}
