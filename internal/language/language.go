// Package language provides model-backed person name extraction and
// summarization for reconstructed conversations.
package language

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when a model answers with no text
var ErrEmptyResponse = errors.New("empty response from model")

const namesPrompt = `Find the names of people in the text below. Return ONLY a JSON array of strings, in order of appearance, with each name written exactly as in the text. Return [] if there are none. Do not include places, organizations, or words that merely look like names.

Text: %s`

const summaryPrompt = `Summarize the chat message below in one sentence of between %d and %d words. Write it so it can follow the words "they mentioned that". Return only the sentence.

Message: %s`

func namesRequest(text string) string {
	return fmt.Sprintf(namesPrompt, text)
}

func summaryRequest(text string, minLen, maxLen int) string {
	return fmt.Sprintf(summaryPrompt, minLen, maxLen, text)
}

// namesReply is the object form of a names reply
type namesReply struct {
	Names []string `json:"names"`
}

// parseNames reads the first JSON value in a model reply, ignoring any text or
// markdown around it. A bare array and an object with a "names" array are both
// accepted; a missing or null "names" means no names.
func parseNames(reply string) ([]string, error) {
	start := strings.IndexAny(reply, "[{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON value found in response")
	}

	var raw []string
	dec := json.NewDecoder(strings.NewReader(reply[start:]))
	if reply[start] == '{' {
		var obj namesReply
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("unmarshaling names: %w", err)
		}
		raw = obj.Names
	} else if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshaling names: %w", err)
	}

	names := make([]string, 0, len(raw))
	for _, name := range raw {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// parseSummary trims a summary reply down to the sentence itself
func parseSummary(reply string) (string, error) {
	summary := strings.TrimSpace(reply)
	summary = strings.Trim(summary, "\"")
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", ErrEmptyResponse
	}
	return summary, nil
}

// tokenBudget converts a word bound into a generation limit with headroom
func tokenBudget(maxLen int) int {
	return maxLen*2 + 16
}
