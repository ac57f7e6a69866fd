package conversation_test

import (
	"github.com/zombor/chat-digest/internal/conversation"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Clean", func() {
	DescribeTable("normalizing a line",
		func(input, expected string) {
			Expect(conversation.Clean(input)).To(Equal(expected))
		},
		Entry("leaves plain text alone", "Hello there", "Hello there"),
		Entry("trims surrounding whitespace", "   hi   ", "hi"),
		Entry("collapses whitespace runs", "a \t\t b\n\nc", "a b c"),
		Entry("keeps allowed punctuation", "Wait, what?! It's mid-day.", "Wait, what?! It's mid-day."),
		Entry("drops symbols", "@John* #Smith~", "John Smith"),
		Entry("drops colons from timestamps", "14:30", "1430"),
		Entry("drops non-ASCII letters", "café ☕ time", "caf time"),
		Entry("treats unicode spaces as whitespace", "a\u00a0\u2003b", "a b"),
		Entry("returns empty for symbol-only lines", "✓✓ ~~", ""),
		Entry("returns empty for empty input", "", ""),
	)

	It("is idempotent", func() {
		inputs := []string{
			"  @John   Smith: 14.30 PM!! ",
			" weird spacing\t\t",
			"3rd June, 2023 -- ok?",
			"✓✓ read 9-41",
		}
		for _, in := range inputs {
			once := conversation.Clean(in)
			Expect(conversation.Clean(once)).To(Equal(once), "input %q", in)
		}
	})

	It("never produces characters outside the allowed set", func() {
		out := conversation.Clean("<tag>{json: [1, 2]} $5 & 10% ~ é ß / \\ \" ; 😀")
		for _, r := range out {
			allowed := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
				r == ' ' || r == '.' || r == ',' || r == '!' || r == '?' || r == '\'' || r == '-'
			Expect(allowed).To(BeTrue(), "unexpected rune %q", r)
		}
	})
})
