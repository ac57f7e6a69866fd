package scanning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server   *ghttp.Server
		scanner  *Ollama
		image    []byte
		lines    []string
		err      error
		received ollamaChatRequest
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		scanner, err = NewOllama(server.URL(), "test-vision")
		Expect(err).NotTo(HaveOccurred())
		image = testPNG()
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		lines, err = scanner.ExtractLines(context.Background(), image, "image/png")
	})

	When("the model transcribes the image", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					body, readErr := io.ReadAll(r.Body)
					Expect(readErr).NotTo(HaveOccurred())
					Expect(json.Unmarshal(body, &received)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "John Smith\n14:30\nHello there\n"},
					Done:    true,
				}),
			))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the transcribed lines", func() {
			Expect(lines).To(Equal([]string{"John Smith", "14:30", "Hello there"}))
		})

		It("should request the configured model without streaming", func() {
			Expect(received.Model).To(Equal("test-vision"))
			Expect(received.Stream).To(BeFalse())
			Expect(received.Options.Temperature).To(BeZero())
		})

		It("should attach the image to the user message", func() {
			Expect(received.Messages).To(HaveLen(2))
			Expect(received.Messages[1].Role).To(Equal("user"))
			Expect(received.Messages[1].Images).To(HaveLen(1))
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("should return an error with the body", func() {
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
		})
	})

	When("the response is not JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "not json"))
		})

		It("should return an error", func() {
			Expect(err).To(MatchError(ContainSubstring("decoding response")))
		})
	})

	When("the upload cannot be decoded", func() {
		BeforeEach(func() {
			image = []byte("garbage")
		})

		It("should fail before calling the API", func() {
			Expect(err).To(MatchError(ErrUnsupportedFormat))
			Expect(server.ReceivedRequests()).To(BeEmpty())
		})
	})
})
