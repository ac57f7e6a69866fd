package digest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/chat-digest/internal/conversation"
	"github.com/zombor/chat-digest/internal/digest"
	"github.com/zombor/chat-digest/internal/summary"
)

// fixedScanner returns the same transcription for every image
type fixedScanner struct {
	lines []string
}

func (f *fixedScanner) ExtractLines(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	return f.lines, nil
}

func (f *fixedScanner) Close() error {
	return nil
}

// rosterNames recognizes names from a fixed roster
type rosterNames []string

func (r rosterNames) ExtractPersonNames(ctx context.Context, text string) ([]string, error) {
	var found []string
	for _, name := range r {
		if strings.Contains(text, name) {
			found = append(found, name)
		}
	}
	return found, nil
}

// wordCounter summarizes a message by its word count
type wordCounter struct{}

func (wordCounter) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	return fmt.Sprintf("they sent %d words", len(strings.Fields(text))), nil
}

var _ = Describe("Integration", func() {
	var (
		tempDir  string
		db       digest.DB
		store    digest.Storage
		server   *digest.Server
		ghServer *ghttp.Server
	)

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()

		var err error
		db, err = digest.NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())

		store, err = digest.NewLocalStorage(filepath.Join(tempDir, "uploads"))
		Expect(err).NotTo(HaveOccurred())

		scanner := &fixedScanner{lines: []string{
			"12th March 2024",
			"Alice Walker",
			"10:02 AM",
			"are we still on for lunch",
			"Bob Marley",
			"10:05 AM",
			"yes",
			"see you at noon",
			"10:07 AM",
		}}
		names := rosterNames{"Alice Walker", "Bob Marley"}

		service := digest.NewService(
			db,
			scanner,
			store,
			conversation.NewBuilder(names),
			summary.NewComposer(wordCounter{}, summary.WithWorkers(2)),
		)
		server = digest.NewServer(service, time.Minute)
		ghServer = ghttp.NewServer()
	})

	AfterEach(func() {
		if ghServer != nil {
			ghServer.Close()
		}
		if db != nil {
			db.Close()
		}
	})

	It("should upload a screenshot, summarize it, and serve it back", func() {
		ghServer.AppendHandlers(
			server.ServeHTTP, // create
			server.ServeHTTP, // list
			server.ServeHTTP, // image
			server.ServeHTTP, // delete
			server.ServeHTTP, // get after delete
		)

		// --- Step 1: upload ---
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("image", "lunch chat.png")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("fake png content"))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(ghServer.URL()+"/api/digests", writer.FormDataContentType(), body)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var created digest.Digest
		respBody, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(respBody, &created)).To(Succeed())

		Expect(created.ID).NotTo(BeEmpty())
		Expect(created.Filename).To(HaveSuffix("_lunch_chat.png"))
		Expect(created.Entries).To(Equal([]conversation.Entry{
			{Speaker: "Alice Walker", Message: "are we still on for lunch ", Time: "10:02 AM", Date: "12th March 2024"},
			{Speaker: "Bob Marley", Message: "yes see you at noon ", Time: "10:05 AM", Date: "12th March 2024"},
			{Speaker: conversation.Sentinel, Time: "10:07 AM", Date: "12th March 2024"},
		}))
		Expect(created.Summary).To(Equal(
			"On 12th March 2024, at 10:02 AM, Alice Walker mentioned that they sent 6 words. " +
				"On 12th March 2024, at 10:05 AM, Bob Marley mentioned that they sent 5 words. " +
				"On 12th March 2024, at 10:07 AM, You said nothing.",
		))

		// The upload is on disk under the stored name
		stored, err := store.Get(created.Filename)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(stored)).To(Equal("fake png content"))

		// --- Step 2: list ---
		listResp, err := http.Get(ghServer.URL() + "/api/digests")
		Expect(err).NotTo(HaveOccurred())
		defer listResp.Body.Close()
		var listed []digest.Digest
		listBody, err := io.ReadAll(listResp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(listBody, &listed)).To(Succeed())
		Expect(listed).To(HaveLen(1))
		Expect(listed[0].ID).To(Equal(created.ID))

		// --- Step 3: image ---
		imageResp, err := http.Get(ghServer.URL() + "/api/digests/" + created.ID + "/image")
		Expect(err).NotTo(HaveOccurred())
		defer imageResp.Body.Close()
		Expect(imageResp.StatusCode).To(Equal(http.StatusOK))
		Expect(imageResp.Header.Get("Content-Type")).To(Equal("image/png"))

		// --- Step 4: delete ---
		req, err := http.NewRequest(http.MethodDelete, ghServer.URL()+"/api/digests/"+created.ID, nil)
		Expect(err).NotTo(HaveOccurred())
		deleteResp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer deleteResp.Body.Close()
		Expect(deleteResp.StatusCode).To(Equal(http.StatusNoContent))

		_, err = store.Get(created.Filename)
		Expect(err).To(HaveOccurred())

		// --- Step 5: gone ---
		getResp, err := http.Get(ghServer.URL() + "/api/digests/" + created.ID)
		Expect(err).NotTo(HaveOccurred())
		defer getResp.Body.Close()
		Expect(getResp.StatusCode).To(Equal(http.StatusNotFound))
	})
})
