package digest

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var (
			filename  string
			savedName string
			err       error
		)

		BeforeEach(func() {
			filename = "id_chat.png"
		})

		JustBeforeEach(func() {
			savedName, err = storage.Save(filename, []byte("test file content"))
		})

		When("saving succeeds", func() {
			It("should return the stored name", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(savedName).To(Equal(filename))
			})

			It("should save the file to disk", func() {
				Expect(filepath.Join(tmpDir, filename)).To(BeAnExistingFile())
			})
		})

		DescribeTable("refusing names outside the root",
			func(name string) {
				_, err := storage.Save(name, []byte("data"))
				Expect(err).To(MatchError(ErrInvalidPath))
			},
			Entry("parent directory", "../escape.png"),
			Entry("nested path", "nested/file.png"),
			Entry("backslash", `nested\file.png`),
			Entry("empty", ""),
			Entry("dot", "."),
			Entry("dot dot", ".."),
		)
	})

	Describe("Get", func() {
		var (
			filename string
			data     []byte
			err      error
		)

		JustBeforeEach(func() {
			data, err = storage.Get(filename)
		})

		When("file exists", func() {
			BeforeEach(func() {
				filename = "id_chat.png"
				_, saveErr := storage.Save(filename, []byte("test file content"))
				Expect(saveErr).NotTo(HaveOccurred())
			})

			It("should return the file data", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("test file content"))
			})
		})

		When("file does not exist", func() {
			BeforeEach(func() {
				filename = "nonexistent.png"
			})

			It("returns the error", func() {
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("reading file"))
			})
		})

		When("the name escapes the root", func() {
			BeforeEach(func() {
				filename = "../../etc/passwd"
			})

			It("returns ErrInvalidPath", func() {
				Expect(err).To(MatchError(ErrInvalidPath))
			})
		})
	})

	Describe("Delete", func() {
		var (
			filename string
			err      error
		)

		JustBeforeEach(func() {
			err = storage.Delete(filename)
		})

		When("file exists", func() {
			BeforeEach(func() {
				filename = "id_chat.png"
				_, saveErr := storage.Save(filename, []byte("test content"))
				Expect(saveErr).NotTo(HaveOccurred())
			})

			It("should remove the file from disk", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(filepath.Join(tmpDir, filename)).NotTo(BeAnExistingFile())
			})
		})

		When("file does not exist", func() {
			BeforeEach(func() {
				filename = "nonexistent.png"
			})

			It("returns the error", func() {
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("deleting file"))
			})
		})
	})

	Describe("NewLocalStorage", func() {
		When("directory does not exist", func() {
			It("should create the directory", func() {
				storagePath := filepath.Join(GinkgoT().TempDir(), "uploads")
				s, err := NewLocalStorage(storagePath)
				Expect(err).NotTo(HaveOccurred())
				Expect(storagePath).To(BeADirectory())

				_, saveErr := s.Save("test.png", []byte("data"))
				Expect(saveErr).NotTo(HaveOccurred())
			})
		})
	})
})
