package digest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/chat-digest/internal/scanning"
)

const maxUploadSize = int64(50 << 20) // 50MB

// upload is a screenshot read from a multipart request
type upload struct {
	filename    string
	contentType string
	data        []byte
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes an {"error": message} response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps a pipeline error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNoInput), errors.Is(err, scanning.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// contentTypeFor falls back to the file extension when the part has no type
func contentTypeFor(header *multipart.FileHeader) string {
	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// readUpload reads the "image" field of a multipart request
func readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New("file is too large, maximum size is 50MB")
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, ErrNoInput
		}
		return nil, errors.New("error parsing form")
	}

	f, header, err := r.FormFile("image")
	if err != nil {
		return nil, ErrNoInput
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.New("error reading file")
	}
	if len(data) == 0 {
		return nil, ErrNoInput
	}

	return &upload{
		filename:    header.Filename,
		contentType: contentTypeFor(header),
		data:        data,
	}, nil
}

// summarizeUpload runs the pipeline on the request's image under the request timeout
func (s *Server) summarizeUpload(w http.ResponseWriter, r *http.Request) (*Digest, bool) {
	up, err := readUpload(w, r)
	if err != nil {
		slog.Error("Error reading upload", "error", err)
		if errors.Is(err, ErrNoInput) {
			writeError(w, http.StatusBadRequest, "No image file provided")
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	digest, err := s.service.Summarize(ctx, up.filename, up.data, up.contentType)
	if err != nil {
		slog.Error("Error summarizing upload", "filename", up.filename, "error", err)
		writeError(w, statusFor(err), err.Error())
		return nil, false
	}
	return digest, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSummarize returns only the narrative for an uploaded image
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	digest, ok := s.summarizeUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": digest.Summary})
}

// handleCreateDigest returns the full digest for an uploaded image
func (s *Server) handleCreateDigest(w http.ResponseWriter, r *http.Request) {
	digest, ok := s.summarizeUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, digest)
}

// handleCreateFromLines builds a digest from already extracted lines
func (s *Server) handleCreateFromLines(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lines []string `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	digest, err := s.service.SummarizeLines(ctx, req.Lines)
	if err != nil {
		slog.Error("Error summarizing lines", "lines", len(req.Lines), "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, digest)
}

// handleListDigests returns all digests
func (s *Server) handleListDigests(w http.ResponseWriter, r *http.Request) {
	digests, err := s.service.ListDigests()
	if err != nil {
		slog.Error("Error listing digests", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if digests == nil {
		digests = []*Digest{}
	}
	writeJSON(w, http.StatusOK, digests)
}

// handleGetDigest returns a single digest
func (s *Server) handleGetDigest(w http.ResponseWriter, r *http.Request) {
	digest, err := s.service.GetDigest(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), "Digest not found")
		return
	}
	writeJSON(w, http.StatusOK, digest)
}

// handleGetDigestImage returns the uploaded screenshot of a digest
func (s *Server) handleGetDigestImage(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetDigestImage(r.PathValue("id"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			writeError(w, status, "Image not found")
			return
		}
		slog.Error("Error reading digest image", "id", r.PathValue("id"), "error", err)
		writeError(w, status, "Error reading image")
		return
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(data); err != nil {
		slog.Error("Error writing image", "id", r.PathValue("id"), "error", err)
	}
}

// handleDeleteDigest deletes a digest
func (s *Server) handleDeleteDigest(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteDigest(r.PathValue("id")); err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			writeError(w, status, "Digest not found")
			return
		}
		slog.Error("Error deleting digest", "error", err)
		writeError(w, status, "Error deleting digest")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
