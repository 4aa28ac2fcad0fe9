package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

type uploadTempRequest struct {
	ImageData string `json:"image_data"`
}

// handleRoot doubles as the wake-the-server ping target.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "active",
		"service": "meme-wars-backend",
	})
}

// handleUploadTemp stores a webcam capture before the player has joined a
// room and returns the reference the join payload will carry. Accepts a
// multipart "file" field or a JSON body with base64 image data.
func (s *Server) handleUploadTemp(w http.ResponseWriter, r *http.Request) {
	var (
		data        []byte
		contentType string
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid upload")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file")
			return
		}
		defer file.Close()
		data, err = io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid upload")
			return
		}
		contentType = header.Header.Get("Content-Type")
	} else {
		var req uploadTempRequest
		if err := readJSON(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1), &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid upload")
			return
		}
		decoded, err := decodeImageData(req.ImageData)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid image data")
			return
		}
		data = decoded
		contentType = "image/jpeg"
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty upload")
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	id := s.uploads.Put(data, contentType)
	log.Printf("temp image stored id=%s bytes=%d", id, len(data))
	writeJSON(w, http.StatusOK, map[string]string{
		"url": "/i/" + id,
	})
}

func (s *Server) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/i/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	entry, ok := s.uploads.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", entry.contentType)
	_, _ = w.Write(entry.data)
}
