package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/models"
)

type fakeUploader struct {
	contentType string
	received    []byte
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, _ int64, filename, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.received = data
	f.contentType = contentType
	return "https://cdn.exemple.fr/uploads/" + filename, nil
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes() []byte {
	header := []byte("\x89PNG\r\n\x1a\n")
	return append(header, bytes.Repeat([]byte{0}, 2048)...)
}

func decodeUpload(t *testing.T, rr *httptest.ResponseRecorder) models.UploadResponse {
	t.Helper()
	var resp models.UploadResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("réponse illisible: %v", err)
	}
	return resp
}

func TestUploadHandler(t *testing.T) {
	t.Run("image acceptée", func(t *testing.T) {
		up := &fakeUploader{}
		rr := httptest.NewRecorder()
		NewUploadHandler(up).Upload(rr, multipartRequest(t, "file", "affiche.png", pngBytes()))

		expectStatus(t, rr, http.StatusOK)
		resp := decodeUpload(t, rr)
		if !resp.Success || !strings.HasSuffix(resp.URL, "affiche.png") {
			t.Errorf("réponse inattendue: %+v", resp)
		}
		if up.contentType != "image/png" {
			t.Errorf("type transmis = %q, attendu image/png", up.contentType)
		}
		if !bytes.Equal(up.received, pngBytes()) {
			t.Error("le contenu transmis doit être complet, octets de détection compris")
		}
	})

	t.Run("type refusé", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewUploadHandler(&fakeUploader{}).Upload(rr, multipartRequest(t, "file", "script.png", []byte("#!/bin/sh\necho pirate\n")))
		expectStatus(t, rr, http.StatusUnsupportedMediaType)
		if resp := decodeUpload(t, rr); resp.Success || len(resp.Errors) != 1 || resp.Errors[0] != constants.ErrFileType {
			t.Errorf("réponse inattendue: %+v", resp)
		}
	})

	t.Run("fichier manquant", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewUploadHandler(&fakeUploader{}).Upload(rr, multipartRequest(t, "image", "affiche.png", pngBytes()))
		expectStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("fichier trop volumineux", func(t *testing.T) {
		big := append(pngBytes(), bytes.Repeat([]byte{1}, MaxUploadSize+100<<10)...)
		rr := httptest.NewRecorder()
		NewUploadHandler(&fakeUploader{}).Upload(rr, multipartRequest(t, "file", "geante.png", big))
		expectStatus(t, rr, http.StatusRequestEntityTooLarge)
	})

	t.Run("stockage en erreur", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewUploadHandler(&fakeUploader{err: errors.New("bucket indisponible")}).Upload(rr, multipartRequest(t, "file", "affiche.png", pngBytes()))
		expectStatus(t, rr, http.StatusBadGateway)
	})

	t.Run("stockage non configuré", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewUploadHandler(nil).Upload(rr, multipartRequest(t, "file", "affiche.png", pngBytes()))
		expectStatus(t, rr, http.StatusServiceUnavailable)
	})

	t.Run("méthode", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewUploadHandler(&fakeUploader{}).Upload(rr, httptest.NewRequest(http.MethodGet, "/api/upload", nil))
		expectStatus(t, rr, http.StatusMethodNotAllowed)
	})
}
