package handlers

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/services"
	"portail-citoyen-backend/utils"
)

// MaxUploadSize est la taille maximale d'un fichier envoyé (5 Mo)
const MaxUploadSize = 5 << 20

// UploadHandler transmet les fichiers envoyés au stockage configuré
type UploadHandler struct {
	uploader services.Uploader
}

// NewUploadHandler crée un UploadHandler ; uploader nil désactive l'endpoint
func NewUploadHandler(uploader services.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload reçoit le champ multipart "file" et retourne l'URL publique
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if h.uploader == nil {
		respondUpload(w, http.StatusServiceUnavailable, constants.ErrUploadDisabled)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondUpload(w, http.StatusRequestEntityTooLarge, constants.ErrFileTooLarge)
			return
		}
		respondUpload(w, http.StatusBadRequest, constants.ErrFileRequired)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondUpload(w, http.StatusBadRequest, constants.ErrFileRequired)
		return
	}
	defer file.Close()

	if header.Size > MaxUploadSize {
		respondUpload(w, http.StatusRequestEntityTooLarge, constants.ErrFileTooLarge)
		return
	}

	// Le type est déterminé sur le contenu, pas sur l'en-tête envoyé
	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		respondUpload(w, http.StatusBadRequest, constants.ErrFileRequired)
		return
	}
	sniff = sniff[:n]
	contentType := http.DetectContentType(sniff)
	if !allowedType(contentType) {
		respondUpload(w, http.StatusUnsupportedMediaType, constants.ErrFileType)
		return
	}

	var claimsEmail string
	if claims := currentUser(r); claims != nil {
		claimsEmail = claims.Email
	}
	log.Printf("📤 Upload de %s (%s, %d octets) par %s", header.Filename, contentType, header.Size, claimsEmail)

	body := io.MultiReader(bytes.NewReader(sniff), file)
	url, err := h.uploader.Upload(r.Context(), body, header.Size, header.Filename, contentType)
	if err != nil {
		log.Printf("❌ Erreur upload: %v", err)
		respondUpload(w, http.StatusBadGateway, constants.ErrGeneric)
		return
	}

	utils.RespondJSON(w, http.StatusOK, models.UploadResponse{Success: true, URL: url})
}

func allowedType(contentType string) bool {
	for _, t := range services.AllowedImageTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

func respondUpload(w http.ResponseWriter, status int, message string) {
	utils.RespondJSON(w, status, models.UploadResponse{Success: false, Errors: []string{message}})
}
