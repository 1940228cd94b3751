package utils

import (
	"encoding/json"
	"net/http"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/models"
)

// RespondJSON envoie une réponse JSON
func RespondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	if w.Header().Get(constants.HeaderContentType) == "" {
		w.Header().Set(constants.HeaderContentType, constants.HeaderApplicationJSON)
	}

	if statusCode > 0 {
		w.WriteHeader(statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError envoie une réponse d'erreur JSON ; le code est déduit du statut HTTP
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondErrorCode(w, statusCode, CodeForStatus(statusCode), message, nil)
}

// RespondErrorCode envoie l'enveloppe d'erreur complète
func RespondErrorCode(w http.ResponseWriter, statusCode int, code, message string, details []models.FieldError) {
	RespondJSON(w, statusCode, models.ErrorResponse{
		Success: false,
		Error: models.ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// RespondValidation envoie les erreurs de validation par champ (400)
func RespondValidation(w http.ResponseWriter, details []models.FieldError) {
	message := constants.ErrInvalidData
	if len(details) == 1 {
		message = details[0].Message
	}
	RespondErrorCode(w, http.StatusBadRequest, constants.CodeValidation, message, details)
}

// RespondSuccess envoie une réponse de succès JSON
func RespondSuccess(w http.ResponseWriter, message string, data interface{}) {
	RespondJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondCreated envoie une réponse 201
func RespondCreated(w http.ResponseWriter, message string, data interface{}) {
	RespondJSON(w, http.StatusCreated, models.SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondList envoie une liste paginée
func RespondList(w http.ResponseWriter, data interface{}, pagination models.Pagination, stats interface{}) {
	RespondJSON(w, http.StatusOK, models.ListResponse{
		Success:    true,
		Data:       data,
		Pagination: pagination,
		Stats:      stats,
	})
}

// CodeForStatus retourne le code d'erreur associé à un statut HTTP
func CodeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return constants.CodeBadRequest
	case http.StatusUnauthorized:
		return constants.CodeUnauthorized
	case http.StatusForbidden:
		return constants.CodeForbidden
	case http.StatusNotFound:
		return constants.CodeNotFound
	case http.StatusMethodNotAllowed:
		return constants.CodeMethod
	case http.StatusConflict:
		return constants.CodeConflict
	case http.StatusUnprocessableEntity:
		return constants.CodeTransition
	case http.StatusTooManyRequests:
		return constants.CodeTooMany
	case http.StatusServiceUnavailable:
		return constants.CodeUnavailable
	}
	return constants.CodeServer
}
