package models

// FieldError est une erreur de validation sur un champ
type FieldError struct {
	Champ   string `json:"champ"`
	Message string `json:"message"`
}

// ErrorBody est le détail d'une erreur
type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// ErrorResponse est l'unique enveloppe d'erreur de l'API
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// SuccessResponse représente une réponse de succès générique
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Pagination décrit la page retournée
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// ListResponse est l'enveloppe des listes paginées
type ListResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
	Stats      interface{} `json:"stats,omitempty"`
}

// UploadResponse est la réponse de l'endpoint d'upload
type UploadResponse struct {
	Success bool     `json:"success"`
	URL     string   `json:"url,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}
