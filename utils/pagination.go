package utils

import (
	"net/http"
	"strconv"

	"portail-citoyen-backend/models"
)

// Bornes de pagination
const (
	DefaultLimit = 12
	MaxLimit     = 100
)

// ResolvePaging lit page et limit depuis la query string (page >= 1, limit borné)
func ResolvePaging(r *http.Request, defaultLimit, maxLimit int) (page, limit int) {
	q := r.URL.Query()

	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// BuildPagination construit le bloc de pagination d'une réponse de liste
func BuildPagination(page, limit int, total int64) models.Pagination {
	totalPages := 1
	if limit > 0 && total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
