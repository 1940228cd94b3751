// Package client est la bibliothèque cliente du portail citoyen : appels à
// l'API, listes paginées, transitions de statut, assistant d'inscription,
// compteurs et stockage local.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"
)

// DefaultTimeout est le délai par défaut d'un appel à l'API
const DefaultTimeout = 15 * time.Second

// APIError est l'unique forme d'erreur retournée par le client
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []models.FieldError
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsNetwork indique une erreur réseau (aucune réponse du serveur)
func (e *APIError) IsNetwork() bool { return e.Code == constants.CodeNetwork }

// AsAPIError extrait une *APIError d'une erreur
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Message retourne le message à afficher pour une erreur
func Message(err error) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return constants.ErrGeneric
}

// Response est l'enveloppe de succès décodée
type Response struct {
	Message    string
	Data       json.RawMessage
	Pagination models.Pagination
	Stats      json.RawMessage
}

// Decode lit le champ data dans dst
func (r *Response) Decode(dst interface{}) error {
	if dst == nil || len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Data, dst); err != nil {
		return fmt.Errorf("erreur lors du décodage de la réponse: %w", err)
	}
	return nil
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Pagination models.Pagination `json:"pagination"`
	Stats      json.RawMessage   `json:"stats"`
	Error      *models.ErrorBody `json:"error"`
}

// Client appelle l'API du portail
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New crée un client pour l'API servie à baseURL
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken définit le JWT envoyé avec chaque requête (vide = anonyme)
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token retourne le JWT courant
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Authenticated indique si une session est ouverte
func (c *Client) Authenticated() bool {
	return c.Token() != ""
}

// Get exécute un GET et décode data dans out
func (c *Client) Get(ctx context.Context, path string, out interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post exécute un POST JSON et décode data dans out
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Patch exécute un PATCH JSON et décode data dans out
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete exécute un DELETE
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// Do exécute une requête et décode l'enveloppe de l'API
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) (*Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("erreur lors de l'encodage de la requête: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création de la requête: %w", err)
	}
	req.Header.Set("Accept", constants.HeaderApplicationJSON)
	if body != nil {
		req.Header.Set(constants.HeaderContentType, constants.HeaderApplicationJSON)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Une annulation n'est pas une panne réseau
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{Code: constants.CodeNetwork, Message: constants.ErrGeneric, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Code: constants.CodeNetwork, Message: constants.ErrGeneric, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Code:    utils.CodeForStatus(resp.StatusCode),
			Message: constants.ErrGeneric,
		}
		if decodeErr == nil && env.Error != nil {
			if env.Error.Code != "" {
				apiErr.Code = env.Error.Code
			}
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
			apiErr.Details = env.Error.Details
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("réponse illisible (%d): %w", resp.StatusCode, decodeErr)
	}

	result := &Response{
		Message:    env.Message,
		Data:       env.Data,
		Pagination: env.Pagination,
		Stats:      env.Stats,
	}
	if err := result.Decode(out); err != nil {
		return nil, err
	}
	return result, nil
}

// ========== ENDPOINTS ==========

// PublicSettings lit les paramètres publics (inscriptions ouvertes, maintenance)
func (c *Client) PublicSettings(ctx context.Context) (*models.PublicSettings, error) {
	var settings models.PublicSettings
	if _, err := c.Get(ctx, "/api/settings", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Navigation lit le menu visible pour la session courante
func (c *Client) Navigation(ctx context.Context) (*models.Navigation, error) {
	var nav models.Navigation
	if _, err := c.Get(ctx, "/api/navigation", &nav); err != nil {
		return nil, err
	}
	return &nav, nil
}

// Login ouvre une session et conserve le token
func (c *Client) Login(ctx context.Context, email, motDePasse string) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	req := models.LoginRequest{Email: email, MotDePasse: motDePasse}
	if _, err := c.Post(ctx, "/api/auth/login", req, &auth); err != nil {
		return nil, err
	}
	c.SetToken(auth.Token)
	return &auth, nil
}

// Register crée un compte et conserve le token
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	if _, err := c.Post(ctx, "/api/auth/register", req, &auth); err != nil {
		return nil, err
	}
	c.SetToken(auth.Token)
	return &auth, nil
}

// ChangeStatus demande une transition de statut au back-office
func (c *Client) ChangeStatus(ctx context.Context, entite string, id int64, statut string) (*Response, error) {
	path := fmt.Sprintf("/api/admin/%s/%d/statut", entite, id)
	return c.Post(ctx, path, map[string]string{"statut": statut}, nil)
}

// UnreadNotifications retourne le nombre de notifications non lues
func (c *Client) UnreadNotifications(ctx context.Context) (int64, error) {
	resp, err := c.Get(ctx, "/api/notifications?lu=false&limit=1", nil)
	if err != nil {
		return 0, err
	}
	return resp.Pagination.Total, nil
}
