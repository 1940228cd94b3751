package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/middleware"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"
)

// AuthHandler gère les requêtes d'authentification
type AuthHandler struct {
	users      database.Store[models.Utilisateur]
	parametres database.Store[models.Parametres]
	jwtSecret  string
	deps       *Deps
}

// NewAuthHandler crée une nouvelle instance de AuthHandler
func NewAuthHandler(users database.Store[models.Utilisateur], parametres database.Store[models.Parametres], jwtSecret string, deps *Deps) *AuthHandler {
	return &AuthHandler{
		users:      users,
		parametres: parametres,
		jwtSecret:  jwtSecret,
		deps:       deps,
	}
}

// Register crée un compte citoyen à partir de l'accumulateur de l'assistant d'inscription
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	settings, err := LoadParametres(r.Context(), h.parametres)
	if err != nil {
		log.Printf("❌ Erreur lecture des paramètres: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if !settings.RegistrationEnabled {
		utils.RespondError(w, http.StatusForbidden, constants.ErrRegistrationDisabled)
		return
	}

	var req models.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := h.users.FindOne(r.Context(), map[string]interface{}{database.ChampEmail: email})
	if err != nil {
		log.Printf("❌ Erreur lors de la vérification de l'email: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if existing != nil {
		utils.RespondError(w, http.StatusConflict, constants.ErrEmailTaken)
		return
	}

	hashed, err := utils.HashPassword(req.MotDePasse)
	if err != nil {
		log.Printf("❌ Erreur lors du hachage du mot de passe: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	user := &models.Utilisateur{
		Civilite:      req.Civilite,
		Prenom:        strings.TrimSpace(req.Prenom),
		Nom:           strings.TrimSpace(req.Nom),
		DateNaissance: req.DateNaissance,
		Email:         email,
		Telephone:     req.Telephone,
		CommuneID:     req.CommuneID,
		Adresse:       req.Adresse,
		MotDePasse:    hashed,
		Role:          models.RoleCitoyen,
		Actif:         true,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, database.ErrConflit) {
			utils.RespondError(w, http.StatusConflict, constants.ErrEmailTaken)
			return
		}
		log.Printf("❌ Erreur lors de la création de l'utilisateur: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	h.respondSession(w, r, user, http.StatusCreated, models.ActionInscription)
	log.Printf("✓ Nouvel utilisateur inscrit: %s (ID: %d)", user.Email, user.ID)
}

// Login authentifie un utilisateur par email et mot de passe
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.FindOne(r.Context(), map[string]interface{}{
		database.ChampEmail: strings.ToLower(strings.TrimSpace(req.Email)),
	})
	if err != nil {
		log.Printf("❌ Erreur lors de la recherche de l'utilisateur: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if user == nil || !utils.CheckPassword(user.MotDePasse, req.MotDePasse) {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrBadCredentials)
		return
	}
	if !user.Actif {
		utils.RespondError(w, http.StatusForbidden, constants.ErrAccountDisabled)
		return
	}

	now := h.deps.now()
	if updated, err := h.users.UpdateFields(r.Context(), user.ID, map[string]interface{}{"derniereConnexion": now}); err != nil {
		log.Printf("⚠️  Date de connexion non enregistrée pour %d: %v", user.ID, err)
	} else if updated != nil {
		user = updated
	}

	h.respondSession(w, r, user, http.StatusOK, models.ActionConnexion)
	log.Printf("✓ Connexion réussie: %s", user.Email)
}

// Me retourne le compte de l'utilisateur connecté
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	claims := currentUser(r)
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	user, err := h.users.FindByID(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("❌ Erreur lors de la lecture du compte %d: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrUserNotFound)
		return
	}
	utils.RespondSuccess(w, "", *user)
}

func (h *AuthHandler) respondSession(w http.ResponseWriter, r *http.Request, user *models.Utilisateur, status int, action string) {
	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, h.jwtSecret)
	if err != nil {
		log.Printf("❌ Erreur lors de la génération du token: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	r = r.WithContext(middleware.WithUser(r.Context(), &utils.Claims{UserID: user.ID, Email: user.Email, Role: user.Role}))
	h.deps.activity(r, action, database.CollectionUtilisateurs, user.ID, "")

	utils.RespondJSON(w, status, models.SuccessResponse{
		Success: true,
		Data:    models.AuthResponse{Token: token, Utilisateur: *user},
	})
}
