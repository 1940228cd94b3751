package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"
)

// UserHandler gère les comptes depuis le back-office (super-administrateur)
type UserHandler struct {
	users database.Store[models.Utilisateur]
	deps  *Deps
}

// NewUserHandler crée un nouveau UserHandler
func NewUserHandler(users database.Store[models.Utilisateur], deps *Deps) *UserHandler {
	return &UserHandler{users: users, deps: deps}
}

// UserStats accompagne la liste des utilisateurs
type UserStats struct {
	Total   int64            `json:"total"`
	ParRole map[string]int64 `json:"parRole"`
}

// List retourne les utilisateurs, filtrables par rôle, état et recherche
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	page, limit := utils.ResolvePaging(r, 20, utils.MaxLimit)
	filter := database.ListFilter{
		Page:         page,
		Limit:        limit,
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		SearchFields: []string{"nom", "prenom", database.ChampEmail},
		Equals:       map[string]interface{}{},
		Sort:         database.ChampDateCreation,
		SortDesc:     true,
	}
	if role := r.URL.Query().Get("role"); role != "" {
		filter.Equals[database.ChampRole] = strings.ToUpper(role)
	}
	if actif, ok := queryBool(r, "actif"); ok {
		filter.Equals["actif"] = actif
	}

	users, total, err := h.users.List(r.Context(), filter)
	if err != nil {
		log.Printf("❌ Erreur liste des utilisateurs: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	parRole, err := h.users.CountBy(r.Context(), database.ChampRole, database.ListFilter{})
	if err != nil {
		log.Printf("❌ Erreur comptage des utilisateurs: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondList(w, nonNil(users), utils.BuildPagination(page, limit, total), UserStats{Total: total, ParRole: parRole})
}

// Patch modifie le rôle ou l'état d'un compte
func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPatch) {
		return
	}
	id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req models.UtilisateurPatch
	if !decodeAndValidate(w, r, &req) {
		return
	}
	fields := map[string]interface{}{}
	if req.Role != nil {
		fields[database.ChampRole] = *req.Role
	}
	if req.Actif != nil {
		fields["actif"] = *req.Actif
	}
	if len(fields) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Aucun champ à modifier")
		return
	}

	updated, err := h.users.UpdateFields(r.Context(), id, fields)
	if err != nil {
		log.Printf("❌ Erreur mise à jour de l'utilisateur %d: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if updated == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrUserNotFound)
		return
	}

	details := fmt.Sprintf("role=%s actif=%t", updated.Role, updated.Actif)
	log.Printf("✓ Utilisateur %s modifié (%s)", updated.Email, details)
	h.deps.activity(r, models.ActionModification, database.CollectionUtilisateurs, id, details)
	utils.RespondSuccess(w, "Utilisateur modifié", updated)
}

// Delete supprime un compte
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	id, ok := h.target(w, r)
	if !ok {
		return
	}

	deleted, err := h.users.Delete(r.Context(), id)
	if err != nil {
		log.Printf("❌ Erreur suppression de l'utilisateur %d: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if !deleted {
		utils.RespondError(w, http.StatusNotFound, constants.ErrUserNotFound)
		return
	}

	h.deps.activity(r, models.ActionSuppression, database.CollectionUtilisateurs, id, "")
	utils.RespondSuccess(w, "Utilisateur supprimé", nil)
}

// target lit l'identifiant visé et refuse toute action sur son propre compte
func (h *UserHandler) target(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := ParseID(w, r, "id")
	if !ok {
		return 0, false
	}
	if claims := currentUser(r); claims != nil && claims.UserID == id {
		utils.RespondError(w, http.StatusForbidden, constants.ErrSelfModification)
		return 0, false
	}
	return id, true
}
