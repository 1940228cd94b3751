package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"
)

// SettingsHandler gère les paramètres globaux du portail
type SettingsHandler struct {
	store database.Store[models.Parametres]
	deps  *Deps
}

// NewSettingsHandler crée un nouveau SettingsHandler
func NewSettingsHandler(store database.Store[models.Parametres], deps *Deps) *SettingsHandler {
	return &SettingsHandler{store: store, deps: deps}
}

// DefaultParametres sont les paramètres appliqués tant qu'aucun n'a été enregistré
func DefaultParametres() models.Parametres {
	p := models.Parametres{RegistrationEnabled: true}
	p.ID = models.ParametresID
	return p
}

// LoadParametres lit le document de paramètres (valeurs par défaut s'il n'existe pas)
func LoadParametres(ctx context.Context, store database.Store[models.Parametres]) (models.Parametres, error) {
	p, err := store.FindByID(ctx, models.ParametresID)
	if err != nil {
		return models.Parametres{}, err
	}
	if p == nil {
		return DefaultParametres(), nil
	}
	return *p, nil
}

// Public retourne les paramètres visibles sans authentification
func (h *SettingsHandler) Public(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	p, err := LoadParametres(r.Context(), h.store)
	if err != nil {
		log.Printf("❌ Erreur lecture des paramètres: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	utils.RespondSuccess(w, "", models.PublicSettings{
		RegistrationEnabled: p.RegistrationEnabled,
		Maintenance:         p.Maintenance,
		MessageMaintenance:  p.MessageMaintenance,
	})
}

// Get retourne les paramètres complets (super-administrateur)
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	p, err := LoadParametres(r.Context(), h.store)
	if err != nil {
		log.Printf("❌ Erreur lecture des paramètres: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	utils.RespondSuccess(w, "", p)
}

// Patch modifie les paramètres ; le document est créé au premier enregistrement
func (h *SettingsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPatch) {
		return
	}

	var req models.ParametresPatch
	if !decodeAndValidate(w, r, &req) {
		return
	}

	fields := map[string]interface{}{}
	if req.RegistrationEnabled != nil {
		fields["registrationEnabled"] = *req.RegistrationEnabled
	}
	if req.Maintenance != nil {
		fields["maintenance"] = *req.Maintenance
	}
	if req.MessageMaintenance != nil {
		fields["messageMaintenance"] = strings.TrimSpace(*req.MessageMaintenance)
	}
	if len(fields) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Aucun paramètre à modifier")
		return
	}
	claims := currentUser(r)
	if claims != nil {
		fields["modifieParId"] = claims.UserID
	}

	ctx := r.Context()
	existing, err := h.store.FindByID(ctx, models.ParametresID)
	if err != nil {
		log.Printf("❌ Erreur lecture des paramètres: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if existing == nil {
		doc := DefaultParametres()
		if err := h.store.Create(ctx, &doc); err != nil {
			log.Printf("❌ Erreur création des paramètres: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
			return
		}
	}

	updated, err := h.store.UpdateFields(ctx, models.ParametresID, fields)
	if err != nil || updated == nil {
		log.Printf("❌ Erreur mise à jour des paramètres: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("⚙️  Paramètres modifiés: inscriptions=%t maintenance=%t", updated.RegistrationEnabled, updated.Maintenance)
	h.deps.activity(r, models.ActionParametres, database.CollectionParametres, models.ParametresID, strings.Join(sortedKeys(fields), ","))
	utils.RespondSuccess(w, "Paramètres enregistrés", *updated)
}
