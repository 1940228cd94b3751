package handlers

import (
	"log"
	"net/http"
	"strings"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"
)

// ReferenceHandler gère les données de référence : établissements et communes
type ReferenceHandler struct {
	etablissements database.Store[models.Etablissement]
	communes       database.Store[models.Commune]
	deps           *Deps
}

// NewReferenceHandler crée un nouveau ReferenceHandler
func NewReferenceHandler(etablissements database.Store[models.Etablissement], communes database.Store[models.Commune], deps *Deps) *ReferenceHandler {
	return &ReferenceHandler{etablissements: etablissements, communes: communes, deps: deps}
}

// ========== ÉTABLISSEMENTS ==========

// PublicEtablissements liste les établissements validés
func (h *ReferenceHandler) PublicEtablissements(w http.ResponseWriter, r *http.Request) {
	h.listEtablissements(w, r, true)
}

// AdminEtablissements liste tous les établissements, filtrables par isValide
func (h *ReferenceHandler) AdminEtablissements(w http.ResponseWriter, r *http.Request) {
	h.listEtablissements(w, r, false)
}

func (h *ReferenceHandler) listEtablissements(w http.ResponseWriter, r *http.Request, public bool) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	page, limit := utils.ResolvePaging(r, utils.MaxLimit, utils.MaxLimit)
	filter := database.ListFilter{
		Page:         page,
		Limit:        limit,
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		SearchFields: []string{"nom", "adresse"},
		Equals:       map[string]interface{}{},
		Sort:         "nom",
	}
	if t := r.URL.Query().Get("type"); t != "" {
		filter.Equals["type"] = t
	}
	if commune, ok := queryInt64(r, "communeId"); ok {
		filter.Equals["communeId"] = commune
	}
	if public {
		filter.Equals[database.ChampIsValide] = true
	} else if v, ok := queryBool(r, "isValide"); ok {
		filter.Equals[database.ChampIsValide] = v
	}

	items, total, err := h.etablissements.List(r.Context(), filter)
	if err != nil {
		log.Printf("❌ Erreur liste des établissements: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	utils.RespondList(w, nonNil(items), utils.BuildPagination(page, limit, total), nil)
}

// CreateEtablissement crée un établissement (non validé)
func (h *ReferenceHandler) CreateEtablissement(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.EtablissementRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var auteurID int64
	if claims := currentUser(r); claims != nil {
		auteurID = claims.UserID
	}
	etab := req.Build(auteurID)
	if err := h.etablissements.Create(r.Context(), etab); err != nil {
		log.Printf("❌ Erreur création d'établissement: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	h.deps.activity(r, models.ActionCreation, database.CollectionEtablissements, etab.ID, etab.Nom)
	utils.RespondCreated(w, "Établissement créé", etab)
}

// GetEtablissement retourne un établissement
func (h *ReferenceHandler) GetEtablissement(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	id, ok := ParseID(w, r, "id")
	if !ok {
		return
	}
	etab, err := h.etablissements.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("❌ Erreur lecture de l'établissement %d: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if etab == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrNotFound)
		return
	}
	utils.RespondSuccess(w, "", etab)
}

// PatchEtablissement modifie un établissement
func (h *ReferenceHandler) PatchEtablissement(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPatch) {
		return
	}
	id, ok := ParseID(w, r, "id")
	if !ok {
		return
	}

	var req models.EtablissementPatch
	if !decodeAndValidate(w, r, &req) {
		return
	}
	fields, _ := req.Fields()
	if len(fields) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Aucun champ à modifier")
		return
	}
	h.updateEtablissement(w, r, id, fields, models.ActionModification, "Établissement modifié")
}

// ValidateEtablissement valide ou rejette un établissement
func (h *ReferenceHandler) ValidateEtablissement(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	id, ok := ParseID(w, r, "id")
	if !ok {
		return
	}

	var req models.ValidationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	fields := map[string]interface{}{
		database.ChampIsValide:   *req.IsValide,
		database.ChampMotifRejet: "",
	}
	if !*req.IsValide {
		fields[database.ChampMotifRejet] = strings.TrimSpace(req.Motif)
	}
	h.updateEtablissement(w, r, id, fields, models.ActionValidation, "Validation mise à jour")
}

func (h *ReferenceHandler) updateEtablissement(w http.ResponseWriter, r *http.Request, id int64, fields map[string]interface{}, action, message string) {
	updated, err := h.etablissements.UpdateFields(r.Context(), id, fields)
	if err != nil {
		log.Printf("❌ Erreur mise à jour de l'établissement %d: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if updated == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrNotFound)
		return
	}
	h.deps.activity(r, action, database.CollectionEtablissements, id, strings.Join(sortedKeys(fields), ","))
	utils.RespondSuccess(w, message, updated)
}

// DeleteEtablissement supprime un établissement
func (h *ReferenceHandler) DeleteEtablissement(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	id, ok := ParseID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.etablissements.Delete(r.Context(), id)
	if err != nil {
		log.Printf("❌ Erreur suppression de l'établissement %d: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if !deleted {
		utils.RespondError(w, http.StatusNotFound, constants.ErrNotFound)
		return
	}
	h.deps.activity(r, models.ActionSuppression, database.CollectionEtablissements, id, "")
	utils.RespondSuccess(w, "Établissement supprimé", nil)
}

// ========== COMMUNES ==========

// ListCommunes liste les communes (recherche sur le nom ou le code postal)
func (h *ReferenceHandler) ListCommunes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	page, limit := utils.ResolvePaging(r, utils.MaxLimit, utils.MaxLimit)
	items, total, err := h.communes.List(r.Context(), database.ListFilter{
		Page:         page,
		Limit:        limit,
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		SearchFields: []string{"nom", "codePostal"},
		Sort:         "nom",
	})
	if err != nil {
		log.Printf("❌ Erreur liste des communes: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	utils.RespondList(w, nonNil(items), utils.BuildPagination(page, limit, total), nil)
}

// CreateCommune ajoute une commune
func (h *ReferenceHandler) CreateCommune(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.CommuneRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	commune := &models.Commune{
		Nom:        strings.TrimSpace(req.Nom),
		CodePostal: req.CodePostal,
		CodeInsee:  req.CodeInsee,
		Region:     strings.TrimSpace(req.Region),
	}
	if err := h.communes.Create(r.Context(), commune); err != nil {
		log.Printf("❌ Erreur création de commune: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	h.deps.activity(r, models.ActionCreation, database.CollectionCommunes, commune.ID, commune.Nom)
	utils.RespondCreated(w, "Commune créée", commune)
}
