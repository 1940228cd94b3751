package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/middleware"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/services"
	"portail-citoyen-backend/utils"

	"github.com/gorilla/mux"
)

// ResourceConfig décrit une entité à cycle de vie exposée par l'API
type ResourceConfig struct {
	Table lifecycle.Table
	// Roles ayant accès au back-office de l'entité (SUPER_ADMIN toujours inclus)
	Roles        []models.Role
	SearchFields []string
	// Filters liste les champs filtrables par égalité via la query string
	Filters []string
	// Public expose les listes, le détail et le compteur de vues publics
	Public         bool
	PublicSort     string
	PublicSortDesc bool
	// Flags active /valider, /publier et /mise-en-avant
	Flags bool
	// Participation active /participer (une inscription par utilisateur)
	Participation bool
}

// ResourceStats accompagne la liste d'administration
type ResourceStats struct {
	Total      int64            `json:"total"`
	ParStatut  map[string]int64 `json:"parStatut"`
	Valides    int64            `json:"valides"`
	MisEnAvant int64            `json:"misEnAvant"`
	ACloturer  int              `json:"aCloturer"`
}

// RecordDetail est la vue d'administration d'un enregistrement
type RecordDetail[T any] struct {
	Enregistrement T                        `json:"enregistrement"`
	Style          lifecycle.Style          `json:"style"`
	Palette        []lifecycle.PaletteEntry `json:"palette"`
	NeedsClosure   bool                     `json:"needsClosure"`
	Politique      lifecycle.Policy         `json:"politique"`
}

// ParticipationResponse est la réponse de /participer
type ParticipationResponse struct {
	DejaInscrit    bool  `json:"dejaInscrit"`
	NbParticipants int64 `json:"nbParticipants"`
}

// ResourceHandler sert les opérations d'une entité à cycle de vie : back-office
// (liste, détail, création, modification, statut, drapeaux, clôture) et
// surface publique (listes, détail, vues, participation)
type ResourceHandler[T models.Record, C models.Creator[T], P models.Patcher] struct {
	cfg            ResourceConfig
	store          database.Store[T]
	participations database.Store[models.Participation]
	machine        *lifecycle.Machine
	scanner        services.ClosureScanner
	deps           *Deps
	prepare        func(ctx context.Context, doc *T) error
	lien           func(rec T) string
}

// NewResourceHandler crée le handler d'une entité
func NewResourceHandler[T models.Record, C models.Creator[T], P models.Patcher](
	cfg ResourceConfig,
	store database.Store[T],
	participations database.Store[models.Participation],
	deps *Deps,
) *ResourceHandler[T, C, P] {
	if deps == nil {
		deps = &Deps{}
	}
	return &ResourceHandler[T, C, P]{
		cfg:            cfg,
		store:          store,
		participations: participations,
		machine:        lifecycle.NewMachine(cfg.Table, deps.Policy),
		scanner:        services.NewClosureScanner[T](store, cfg.Table),
		deps:           deps,
	}
}

// WithPrepare ajoute une étape exécutée avant l'insertion (ex: numéro de réclamation)
func (h *ResourceHandler[T, C, P]) WithPrepare(fn func(ctx context.Context, doc *T) error) *ResourceHandler[T, C, P] {
	h.prepare = fn
	return h
}

// WithAuthorLink personnalise le lien des notifications envoyées à l'auteur
func (h *ResourceHandler[T, C, P]) WithAuthorLink(fn func(rec T) string) *ResourceHandler[T, C, P] {
	h.lien = fn
	return h
}

// Entite retourne le nom de l'entité servie
func (h *ResourceHandler[T, C, P]) Entite() string { return h.cfg.Table.Entite }

// Scanner retourne le scanner de clôture de l'entité
func (h *ResourceHandler[T, C, P]) Scanner() services.ClosureScanner { return h.scanner }

// Machine retourne la machine de statuts de l'entité
func (h *ResourceHandler[T, C, P]) Machine() *lifecycle.Machine { return h.machine }

// RegisterAdminRoutes monte le back-office de l'entité sous admin/{entite}
func (h *ResourceHandler[T, C, P]) RegisterAdminRoutes(admin *mux.Router) {
	r := admin.PathPrefix("/" + h.Entite()).Subrouter()
	r.Use(middleware.RequireRole(h.cfg.Roles...))

	r.HandleFunc("", h.AdminList).Methods("GET", "OPTIONS")
	r.HandleFunc("", h.Create).Methods("POST", "OPTIONS")
	r.HandleFunc("/{id:[0-9]+}", h.AdminGet).Methods("GET", "OPTIONS")
	r.HandleFunc("/{id:[0-9]+}", h.Patch).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/{id:[0-9]+}", h.Delete).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/{id:[0-9]+}/statut", h.ChangeStatus).Methods("POST", "OPTIONS")

	if h.cfg.Flags {
		r.HandleFunc("/{id:[0-9]+}/valider", h.Validate).Methods("POST", "OPTIONS")
		r.HandleFunc("/{id:[0-9]+}/publier", h.Publish).Methods("POST", "OPTIONS")
		r.HandleFunc("/{id:[0-9]+}/mise-en-avant", h.Feature).Methods("POST", "OPTIONS")
	}
	if h.cfg.Table.Cloture != "" {
		r.HandleFunc("/{id:[0-9]+}/cloturer", h.Close).Methods("POST", "OPTIONS")
	}
}

// RegisterPublicRoutes monte la surface publique de l'entité. auth protège la
// participation, views limite le compteur de vues.
func (h *ResourceHandler[T, C, P]) RegisterPublicRoutes(api *mux.Router, auth, views func(http.Handler) http.Handler) {
	if !h.cfg.Public {
		return
	}
	base := "/" + h.Entite()
	api.HandleFunc(base, h.PublicList).Methods("GET", "OPTIONS")
	api.HandleFunc(base+"/{id:[0-9]+}", h.PublicGet).Methods("GET", "OPTIONS")
	api.Handle(base+"/{id:[0-9]+}/vues", views(http.HandlerFunc(h.View))).Methods("POST", "OPTIONS")
	if h.cfg.Participation {
		api.Handle(base+"/{id:[0-9]+}/participer", auth(http.HandlerFunc(h.Participate))).Methods("POST", "OPTIONS")
	}
}

// ========== BACK-OFFICE ==========

// AdminList retourne la liste paginée et filtrée avec les statistiques
func (h *ResourceHandler[T, C, P]) AdminList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	page, limit := utils.ResolvePaging(r, utils.DefaultLimit, utils.MaxLimit)
	filter := h.baseFilter(r)
	filter.Page, filter.Limit = page, limit
	if statuts := queryList(r, "statut"); len(statuts) > 0 {
		filter.In = map[string][]interface{}{database.ChampStatut: statuts}
	}
	if v, ok := queryBool(r, "isValide"); ok {
		filter.Equals[database.ChampIsValide] = v
	}
	if auteur, ok := queryInt64(r, "auteurId"); ok {
		filter.Equals[database.ChampAuteurID] = auteur
	}
	filter.Sort, filter.SortDesc = h.sortParams(r, "", true)

	items, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		log.Printf("❌ Erreur liste %s: %v", h.Entite(), err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	stats, err := h.stats(r.Context())
	if err != nil {
		log.Printf("❌ Erreur statistiques %s: %v", h.Entite(), err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondList(w, nonNil(items), utils.BuildPagination(page, limit, total), stats)
}

func (h *ResourceHandler[T, C, P]) stats(ctx context.Context) (*ResourceStats, error) {
	parStatut, err := h.store.CountBy(ctx, database.ChampStatut, database.ListFilter{})
	if err != nil {
		return nil, err
	}
	stats := &ResourceStats{ParStatut: parStatut}
	for _, n := range parStatut {
		stats.Total += n
	}

	if h.cfg.Flags {
		if stats.Valides, err = h.store.Count(ctx, database.ListFilter{Equals: map[string]interface{}{database.ChampIsValide: true}}); err != nil {
			return nil, err
		}
		if stats.MisEnAvant, err = h.store.Count(ctx, database.ListFilter{Equals: map[string]interface{}{database.ChampIsMisEnAvant: true}}); err != nil {
			return nil, err
		}
	}

	pending, err := h.scanner.PendingClosure(ctx, h.deps.now())
	if err != nil {
		return nil, err
	}
	stats.ACloturer = len(pending)
	return stats, nil
}

// AdminGet retourne un enregistrement avec sa palette de statuts
func (h *ResourceHandler[T, C, P]) AdminGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	utils.RespondSuccess(w, "", h.detail(*rec))
}

func (h *ResourceHandler[T, C, P]) detail(rec T) RecordDetail[T] {
	statut := rec.GetStatut()
	style, _ := h.machine.Display(statut)
	debut, fin := rec.Periode()
	return RecordDetail[T]{
		Enregistrement: rec,
		Style:          style,
		Palette:        h.machine.Palette(statut),
		NeedsClosure:   lifecycle.NeedsClosure(h.deps.now(), debut, fin, statut, h.cfg.Table),
		Politique:      h.machine.Policy(),
	}
}

// Create crée un enregistrement en BROUILLON ou EN_ATTENTE_VALIDATION
func (h *ResourceHandler[T, C, P]) Create(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req C
	if !decodeAndValidate(w, r, &req) {
		return
	}

	statut := req.StatutDemande()
	if statut == "" {
		statut = h.machine.InitialStatus()
	}
	if err := h.machine.CheckCreation(statut); err != nil {
		utils.RespondValidation(w, []models.FieldError{{
			Champ:   "statut",
			Message: fmt.Sprintf("Statut de création invalide: %s", statut),
		}})
		return
	}

	var auteurID int64
	if claims := currentUser(r); claims != nil {
		auteurID = claims.UserID
	}
	doc, errs := req.Build(auteurID)
	if len(errs) > 0 {
		utils.RespondValidation(w, errs)
		return
	}
	if s, ok := any(doc).(models.Statuer); ok {
		s.SetStatut(statut)
	}

	if h.prepare != nil {
		if err := h.prepare(r.Context(), doc); err != nil {
			log.Printf("❌ Erreur préparation %s: %v", h.Entite(), err)
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
			return
		}
	}

	if err := h.store.Create(r.Context(), doc); err != nil {
		if errors.Is(err, database.ErrConflit) {
			utils.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		log.Printf("❌ Erreur création %s: %v", h.Entite(), err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	rec := *doc
	log.Printf("✓ %s créé: #%d (%s)", h.Entite(), rec.GetID(), statut)
	h.deps.activity(r, models.ActionCreation, h.Entite(), rec.GetID(), string(statut))
	if statut == lifecycle.EnAttenteValidation {
		h.alertStaff(rec)
	}

	utils.RespondCreated(w, "Enregistrement créé", rec)
}

// Patch modifie le contenu d'un enregistrement (jamais son statut)
func (h *ResourceHandler[T, C, P]) Patch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPatch) {
		return
	}
	id, ok := ParseID(w, r, "id")
	if !ok {
		return
	}

	var req P
	if !decodeAndValidate(w, r, &req) {
		return
	}
	fields, errs := req.Fields()
	if len(errs) > 0 {
		utils.RespondValidation(w, errs)
		return
	}
	if len(fields) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Aucun champ à modifier")
		return
	}

	updated, err := h.store.UpdateFields(r.Context(), id, fields)
	if err != nil {
		log.Printf("❌ Erreur modification %s #%d: %v", h.Entite(), id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if updated == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrNotFound)
		return
	}

	h.deps.activity(r, models.ActionModification, h.Entite(), id, strings.Join(sortedKeys(fields), ","))
	utils.RespondSuccess(w, "Enregistrement modifié", *updated)
}

// Delete supprime un enregistrement et ses participations
func (h *ResourceHandler[T, C, P]) Delete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	id, ok := ParseID(w, r, "id")
	if !ok {
		return
	}

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		log.Printf("❌ Erreur suppression %s #%d: %v", h.Entite(), id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if !deleted {
		utils.RespondError(w, http.StatusNotFound, constants.ErrNotFound)
		return
	}

	if h.cfg.Participation && h.participations != nil {
		n, err := h.participations.DeleteWhere(r.Context(), database.ListFilter{Equals: map[string]interface{}{
			"entite":   h.Entite(),
			"entiteId": id,
		}})
		if err != nil {
			log.Printf("⚠️  Participations de %s #%d non supprimées: %v", h.Entite(), id, err)
		} else if n > 0 {
			log.Printf("🗑️  %d participation(s) supprimée(s) avec %s #%d", n, h.Entite(), id)
		}
	}

	h.deps.activity(r, models.ActionSuppression, h.Entite(), id, "")
	utils.RespondSuccess(w, "Enregistrement supprimé", nil)
}

// ChangeStatus applique une transition de statut
func (h *ResourceHandler[T, C, P]) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.StatutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rec, ok := h.load(w, r)
	if !ok {
		return
	}

	from := (*rec).GetStatut()
	if err := h.machine.Check(from, req.Statut); err != nil {
		respondLifecycleError(w, err)
		return
	}

	updated, ok := h.updateFrom(w, r, (*rec).GetID(), from, map[string]interface{}{database.ChampStatut: req.Statut})
	if !ok {
		return
	}

	h.afterTransition(r, updated, models.ActionStatut, from, req.Statut)
	utils.RespondSuccess(w, "Statut mis à jour", h.detail(updated))
}

// Validate bascule isValide. Un enregistrement EN_ATTENTE_VALIDATION passe
// aussi au statut validé (ou de rejet) quand la table en définit un.
func (h *ResourceHandler[T, C, P]) Validate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ValidationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rec, ok := h.load(w, r)
	if !ok {
		return
	}

	valide := *req.IsValide
	fields := map[string]interface{}{database.ChampIsValide: valide, database.ChampMotifRejet: ""}
	if !valide {
		fields[database.ChampMotifRejet] = strings.TrimSpace(req.Motif)
	}

	from := (*rec).GetStatut()
	target := h.cfg.Table.Rejet
	if valide {
		target = h.cfg.Table.Valide
	}
	transition := from == lifecycle.EnAttenteValidation && target != ""
	if transition {
		if err := h.machine.Check(from, target); err != nil {
			respondLifecycleError(w, err)
			return
		}
		fields[database.ChampStatut] = target
	}

	updated, ok := h.updateFrom(w, r, (*rec).GetID(), from, fields)
	if !ok {
		return
	}

	if transition {
		h.afterTransition(r, updated, models.ActionValidation, from, target)
	} else {
		h.deps.activity(r, models.ActionValidation, h.Entite(), updated.GetID(), fmt.Sprintf("isValide=%t", valide))
		message := fmt.Sprintf("« %s » a été validé.", updated.Libelle())
		if !valide {
			message = fmt.Sprintf("« %s » n'a pas été validé. %s", updated.Libelle(), req.Motif)
		}
		h.notifyAuthor(r, updated, services.NotifValidation, "Validation", strings.TrimSpace(message))
	}

	utils.RespondSuccess(w, "Validation mise à jour", h.detail(updated))
}

// Publish bascule le drapeau isPublie (sans effet sur le statut)
func (h *ResourceHandler[T, C, P]) Publish(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, database.ChampIsPublie, models.ActionPublication, func() (*bool, bool) {
		var req models.PublicationRequest
		ok := decodeAndValidate(w, r, &req)
		return req.IsPublie, ok
	})
}

// Feature bascule le drapeau isMisEnAvant (sans effet sur le statut)
func (h *ResourceHandler[T, C, P]) Feature(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, database.ChampIsMisEnAvant, models.ActionMiseEnAvant, func() (*bool, bool) {
		var req models.MiseEnAvantRequest
		ok := decodeAndValidate(w, r, &req)
		return req.IsMisEnAvant, ok
	})
}

func (h *ResourceHandler[T, C, P]) toggle(w http.ResponseWriter, r *http.Request, field, action string, decode func() (*bool, bool)) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	value, ok := decode()
	if !ok {
		return
	}
	id, ok := ParseID(w, r, "id")
	if !ok {
		return
	}

	updated, ok := h.update(w, r, id, map[string]interface{}{field: *value})
	if !ok {
		return
	}

	h.deps.activity(r, action, h.Entite(), id, fmt.Sprintf("%s=%t", field, *value))
	utils.RespondSuccess(w, "Enregistrement mis à jour", h.detail(updated))
}

// Close clôture un enregistrement terminé avec son rapport. C'est le seul
// chemin vers le statut de clôture.
func (h *ResourceHandler[T, C, P]) Close(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ClotureRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rec, ok := h.load(w, r)
	if !ok {
		return
	}

	from := (*rec).GetStatut()
	if err := h.machine.CheckClosure(from); err != nil {
		respondLifecycleError(w, err)
		return
	}
	debut, fin := (*rec).Periode()
	if !lifecycle.NeedsClosure(h.deps.now(), debut, fin, from, h.cfg.Table) {
		respondLifecycleError(w, lifecycle.ErrCloturePrematuree)
		return
	}

	cloture := models.Cloture{
		Rapport:             strings.TrimSpace(req.Rapport),
		ParticipationReelle: *req.ParticipationReelle,
		RapportDocumentURL:  req.RapportDocumentURL,
		DateCloture:         h.deps.now(),
	}
	if claims := currentUser(r); claims != nil {
		cloture.ClotureParID = claims.UserID
	}

	updated, ok := h.updateFrom(w, r, (*rec).GetID(), from, map[string]interface{}{
		database.ChampStatut:  h.cfg.Table.Cloture,
		database.ChampCloture: cloture,
	})
	if !ok {
		return
	}

	h.afterTransition(r, updated, models.ActionCloture, from, h.cfg.Table.Cloture)
	utils.RespondSuccess(w, "Clôture enregistrée", h.detail(updated))
}

// ========== SURFACE PUBLIQUE ==========

// PublicList retourne les enregistrements visibles, avec leur badge calculé
func (h *ResourceHandler[T, C, P]) PublicList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	page, limit := utils.ResolvePaging(r, utils.DefaultLimit, utils.MaxLimit)
	filter := h.baseFilter(r)
	filter.Page, filter.Limit = page, limit
	filter.In = map[string][]interface{}{database.ChampStatut: statusList(h.cfg.Table.Publics)}
	if v, ok := queryBool(r, "misEnAvant"); ok && v {
		filter.Equals[database.ChampIsMisEnAvant] = true
	}
	filter.Sort, filter.SortDesc = h.sortParams(r, h.cfg.PublicSort, h.cfg.PublicSortDesc)

	items, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		log.Printf("❌ Erreur liste publique %s: %v", h.Entite(), err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	now := h.deps.now()
	for i := range items {
		h.badge(&items[i], now)
	}

	utils.RespondList(w, nonNil(items), utils.BuildPagination(page, limit, total), nil)
}

// PublicGet retourne un enregistrement visible (404 sinon)
func (h *ResourceHandler[T, C, P]) PublicGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	rec, ok := h.loadPublic(w, r)
	if !ok {
		return
	}
	h.badge(rec, h.deps.now())
	utils.RespondSuccess(w, "", *rec)
}

// View incrémente le compteur de vues (signal indicatif, limité par IP)
func (h *ResourceHandler[T, C, P]) View(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	rec, ok := h.loadPublic(w, r)
	if !ok {
		return
	}
	if err := h.store.Increment(r.Context(), (*rec).GetID(), database.ChampNbVues, 1); err != nil {
		log.Printf("❌ Erreur compteur de vues %s #%d: %v", h.Entite(), (*rec).GetID(), err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	utils.RespondSuccess(w, "", nil)
}

// Participate inscrit l'utilisateur connecté, une seule fois par enregistrement
func (h *ResourceHandler[T, C, P]) Participate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	claims := currentUser(r)
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}
	rec, ok := h.loadPublic(w, r)
	if !ok {
		return
	}
	if h.machine.IsTerminal((*rec).GetStatut()) {
		utils.RespondError(w, http.StatusUnprocessableEntity, "Les inscriptions sont closes")
		return
	}

	id := (*rec).GetID()
	err := h.participations.Create(r.Context(), &models.Participation{
		UtilisateurID: claims.UserID,
		Entite:        h.Entite(),
		EntiteID:      id,
	})
	deja := errors.Is(err, database.ErrConflit)
	if err != nil && !deja {
		log.Printf("❌ Erreur participation %s #%d: %v", h.Entite(), id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	if !deja {
		if err := h.store.Increment(r.Context(), id, database.ChampNbParticipants, 1); err != nil {
			log.Printf("❌ Erreur compteur de participants %s #%d: %v", h.Entite(), id, err)
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
			return
		}
		h.deps.activity(r, models.ActionParticipation, h.Entite(), id, "")
	}

	count, err := h.participations.Count(r.Context(), database.ListFilter{Equals: map[string]interface{}{
		"entite":   h.Entite(),
		"entiteId": id,
	}})
	if err != nil {
		log.Printf("⚠️  Comptage des participants impossible: %v", err)
	}

	message := "Inscription enregistrée"
	if deja {
		message = "Vous êtes déjà inscrit"
	}
	utils.RespondSuccess(w, message, ParticipationResponse{DejaInscrit: deja, NbParticipants: count})
}

// Search alimente la recherche globale sur les enregistrements visibles
func (h *ResourceHandler[T, C, P]) Search(ctx context.Context, q string, limit int) ([]models.SearchResult, int64, error) {
	// Même clé de tri que recordDate, pour une fusion cohérente entre sources
	sortField := database.ChampDateCreation
	if h.cfg.PublicSort == database.ChampDateDebut {
		sortField = database.ChampDateDebut
	}
	items, total, err := h.store.List(ctx, database.ListFilter{
		Limit:        limit,
		Search:       q,
		SearchFields: h.cfg.SearchFields,
		In:           map[string][]interface{}{database.ChampStatut: statusList(h.cfg.Table.Publics)},
		Sort:         sortField,
		SortDesc:     true,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("erreur lors de la recherche dans %s: %w", h.Entite(), err)
	}

	now := h.deps.now()
	results := make([]models.SearchResult, 0, len(items))
	for i := range items {
		rec := items[i]
		res := models.SearchResult{
			Type:  h.Entite(),
			ID:    rec.GetID(),
			Titre: rec.Libelle(),
			URL:   fmt.Sprintf("/%s/%d", h.Entite(), rec.GetID()),
			Date:  recordDate(rec),
		}
		if e, ok := any(rec).(models.Extrayable); ok {
			res.Extrait = e.Extrait()
		}
		if debut, fin := rec.Periode(); !debut.IsZero() {
			badge := lifecycle.ComputeDisplayState(now, debut, fin, rec.GetStatut(), h.cfg.Table)
			res.Badge = &badge
		}
		results = append(results, res)
	}
	return results, total, nil
}

// ========== OUTILS ==========

func (h *ResourceHandler[T, C, P]) baseFilter(r *http.Request) database.ListFilter {
	filter := database.ListFilter{
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		SearchFields: h.cfg.SearchFields,
		Equals:       map[string]interface{}{},
	}
	for _, key := range h.cfg.Filters {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			continue
		}
		if strings.HasSuffix(key, "Id") {
			if id, ok := queryInt64(r, key); ok {
				filter.Equals[key] = id
			}
			continue
		}
		filter.Equals[key] = raw
	}
	return filter
}

// sortParams lit sort=<champ>&order=asc|desc ; seuls les champs connus sont acceptés
func (h *ResourceHandler[T, C, P]) sortParams(r *http.Request, defField string, defDesc bool) (string, bool) {
	field, desc := defField, defDesc
	switch s := r.URL.Query().Get("sort"); s {
	case database.ChampDateCreation, database.ChampDateDebut, database.ChampNbVues, database.ChampStatut, "titre":
		field = s
	}
	switch r.URL.Query().Get("order") {
	case "asc":
		desc = false
	case "desc":
		desc = true
	}
	return field, desc
}

func (h *ResourceHandler[T, C, P]) load(w http.ResponseWriter, r *http.Request) (*T, bool) {
	id, ok := ParseID(w, r, "id")
	if !ok {
		return nil, false
	}
	rec, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("❌ Erreur lecture %s #%d: %v", h.Entite(), id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return nil, false
	}
	if rec == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrNotFound)
		return nil, false
	}
	return rec, true
}

func (h *ResourceHandler[T, C, P]) loadPublic(w http.ResponseWriter, r *http.Request) (*T, bool) {
	rec, ok := h.load(w, r)
	if !ok {
		return nil, false
	}
	if !h.machine.IsPublic((*rec).GetStatut()) {
		utils.RespondError(w, http.StatusNotFound, constants.ErrNotFound)
		return nil, false
	}
	return rec, true
}

func (h *ResourceHandler[T, C, P]) update(w http.ResponseWriter, r *http.Request, id int64, fields map[string]interface{}) (T, bool) {
	var zero T
	updated, err := h.store.UpdateFields(r.Context(), id, fields)
	if err != nil {
		log.Printf("❌ Erreur mise à jour %s #%d: %v", h.Entite(), id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return zero, false
	}
	if updated == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrNotFound)
		return zero, false
	}
	return *updated, true
}

// updateFrom écrit les champs seulement si le statut vaut encore from ;
// sinon une autre requête est passée entre la lecture et l'écriture.
func (h *ResourceHandler[T, C, P]) updateFrom(w http.ResponseWriter, r *http.Request, id int64, from lifecycle.Status, fields map[string]interface{}) (T, bool) {
	var zero T
	updated, err := h.store.UpdateFieldsIf(r.Context(), id, map[string]interface{}{database.ChampStatut: from}, fields)
	if err != nil {
		log.Printf("❌ Erreur mise à jour %s #%d: %v", h.Entite(), id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return zero, false
	}
	if updated == nil {
		log.Printf("⚠️  %s #%d: statut modifié depuis la lecture (%s attendu)", h.Entite(), id, from)
		utils.RespondError(w, http.StatusConflict, constants.ErrStaleRecord)
		return zero, false
	}
	return *updated, true
}

func (h *ResourceHandler[T, C, P]) badge(rec *T, now time.Time) {
	b, ok := any(rec).(models.Badger)
	if !ok {
		return
	}
	debut, fin := (*rec).Periode()
	if debut.IsZero() {
		return
	}
	badge := lifecycle.ComputeDisplayState(now, debut, fin, (*rec).GetStatut(), h.cfg.Table)
	b.SetBadge(&badge)
}

// afterTransition déclenche les effets d'un changement de statut appliqué
func (h *ResourceHandler[T, C, P]) afterTransition(r *http.Request, rec T, action string, from, to lifecycle.Status) {
	log.Printf("✓ %s #%d: %s → %s", h.Entite(), rec.GetID(), from, to)
	h.deps.Metrics.Transition(h.Entite(), string(to))
	h.deps.activity(r, action, h.Entite(), rec.GetID(), fmt.Sprintf("%s → %s", from, to))

	label := string(to)
	if style, err := h.machine.Display(to); err == nil {
		label = style.Label
	}
	typ := services.NotifStatut
	if action == models.ActionCloture {
		typ = services.NotifCloture
	}
	h.notifyAuthor(r, rec, typ, "Statut modifié", fmt.Sprintf("« %s » est maintenant : %s.", rec.Libelle(), label))

	if to == lifecycle.EnAttenteValidation {
		h.alertStaff(rec)
	}
}

// notifyAuthor prévient l'auteur d'un changement fait par quelqu'un d'autre
func (h *ResourceHandler[T, C, P]) notifyAuthor(r *http.Request, rec T, typ, titre, message string) {
	if h.deps.Notifier == nil {
		return
	}
	auteur := rec.GetAuteurID()
	if claims := currentUser(r); auteur == 0 || (claims != nil && claims.UserID == auteur) {
		return
	}

	lien := fmt.Sprintf("/admin/%s/%d", h.Entite(), rec.GetID())
	if h.lien != nil {
		lien = h.lien(rec)
	}
	if _, err := h.deps.Notifier.Notify(r.Context(), auteur, typ, titre, message, lien); err != nil {
		log.Printf("⚠️  Notification à l'auteur %d impossible: %v", auteur, err)
	}
}

// alertStaff envoie une alerte FCM aux validateurs, en arrière-plan
func (h *ResourceHandler[T, C, P]) alertStaff(rec T) {
	if h.deps.Notifier == nil {
		return
	}
	roles := validatorRoles(h.cfg.Roles)
	titre := "Validation en attente"
	message := fmt.Sprintf("%s : « %s » attend une validation.", h.Entite(), rec.Libelle())
	lien := fmt.Sprintf("/admin/%s/%d", h.Entite(), rec.GetID())

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := h.deps.Notifier.NotifyStaff(ctx, roles, titre, message, lien); err != nil {
			log.Printf("⚠️  Alerte staff impossible: %v", err)
		}
	}()
}

// validatorRoles retient les rôles habilités à valider (hors agents)
func validatorRoles(roles []models.Role) []models.Role {
	out := []models.Role{models.RoleSuperAdmin}
	for _, r := range roles {
		if r == models.RoleModerateur || r == models.RoleAdmin {
			out = append(out, r)
		}
	}
	return out
}

// respondLifecycleError traduit une erreur du cycle de vie en réponse HTTP
func respondLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrStatutInconnu):
		utils.RespondValidation(w, []models.FieldError{{Champ: "statut", Message: capitalize(err.Error())}})
	case errors.Is(err, lifecycle.ErrStatutIdentique):
		utils.RespondError(w, http.StatusConflict, capitalize(err.Error()))
	case errors.Is(err, lifecycle.ErrCloturePrematuree):
		utils.RespondError(w, http.StatusUnprocessableEntity, constants.ErrClosureNotDue)
	case errors.Is(err, lifecycle.ErrTransitionRefusee),
		errors.Is(err, lifecycle.ErrClotureRequise),
		errors.Is(err, lifecycle.ErrClotureIndisponible):
		utils.RespondError(w, http.StatusUnprocessableEntity, capitalize(err.Error()))
	default:
		log.Printf("❌ Erreur cycle de vie: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func recordDate(rec models.Record) time.Time {
	if debut, _ := rec.Periode(); !debut.IsZero() {
		return debut
	}
	if c, ok := rec.(interface{ CreeLe() time.Time }); ok {
		return c.CreeLe()
	}
	return time.Time{}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// nonNil garantit un tableau JSON vide plutôt que null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
