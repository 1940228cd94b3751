package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"

	"github.com/gorilla/mux"
)

// ReclamationHandler gère le dépôt et le suivi public des réclamations
type ReclamationHandler struct {
	store   database.Store[models.Reclamation]
	machine *lifecycle.Machine
	deps    *Deps
}

// NewReclamationHandler crée un nouveau ReclamationHandler
func NewReclamationHandler(store database.Store[models.Reclamation], deps *Deps) *ReclamationHandler {
	if deps == nil {
		deps = &Deps{}
	}
	return &ReclamationHandler{
		store:   store,
		machine: lifecycle.NewMachine(lifecycle.Reclamations, deps.Policy),
		deps:    deps,
	}
}

// Submit enregistre une réclamation citoyenne (connecté ou non)
func (h *ReclamationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ReclamationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var auteurID int64
	if claims := currentUser(r); claims != nil {
		auteurID = claims.UserID
	}
	rec, _ := req.Build(auteurID)
	rec.SetStatut(h.machine.InitialStatus())

	// Le numéro est unique : une collision est retentée
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		rec.Numero = NumeroReclamation(h.deps.now().Year())
		if err = h.store.Create(r.Context(), rec); !errors.Is(err, database.ErrConflit) {
			break
		}
	}
	if err != nil {
		log.Printf("❌ Erreur dépôt de réclamation: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("📮 Réclamation déposée: %s (%s)", rec.Numero, rec.Categorie)
	h.deps.activity(r, models.ActionCreation, lifecycle.EntiteReclamations, rec.ID, rec.Numero)

	if h.deps.Notifier != nil {
		numero, objet := rec.Numero, rec.Objet
		lien := fmt.Sprintf("/admin/%s/%d", lifecycle.EntiteReclamations, rec.ID)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := h.deps.Notifier.NotifyStaff(ctx, []models.Role{models.RoleAgent, models.RoleAdmin, models.RoleSuperAdmin},
				"Nouvelle réclamation", numero+" : "+objet, lien); err != nil {
				log.Printf("⚠️  Alerte réclamation impossible: %v", err)
			}
		}()
	}

	utils.RespondCreated(w, "Réclamation enregistrée, conservez votre numéro de suivi", h.suivi(*rec))
}

// Track retourne l'état d'une réclamation à partir de son numéro
func (h *ReclamationHandler) Track(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	numero := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["numero"]))
	if numero == "" {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidID)
		return
	}

	rec, err := h.store.FindOne(r.Context(), map[string]interface{}{"numero": numero})
	if err != nil {
		log.Printf("❌ Erreur suivi de réclamation %s: %v", numero, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if rec == nil {
		utils.RespondError(w, http.StatusNotFound, "Aucune réclamation ne correspond à ce numéro")
		return
	}

	utils.RespondSuccess(w, "", h.suivi(*rec))
}

func (h *ReclamationHandler) suivi(rec models.Reclamation) models.ReclamationSuivi {
	style, _ := h.machine.Display(rec.Statut)
	return models.ReclamationSuivi{
		Numero:           rec.Numero,
		Objet:            rec.Objet,
		Categorie:        rec.Categorie,
		Statut:           rec.Statut,
		Style:            style,
		Reponse:          rec.Reponse,
		DateCreation:     rec.DateCreation,
		DateModification: rec.DateModification,
	}
}
