package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/middleware"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/services"
	"portail-citoyen-backend/utils"

	"github.com/gorilla/mux"
)

// maxBodySize borne la taille des corps JSON acceptés
const maxBodySize = 1 << 20

// Deps regroupe les services partagés par les handlers métier
type Deps struct {
	Recorder *services.ActivityRecorder
	Notifier *services.Notifier
	Metrics  *services.Metrics
	Policy   lifecycle.Policy
	Now      func() time.Time
}

func (d *Deps) now() time.Time {
	if d == nil || d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

// activity enregistre une entrée du journal d'activité pour l'utilisateur courant
func (d *Deps) activity(r *http.Request, action, entite string, entiteID int64, details string) {
	if d == nil || d.Recorder == nil {
		return
	}
	entry := models.ActivityLog{
		Action:   action,
		Entite:   entite,
		EntiteID: entiteID,
		Details:  details,
		IP:       middleware.ClientIP(r),
	}
	if claims := middleware.GetUserFromContext(r.Context()); claims != nil {
		entry.UtilisateurID = claims.UserID
		entry.UtilisateurEmail = claims.Email
	}
	d.Recorder.Activity(entry)
}

// RequireMethod vérifie que la méthode HTTP est correcte. Retourne false et écrit l'erreur si non.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		utils.RespondError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return false
	}
	return true
}

// ParseID extrait et valide un identifiant numérique depuis les vars de l'URL
func ParseID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[key], 10, 64)
	if err != nil || id <= 0 {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// decodeAndValidate lit le corps JSON puis applique les règles de validation.
// Retourne false après avoir écrit la réponse d'erreur.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			utils.RespondValidation(w, []models.FieldError{{
				Champ:   typeErr.Field,
				Message: "Type de valeur invalide pour " + typeErr.Field,
			}})
			return false
		}
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidJSONBody)
		return false
	}
	if errs := utils.ValidateStruct(dst); len(errs) > 0 {
		utils.RespondValidation(w, errs)
		return false
	}
	return true
}

// currentUser retourne les claims de l'utilisateur authentifié (nil si anonyme)
func currentUser(r *http.Request) *utils.Claims {
	return middleware.GetUserFromContext(r.Context())
}

// queryBool lit un booléen optionnel dans la query string
func queryBool(r *http.Request, key string) (bool, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// queryInt64 lit un entier optionnel dans la query string
func queryInt64(r *http.Request, key string) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// queryList lit une liste séparée par des virgules ("PUBLIEE,EN_ACTION")
func queryList(r *http.Request, key string) []interface{} {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	var out []interface{}
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// queryDate lit une date (AAAA-MM-JJ ou RFC 3339) ; endOfDay place une date
// sans heure à 23:59:59
func queryDate(r *http.Request, key string, endOfDay bool) (*time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, models.ParisLocation())
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, true
}

func statusList(list []lifecycle.Status) []interface{} {
	out := make([]interface{}, 0, len(list))
	for _, s := range list {
		out = append(out, s)
	}
	return out
}
