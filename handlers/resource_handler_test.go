package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/models"
)

func evenementBody() map[string]interface{} {
	return map[string]interface{}{
		"titre":       "Fête de la musique",
		"description": "Concerts dans tout le centre-ville",
		"type":        "CULTURE",
		"lieu":        "Place de la mairie",
		"dateDebut":   "2026-03-12T18:00:00",
		"capacite":    200,
	}
}

func TestResourceHandler_cycleDeVieEvenement(t *testing.T) {
	env := newTestEnv(t, lifecycle.PolicyPermissive)
	agent, moderateur := env.token(idAgent), env.token(idModerateur)

	// Accès
	expectStatus(t, env.do(http.MethodPost, "/api/admin/evenements", "", evenementBody()), http.StatusUnauthorized)
	expectStatus(t, env.do(http.MethodPost, "/api/admin/evenements", env.token(idCitoyen), evenementBody()), http.StatusForbidden)

	// Statut de création hors liste
	body := evenementBody()
	body["statut"] = "PUBLIEE"
	rr := env.do(http.MethodPost, "/api/admin/evenements", agent, body)
	expectStatus(t, rr, http.StatusBadRequest)
	if resp := decode(t, rr, nil); resp.Error.Code != constants.CodeValidation {
		t.Errorf("code = %s, attendu %s", resp.Error.Code, constants.CodeValidation)
	}

	// Création en brouillon par défaut
	var ev models.Evenement
	rr = env.do(http.MethodPost, "/api/admin/evenements", agent, evenementBody())
	expectStatus(t, rr, http.StatusCreated)
	decode(t, rr, &ev)
	if ev.ID == 0 || ev.Statut != lifecycle.Brouillon || ev.AuteurID != idAgent {
		t.Fatalf("événement créé inattendu: %+v", ev)
	}
	base := fmt.Sprintf("/api/admin/evenements/%d", ev.ID)

	// Un brouillon n'est pas visible publiquement
	expectStatus(t, env.do(http.MethodGet, fmt.Sprintf("/api/evenements/%d", ev.ID), "", nil), http.StatusNotFound)

	// Soumission à validation par l'auteur : pas de notification
	expectStatus(t, env.do(http.MethodPost, base+"/statut", agent, map[string]string{"statut": "EN_ATTENTE_VALIDATION"}), http.StatusOK)
	if n, _ := env.stores.Notifications.Count(context.Background(), database.ListFilter{}); n != 0 {
		t.Errorf("aucune notification attendue pour un changement fait par l'auteur, %d trouvée(s)", n)
	}

	// Validation par un modérateur : transition vers VALIDEE et notification à l'auteur
	var detail RecordDetail[models.Evenement]
	rr = env.do(http.MethodPost, base+"/valider", moderateur, map[string]bool{"isValide": true})
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &detail)
	if detail.Enregistrement.Statut != lifecycle.Validee || !detail.Enregistrement.IsValide {
		t.Errorf("après validation: statut=%s isValide=%t", detail.Enregistrement.Statut, detail.Enregistrement.IsValide)
	}
	n, _ := env.stores.Notifications.Count(context.Background(), database.ListFilter{Equals: map[string]interface{}{
		database.ChampUtilisateurID: idAgent,
	}})
	if n != 1 {
		t.Errorf("l'auteur devrait avoir 1 notification, %d trouvée(s)", n)
	}

	// Le statut de clôture ne s'obtient pas par l'endpoint de statut
	rr = env.do(http.MethodPost, base+"/statut", moderateur, map[string]string{"statut": "CLOTUREE"})
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	// Statut identique
	expectStatus(t, env.do(http.MethodPost, base+"/statut", moderateur, map[string]string{"statut": "VALIDEE"}), http.StatusConflict)

	// Statut inconnu
	expectStatus(t, env.do(http.MethodPost, base+"/statut", moderateur, map[string]string{"statut": "PUBLIE"}), http.StatusBadRequest)

	// Publication
	expectStatus(t, env.do(http.MethodPost, base+"/statut", moderateur, map[string]string{"statut": "PUBLIEE"}), http.StatusOK)

	// Clôture avant la fin de l'événement
	cloture := map[string]interface{}{"rapport": "Belle affluence malgré la pluie", "participationReelle": 180}
	rr = env.do(http.MethodPost, base+"/cloturer", moderateur, cloture)
	expectStatus(t, rr, http.StatusUnprocessableEntity)
	if resp := decode(t, rr, nil); resp.Error.Message != constants.ErrClosureNotDue {
		t.Errorf("message = %q, attendu %q", resp.Error.Message, constants.ErrClosureNotDue)
	}

	// Rapport incomplet
	expectStatus(t, env.do(http.MethodPost, base+"/cloturer", moderateur, map[string]string{"rapport": "court"}), http.StatusBadRequest)

	// Deux jours après : l'événement est à clôturer
	env.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	rr = env.do(http.MethodGet, base, moderateur, nil)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &detail)
	if !detail.NeedsClosure {
		t.Error("l'événement terminé devrait être marqué à clôturer")
	}

	rr = env.do(http.MethodPost, base+"/cloturer", moderateur, cloture)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &detail)
	got := detail.Enregistrement
	if got.Statut != lifecycle.Cloturee {
		t.Errorf("statut après clôture = %s, attendu CLOTUREE", got.Statut)
	}
	if got.Cloture == nil || got.Cloture.ParticipationReelle != 180 || got.Cloture.ClotureParID != idModerateur {
		t.Errorf("rapport de clôture inattendu: %+v", got.Cloture)
	}
	if detail.NeedsClosure {
		t.Error("un événement clôturé ne doit plus être à clôturer")
	}

	// Un statut terminal ne se clôture pas deux fois
	expectStatus(t, env.do(http.MethodPost, base+"/cloturer", moderateur, cloture), http.StatusUnprocessableEntity)

	// Journal d'activité
	env.recorder.Flush()
	actions, _ := env.stores.Activite.CountBy(context.Background(), "action", database.ListFilter{})
	if actions[models.ActionCreation] != 1 || actions[models.ActionCloture] != 1 || actions[models.ActionValidation] != 1 {
		t.Errorf("journal d'activité inattendu: %v", actions)
	}
}

func TestResourceHandler_politiqueStricte(t *testing.T) {
	strict := newTestEnv(t, lifecycle.PolicyStrict)
	ev := strict.seedEvenement("Brocante", lifecycle.Brouillon, strict.now.Add(72*time.Hour))
	path := fmt.Sprintf("/api/admin/evenements/%d/statut", ev.ID)

	rr := strict.do(http.MethodPost, path, strict.token(idAdmin), map[string]string{"statut": "PUBLIEE"})
	expectStatus(t, rr, http.StatusUnprocessableEntity)
	if resp := decode(t, rr, nil); resp.Error.Code != constants.CodeTransition {
		t.Errorf("code = %s, attendu %s", resp.Error.Code, constants.CodeTransition)
	}

	// La palette n'offre que les transitions du graphe
	var detail RecordDetail[models.Evenement]
	rr = strict.do(http.MethodGet, fmt.Sprintf("/api/admin/evenements/%d", ev.ID), strict.token(idAdmin), nil)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &detail)
	disponibles := map[lifecycle.Status]bool{}
	for _, p := range detail.Palette {
		if p.Disponible {
			disponibles[p.Statut] = true
		}
	}
	if len(disponibles) != 2 || !disponibles[lifecycle.EnAttenteValidation] || !disponibles[lifecycle.Annulee] {
		t.Errorf("palette stricte inattendue: %v", disponibles)
	}

	permissive := newTestEnv(t, lifecycle.PolicyPermissive)
	ev = permissive.seedEvenement("Brocante", lifecycle.Brouillon, permissive.now.Add(72*time.Hour))
	rr = permissive.do(http.MethodPost, fmt.Sprintf("/api/admin/evenements/%d/statut", ev.ID), permissive.token(idAdmin), map[string]string{"statut": "PUBLIEE"})
	expectStatus(t, rr, http.StatusOK)
}

func TestResourceHandler_listePubliqueEtBadges(t *testing.T) {
	env := newTestEnv(t, lifecycle.PolicyPermissive)
	env.seedEvenement("Brouillon caché", lifecycle.Brouillon, env.now.Add(24*time.Hour))
	env.seedEvenement("Concert", lifecycle.Publiee, env.now.Add(3*24*time.Hour))
	env.seedEvenement("Salon", lifecycle.Publiee, env.now.Add(30*24*time.Hour))
	env.seedEvenement("Marché", lifecycle.EnAction, env.now.Add(-time.Hour))
	env.seedEvenement("Carnaval", lifecycle.Cloturee, env.now.Add(-10*24*time.Hour))

	var items []models.Evenement
	rr := env.do(http.MethodGet, "/api/evenements", "", nil)
	expectStatus(t, rr, http.StatusOK)
	resp := decode(t, rr, &items)

	if resp.Pagination.Total != 4 || len(items) != 4 {
		t.Fatalf("4 événements publics attendus, total=%d len=%d", resp.Pagination.Total, len(items))
	}

	etats := map[string]lifecycle.Etat{}
	for _, ev := range items {
		if ev.Badge == nil {
			t.Fatalf("badge manquant pour %s", ev.Titre)
		}
		etats[ev.Titre] = ev.Badge.Etat
	}
	want := map[string]lifecycle.Etat{
		"Concert":  lifecycle.EtatBientot,
		"Salon":    lifecycle.EtatAVenir,
		"Marché":   lifecycle.EtatEnCours,
		"Carnaval": lifecycle.EtatTermine,
	}
	for titre, etat := range want {
		if etats[titre] != etat {
			t.Errorf("badge de %s = %s, attendu %s", titre, etats[titre], etat)
		}
	}

	// Tri par date de début croissante
	if items[0].Titre != "Carnaval" || items[3].Titre != "Salon" {
		t.Errorf("ordre inattendu: %s ... %s", items[0].Titre, items[3].Titre)
	}

	// Pagination
	rr = env.do(http.MethodGet, "/api/evenements?page=2&limit=3", "", nil)
	expectStatus(t, rr, http.StatusOK)
	resp = decode(t, rr, &items)
	if len(items) != 1 || !resp.Pagination.HasPrev || resp.Pagination.HasNext {
		t.Errorf("page 2 inattendue: %d élément(s), %+v", len(items), resp.Pagination)
	}
}

func TestResourceHandler_statistiquesAdmin(t *testing.T) {
	env := newTestEnv(t, lifecycle.PolicyPermissive)
	env.seedEvenement("A", lifecycle.Brouillon, env.now.Add(24*time.Hour))
	env.seedEvenement("B", lifecycle.Publiee, env.now.Add(-48*time.Hour))
	env.seedEvenement("C", lifecycle.Publiee, env.now.Add(48*time.Hour))

	rr := env.do(http.MethodGet, "/api/admin/evenements?statut=PUBLIEE", env.token(idAgent), nil)
	expectStatus(t, rr, http.StatusOK)
	var items []models.Evenement
	resp := decode(t, rr, &items)
	if len(items) != 2 {
		t.Errorf("filtre par statut: %d élément(s), attendu 2", len(items))
	}

	var stats ResourceStats
	if err := json.Unmarshal(resp.Stats, &stats); err != nil {
		t.Fatalf("stats illisibles: %v", err)
	}
	if stats.Total != 3 || stats.ParStatut["PUBLIEE"] != 2 || stats.ACloturer != 1 {
		t.Errorf("statistiques inattendues: %+v", stats)
	}
}

func TestResourceHandler_participation(t *testing.T) {
	env := newTestEnv(t, lifecycle.PolicyPermissive)
	ev := env.seedEvenement("Atelier vélo", lifecycle.Publiee, env.now.Add(48*time.Hour))
	path := fmt.Sprintf("/api/evenements/%d/participer", ev.ID)

	expectStatus(t, env.do(http.MethodPost, path, "", nil), http.StatusUnauthorized)

	var p ParticipationResponse
	rr := env.do(http.MethodPost, path, env.token(idCitoyen), nil)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &p)
	if p.DejaInscrit || p.NbParticipants != 1 {
		t.Errorf("première inscription: %+v", p)
	}

	rr = env.do(http.MethodPost, path, env.token(idCitoyen), nil)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &p)
	if !p.DejaInscrit || p.NbParticipants != 1 {
		t.Errorf("seconde inscription: %+v", p)
	}

	stored, _ := env.stores.Evenements.FindByID(context.Background(), ev.ID)
	if stored.NbParticipants != 1 {
		t.Errorf("nbParticipants = %d, attendu 1", stored.NbParticipants)
	}

	// Vues
	expectStatus(t, env.do(http.MethodPost, fmt.Sprintf("/api/evenements/%d/vues", ev.ID), "", nil), http.StatusOK)
	stored, _ = env.stores.Evenements.FindByID(context.Background(), ev.ID)
	if stored.NbVues != 1 {
		t.Errorf("nbVues = %d, attendu 1", stored.NbVues)
	}

	// Inscriptions closes sur un événement terminé
	done := env.seedEvenement("Vide-grenier", lifecycle.Cloturee, env.now.Add(-72*time.Hour))
	expectStatus(t, env.do(http.MethodPost, fmt.Sprintf("/api/evenements/%d/participer", done.ID), env.token(idCitoyen), nil), http.StatusUnprocessableEntity)

	// La suppression emporte les participations
	expectStatus(t, env.do(http.MethodDelete, fmt.Sprintf("/api/admin/evenements/%d", ev.ID), env.token(idAdmin), nil), http.StatusOK)
	if n, _ := env.stores.Participations.Count(context.Background(), database.ListFilter{}); n != 0 {
		t.Errorf("%d participation(s) restante(s) après suppression", n)
	}
}

func TestResourceHandler_drapeauxIndependantsDuStatut(t *testing.T) {
	env := newTestEnv(t, lifecycle.PolicyPermissive)
	ev := env.seedEvenement("Forum des associations", lifecycle.Brouillon, env.now.Add(48*time.Hour))
	base := fmt.Sprintf("/api/admin/evenements/%d", ev.ID)

	var detail RecordDetail[models.Evenement]
	rr := env.do(http.MethodPost, base+"/mise-en-avant", env.token(idAgent), map[string]bool{"isMisEnAvant": true})
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &detail)
	if !detail.Enregistrement.IsMisEnAvant || detail.Enregistrement.Statut != lifecycle.Brouillon {
		t.Errorf("mise en avant: %+v", detail.Enregistrement.Publication)
	}

	// Hors EN_ATTENTE_VALIDATION, la validation ne touche pas au statut
	rr = env.do(http.MethodPost, base+"/valider", env.token(idModerateur), map[string]interface{}{"isValide": false, "motif": "Date à confirmer"})
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &detail)
	if detail.Enregistrement.IsValide || detail.Enregistrement.MotifRejet != "Date à confirmer" || detail.Enregistrement.Statut != lifecycle.Brouillon {
		t.Errorf("rejet sans transition: %+v", detail.Enregistrement.Publication)
	}

	// Modification partielle
	var updated models.Evenement
	rr = env.do(http.MethodPatch, base, env.token(idAgent), map[string]string{"lieu": "Salle polyvalente"})
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &updated)
	if updated.Lieu != "Salle polyvalente" || updated.Titre != "Forum des associations" {
		t.Errorf("modification partielle: %+v", updated)
	}
	expectStatus(t, env.do(http.MethodPatch, base, env.token(idAgent), map[string]string{}), http.StatusBadRequest)
}

func TestResourceHandler_rolesModeration(t *testing.T) {
	env := newTestEnv(t, lifecycle.PolicyPermissive)
	body := map[string]interface{}{
		"titre":     "Compost partagé",
		"contenu":   "Retour d'expérience sur le compost du quartier nord.",
		"categorie": "ENVIRONNEMENT",
		"statut":    "EN_ATTENTE_VALIDATION",
	}

	// Les articles sont réservés aux modérateurs
	expectStatus(t, env.do(http.MethodPost, "/api/admin/articles", env.token(idAgent), body), http.StatusForbidden)

	var article models.Article
	rr := env.do(http.MethodPost, "/api/admin/articles", env.token(idModerateur), body)
	expectStatus(t, rr, http.StatusCreated)
	decode(t, rr, &article)

	// Rejet : passage au statut REJETE
	var detail RecordDetail[models.Article]
	rr = env.do(http.MethodPost, fmt.Sprintf("/api/admin/articles/%d/valider", article.ID), env.token(idAdmin), map[string]interface{}{"isValide": false, "motif": "Hors sujet"})
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &detail)
	if detail.Enregistrement.Statut != lifecycle.Rejete {
		t.Errorf("statut après rejet = %s, attendu REJETE", detail.Enregistrement.Statut)
	}

	// Les programmes n'ont pas de surface publique
	expectStatus(t, env.do(http.MethodGet, "/api/programmes", "", nil), http.StatusNotFound)
}

// racingStore rejoue une écriture concurrente juste après la lecture d'un handler
type racingStore struct {
	database.Store[models.Evenement]
	between func()
}

func (s *racingStore) FindByID(ctx context.Context, id int64) (*models.Evenement, error) {
	rec, err := s.Store.FindByID(ctx, id)
	if hook := s.between; hook != nil {
		s.between = nil
		hook()
	}
	return rec, err
}

func TestResourceHandler_transitionsConcurrentes(t *testing.T) {
	var racing *racingStore
	env := newTestEnvWith(t, lifecycle.PolicyStrict, func(stores *database.Stores) {
		racing = &racingStore{Store: stores.Evenements}
		stores.Evenements = racing
	})
	admin := env.token(idAdmin)
	ctx := context.Background()

	// La clôture passe entre la lecture et l'écriture d'une annulation
	ev := env.seedEvenement("Forum des associations", lifecycle.EnAction, env.now.Add(-72*time.Hour))
	base := fmt.Sprintf("/api/admin/evenements/%d", ev.ID)
	racing.between = func() {
		rr := env.do(http.MethodPost, base+"/cloturer", admin, map[string]interface{}{
			"rapport":             "Bonne fréquentation, 40 stands",
			"participationReelle": 350,
		})
		expectStatus(t, rr, http.StatusOK)
	}

	rr := env.do(http.MethodPost, base+"/statut", admin, map[string]string{"statut": "ANNULEE"})
	expectStatus(t, rr, http.StatusConflict)
	if resp := decode(t, rr, nil); resp.Error.Message != constants.ErrStaleRecord {
		t.Errorf("message = %q", resp.Error.Message)
	}
	got, _ := env.stores.Evenements.FindByID(ctx, ev.ID)
	if got.Statut != lifecycle.Cloturee || got.Cloture == nil {
		t.Errorf("un événement clôturé ne doit pas être annulé: statut=%s cloture=%v", got.Statut, got.Cloture)
	}

	// Même garde sur la validation
	ev = env.seedEvenement("Bal populaire", lifecycle.EnAttenteValidation, env.now.Add(72*time.Hour))
	racing.between = func() {
		if _, err := env.stores.Evenements.UpdateFields(ctx, ev.ID, map[string]interface{}{
			database.ChampStatut: string(lifecycle.Brouillon),
		}); err != nil {
			t.Fatal(err)
		}
	}
	rr = env.do(http.MethodPost, fmt.Sprintf("/api/admin/evenements/%d/valider", ev.ID), env.token(idModerateur), map[string]bool{"isValide": true})
	expectStatus(t, rr, http.StatusConflict)
	got, _ = env.stores.Evenements.FindByID(ctx, ev.ID)
	if got.Statut != lifecycle.Brouillon || got.IsValide {
		t.Errorf("validation appliquée sur un statut périmé: statut=%s isValide=%t", got.Statut, got.IsValide)
	}
}
