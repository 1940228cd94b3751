package handlers

import (
	"log"
	"net/http"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/middleware"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"
)

// menu est la définition complète du menu ; Roles vide = visible de tous
var menu = []models.MenuItem{
	{Cle: "accueil", Libelle: "Accueil", URL: "/", Icone: "home"},
	{Cle: "evenements", Libelle: "Événements", URL: "/evenements", Icone: "calendar"},
	{Cle: "campagnes", Libelle: "Campagnes", URL: "/campagnes", Icone: "megaphone"},
	{Cle: "actualites", Libelle: "Actualités", URL: "/actualites", Icone: "newspaper"},
	{Cle: "articles", Libelle: "Articles", URL: "/articles", Icone: "file-text"},
	{Cle: "recherche", Libelle: "Recherche", URL: "/recherche", Icone: "search"},
	{Cle: "reclamation", Libelle: "Signaler un problème", URL: "/reclamations", Icone: "alert-triangle"},
	{Cle: "connexion", Libelle: "Connexion", URL: "/connexion", Icone: "log-in", Invite: true},
	{Cle: "inscription", Libelle: "Inscription", URL: "/inscription", Icone: "user-plus", Invite: true},
	{Cle: "notifications", Libelle: "Notifications", URL: "/notifications", Icone: "bell", Connecte: true},
	{Cle: "compte", Libelle: "Mon compte", URL: "/compte", Icone: "user", Connecte: true},
	{
		Cle: "admin", Libelle: "Administration", URL: "/admin", Icone: "shield",
		Roles: []models.Role{models.RoleAgent, models.RoleModerateur, models.RoleAdmin},
		Enfants: []models.MenuItem{
			{Cle: "admin-evenements", Libelle: "Événements", URL: "/admin/evenements", Roles: rolesContenus},
			{Cle: "admin-actualites", Libelle: "Actualités", URL: "/admin/actualites", Roles: rolesContenus},
			{Cle: "admin-articles", Libelle: "Modération des articles", URL: "/admin/articles", Roles: rolesModeration},
			{Cle: "admin-campagnes", Libelle: "Campagnes", URL: "/admin/campagnes", Roles: rolesContenus},
			{Cle: "admin-programmes", Libelle: "Programmes d'activités", URL: "/admin/programmes", Roles: rolesContenus},
			{Cle: "admin-reclamations", Libelle: "Réclamations", URL: "/admin/reclamations", Roles: rolesReclamations},
			{Cle: "admin-etablissements", Libelle: "Établissements", URL: "/admin/etablissements", Roles: []models.Role{models.RoleAdmin}},
			{Cle: "admin-communes", Libelle: "Communes", URL: "/admin/communes", Roles: []models.Role{models.RoleAdmin}},
			{Cle: "admin-logs", Libelle: "Journaux", URL: "/admin/logs", Roles: []models.Role{models.RoleAdmin}},
			{Cle: "admin-utilisateurs", Libelle: "Utilisateurs", URL: "/admin/utilisateurs", Roles: []models.Role{models.RoleSuperAdmin}},
			{Cle: "admin-settings", Libelle: "Paramètres", URL: "/admin/settings", Roles: []models.Role{models.RoleSuperAdmin}},
		},
	},
}

// NavigationHandler construit le menu selon le rôle de l'utilisateur
type NavigationHandler struct {
	notifications database.Store[models.Notification]
	parametres    database.Store[models.Parametres]
}

// NewNavigationHandler crée un nouveau NavigationHandler
func NewNavigationHandler(notifications database.Store[models.Notification], parametres database.Store[models.Parametres]) *NavigationHandler {
	return &NavigationHandler{notifications: notifications, parametres: parametres}
}

// Get retourne le menu visible, le nombre de notifications non lues et l'état du portail
func (h *NavigationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	settings, err := LoadParametres(r.Context(), h.parametres)
	if err != nil {
		log.Printf("❌ Erreur lecture des paramètres: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	nav := models.Navigation{
		RegistrationEnabled: settings.RegistrationEnabled,
		Maintenance:         settings.Maintenance,
	}

	claims := currentUser(r)
	if claims != nil {
		nav.Role = claims.Role
		if nav.NotificationsNonLues, err = UnreadCount(r, h.notifications, claims.UserID); err != nil {
			log.Printf("⚠️  Comptage des notifications impossible pour %d: %v", claims.UserID, err)
		}
	}
	nav.Menu = BuildMenu(menu, claims, settings.RegistrationEnabled, nav.NotificationsNonLues)

	utils.RespondSuccess(w, "", nav)
}

// BuildMenu filtre les entrées visibles pour un utilisateur (nil = invité)
func BuildMenu(items []models.MenuItem, claims *utils.Claims, registration bool, unread int64) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if !visible(item, claims, registration) {
			continue
		}
		if len(item.Enfants) > 0 {
			item.Enfants = BuildMenu(item.Enfants, claims, registration, unread)
			if len(item.Enfants) == 0 {
				continue
			}
		}
		if item.Cle == "notifications" {
			item.Badge = unread
		}
		out = append(out, item)
	}
	return out
}

func visible(item models.MenuItem, claims *utils.Claims, registration bool) bool {
	switch {
	case item.Invite:
		if claims != nil {
			return false
		}
		return item.Cle != "inscription" || registration
	case item.Connecte && claims == nil:
		return false
	case len(item.Roles) > 0:
		return claims != nil && middleware.HasRole(claims.Role, item.Roles...)
	}
	return true
}
