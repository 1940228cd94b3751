package handlers

import (
	"log"
	"net/http"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/services"
	"portail-citoyen-backend/utils"
)

// NotificationHandler gère les notifications in-app et les abonnements push
type NotificationHandler struct {
	notifications database.Store[models.Notification]
	webpush       *services.WebPushService
	notifier      *services.Notifier
	deps          *Deps
}

// NewNotificationHandler crée une nouvelle instance de NotificationHandler
func NewNotificationHandler(notifications database.Store[models.Notification], webpush *services.WebPushService, notifier *services.Notifier, deps *Deps) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		webpush:       webpush,
		notifier:      notifier,
		deps:          deps,
	}
}

// NotificationStats accompagne la liste des notifications
type NotificationStats struct {
	NonLues int64 `json:"nonLues"`
}

// List retourne les notifications de l'utilisateur connecté (les plus récentes d'abord)
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	claims := currentUser(r)
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	page, limit := utils.ResolvePaging(r, 20, utils.MaxLimit)
	filter := database.ListFilter{
		Page:     page,
		Limit:    limit,
		Equals:   map[string]interface{}{database.ChampUtilisateurID: claims.UserID},
		Sort:     database.ChampDateCreation,
		SortDesc: true,
	}
	if v, ok := queryBool(r, "lu"); ok {
		filter.Equals[database.ChampLu] = v
	}

	items, total, err := h.notifications.List(r.Context(), filter)
	if err != nil {
		log.Printf("❌ Erreur liste des notifications de %d: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	unread, err := UnreadCount(r, h.notifications, claims.UserID)
	if err != nil {
		log.Printf("❌ Erreur comptage des notifications de %d: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondList(w, nonNil(items), utils.BuildPagination(page, limit, total), NotificationStats{NonLues: unread})
}

// UnreadCount compte les notifications non lues d'un utilisateur
func UnreadCount(r *http.Request, store database.Store[models.Notification], userID int64) (int64, error) {
	return store.Count(r.Context(), database.ListFilter{Equals: map[string]interface{}{
		database.ChampUtilisateurID: userID,
		database.ChampLu:            false,
	}})
}

// MarkRead marque une notification comme lue (404 si elle appartient à un autre utilisateur)
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	claims := currentUser(r)
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}
	id, ok := ParseID(w, r, "id")
	if !ok {
		return
	}

	notif, err := h.notifications.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("❌ Erreur lecture de la notification %d: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if notif == nil || notif.UtilisateurID != claims.UserID {
		utils.RespondError(w, http.StatusNotFound, constants.ErrNotFound)
		return
	}
	if notif.Lu {
		utils.RespondSuccess(w, "", notif)
		return
	}

	updated, err := h.notifications.UpdateFields(r.Context(), id, map[string]interface{}{
		database.ChampLu: true,
		"dateLecture":    h.deps.now(),
	})
	if err != nil || updated == nil {
		log.Printf("❌ Erreur mise à jour de la notification %d: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	utils.RespondSuccess(w, "Notification lue", updated)
}

// MarkAllRead marque toutes les notifications de l'utilisateur comme lues
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	claims := currentUser(r)
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	unread, _, err := h.notifications.List(r.Context(), database.ListFilter{Equals: map[string]interface{}{
		database.ChampUtilisateurID: claims.UserID,
		database.ChampLu:            false,
	}})
	if err != nil {
		log.Printf("❌ Erreur lecture des notifications de %d: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	now := h.deps.now()
	marked := 0
	for _, n := range unread {
		if _, err := h.notifications.UpdateFields(r.Context(), n.ID, map[string]interface{}{
			database.ChampLu: true,
			"dateLecture":    now,
		}); err != nil {
			log.Printf("⚠️  Notification %d non marquée: %v", n.ID, err)
			continue
		}
		marked++
	}

	utils.RespondSuccess(w, "Notifications marquées comme lues", map[string]int{"marquees": marked})
}

// VAPIDPublicKey retourne la clé publique VAPID pour l'abonnement navigateur
func (h *NotificationHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if !h.webpush.Enabled() {
		utils.RespondError(w, http.StatusServiceUnavailable, "Les notifications push ne sont pas configurées")
		return
	}
	utils.RespondSuccess(w, "", map[string]string{"publicKey": h.webpush.PublicKey()})
}

// Subscribe enregistre l'abonnement Web Push du navigateur de l'utilisateur
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	claims := currentUser(r)
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}
	if !h.webpush.Enabled() {
		utils.RespondError(w, http.StatusServiceUnavailable, "Les notifications push ne sont pas configurées")
		return
	}

	var req models.SubscribeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.webpush.Subscribe(r.Context(), claims.UserID, req); err != nil {
		log.Printf("❌ Erreur abonnement Web Push de %d: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("✓ Abonnement Web Push enregistré pour l'utilisateur %d", claims.UserID)
	utils.RespondSuccess(w, "Abonnement enregistré", nil)
}

// RegisterFCMToken enregistre le token FCM d'un appareil du staff
func (h *NotificationHandler) RegisterFCMToken(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	claims := currentUser(r)
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	var req models.FCMTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.notifier.RegisterToken(r.Context(), claims.UserID, claims.Role, req); err != nil {
		log.Printf("❌ Erreur enregistrement du token FCM de %d: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	utils.RespondSuccess(w, "Appareil enregistré", nil)
}
