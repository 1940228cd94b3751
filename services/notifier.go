package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"portail-citoyen-backend/database"
	"portail-citoyen-backend/models"
)

// Types de notifications in-app
const (
	NotifStatut        = "statut"
	NotifValidation    = "validation"
	NotifCloture       = "cloture"
	NotifRappelCloture = "rappel_cloture"
	NotifModeration    = "moderation"
	NotifReclamation   = "reclamation"
)

// LiveSender diffuse un message temps réel aux connexions d'un utilisateur
type LiveSender interface {
	SendToUser(userID int64, message interface{})
}

// LiveMessage est le message poussé sur la websocket de notifications
type LiveMessage struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// Notifier répartit une notification entre la base (in-app), la websocket,
// le Web Push et FCM.
type Notifier struct {
	notifications database.Store[models.Notification]
	tokens        database.Store[models.FCMToken]
	live          LiveSender
	webpush       *WebPushService
	fcm           *FCMService
}

// NewNotifier crée le notifier ; live, webpush et fcm peuvent être nil
func NewNotifier(notifications database.Store[models.Notification], tokens database.Store[models.FCMToken], live LiveSender, webpush *WebPushService, fcm *FCMService) *Notifier {
	return &Notifier{
		notifications: notifications,
		tokens:        tokens,
		live:          live,
		webpush:       webpush,
		fcm:           fcm,
	}
}

// Notify crée une notification in-app pour un utilisateur et la pousse en direct
func (n *Notifier) Notify(ctx context.Context, userID int64, typ, titre, message, lien string) (*models.Notification, error) {
	if userID == 0 {
		return nil, nil
	}

	notif := &models.Notification{
		UtilisateurID: userID,
		Titre:         titre,
		Message:       message,
		Type:          typ,
		Lien:          lien,
	}
	if err := n.notifications.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("erreur lors de la création de la notification: %w", err)
	}

	if n.live != nil {
		n.live.SendToUser(userID, LiveMessage{Type: "notification", Notification: notif})
	}

	if n.webpush.Enabled() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			payload := models.NotificationPayload{
				Title: titre,
				Body:  message,
				Icon:  "/icon-192x192.png",
				Data:  map[string]string{"url": lien},
			}
			if _, _, err := n.webpush.SendToUser(ctx, userID, payload); err != nil {
				log.Printf("❌ Web Push: %v", err)
			}
		}()
	}

	return notif, nil
}

// NotifyStaff envoie une alerte FCM aux appareils des rôles indiqués
func (n *Notifier) NotifyStaff(ctx context.Context, roles []models.Role, titre, message, lien string) (int, error) {
	if !n.fcm.Enabled() || n.tokens == nil {
		return 0, nil
	}

	in := make([]interface{}, 0, len(roles))
	for _, r := range roles {
		in = append(in, r)
	}
	devices, _, err := n.tokens.List(ctx, database.ListFilter{
		In: map[string][]interface{}{database.ChampRole: in},
	})
	if err != nil {
		return 0, fmt.Errorf("erreur lors de la récupération des tokens FCM: %w", err)
	}
	if len(devices) == 0 {
		return 0, nil
	}

	tokens := make([]string, 0, len(devices))
	byToken := make(map[string]int64, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.Token)
		byToken[d.Token] = d.ID
	}

	success, failed, failedTokens := n.fcm.SendToAll(tokens, titre, message, map[string]string{"url": lien})
	for _, t := range failedTokens {
		if _, err := n.tokens.Delete(ctx, byToken[t]); err != nil {
			log.Printf("⚠️  Suppression du token FCM invalide impossible: %v", err)
		}
	}
	log.Printf("🔔 Alerte staff '%s': %d succès, %d échecs", titre, success, failed)
	return success, nil
}

// RegisterToken enregistre (ou met à jour) le token FCM d'un appareil
func (n *Notifier) RegisterToken(ctx context.Context, userID int64, role models.Role, req models.FCMTokenRequest) error {
	existing, err := n.tokens.FindOne(ctx, map[string]interface{}{"token": req.Token})
	if err != nil {
		return err
	}
	if existing != nil {
		_, err = n.tokens.UpdateFields(ctx, existing.ID, map[string]interface{}{
			database.ChampUtilisateurID: userID,
			database.ChampRole:          role,
			"plateforme":                req.Plateforme,
		})
		return err
	}
	return n.tokens.Create(ctx, &models.FCMToken{
		UtilisateurID: userID,
		Role:          role,
		Token:         req.Token,
		Plateforme:    req.Plateforme,
	})
}
