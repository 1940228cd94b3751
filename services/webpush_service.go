package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"portail-citoyen-backend/database"
	"portail-citoyen-backend/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// WebPushService envoie les notifications navigateur signées VAPID
type WebPushService struct {
	subscriptions   database.Store[models.PushSubscription]
	vapidPublicKey  string
	vapidPrivateKey string
	vapidSubject    string
}

// NewWebPushService crée le service ; sans clés VAPID les envois sont ignorés
func NewWebPushService(subscriptions database.Store[models.PushSubscription], publicKey, privateKey, subject string) *WebPushService {
	if publicKey == "" || privateKey == "" {
		log.Println("⚠️  Clés VAPID absentes - notifications Web Push désactivées")
	}
	return &WebPushService{
		subscriptions:   subscriptions,
		vapidPublicKey:  publicKey,
		vapidPrivateKey: privateKey,
		vapidSubject:    subject,
	}
}

// Enabled indique si les clés VAPID sont configurées
func (s *WebPushService) Enabled() bool {
	return s != nil && s.vapidPublicKey != "" && s.vapidPrivateKey != ""
}

// PublicKey retourne la clé publique VAPID transmise aux navigateurs
func (s *WebPushService) PublicKey() string {
	return s.vapidPublicKey
}

// Subscribe enregistre (ou rattache à l'utilisateur) un abonnement navigateur
func (s *WebPushService) Subscribe(ctx context.Context, userID int64, req models.SubscribeRequest) error {
	existing, err := s.subscriptions.FindOne(ctx, map[string]interface{}{"endpoint": req.Endpoint})
	if err != nil {
		return err
	}
	if existing != nil {
		_, err = s.subscriptions.UpdateFields(ctx, existing.ID, map[string]interface{}{
			database.ChampUtilisateurID: userID,
			"keys":                      req.Keys,
		})
		return err
	}

	return s.subscriptions.Create(ctx, &models.PushSubscription{
		UtilisateurID: userID,
		Endpoint:      req.Endpoint,
		Keys:          req.Keys,
	})
}

// SendToUser envoie une notification à tous les navigateurs d'un utilisateur.
// Les abonnements expirés (410) sont supprimés.
func (s *WebPushService) SendToUser(ctx context.Context, userID int64, payload models.NotificationPayload) (sent, failed int, err error) {
	if !s.Enabled() {
		return 0, 0, nil
	}

	subs, _, err := s.subscriptions.List(ctx, database.ListFilter{
		Equals: map[string]interface{}{database.ChampUtilisateurID: userID},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("erreur lors de la récupération des abonnements: %w", err)
	}
	if len(subs) == 0 {
		return 0, 0, nil
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return 0, 0, fmt.Errorf("erreur lors de la création du payload: %w", err)
	}

	for _, sub := range subs {
		resp, err := webpush.SendNotification(payloadBytes, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.Keys.P256dh,
				Auth:   sub.Keys.Auth,
			},
		}, &webpush.Options{
			Subscriber:      s.vapidSubject,
			VAPIDPublicKey:  s.vapidPublicKey,
			VAPIDPrivateKey: s.vapidPrivateKey,
			TTL:             86400,
			Urgency:         webpush.UrgencyHigh,
		})
		if err != nil {
			log.Printf("❌ Erreur Web Push pour l'utilisateur %d: %v", userID, err)
			failed++
			continue
		}

		switch {
		case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
			log.Printf("🗑️  Suppression de l'abonnement expiré: %s", sub.Endpoint)
			_, _ = s.subscriptions.Delete(ctx, sub.ID)
			failed++
		case resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK:
			sent++
		default:
			body, _ := io.ReadAll(resp.Body)
			log.Printf("⚠️  Réponse Web Push inattendue pour l'utilisateur %d: %d - %s", userID, resp.StatusCode, string(body))
			failed++
		}
		resp.Body.Close()
	}

	return sent, failed, nil
}
