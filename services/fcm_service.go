package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// fcmBatchSize est la limite de tokens par requête multicast FCM
const fcmBatchSize = 500

// FCMService gère l'envoi des notifications via Firebase Cloud Messaging.
// Sans client (service désactivé) les envois sont ignorés.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService crée une nouvelle instance de FCMService
func NewFCMService(credentialsFile string) (*FCMService, error) {
	ctx := context.Background()

	var opt option.ClientOption
	if credentialsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON"); credentialsJSON != "" {
		log.Println("📦 Utilisation des credentials Firebase depuis FIREBASE_CREDENTIALS_JSON")
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	} else {
		log.Printf("📦 Utilisation des credentials Firebase depuis le fichier: %s", credentialsFile)
		opt = option.WithCredentialsFile(credentialsFile)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'initialisation de Firebase: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création du client FCM: %w", err)
	}

	log.Println("✓ Firebase Cloud Messaging initialisé")
	return &FCMService{client: client}, nil
}

// NewDisabledFCMService retourne un service sans client Firebase
func NewDisabledFCMService() *FCMService {
	return &FCMService{}
}

// Enabled indique si Firebase est configuré
func (s *FCMService) Enabled() bool {
	return s != nil && s.client != nil
}

// SendToToken envoie une notification à un token spécifique
func (s *FCMService) SendToToken(token string, title, body string, data map[string]string) error {
	if !s.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	message := &messaging.Message{
		Token:   token,
		Data:    dataMessage(title, body, data),
		Webpush: &messaging.WebpushConfig{Headers: map[string]string{"Urgency": "high"}},
	}

	response, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("erreur lors de l'envoi de la notification: %w", err)
	}

	log.Printf("✓ Message FCM envoyé: %s", response)
	return nil
}

// SendToMultipleTokens envoie une notification à plusieurs tokens (500 au plus)
func (s *FCMService) SendToMultipleTokens(tokens []string, title, body string, data map[string]string) (success int, failed int, failedTokens []string, err error) {
	if len(tokens) == 0 || !s.Enabled() {
		return 0, 0, nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	message := &messaging.MulticastMessage{
		Data:    dataMessage(title, body, data),
		Webpush: &messaging.WebpushConfig{Headers: map[string]string{"Urgency": "high"}},
		Tokens:  tokens,
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("erreur lors de l'envoi multicast: %w", err)
	}

	failedTokens = make([]string, 0)
	for idx, resp := range response.Responses {
		if !resp.Success {
			failedTokens = append(failedTokens, tokens[idx])
			log.Printf("❌ Échec FCM pour le token %s: %v", shortToken(tokens[idx]), resp.Error)
		}
	}

	log.Printf("📊 Envoi multicast: %d succès, %d échecs sur %d total", response.SuccessCount, response.FailureCount, len(tokens))
	return response.SuccessCount, response.FailureCount, failedTokens, nil
}

// SendToAll envoie une notification à tous les tokens fournis, par lots
func (s *FCMService) SendToAll(tokens []string, title, body string, data map[string]string) (success int, failed int, failedTokens []string) {
	failedTokens = make([]string, 0)

	for i := 0; i < len(tokens); i += fcmBatchSize {
		end := i + fcmBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}

		batch := tokens[i:end]
		ok, ko, ft, err := s.SendToMultipleTokens(batch, title, body, data)
		if err != nil {
			log.Printf("❌ Erreur pour le lot %d: %v", i/fcmBatchSize+1, err)
			failed += len(batch)
			continue
		}

		success += ok
		failed += ko
		failedTokens = append(failedTokens, ft...)
	}

	return success, failed, failedTokens
}

// dataMessage prépare un message "data only" (pas de bloc Notification)
func dataMessage(title, body string, data map[string]string) map[string]string {
	out := make(map[string]string, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	out["title"] = title
	out["message"] = body
	return out
}

func shortToken(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
