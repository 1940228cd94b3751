package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// SlackService gère l'envoi d'alertes Slack
type SlackService struct {
	webhookURL string
	client     *http.Client
}

// SlackMessage représente un message Slack
type SlackMessage struct {
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment représente une pièce jointe Slack
type Attachment struct {
	Color     string  `json:"color,omitempty"`
	Title     string  `json:"title,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
	Timestamp int64   `json:"ts,omitempty"`
	Footer    string  `json:"footer,omitempty"`
}

// Field représente un champ dans une pièce jointe Slack
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// NewSlackService crée une nouvelle instance de SlackService
func NewSlackService(webhookURL string) *SlackService {
	if webhookURL == "" {
		log.Println("⚠️  Slack webhook URL non configuré - alertes Slack désactivées")
	}
	return &SlackService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled indique si un webhook est configuré
func (s *SlackService) Enabled() bool {
	return s != nil && s.webhookURL != ""
}

// SendErrorNotification envoie une alerte d'erreur HTTP sur Slack
func (s *SlackService) SendErrorNotification(errorType, method, path, statusCode, message, origin, userAgent string) error {
	fields := []Field{
		{Title: "Méthode", Value: method, Short: true},
		{Title: "Status Code", Value: statusCode, Short: true},
		{Title: "Chemin", Value: path, Short: false},
	}
	if origin != "" {
		fields = append(fields, Field{Title: "Origin", Value: origin, Short: true})
	}
	if userAgent != "" {
		fields = append(fields, Field{Title: "User-Agent", Value: userAgent, Short: false})
	}

	color := "danger"
	if statusCode == "403" {
		color = "warning"
	}
	return s.send(color, fmt.Sprintf("🚨 Erreur serveur: %s", errorType), message, fields)
}

// SendCriticalError envoie une alerte pour une erreur critique
func (s *SlackService) SendCriticalError(method, path, statusCode, errorMessage, origin, userAgent string) {
	if err := s.SendErrorNotification("Erreur Critique", method, path, statusCode, errorMessage, origin, userAgent); err != nil {
		log.Printf("❌ Erreur lors de l'envoi de la notification Slack: %v", err)
	}
}

// SendCORSError envoie une alerte pour une origine refusée
func (s *SlackService) SendCORSError(method, path, origin, userAgent string) {
	if err := s.SendErrorNotification("Erreur CORS", method, path, "403", fmt.Sprintf("Origine non autorisée: %s", origin), origin, userAgent); err != nil {
		log.Printf("❌ Erreur lors de l'envoi de la notification Slack: %v", err)
	}
}

// SendJobReport envoie le compte rendu d'une tâche planifiée
func (s *SlackService) SendJobReport(job, message string, failed bool) {
	color := "good"
	if failed {
		color = "danger"
	}
	if err := s.send(color, fmt.Sprintf("⏱️ Tâche planifiée: %s", job), message, nil); err != nil {
		log.Printf("❌ Erreur lors de l'envoi de la notification Slack: %v", err)
	}
}

func (s *SlackService) send(color, title, text string, fields []Field) error {
	if !s.Enabled() {
		return nil
	}

	slackMsg := SlackMessage{
		Attachments: []Attachment{{
			Color:     color,
			Title:     title,
			Text:      text,
			Fields:    fields,
			Timestamp: time.Now().Unix(),
			Footer:    "Portail citoyen - Backend",
		}},
	}

	jsonData, err := json.Marshal(slackMsg)
	if err != nil {
		return fmt.Errorf("erreur lors de la sérialisation du message Slack: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("erreur lors de la création de la requête: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("erreur lors de l'envoi à Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack a retourné un code d'erreur: %d", resp.StatusCode)
	}

	log.Printf("✓ Notification Slack envoyée: %s", title)
	return nil
}
