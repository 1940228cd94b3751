package models

import "time"

// PushSubscription représente un abonnement Web Push (VAPID)
type PushSubscription struct {
	Base          `bson:",inline"`
	UtilisateurID int64    `json:"utilisateurId" bson:"utilisateurId"`
	Endpoint      string   `json:"endpoint" bson:"endpoint"`
	Keys          PushKeys `json:"keys" bson:"keys"`
}

// PushKeys contient les clés de chiffrement pour les notifications
type PushKeys struct {
	P256dh string `json:"p256dh" bson:"p256dh"`
	Auth   string `json:"auth" bson:"auth"`
}

// SubscribeRequest représente la requête d'abonnement aux notifications
type SubscribeRequest struct {
	Endpoint string   `json:"endpoint" validate:"required,url"`
	Keys     PushKeys `json:"keys"`
}

// FCMToken représente un jeton Firebase Cloud Messaging d'un appareil
type FCMToken struct {
	Base          `bson:",inline"`
	UtilisateurID int64  `json:"utilisateurId" bson:"utilisateurId"`
	Role          Role   `json:"role" bson:"role"`
	Token         string `json:"token" bson:"token"`
	Plateforme    string `json:"plateforme,omitempty" bson:"plateforme,omitempty"`
}

// FCMTokenRequest enregistre un appareil
type FCMTokenRequest struct {
	Token      string `json:"token" validate:"required"`
	Plateforme string `json:"plateforme" validate:"omitempty,oneof=web android ios"`
}

// Notification est une notification in-app adressée à un utilisateur
type Notification struct {
	Base          `bson:",inline"`
	UtilisateurID int64      `json:"utilisateurId" bson:"utilisateurId"`
	Titre         string     `json:"titre" bson:"titre"`
	Message       string     `json:"message" bson:"message"`
	Type          string     `json:"type" bson:"type"`
	Lien          string     `json:"lien,omitempty" bson:"lien,omitempty"`
	Lu            bool       `json:"lu" bson:"lu"`
	DateLecture   *time.Time `json:"dateLecture,omitempty" bson:"dateLecture,omitempty"`
}

// NotificationPayload représente le contenu d'une notification push
type NotificationPayload struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Icon  string      `json:"icon,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}
