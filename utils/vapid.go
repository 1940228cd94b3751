package utils

import (
	"crypto/ecdh"
	"encoding/base64"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// GenerateVAPIDKeys génère une paire de clés VAPID (publique et privée)
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("erreur lors de la génération des clés VAPID: %w", err)
	}
	return publicKey, privateKey, nil
}

// ValidateVAPIDKeys vérifie que la clé publique correspond bien à la clé privée
func ValidateVAPIDKeys(publicKey, privateKey string) error {
	if publicKey == "" || privateKey == "" {
		return fmt.Errorf("les deux clés VAPID sont requises")
	}

	priv, err := decodeKey(privateKey)
	if err != nil {
		return fmt.Errorf("erreur lors du décodage de la clé privée: %w", err)
	}
	pub, err := decodeKey(publicKey)
	if err != nil {
		return fmt.Errorf("erreur lors du décodage de la clé publique: %w", err)
	}

	key, err := ecdh.P256().NewPrivateKey(priv)
	if err != nil {
		return fmt.Errorf("clé privée invalide: %w", err)
	}
	if base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()) != base64.RawURLEncoding.EncodeToString(pub) {
		return fmt.Errorf("la clé publique ne correspond pas à la clé privée")
	}
	return nil
}

// decodeKey accepte le base64 URL avec ou sans padding
func decodeKey(key string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(key); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(key)
}
