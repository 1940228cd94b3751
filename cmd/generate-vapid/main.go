package main

import (
	"fmt"
	"log"

	"portail-citoyen-backend/utils"
)

func main() {
	log.Println("🔐 Génération des clés VAPID...")

	publicKey, privateKey, err := utils.GenerateVAPIDKeys()
	if err != nil {
		log.Fatalf("❌ Erreur lors de la génération des clés: %v", err)
	}
	if err := utils.ValidateVAPIDKeys(publicKey, privateKey); err != nil {
		log.Fatalf("❌ Paire de clés incohérente: %v", err)
	}

	fmt.Println("\n✅ Clés VAPID générées avec succès!")
	fmt.Println("\nAjoutez ces lignes dans votre fichier .env du portail:")
	fmt.Println()
	fmt.Println("VAPID_PUBLIC_KEY=" + publicKey)
	fmt.Println("VAPID_PRIVATE_KEY=" + privateKey)
	fmt.Println("VAPID_SUBJECT=mailto:contact@mairie.example")
	fmt.Println("\n⚠️  Important: Ne partagez JAMAIS votre clé privée!")
}
