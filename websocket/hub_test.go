package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"

	"github.com/gorilla/websocket"
)

const testSecret = "ws-secret"

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub, testSecret, nil).ServeWS))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitOnline(t *testing.T, hub *Hub, userID int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !hub.IsUserOnline(userID) {
		if time.Now().After(deadline) {
			t.Fatalf("l'utilisateur %d n'est jamais apparu connecté", userID)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_notificationRecue(t *testing.T) {
	hub, url := startServer(t)
	token, _ := utils.GenerateToken(42, "a@example.com", models.RoleCitoyen, testSecret)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello map[string]interface{}
	if err := conn.ReadJSON(&hello); err != nil || hello["type"] != "authenticated" {
		t.Fatalf("message d'accueil = %v, err %v", hello, err)
	}

	waitOnline(t, hub, 42)
	hub.SendToUser(42, map[string]string{"type": "notification", "titre": "Statut modifié"})

	var got map[string]string
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got["titre"] != "Statut modifié" {
		t.Errorf("message reçu = %v", got)
	}
}

func TestHub_tokenInvalide(t *testing.T) {
	hub, url := startServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=faux", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg["type"] != "error" {
		t.Errorf("attendu un message d'erreur, obtenu %v", msg)
	}
	if hub.Count() != 0 {
		t.Errorf("aucune connexion ne doit être enregistrée, obtenu %d", hub.Count())
	}
}

func TestHub_SendToUserHorsLigne(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	hub.SendToUser(7, "ignoré")
	if hub.IsUserOnline(7) {
		t.Error("l'utilisateur 7 ne doit pas être connecté")
	}
}
