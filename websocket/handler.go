package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"portail-citoyen-backend/utils"

	"github.com/gorilla/websocket"
)

// Handler gère les connexions WebSocket au flux de notifications
type Handler struct {
	hub       *Hub
	jwtSecret string
	upgrader  websocket.Upgrader
}

// NewHandler crée un nouveau handler WebSocket. Une liste d'origines vide
// accepte toutes les origines.
func NewHandler(hub *Hub, jwtSecret string, allowedOrigins []string) *Handler {
	return &Handler{
		hub:       hub,
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowedOrigins) == 0 || origin == "" {
					return true
				}
				for _, o := range allowedOrigins {
					if o == "*" || o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// ServeWS gère GET /ws/notifications. Le token est lu dans ?token=, sinon
// attendu dans un premier message {"type":"authenticate","token":"..."}.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}

	token := r.URL.Query().Get("token")
	go h.authenticate(conn, token)
}

func (h *Handler) authenticate(conn *websocket.Conn, token string) {
	if token == "" {
		_ = conn.SetReadDeadline(time.Now().Add(writeWait))
		_, message, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}
		var authMsg struct {
			Type  string `json:"type"`
			Token string `json:"token"`
		}
		if err := json.Unmarshal(message, &authMsg); err != nil || authMsg.Type != "authenticate" {
			h.reject(conn, "Authentification requise")
			return
		}
		token = authMsg.Token
	}

	if token == "" {
		h.reject(conn, "Token requis")
		return
	}

	claims, err := utils.ValidateToken(token, h.jwtSecret)
	if err != nil {
		h.reject(conn, "Token invalide ou expiré")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan interface{}, 64),
		UserID: claims.UserID,
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(map[string]interface{}{
		"type":          "authenticated",
		"utilisateurId": client.UserID,
	}); err != nil {
		conn.Close()
		return
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Handler) reject(conn *websocket.Conn, message string) {
	log.Printf("❌ WebSocket refusé: %s", message)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	conn.Close()
}
