package websocket

import (
	"log"
	"sync"
)

// Hub gère les connexions WebSocket actives du flux de notifications.
// Un utilisateur peut avoir plusieurs connexions (onglets, appareils).
type Hub struct {
	connections map[int64]map[*Client]bool
	mu          sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	once       sync.Once
}

// Message est un message à diffuser aux connexions d'un utilisateur
type Message struct {
	UserID  int64
	Payload interface{}
}

// NewHub crée un nouveau hub WebSocket
func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Message, 256),
		done:        make(chan struct{}),
	}
}

// Run démarre la boucle principale du hub
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.connections[client.UserID] == nil {
				h.connections[client.UserID] = make(map[*Client]bool)
			}
			h.connections[client.UserID][client] = true
			h.mu.Unlock()
			log.Printf("🔌 Client connecté: %d (connexions: %d)", client.UserID, h.Count())

		case client := <-h.unregister:
			h.remove(client)
			log.Printf("👋 Client déconnecté: %d (connexions: %d)", client.UserID, h.Count())

		case message := <-h.broadcast:
			h.mu.RLock()
			var full []*Client
			for client := range h.connections[message.UserID] {
				select {
				case client.send <- message.Payload:
				default:
					full = append(full, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range full {
				log.Printf("❌ Canal plein pour %d, connexion fermée", client.UserID)
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.connections[client.UserID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.connections, client.UserID)
	}
}

// SendToUser envoie un message à toutes les connexions d'un utilisateur.
// Ne bloque jamais : le message est abandonné si le hub est saturé ou arrêté.
func (h *Hub) SendToUser(userID int64, payload interface{}) {
	select {
	case <-h.done:
	case h.broadcast <- &Message{UserID: userID, Payload: payload}:
	default:
		log.Printf("⚠️  Hub saturé, message pour %d abandonné", userID)
	}
}

// IsUserOnline vérifie si un utilisateur a au moins une connexion active
func (h *Hub) IsUserOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID]) > 0
}

// Count retourne le nombre total de connexions
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.connections {
		n += len(clients)
	}
	return n
}

// Shutdown arrête le hub et ferme toutes les connexions
func (h *Hub) Shutdown() {
	h.once.Do(func() {
		log.Printf("🔄 Arrêt du hub WebSocket...")
		close(h.done)

		h.mu.Lock()
		for _, clients := range h.connections {
			for client := range clients {
				close(client.send)
				client.conn.Close()
			}
		}
		h.connections = make(map[int64]map[*Client]bool)
		h.mu.Unlock()

		log.Printf("✅ Hub WebSocket arrêté")
	})
}
