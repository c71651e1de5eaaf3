package notify

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

type publishRequest struct {
	userID uuid.UUID
	data   []byte
}

// Hub fans events out to the websocket clients of individual users. A user
// may hold several connections (multiple tabs/devices); each gets a copy.
type Hub struct {
	clients map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	publish    chan publishRequest
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan publishRequest, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true

		case client := <-h.unregister:
			if conns, ok := h.clients[client.userID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}

		case req := <-h.publish:
			for client := range h.clients[req.userID] {
				select {
				case client.send <- req.data:
				default:
					// Slow consumer; drop it rather than block the hub.
					delete(h.clients[req.userID], client)
					close(client.send)
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Publish delivers an event to all of a user's connected clients. Users
// with no open sockets simply miss the event; every push has a durable
// counterpart readable over the REST API.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR [notify.Hub] failed to marshal event: %v", err)
		return
	}
	h.publish <- publishRequest{userID: userID, data: data}
}
