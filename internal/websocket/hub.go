package websocket

import (
	"encoding/json"
	"log"
	"time"
)

// StockEvent is pushed to every connected terminal when a transaction
// is recorded, so open rack views refresh without polling.
type StockEvent struct {
	Type           string    `json:"type"` // always "transaction"
	RackID         string    `json:"rackId"`
	CellIndex      int       `json:"cellIndex"`
	PartNumber     string    `json:"partNumber"`
	QuantityChange int       `json:"quantityChange"`
	NewQuantity    int       `json:"newQuantity"`
	EmployeeID     string    `json:"employeeId"`
	Timestamp      time.Time `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts stock events
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("📱 Terminal connected (%d active)", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("📴 Terminal disconnected (%d active)", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast fans a stock event out to all connected clients.
func (h *Hub) Broadcast(event StockEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling stock event: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Println("Stock event dropped: broadcast queue full")
	}
}
