package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Pipeline event message types
const (
	MsgStageStarted      MessageType = "stage_started"
	MsgStageCompleted    MessageType = "stage_completed"
	MsgPipelineCompleted MessageType = "pipeline_completed"
	MsgPipelineFailed    MessageType = "pipeline_failed"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket subscribers per contract
type Hub struct {
	// contract id -> subscribed connections
	subscribers map[string]map[*Connection]bool

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection subscribed to one contract
type Connection struct {
	ContractID string
	ReviewerID string
	Send       chan []byte
	Hub        *Hub
}

// BroadcastMessage is a message to broadcast to a contract's subscribers
type BroadcastMessage struct {
	ContractID string
	Message    *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		subscribers: make(map[string]map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.subscribers[conn.ContractID] == nil {
				h.subscribers[conn.ContractID] = make(map[*Connection]bool)
			}
			h.subscribers[conn.ContractID][conn] = true
			log.Printf("Reviewer %s subscribed to contract %s", conn.ReviewerID, conn.ContractID)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.subscribers[conn.ContractID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					log.Printf("Reviewer %s unsubscribed from contract %s", conn.ReviewerID, conn.ContractID)
				}
				if len(conns) == 0 {
					delete(h.subscribers, conn.ContractID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.subscribers[msg.ContractID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToContract sends a message to every subscriber of a contract
// (implements service.Broadcaster)
func (h *Hub) BroadcastToContract(contractID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		ContractID: contractID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
