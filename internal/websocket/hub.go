package chatws

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/services"
	websocket "github.com/gofiber/contrib/websocket"
)

const (
	EventMessage = "message"
	EventTyping  = "typing"
	EventError   = "error"
)

// Event is the wire envelope for everything crossing a chat socket.
type Event struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	SenderID       string `json:"sender_id,omitempty"`
	RecipientID    string `json:"recipient_id,omitempty"`
	Content        string `json:"content,omitempty"`
	Timestamp      string `json:"timestamp"`
}

type chatRelay interface {
	SendMessage(
		ctx context.Context,
		actorID int64,
		role string,
		conversationID int64,
		content string,
	) (*services.ChatDelivery, error)
	ConversationPeer(ctx context.Context, actorID, conversationID int64) (int64, error)
}

// Hub fans chat events out to the connected sockets of both conversation
// participants. A user can hold several connections at once.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	relay      chan *Event
}

// Client pairs a socket with its outbound buffer. The send channel is never
// closed; the hub signals shutdown by closing done, so goroutines racing a
// drop can still select-send safely.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
	done   chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		relay:      make(chan *Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
		done:   make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.done)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case event := <-h.relay:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) deliver(event *Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("chat hub encode event: %v", err)
		return
	}

	// Typing indicators go to the peer only; messages echo to the sender
	// so their other open tabs stay in sync.
	if event.Type != EventTyping {
		h.sendToUser(event.SenderID, encoded)
	}
	if event.RecipientID != "" && event.RecipientID != event.SenderID {
		h.sendToUser(event.RecipientID, encoded)
	}
}

func (h *Hub) sendToUser(userID string, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	// Slow consumers are dropped rather than blocking the hub. The set
	// membership guard keeps done from being closed twice when ReadPump
	// unregisters a client the hub already dropped.
	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.done)
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

func (c *Client) ReadPump(service chatRelay, role string) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	actorID, err := strconv.ParseInt(c.userID, 10, 64)
	if err != nil {
		c.writeError("invalid user")
		return
	}

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type           string `json:"type"`
			ConversationID string `json:"conversation_id"`
			Content        string `json:"content"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			c.writeError("invalid event payload")
			continue
		}

		conversationID, err := strconv.ParseInt(incoming.ConversationID, 10, 64)
		if err != nil || conversationID <= 0 {
			c.writeError("invalid conversation id")
			continue
		}

		switch incoming.Type {
		case EventMessage:
			delivery, err := service.SendMessage(
				context.Background(),
				actorID,
				role,
				conversationID,
				incoming.Content,
			)
			if err != nil {
				c.writeError("failed to send message")
				continue
			}

			c.hub.relay <- &Event{
				Type:           EventMessage,
				ConversationID: strconv.FormatInt(delivery.Message.ConversationID, 10),
				SenderID:       strconv.FormatInt(delivery.Message.SenderID, 10),
				RecipientID:    strconv.FormatInt(delivery.RecipientID, 10),
				Content:        delivery.Message.Content,
				Timestamp:      services.FormatChatTimestamp(delivery.Message.CreatedAt),
			}

		case EventTyping:
			peerID, err := service.ConversationPeer(context.Background(), actorID, conversationID)
			if err != nil {
				c.writeError("invalid conversation id")
				continue
			}

			c.hub.relay <- &Event{
				Type:           EventTyping,
				ConversationID: incoming.ConversationID,
				SenderID:       c.userID,
				RecipientID:    strconv.FormatInt(peerID, 10),
				Timestamp:      services.FormatChatTimestamp(time.Now().UTC()),
			}

		default:
			c.writeError("unsupported event type")
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) writeError(message string) {
	payload, err := json.Marshal(Event{
		Type:      EventError,
		Content:   message,
		Timestamp: services.FormatChatTimestamp(time.Now().UTC()),
	})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	case <-c.done:
	default:
		c.hub.Unregister(c)
	}
}
