package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub держит подключённых клиентов. Всё состояние меняется только в Run.
type Hub struct {
	clients     map[*Client]bool
	userClients map[uuid.UUID]map[*Client]bool
	broadcast   chan []byte
	direct      chan directMessage
	register    chan *Client
	unregister  chan *Client
	count       chan chan int
	done        chan struct{}
	logger      *zap.Logger
}

type directMessage struct {
	userID  uuid.UUID
	message []byte
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[uuid.UUID]map[*Client]bool),
		broadcast:   make(chan []byte, 32),
		direct:      make(chan directMessage, 32),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		count:       make(chan chan int),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run обслуживает хаб до отмены ctx, после чего закрывает всех клиентов.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			h.logger.Info("WebSocket хаб остановлен")
			return
		case client := <-h.register:
			h.clients[client] = true
			if h.userClients[client.UserID] == nil {
				h.userClients[client.UserID] = make(map[*Client]bool)
			}
			h.userClients[client.UserID][client] = true
			h.logger.Debug("Клиент зарегистрирован", zap.String("user_id", client.UserID.String()))
		case client := <-h.unregister:
			if h.clients[client] {
				h.remove(client)
				h.logger.Debug("Клиент отсоединён", zap.String("user_id", client.UserID.String()))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		case msg := <-h.direct:
			for client := range h.userClients[msg.userID] {
				h.deliver(client, msg.message)
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		h.logger.Warn("Клиент не успевает читать, соединение закрыто", zap.String("user_id", client.UserID.String()))
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	if set := h.userClients[client.UserID]; set != nil {
		delete(set, client)
		if len(set) == 0 {
			delete(h.userClients, client.UserID)
		}
	}
	close(client.Send)
}

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount возвращает число активных соединений.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Broadcast рассылает сообщение всем подключённым клиентам.
func (h *Hub) Broadcast(payload interface{}, messageType string) error {
	message, err := encode(payload, messageType)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
	return nil
}

// SendMessageToUser отправляет сообщение всем соединениям пользователя.
func (h *Hub) SendMessageToUser(userID uuid.UUID, payload interface{}, messageType string) error {
	message, err := encode(payload, messageType)
	if err != nil {
		return err
	}
	select {
	case h.direct <- directMessage{userID: userID, message: message}:
	case <-h.done:
	}
	return nil
}

func encode(payload interface{}, messageType string) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}
