package websockets

import (
	"context"
	"time"

	"dutydesk/config"
	authController "dutydesk/internal/controllers/auth"
	"dutydesk/internal/database"
	"dutydesk/internal/events"
	"dutydesk/internal/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	MESSAGE_TYPE_PING          = "ping"
	MESSAGE_TYPE_PONG          = "pong"
	MESSAGE_TYPE_BROADCAST     = "broadcast"
	MESSAGE_TYPE_ERROR         = "error"
	MESSAGE_TYPE_AUTH_REQUEST  = "auth_request"
	MESSAGE_TYPE_AUTH_RESPONSE = "auth_response"
	MESSAGE_TYPE_AUTH_SUCCESS  = "auth_success"
	MESSAGE_TYPE_AUTH_FAILURE  = "auth_failure"
	MESSAGE_TYPE_OVERDUE_ALERT = "overdue_alert"
	PING_INTERVAL              = 30 * time.Second
	PONG_TIMEOUT               = 60 * time.Second
	WRITE_TIMEOUT              = 10 * time.Second
	MAX_MESSAGE_SIZE           = 64 * 1024
	SEND_CHANNEL_SIZE          = 64
)

type Message struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Channel     string         `json:"channel,omitempty"`
	Action      string         `json:"action,omitempty"`
	DutyOfficer string         `json:"dutyOfficer,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

type Client struct {
	ID          string
	DutyOfficer string
	Connection  *websocket.Conn
	Manager     *Manager
	Status      int
	send        chan Message
}

type Manager struct {
	hub      *Hub
	db       database.DB
	config   config.Config
	log      logger.Logger
	auth     authController.AuthControllerInterface
	eventBus *events.EventBus
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	auth authController.AuthControllerInterface,
	config config.Config,
) (*Manager, error) {
	log := logger.New("websockets")

	manager := &Manager{
		hub: &Hub{
			broadcast:  make(chan Message),
			register:   make(chan *Client),
			unregister: make(chan *Client),
			clients:    make(map[string]*Client),
		},
		db:       db,
		config:   config,
		log:      log,
		auth:     auth,
		eventBus: eventBus,
	}

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	go manager.subscribeToBroadcastEvents()
	go manager.subscribeToAlertEvents()

	return manager, nil
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")
	clientID := uuid.New().String()

	client := &Client{
		ID:         clientID,
		Connection: c,
		Manager:    m,
		Status:     STATUS_UNAUTHENTICATED,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}

	authRequest := Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_REQUEST,
		Channel:   "system",
		Action:    "authenticate",
		Timestamp: time.Now(),
	}

	if err := c.WriteJSON(authRequest); err != nil {
		log.Er("failed to send auth request", err)
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}

	log.Info("Auth request sent to client", "clientID", clientID)
	m.hub.register <- client
	defer func() {
		log.Info("Client disconnected", "clientID", clientID)
		m.hub.unregister <- client
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
	}()

	go client.readPump()
	client.writePump()
}

func (m *Manager) BroadcastMessage(message Message) {
	log := m.log.Function("BroadcastMessage")

	select {
	case m.hub.broadcast <- message:
		log.Info("Message sent to broadcast channel", "messageID", message.ID)
	default:
		log.Warn("Broadcast channel is full, dropping message", "messageID", message.ID)
	}
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.hub.unregister <- c
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
			log.Er("failed to set read deadline in pong handler", err, "clientID", c.ID)
		}
		return nil
	})

	for {
		var message Message
		err := c.Connection.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			break
		}

		message.ID = uuid.New().String()
		message.Timestamp = time.Now()

		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	if message.Type == MESSAGE_TYPE_AUTH_RESPONSE {
		c.handleAuthResponse(message)
		return
	}

	if c.Status == STATUS_UNAUTHENTICATED {
		log.Warn(
			"Blocking message from unauthenticated client",
			"clientID", c.ID,
			"messageType", message.Type,
		)
		c.send <- Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_AUTH_FAILURE,
			Channel:   "system",
			Action:    "authentication_required",
			Data:      map[string]any{"reason": "Authentication required"},
			Timestamp: time.Now(),
		}
		return
	}

	switch message.Type {
	case MESSAGE_TYPE_PING:
		c.send <- Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_PONG,
			Channel:   "system",
			Timestamp: time.Now(),
		}
	default:
		log.Warn("Unknown message type", "type", message.Type)
	}
}

func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.Status != STATUS_UNAUTHENTICATED {
		log.Warn("Auth response from already authenticated client", "clientID", c.ID)
		return
	}

	token, ok := message.Data["token"].(string)
	if !ok || token == "" {
		log.Warn("Invalid token in auth response", "clientID", c.ID)
		c.sendAuthFailure("Invalid token format")
		return
	}

	session, err := c.Manager.auth.ValidateToken(context.Background(), token)
	if err != nil {
		log.Info("WebSocket token validation failed", "clientID", c.ID, "error", err.Error())
		c.sendAuthFailure("Authentication failed")
		return
	}

	c.Status = STATUS_AUTHENTICATED
	c.DutyOfficer = session.DutyOfficer

	log.Info("Client authenticated", "clientID", c.ID, "dutyOfficer", c.DutyOfficer)

	c.send <- Message{
		ID:          uuid.New().String(),
		Type:        MESSAGE_TYPE_AUTH_SUCCESS,
		Channel:     "system",
		Action:      "authenticated",
		DutyOfficer: c.DutyOfficer,
		Timestamp:   time.Now(),
	}
}

func (c *Client) sendAuthFailure(reason string) {
	log := c.Manager.log.Function("sendAuthFailure")

	c.send <- Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_FAILURE,
		Channel:   "system",
		Action:    "authentication_failed",
		Data:      map[string]any{"reason": reason},
		Timestamp: time.Now(),
	}

	log.Info("Auth failure sent, closing connection", "clientID", c.ID, "reason", reason)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = c.Connection.Close()
	}()
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				log.Info("Channel closed", "clientID", c.ID)
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID, "message", message)
				return
			}

		case <-ticker.C:
			log.Debug("Sending ping", "clientID", c.ID)
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) subscribeToBroadcastEvents() {
	log := m.log.Function("subscribeToBroadcastEvents")
	log.Info("Starting broadcast events subscription")

	err := m.eventBus.Subscribe(events.BROADCAST_CHANNEL, func(event events.Event) error {
		m.sendToAuthenticatedClients(Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_BROADCAST,
			Channel:   "system",
			Action:    string(event.Type),
			Data:      event.Data,
			Timestamp: time.Now(),
		})
		return nil
	})
	if err != nil {
		log.Er("Failed to subscribe to broadcast events", err)
	}
}

// subscribeToAlertEvents forwards overdue and shift-change alerts from the
// event bus to every signed-in desk client.
func (m *Manager) subscribeToAlertEvents() {
	log := m.log.Function("subscribeToAlertEvents")
	log.Info("Starting alert events subscription")

	err := m.eventBus.Subscribe(events.ALERT_CHANNEL, func(event events.Event) error {
		m.sendToAuthenticatedClients(Message{
			ID:        uuid.New().String(),
			Type:      string(event.Type),
			Channel:   "alerts",
			Data:      event.Data,
			Timestamp: time.Now(),
		})
		return nil
	})
	if err != nil {
		log.Er("Failed to subscribe to alert events", err)
	}
}

func (m *Manager) sendToAuthenticatedClients(message Message) {
	log := m.log.Function("sendToAuthenticatedClients")

	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	sent := 0
	for _, client := range m.hub.clients {
		if client.Status == STATUS_AUTHENTICATED {
			select {
			case client.send <- message:
				sent++
			default:
				log.Warn("Client send channel full, dropping message", "clientID", client.ID)
			}
		}
	}

	log.Info("Message sent to authenticated clients", "messageID", message.ID, "clientCount", sent)
}
