package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zgamesdev/zgames-backend/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// GlobalRoom получает уведомления по всем турнирам сразу.
	GlobalRoom = "leaderboard"
)

// TournamentRoom — имя комнаты, в которую рассылаются события одного турнира.
func TournamentRoom(tournamentID string) string {
	return "tournament_" + tournamentID
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string

	mu     sync.Mutex
	closed bool
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// LeaderboardUpdate — событие "очки записаны, лидерборд устарел". Клиенты
// по нему перезапрашивают лидерборд; сами данные в событии не передаются.
type LeaderboardUpdate struct {
	TournamentID string           `json:"tournament_id"`
	GameID       string           `json:"game_id"`
	Mode         models.ScoreMode `json:"mode"`
	RequestID    string           `json:"request_id"`
	Timestamp    time.Time        `json:"timestamp"`
}

type Hub struct {
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[client.room]; !ok {
		h.rooms[client.room] = make(map[*Client]bool)
	}
	h.rooms[client.room][client] = true
	h.logger.Debug("websocket client registered", "room", client.room, "clients", len(h.rooms[client.room]))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.room]
	if !ok {
		return
	}
	if _, okClient := room[client]; !okClient {
		return
	}
	client.mu.Lock()
	if !client.closed {
		close(client.send)
		client.closed = true
	}
	client.mu.Unlock()
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.room)
	}
	h.logger.Debug("websocket client unregistered", "room", client.room)
}

// RoomSize возвращает число подключённых клиентов комнаты.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRoom отправляет сообщение всем клиентам комнаты. Медленные
// клиенты с переполненным каналом пропускаются.
func (h *Hub) BroadcastToRoom(roomID string, message Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "room", roomID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[roomID] {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("websocket client send buffer full, dropping message", "room", roomID)
		}
		client.mu.Unlock()
	}
}

// NotifyLeaderboardUpdated рассылает событие об изменении лидерборда в
// комнату турнира и в глобальную комнату. Вызывается после коммита записи
// очков; сбои доставки на запись не влияют.
func (h *Hub) NotifyLeaderboardUpdated(tournamentID, gameID string, mode models.ScoreMode, requestID string) {
	update := LeaderboardUpdate{
		TournamentID: tournamentID,
		GameID:       gameID,
		Mode:         mode,
		RequestID:    requestID,
		Timestamp:    time.Now().UTC(),
	}
	room := TournamentRoom(tournamentID)
	h.BroadcastToRoom(room, Message{Type: "leaderboardUpdated", Payload: update, RoomID: room})
	h.BroadcastToRoom(GlobalRoom, Message{Type: "leaderboardUpdated", Payload: update, RoomID: GlobalRoom})
}

// NewClient привязывает соединение к комнате и регистрирует его в хабе.
func (h *Hub) NewClient(conn *websocket.Conn, room string) *Client {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 16),
		room: room,
	}
	h.register <- client
	return client
}

// ReadPump вычитывает входящие сообщения. Клиентские сообщения игнорируются,
// цикл нужен для обработки pong и обнаружения разрыва.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", "room", c.room, "error", err)
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Дренируем накопившиеся сообщения в тот же фрейм-цикл.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
