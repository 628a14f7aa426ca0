package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zgamesdev/zgames-backend/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: ограничить Origin доменом фронтенда перед продакшеном.
		return true
	},
}

type WebSocketHandler struct {
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeTournament подписывает клиента на события одного турнира.
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		http.Error(w, "missing tournament id", http.StatusBadRequest)
		return
	}
	h.serve(w, r, realtime.TournamentRoom(tournamentID))
}

// ServeGlobal подписывает клиента на события всех турниров.
func (h *WebSocketHandler) ServeGlobal(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, realtime.GlobalRoom)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.Warn("websocket upgrade failed", "room", room, "error", err)
		return
	}

	client := h.hub.NewClient(conn, room)
	go client.WritePump()
	go client.ReadPump()
}
