package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"anoa.com/eduainexus/internal/modules/assistant/dto"
	"anoa.com/eduainexus/internal/modules/assistant/service"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/logger"
	"anoa.com/eduainexus/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
)

type AssistantHandler struct {
	assistantService service.AssistantService
	upgrader         websocket.Upgrader
	log              *logger.Logger
}

// NewAssistantHandler accepts upgrades from allowedOrigins. An empty list accepts any origin.
func NewAssistantHandler(assistantService service.AssistantService, allowedOrigins []string, log *logger.Logger) *AssistantHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AssistantHandler{
		assistantService: assistantService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log.With("component", "assistant_ws"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(set) == 0 || origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func errorText(err error) string {
	if apperror.MapErrorToStatus(err) == http.StatusInternalServerError {
		return apperror.ErrInternal.Error()
	}
	return err.Error()
}

// readPump forwards client messages until the connection fails. Pongs keep the
// read deadline moving.
func (h *AssistantHandler) readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, incoming chan<- dto.ChatMessage) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg dto.ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read ended", "error", err)
			}
			return
		}
		select {
		case incoming <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// writePump owns every write on conn.
func (h *AssistantHandler) writePump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, outgoing <-chan *dto.ChatEvent) {
	defer cancel()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-outgoing:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// HandleWebSocket serves one chat per connection. Messages are answered in order.
func (h *AssistantHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("failed to upgrade websocket", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	incoming := make(chan dto.ChatMessage, 8)
	outgoing := make(chan *dto.ChatEvent, 8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writePump(ctx, cancel, conn, outgoing)
	}()
	defer wg.Wait()
	defer cancel()

	go h.readPump(ctx, cancel, conn, incoming)

	chat := h.assistantService.NewChat(userID)
	h.log.Debug("assistant connected", "user_id", userID)

	send := func(ev *dto.ChatEvent) bool {
		select {
		case outgoing <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !send(&dto.ChatEvent{Type: dto.EventReady, Mode: chat.Mode()}) {
		return
	}
	for {
		select {
		case msg := <-incoming:
			ev, err := chat.Send(ctx, msg.Text, msg.Mode)
			if err != nil {
				ev = &dto.ChatEvent{Type: dto.EventError, Mode: chat.Mode(), Error: errorText(err)}
			}
			if !send(ev) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
