package ws

import (
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/deskforge/deskos/internal/domain/runtime"
	"github.com/deskforge/deskos/internal/domain/window"
	"github.com/deskforge/deskos/internal/events"
	"github.com/deskforge/deskos/internal/infrastructure/logging"
	"github.com/deskforge/deskos/internal/infrastructure/monitoring"
	"github.com/deskforge/deskos/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // host surfaces connect from any origin in dev
	},
}

// Handler streams desktop events to connected host surfaces and feeds
// their pointer input into the window manager.
type Handler struct {
	wm      *window.Manager
	runtime *runtime.Runtime
	bus     *events.Bus
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a WebSocket handler.
func NewHandler(wm *window.Manager, rt *runtime.Runtime, bus *events.Bus, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{wm: wm, runtime: rt, bus: bus, log: log, metrics: metrics}
}

// message is one frame in either direction.
type message struct {
	Type      string                 `json:"type"`
	Topic     string                 `json:"topic,omitempty"`
	App       string                 `json:"app,omitempty"`
	Window    string                 `json:"window,omitempty"`
	Direction string                 `json:"direction,omitempty"`
	X         int                    `json:"x,omitempty"`
	Y         int                    `json:"y,omitempty"`
	Params    map[string]interface{} `json:"params,omitempty"`
	Payload   events.Payload         `json:"payload,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// HandleConnection upgrades the request and serves the surface until
// it disconnects. Every bus topic in events.Stream is forwarded; the
// subscriptions are removed when the surface goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	var writeMu sync.Mutex
	send := func(msg message) {
		data, err := sonic.Marshal(msg)
		if err != nil {
			return
		}
		writeMu.Lock()
		_ = conn.WriteMessage(websocket.TextMessage, data)
		writeMu.Unlock()
	}

	unsubs := make([]events.Unsubscribe, 0, len(events.Stream))
	for _, topic := range events.Stream {
		topic := topic
		unsubs = append(unsubs, h.bus.Subscribe(topic, func(p events.Payload) {
			send(message{Type: "event", Topic: topic, Payload: p})
		}))
	}
	defer func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}()

	send(message{Type: "system", Topic: "connected"})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			send(message{Type: "error", Error: "malformed message"})
			continue
		}
		h.dispatch(send, msg)
	}
}

func (h *Handler) dispatch(send func(message), msg message) {
	switch msg.Type {
	case "ping":
		send(message{Type: "pong"})

	case "launch":
		if _, err := h.runtime.Launch(msg.App, msg.Params); err != nil {
			send(message{Type: "error", Error: err.Error()})
		}

	case "focus":
		h.wm.Focus(msg.Window)
	case "minimize":
		h.wm.Minimize(msg.Window)
	case "restore":
		h.wm.Restore(msg.Window)
	case "maximize":
		h.wm.Maximize(msg.Window)
	case "close":
		h.wm.Close(msg.Window)

	case "drag:start":
		if err := h.wm.StartDrag(msg.Window, msg.X, msg.Y); err != nil {
			send(message{Type: "error", Error: err.Error()})
		}
	case "drag:move":
		h.wm.DragTo(msg.X, msg.Y)
	case "drag:end":
		h.wm.EndDrag()
	case "drag:contact":
		h.wm.DragContact()

	case "resize:start":
		if err := h.wm.StartResize(msg.Window, types.ResizeDir(msg.Direction), msg.X, msg.Y); err != nil {
			send(message{Type: "error", Error: err.Error()})
		}
	case "resize:move":
		h.wm.ResizeTo(msg.X, msg.Y)
	case "resize:end":
		h.wm.EndResize()
	case "resize:contact":
		h.wm.ResizeContact()

	default:
		send(message{Type: "error", Error: "unknown message type"})
	}
}
