package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/geo/r2"
	"github.com/gorilla/websocket"

	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/service"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 64 * 1024,
}

// StreamEvent is one client event on the websocket. Action selects which
// fields are read.
type StreamEvent struct {
	Action    string   `json:"action"`
	Attribute string   `json:"attribute,omitempty"`
	Low       float64  `json:"low,omitempty"`
	High      float64  `json:"high,omitempty"`
	Selected  []string `json:"selected,omitempty"`
	Key       string   `json:"key,omitempty"`
	X         float64  `json:"x,omitempty"`
	Y         float64  `json:"y,omitempty"`
	K         float64  `json:"k,omitempty"`
}

// StreamMessage is sent to the client: a frame, or an error for an event
// it sent
type StreamMessage struct {
	Action string        `json:"action"`
	Frame  *models.Frame `json:"frame,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// StreamHandler pushes frames to websocket clients and accepts their events
type StreamHandler struct {
	session *service.Session
	log     *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(session *service.Session, log *slog.Logger) *StreamHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StreamHandler{session: session, log: log.With("component", "Stream")}
}

// conn serializes writes to one websocket
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(msg StreamMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(msg)
}

// Stream handles GET /api/v1/stream. The client first receives a snapshot
// frame creating every current marker, then every published frame. Frames
// with a generation at or below the snapshot's can be ignored.
func (h *StreamHandler) Stream(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()
	out := &conn{ws: ws}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// subscribe before the snapshot so no frame falls between them
	id, frames := h.session.Hub().Subscribe()
	defer h.session.Hub().Unsubscribe(id)
	h.log.Info("stream client connected", "id", id)

	snapshot, err := h.session.Snapshot(ctx)
	if err != nil {
		h.log.Warn("failed to build snapshot", "id", id, "error", err)
		return
	}
	if err := out.send(StreamMessage{Action: service.TriggerSnapshot, Frame: &snapshot}); err != nil {
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case f, ok := <-frames:
				if !ok {
					return
				}
				if err := out.send(StreamMessage{Action: "frame", Frame: &f}); err != nil {
					h.log.Warn("failed to write frame", "id", id, "error", err)
					cancel()
					return
				}
			}
		}
	}()

	for {
		var ev StreamEvent
		if err := ws.ReadJSON(&ev); err != nil {
			h.log.Info("stream client disconnected", "id", id, "error", err.Error())
			return
		}
		if err := h.dispatch(ctx, ev); err != nil {
			if err := out.send(StreamMessage{Action: "error", Error: err.Error()}); err != nil {
				return
			}
		}
	}
}

// dispatch runs one client event; the resulting frame reaches the client
// through the hub
func (h *StreamHandler) dispatch(ctx context.Context, ev StreamEvent) error {
	var err error
	switch ev.Action {
	case "quantitative":
		_, err = h.session.UpdateQuantitativeFilter(ctx, ev.Attribute, ev.Low, ev.High)
	case "nominal":
		_, err = h.session.UpdateNominalFilter(ctx, ev.Attribute, ev.Selected)
	case "color":
		_, err = h.session.SelectColorAttribute(ctx, ev.Attribute)
	case "reset":
		_, err = h.session.ResetFilters(ctx)
	case "transform":
		_, err = h.session.ApplyTransform(ctx, models.Transform{X: ev.X, Y: ev.Y, K: ev.K})
	case "gesture_begin":
		_, err = h.session.Gesture(ctx, true)
	case "gesture_end":
		_, err = h.session.Gesture(ctx, false)
	case "hover_in":
		if ev.Key == "" {
			_, err = h.session.HoverAt(ctx, r2.Point{X: ev.X, Y: ev.Y})
		} else {
			_, err = h.session.HoverIn(ctx, ev.Key, r2.Point{X: ev.X, Y: ev.Y})
		}
	case "hover_out":
		_, err = h.session.HoverOut(ctx)
	default:
		return fmt.Errorf("unknown action: %q", ev.Action)
	}
	return err
}
