package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
)

// Stream message types
const (
	StreamTypeMap   = "map"
	StreamTypeError = "error"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
	streamMaxMessage = 4096
)

// ViewportRequest is a client message asking for one viewport.
type ViewportRequest struct {
	Bounds *spatial.MapBounds `json:"bounds"`
	Month  int                `json:"month"`
	Mode   string             `json:"mode"`
	Locale string             `json:"locale"`
}

// StreamMessage is a server message on the viewport stream.
type StreamMessage struct {
	Type    string        `json:"type"`
	Key     string        `json:"key,omitempty"`
	Data    *mapdata.View `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
}

// StreamHandler serves map payloads over a websocket. Each viewport message
// is loaded concurrently; a payload is only sent while its viewport is still
// the latest one the client asked for.
type StreamHandler struct {
	maps     *mapdata.Service
	log      *zap.Logger
	upgrader websocket.Upgrader
	now      func() time.Time
}

// NewStreamHandler creates a new stream handler. checkOrigin may be nil to
// accept any origin.
func NewStreamHandler(maps *mapdata.Service, log *zap.Logger, checkOrigin func(*http.Request) bool) *StreamHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &StreamHandler{
		maps: maps,
		log:  log.Named("stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		now: time.Now,
	}
}

// Stream handles GET /api/v1/map/stream
func (h *StreamHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	s := &streamSession{
		handler:  h,
		conn:     conn,
		viewport: &mapdata.Viewport[*mapdata.View]{},
	}
	defer func() {
		cancel()
		s.wg.Wait()
		conn.Close()
	}()

	done := make(chan struct{})
	defer close(done)
	go s.ping(done)

	s.read(ctx)
}

type streamSession struct {
	handler  *StreamHandler
	conn     *websocket.Conn
	viewport *mapdata.Viewport[*mapdata.View]
	writeMu  sync.Mutex
	wg       sync.WaitGroup
}

func (s *streamSession) read(ctx context.Context) {
	s.conn.SetReadLimit(streamMaxMessage)
	s.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.handler.log.Warn("stream read failed", zap.Error(err))
			}
			return
		}

		var req ViewportRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			s.write(StreamMessage{Type: StreamTypeError, Message: "invalid viewport message"})
			continue
		}
		opts, err := renderOptions(req.Month, req.Mode, req.Locale, s.handler.now())
		if err != nil {
			s.write(StreamMessage{Type: StreamTypeError, Message: err.Error()})
			continue
		}

		if req.Bounds == nil {
			s.write(StreamMessage{Type: StreamTypeError, Message: apperror.Invalid("bounds", "is required").Error()})
			continue
		}
		bounds := *req.Bounds
		if err := bounds.Validate(); err != nil {
			s.write(StreamMessage{Type: StreamTypeError, Message: err.Error()})
			continue
		}

		ticket := s.viewport.Begin(spatial.Quantize(bounds).Key())
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(ctx, ticket, bounds, opts)
		}()
	}
}

// serve loads one viewport and sends it unless a newer viewport has been
// applied or requested in the meantime.
func (s *streamSession) serve(ctx context.Context, ticket mapdata.Ticket, bounds spatial.MapBounds, opts mapdata.RenderOptions) {
	data, err := s.handler.maps.Load(ctx, bounds)
	if err != nil {
		if ctx.Err() != nil || s.viewport.Key() != ticket.Key {
			return
		}
		msg := "failed to load map data"
		if apperror.IsValidation(err) {
			msg = err.Error()
		}
		s.handler.log.Warn("viewport load failed", zap.String("key", ticket.Key), zap.Error(err))
		s.write(StreamMessage{Type: StreamTypeError, Key: ticket.Key, Message: msg})
		return
	}

	view := mapdata.Render(data, opts)
	// Commit and send under the write lock so payloads leave in commit order.
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if !s.viewport.Commit(ticket, view) {
		s.handler.log.Debug("dropping stale viewport", zap.String("key", ticket.Key), zap.Uint64("seq", ticket.Seq))
		return
	}
	s.writeLocked(StreamMessage{Type: StreamTypeMap, Key: ticket.Key, Data: view})
}

func (s *streamSession) write(msg StreamMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.writeLocked(msg)
}

func (s *streamSession) writeLocked(msg StreamMessage) {
	s.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.handler.log.Debug("stream write failed", zap.Error(err))
	}
}

func (s *streamSession) ping(done <-chan struct{}) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
