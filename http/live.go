package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"phoneprice/ml"
)

const (
	liveIdleTimeout  = 5 * time.Minute
	liveWriteTimeout = 10 * time.Second
	liveMaxMessage   = 64 << 10
)

// MessageType tags frames sent on the live connection.
type MessageType string

const (
	PredictionMessage MessageType = "prediction"
	ErrorMessage      MessageType = "error"
)

type liveMessage struct {
	Type       MessageType    `json:"type"`
	Prediction *ml.Prediction `json:"prediction,omitempty"`
	Error      string         `json:"error,omitempty"`
	Status     int            `json:"status,omitempty"`
}

// liveHandler re-evaluates the form on every message, so a page can show
// the tier while the user is still editing.
type liveHandler struct {
	handlers *handlers
	upgrader websocket.Upgrader
}

func newLiveHandler(h *handlers, allowedOrigins []string) *liveHandler {
	return &liveHandler{
		handlers: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
					return true
				}
				return originAllowed(allowedOrigins, origin)
			},
		},
	}
}

func (l *liveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := l.handlers.logger.With(zap.String("request_id", GetRequestID(r.Context())))
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(liveMaxMessage)

	for {
		conn.SetReadDeadline(time.Now().Add(liveIdleTimeout))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket closed", zap.Error(err))
			}
			return
		}

		reply := l.evaluate(r, payload)
		conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (l *liveHandler) evaluate(r *http.Request, payload []byte) liveMessage {
	var req predictRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return liveMessage{Type: ErrorMessage, Error: "invalid message: " + err.Error(), Status: http.StatusBadRequest}
	}
	prediction, err := l.handlers.predict(r.Context(), req.Features)
	if err != nil {
		return liveMessage{Type: ErrorMessage, Error: err.Error(), Status: statusFor(err)}
	}
	return liveMessage{Type: PredictionMessage, Prediction: &prediction}
}
