package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/verte-zerg/japa/internal/model"
	"github.com/verte-zerg/japa/internal/session"
	"github.com/verte-zerg/japa/internal/stats"
)

const (
	wsReadLimit  = 16 << 10
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsWriteWait  = 10 * time.Second
	pasteNotice  = "pasting is disabled; type the mantra yourself"
)

// Client message types.
const (
	msgInput = "input"
	msgPaste = "paste"
	msgReset = "reset"
)

// Server message types.
const (
	msgState    = "state"
	msgOutcome  = "outcome"
	msgRejected = "rejected"
	msgError    = "error"
)

type clientMessage struct {
	Type  string `json:"type"`
	Input string `json:"input,omitempty"`
}

type serverMessage struct {
	Type             string          `json:"type"`
	Text             string          `json:"text,omitempty"`
	Accuracy         int             `json:"accuracy"`
	Accepted         bool            `json:"accepted"`
	Count            int             `json:"count"`
	SessionCompleted bool            `json:"session_completed,omitempty"`
	Unlocked         []string        `json:"unlocked,omitempty"`
	Suggestion       string          `json:"suggestion"`
	WPM              float64         `json:"wpm,omitempty"`
	Progress         *model.Progress `json:"progress,omitempty"`
	LocalOnly        bool            `json:"local_only,omitempty"`
	Warning          string          `json:"warning,omitempty"`
	Notice           string          `json:"notice,omitempty"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(s.cfg.AllowedOrigins, origin)
		},
	}
}

// handlePractice runs one session controller per connection.
func (s *Server) handlePractice(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		Error(w, http.StatusBadRequest, "missing user")
		return
	}
	sc, err := s.scorerFor(r.URL.Query().Get("variant"))
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	logger := s.logger.With("conn_id", uuid.NewString(), "user", user, "variant", sc.Variant().String())
	logger.Info("Practice connection opened")
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
		logger.Info("Practice connection closed")
	}()

	ctx := r.Context()
	ctrl, warning := session.New(ctx, session.Config{
		UserKey:   user,
		Scorer:    sc,
		Persister: s.repo,
	})
	if warning != "" {
		logger.Warn("Practicing without persistence", "warning", warning)
	}

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writes := make(chan serverMessage, 8)
	done := make(chan struct{})
	go s.writeLoop(conn, writes, done, logger)
	defer func() {
		close(writes)
		<-done
	}()

	progress := ctrl.Progress()
	writes <- serverMessage{
		Type:       msgState,
		Text:       sc.Target(),
		Count:      ctrl.Count(),
		Suggestion: sc.Suggest(""),
		Progress:   &progress,
		LocalOnly:  ctrl.LocalOnly(),
		Warning:    warning,
	}

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read failed", "error", err)
			}
			return
		}
		switch msg.Type {
		case msgInput:
			writes <- outcomeMessage(ctrl, ctrl.Handle(ctx, msg.Input))
		case msgPaste:
			writes <- serverMessage{Type: msgRejected, Count: ctrl.Count(), Notice: pasteNotice}
		case msgReset:
			ctrl.Reset()
			writes <- serverMessage{Type: msgState, Count: ctrl.Count(), Suggestion: sc.Suggest("")}
		default:
			writes <- serverMessage{Type: msgError, Notice: "unknown message type " + msg.Type}
		}
	}
}

func outcomeMessage(ctrl *session.Controller, out session.Outcome) serverMessage {
	msg := serverMessage{
		Type:             msgOutcome,
		Accuracy:         out.Accuracy,
		Accepted:         out.Accepted,
		Count:            out.Count,
		SessionCompleted: out.SessionCompleted,
		Suggestion:       out.Suggestion,
		LocalOnly:        ctrl.LocalOnly(),
		Warning:          out.Warning,
	}
	for _, id := range out.Unlocked {
		msg.Unlocked = append(msg.Unlocked, id.String())
	}
	if out.Repetition != nil {
		msg.WPM, _ = stats.RepetitionMetrics(out.Repetition.Chars, out.Repetition.DurationMs)
	}
	if out.SessionCompleted {
		p := ctrl.Progress()
		msg.Progress = &p
	}
	return msg
}

// writeLoop owns all writes to conn, including keepalive pings.
func (s *Server) writeLoop(conn *websocket.Conn, writes <-chan serverMessage, done chan<- struct{}, logger *slog.Logger) {
	defer close(done)
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	failed := false
	for {
		select {
		case msg, ok := <-writes:
			if !ok {
				return
			}
			if failed {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Warn("WebSocket write failed", "error", err)
				failed = true
			}
		case <-ticker.C:
			if failed {
				continue
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				failed = true
			}
		}
	}
}
