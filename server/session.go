package server

import (
	"sync"
	"time"

	gesture "github.com/esimov/gesture/core"
	"github.com/esimov/gesture/frame"
	"github.com/esimov/gesture/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Pending gesture events per session.
	sendBuffer = 64
)

// session is one connected face detector.
type session struct {
	id      string
	server  *Server
	conn    *websocket.Conn
	tracker *gesture.Tracker
	limiter *rate.Limiter
	logger  *zap.SugaredLogger

	send      chan gesture.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(s *Server, conn *websocket.Conn, tracker *gesture.Tracker, limiter *rate.Limiter) *session {
	id := uuid.NewString()
	return &session{
		id:      id,
		server:  s,
		conn:    conn,
		tracker: tracker,
		limiter: limiter,
		logger:  s.logger.With(logger.FieldSession, id),
		send:    make(chan gesture.Event, sendBuffer),
		done:    make(chan struct{}),
	}
}

// readPump decodes the incoming frames and classifies them in arrival order.
func (sess *session) readPump() {
	defer func() {
		sess.server.unregister(sess)
		sess.close()
	}()

	sess.conn.SetReadLimit(maxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				sess.logger.Warnw("websocket read error", logger.FieldError, err)
			}
			return
		}
		sess.server.metrics.FramesReceived.Inc()

		var f frame.Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			sess.server.metrics.DecodeErrors.Inc()
			sess.logger.Warnw("malformed frame", logger.FieldError, err)
			continue
		}
		sess.handleFrame(&f)
	}
}

// handleFrame classifies one frame and queues the emitted gestures.
func (sess *session) handleFrame(f *frame.Frame) {
	m := sess.server.metrics

	// Frames arriving faster than the camera rate are late; drop them.
	if !sess.limiter.Allow() {
		m.FramesDropped.Inc()
		return
	}
	if f.Skip() {
		if f.Error != "" {
			sess.logger.Debugw("detector error", logger.FieldSeq, f.Seq, logger.FieldError, f.Error)
		}
		m.FramesSkipped.Inc()
		return
	}

	m.FramesClassified.Inc()
	for _, ev := range sess.tracker.ObserveFrame(f.Seq, f.Timestamp, f.Faces) {
		sess.logger.Debugw(ev.Kind.Message(),
			logger.FieldSeq, ev.Seq,
			logger.FieldGesture, ev.Kind.String(),
			logger.FieldTracking, ev.TrackingID,
		)
		select {
		case sess.send <- ev:
		case <-sess.done:
			return
		default:
			sess.logger.Warnw("send buffer full, gesture discarded", logger.FieldGesture, ev.Kind.String())
		}
	}
}

// writePump delivers the gesture events and keeps the connection alive.
func (sess *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sess.close()
	}()

	for {
		select {
		case ev := <-sess.send:
			data, err := json.Marshal(ev)
			if err != nil {
				sess.logger.Errorw("encoding gesture event", logger.FieldError, err)
				continue
			}
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sess.done:
			return
		}
	}
}

func (sess *session) close() {
	sess.closeOnce.Do(func() {
		close(sess.done)
		_ = sess.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = sess.conn.Close()
	})
}
