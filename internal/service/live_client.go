package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mock_interview_backend/internal/util"
	"mock_interview_backend/pkg/logger"
	"mock_interview_backend/pkg/monitoring"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 256
)

// LiveUpgrader 浏览器跨域由 CORS 中间件把关
var LiveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveMessage 客户端上行消息
type LiveMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// LiveClient pumps one socket to and from a LiveRun.
type LiveClient struct {
	run     *LiveRun
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	ctx     context.Context
	cancel  context.CancelFunc
	detach  func()
	log     *zap.Logger
}

// ServeLive attaches conn to run and starts the read and write pumps.
func ServeLive(run *LiveRun, conn *websocket.Conn, limiter *rate.Limiter) *LiveClient {
	ctx, cancel := context.WithCancel(context.Background())
	c := &LiveClient{
		run:     run,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: limiter,
		ctx:     ctx,
		cancel:  cancel,
		log:     logger.Log.With(zap.String("mockId", run.MockID())),
	}
	c.detach = run.Capture().Attach(c.enqueue)

	go c.writePump()
	go c.readPump()

	c.enqueue(LiveEvent{Type: EventState, Data: run.Controller().State()})
	return c
}

// enqueue never blocks; a client that cannot keep up loses events.
func (c *LiveClient) enqueue(ev LiveEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		c.log.Error("live event marshal failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	select {
	case <-c.ctx.Done():
	case c.send <- payload:
	default:
		c.log.Warn("live client send buffer full, dropping event", zap.String("type", ev.Type))
	}
}

func (c *LiveClient) sendError(err error) {
	c.enqueue(LiveEvent{Type: EventError, Data: util.Response{
		Code:    util.StatusFor(err),
		Message: err.Error(),
	}})
}

func (c *LiveClient) readPump() {
	defer func() {
		c.detach()
		c.cancel()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error("WebSocket unexpected close", zap.Error(err))
			}
			return
		}

		if !c.limiter.Allow() {
			c.sendError(util.ErrRateLimited)
			continue
		}

		var msg LiveMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError(util.ErrInvalidInput)
			continue
		}
		monitoring.LiveMessages.WithLabelValues(msg.Type).Inc()

		cmd := LiveCommand{Type: msg.Type}
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &cmd.Args); err != nil {
				c.sendError(util.ErrInvalidInput)
				continue
			}
		}
		c.dispatch(cmd)
	}
}

func (c *LiveClient) dispatch(cmd LiveCommand) {
	switch cmd.Type {
	case CmdStop, CmdRetry:
		// 评分可能耗时较长，不阻塞读循环；结果通过 graded 事件下发
		go func() {
			if _, err := c.run.Handle(c.ctx, cmd); err != nil {
				c.sendError(err)
			}
		}()
	case CmdFragment:
		if _, err := c.run.Handle(c.ctx, cmd); err != nil {
			c.sendError(err)
		}
	default:
		state, err := c.run.Handle(c.ctx, cmd)
		if err != nil {
			c.sendError(err)
			return
		}
		c.enqueue(LiveEvent{Type: EventState, Data: state})
	}
}

func (c *LiveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.run.Done():
			c.flush()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "interview closed"))
			return
		case <-c.ctx.Done():
			return
		}
	}
}

// flush writes whatever is still buffered, including the closed event.
func (c *LiveClient) flush() {
	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}
