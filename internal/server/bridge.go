package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
)

// Bridge serves the WebSocket protocol. Each client message is answered on
// the same connection, echoing the message id so clients can correlate
// replies. Chat messages run concurrently, so a long conversation does not
// block other requests on the connection.
type Bridge struct {
	srv    *Server
	nextID atomic.Int64
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
	wg   sync.WaitGroup
}

func newBridge(s *Server) *Bridge {
	return &Bridge{srv: s}
}

// HandleWS is the HTTP handler for the /ws endpoint.
func (b *Bridge) HandleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}

	client := &wsClient{
		id:   fmt.Sprintf("client-%d", b.nextID.Add(1)),
		conn: c,
	}
	slog.Info("websocket client connected", "id", client.id, "remote", r.RemoteAddr)

	b.readLoop(r.Context(), client)
}

func (b *Bridge) readLoop(ctx context.Context, client *wsClient) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		client.wg.Wait()
		client.conn.Close(websocket.StatusNormalClosure, "")
		slog.Info("websocket client disconnected", "id", client.id)
	}()

	for {
		_, data, err := client.conn.Read(ctx)
		if err != nil {
			return
		}

		var msg BridgeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid ws message", "error", err, "client", client.id)
			b.sendError(ctx, client, "", http.StatusBadRequest, "invalid message")
			continue
		}

		b.handleClientMessage(ctx, client, msg)
	}
}

func (b *Bridge) handleClientMessage(ctx context.Context, client *wsClient, msg BridgeMessage) {
	switch msg.Type {
	case MsgCreateSession:
		b.sendTo(ctx, client, MsgSessionCreated, msg.ID, SessionResponse{SessionID: b.srv.svc.CreateSession()})

	case MsgChat:
		p, err := ParsePayload[ChatPayload](msg)
		if err != nil {
			b.sendError(ctx, client, msg.ID, http.StatusBadRequest, err.Error())
			return
		}
		if !b.srv.allow() {
			b.sendError(ctx, client, msg.ID, http.StatusTooManyRequests, "rate limit exceeded, retry shortly")
			return
		}
		client.wg.Add(1)
		go func() {
			defer client.wg.Done()
			res, err := b.srv.svc.Advance(ctx, p.SessionID, p.ChatRequest.toService())
			if err != nil {
				b.sendError(ctx, client, msg.ID, statusFor(err), err.Error())
				return
			}
			b.sendTo(ctx, client, MsgChatResult, msg.ID, ChatResultPayload{
				SessionID:    p.SessionID,
				ChatResponse: chatResponse(res),
			})
		}()

	case MsgGetHistory:
		p, err := ParsePayload[HistoryRequestPayload](msg)
		if err != nil {
			b.sendError(ctx, client, msg.ID, http.StatusBadRequest, err.Error())
			return
		}
		turns, err := b.srv.svc.History(p.SessionID)
		if err != nil {
			b.sendError(ctx, client, msg.ID, statusFor(err), err.Error())
			return
		}
		b.sendTo(ctx, client, MsgHistory, msg.ID, HistoryPayload{SessionID: p.SessionID, Turns: turns})

	default:
		b.sendError(ctx, client, msg.ID, http.StatusBadRequest, "unknown message type "+msg.Type)
	}
}

func (b *Bridge) sendError(ctx context.Context, client *wsClient, id string, code int, detail string) {
	b.sendTo(ctx, client, MsgError, id, ErrorPayload{Code: code, Detail: detail})
}

func (b *Bridge) sendTo(ctx context.Context, client *wsClient, msgType, id string, payload any) {
	msg, err := NewMessage(msgType, id, payload)
	if err != nil {
		slog.Warn("encoding ws message failed", "type", msgType, "error", err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	if err := client.conn.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("ws write failed", "client", client.id, "error", err)
	}
}
