package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndelorme/salon-server/internal/gateway"
	"github.com/ndelorme/salon-server/internal/proto"
)

// errAuthFatal signals that the session must end after a failed
// authentication. The authError event has already been flushed by then.
var errAuthFatal = errors.New("authentication failed")

// WSHandler upgrades HTTP connections and bridges them to gateway clients.
type WSHandler struct {
	gw  *gateway.Gateway
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(gw *gateway.Gateway, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{gw: gw, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := gateway.NewClient(uuid.NewString())
	defer h.gw.Disconnect(client)

	// Handshake authentication happens before the loops start, so the
	// authSuccess/authError event is the first frame the client sees.
	token := r.URL.Query().Get("token")
	authOK := h.gw.Connect(client, token)
	h.flushEvents(ctx, conn, client)
	if !authOK {
		h.log.Debug().Str("client_id", client.ID).Msg("handshake auth failed, closing")
		conn.Close(websocket.StatusPolicyViolation, "authentication failed")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if errors.Is(err, errAuthFatal) {
		status = websocket.StatusPolicyViolation
		reason = "authentication failed"
		err = nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *gateway.Client) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		ack, protoErr, fatal, err := dispatchInbound(h.gw, client, inbound)
		if err != nil {
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("failed to decode inbound")
			return err
		}
		if protoErr != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: protoErr,
			}); writeErr != nil {
				return writeErr
			}
			continue
		}
		if ack != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type: proto.OutboundTypeAck,
				Data: ack,
			}); writeErr != nil {
				return writeErr
			}
		}
		if fatal {
			h.flushEvents(ctx, conn, client)
			return errAuthFatal
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *gateway.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// flushEvents drains events already queued on the client and writes them out
// synchronously. Used around authentication, where ordering relative to the
// close frame matters.
func (h *WSHandler) flushEvents(ctx context.Context, conn *websocket.Conn, client *gateway.Client) {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				return
			}
		default:
			return
		}
	}
}
