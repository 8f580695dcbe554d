// Command ws_chat is a terminal client for manual testing: it logs in,
// connects to the gateway, joins a room and relays stdin lines as messages.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ndelorme/salon-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	email := flag.String("email", "user@example.com", "login email")
	password := flag.String("password", "user123", "login password")
	name := flag.String("name", "cli-user", "display name")
	room := flag.String("room", "lobby", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	token, err := login(ctx, *server, *email, *password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	wsURL := strings.Replace(*server, "http", "ws", 1) + "/ws?token=" + token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msgType string, data any) {
		payload, marshalErr := json.Marshal(data)
		if marshalErr != nil {
			cancel()
			log.Printf("marshal %s: %v", msgType, marshalErr)
			return
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	send(proto.InboundTypeSetName, *name)
	send(proto.InboundTypeJoinRoom, proto.RoomData{Room: *room})

	go func() {
		for {
			var outbound struct {
				Type  string          `json:"type"`
				Event string          `json:"event,omitempty"`
				Data  json.RawMessage `json:"data,omitempty"`
				Error *proto.Error    `json:"error,omitempty"`
			}
			if readErr := wsjson.Read(ctx, conn, &outbound); readErr != nil {
				cancel()
				return
			}
			switch outbound.Type {
			case proto.OutboundTypeEvent:
				fmt.Printf("<- %s %s\n", outbound.Event, outbound.Data)
			case proto.OutboundTypeError:
				fmt.Printf("<- error %s: %s\n", outbound.Error.Code, outbound.Error.Msg)
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		send(proto.InboundTypeSendMessage, proto.SendMessageData{Room: *room, Message: text})
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
	return scanner.Err()
}

func login(ctx context.Context, server, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
