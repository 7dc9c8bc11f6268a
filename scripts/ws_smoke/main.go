// ws_smoke logs into an AuraFlow gateway, opens the socket, joins a
// channel, sends one message and prints everything it receives until the
// timeout. Handy against cmd/devserver:
//
//	go run ./scripts/ws_smoke -user alice -pass alice -channel 42
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/auth"
	applog "github.com/AbdulRafayPython/AuraFlow-sub001/internal/log"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/rest"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// socketURL puts the handshake token in the query. The "Bearer <jwt>" value
// contains a space, so it has to go through query encoding, not string
// concatenation.
func socketURL(gatewayURL, token string) (string, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", auth.Bearer(token))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func run() error {
	apiURL := flag.String("api", "http://localhost:8080", "REST base URL")
	gatewayURL := flag.String("gateway", "ws://localhost:8080/ws", "socket endpoint")
	user := flag.String("user", "alice", "username")
	pass := flag.String("pass", "alice", "password")
	channel := flag.Int64("channel", 42, "channel id to join")
	text := flag.String("text", "hello from ws_smoke", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	api := rest.New(*apiURL, applog.Nop())
	login, err := api.Login(ctx, *user, *pass)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	fmt.Printf("logged in as %s (id %d)\n", login.User.Username, login.User.ID)

	dialURL, err := socketURL(*gatewayURL, login.Token)
	if err != nil {
		return fmt.Errorf("gateway url: %w", err)
	}
	conn, _, err := websocket.Dial(ctx, dialURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(event string, payload any) error {
		pkt, err := proto.NewPacket(event, payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", event, err)
		}
		if err := wsjson.Write(ctx, conn, pkt); err != nil {
			return fmt.Errorf("send %s: %w", event, err)
		}
		return nil
	}

	if err := send(proto.EmitJoinChannel, proto.JoinChannelData{ChannelID: *channel}); err != nil {
		return err
	}
	if err := send(proto.EmitTyping, proto.TypingData{ChannelID: *channel, IsTyping: true}); err != nil {
		return err
	}
	if err := send(proto.EmitNewMessage, proto.NewMessageData{ChannelID: *channel, Content: *text}); err != nil {
		return err
	}

	for {
		var pkt proto.Packet
		if err := wsjson.Read(ctx, conn, &pkt); err != nil {
			if ctx.Err() != nil {
				fmt.Println("done")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("received event=%s\n", pkt.Event)
		switch pkt.Event {
		case proto.EventMessageReceived:
			msg := proto.NormalizeMessage(pkt.Data, applog.Nop())
			fmt.Printf("  message: id=%d channel=%d user=%s text=%q\n",
				msg.ID, msg.ChannelID, msg.Username, msg.Content)
		case proto.EventError:
			var e proto.Error
			if json.Unmarshal(pkt.Data, &e) == nil {
				fmt.Printf("  error: %s (%s)\n", e.Msg, e.Code)
			}
		default:
			fmt.Printf("  data: %s\n", string(pkt.Data))
		}
	}
}
