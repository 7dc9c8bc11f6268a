package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/auth"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/config"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/log"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/realtime"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/rest"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/transport/ws"
)

var (
	configPath string
	username   string
	password   string
	token      string
	channelID  int64
)

func main() {
	root := &cobra.Command{
		Use:           "auraflow",
		Short:         "Terminal client for the AuraFlow chat platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to auraflow.yaml")

	login := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a session token",
		RunE:  runLogin,
	}
	login.Flags().StringVarP(&username, "username", "u", "", "account username")
	login.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = login.MarkFlagRequired("username")
	_ = login.MarkFlagRequired("password")

	chat := &cobra.Command{
		Use:   "chat",
		Short: "Join a channel and chat interactively",
		RunE:  runChat,
	}
	chat.Flags().StringVar(&token, "token", os.Getenv("AURAFLOW_TOKEN"), "session token (default $AURAFLOW_TOKEN)")
	chat.Flags().Int64Var(&channelID, "channel", 0, "channel id to join")
	_ = chat.MarkFlagRequired("channel")

	root.AddCommand(login, chat)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "auraflow: %v\n", err)
		os.Exit(1)
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	cfg, _, err := config.Load(nil, configPath)
	if err != nil {
		return err
	}
	logger := log.New(cfg.LogLevel)

	api := rest.New(cfg.APIBaseURL, logger)
	resp, err := api.Login(cmd.Context(), username, password)
	if err != nil {
		return err
	}

	fmt.Printf("logged in as %s (user %d)\n", resp.User.Username, resp.User.ID)
	fmt.Printf("export AURAFLOW_TOKEN=%s\n", resp.Token)
	return nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	if token == "" {
		return fmt.Errorf("no session token: pass --token or run `auraflow login`")
	}

	cfg, _, err := config.Load(nil, configPath)
	if err != nil {
		return err
	}
	logger := log.New(cfg.LogLevel)

	claims, err := auth.Peek(token)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := rest.New(cfg.APIBaseURL, logger)
	api.SetToken(token)

	dialer := ws.Dialer(ws.Options{
		MaxAttempts: cfg.MaxReconnects,
		BaseDelay:   cfg.ReconnectDelay,
		MaxDelay:    cfg.MaxReconnectDelay,
	}, logger)

	manager := realtime.New(realtime.Options{
		GatewayURL:     cfg.GatewayURL,
		TypingAutoStop: cfg.TypingAutoStop,
	}, logger, dialer)
	defer manager.Disconnect()

	connected := make(chan struct{}, 1)
	manager.OnStateChange(func(change realtime.StateChange) {
		if change.New == realtime.StateConnected {
			select {
			case connected <- struct{}{}:
			default:
			}
		}
	})
	manager.OnMessage(func(msg proto.ChatMessage) {
		name := msg.DisplayName
		if name == "" {
			name = fmt.Sprintf("user %d", msg.SenderID)
		}
		fmt.Printf("[#%d] %s: %s\n", msg.ChannelID, name, msg.Content)
	})
	manager.OnTyping(func(ev proto.TypingEvent) {
		if ev.IsTyping && ev.Scope == proto.TypingScopeChannel {
			fmt.Printf("… %s is typing\n", ev.Username)
		}
	})
	manager.OnError(func(e proto.Error) {
		fmt.Printf("server error: %s\n", e.Error())
	})

	manager.Connect(auth.Bearer(token))

	select {
	case <-connected:
	case <-ctx.Done():
		return ctx.Err()
	}

	manager.JoinChannel(channelID)
	fmt.Printf("connected as %s, channel %d. Type to send, Ctrl+C to quit.\n", claims.Username, channelID)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := sendMessage(ctx, api, manager, channelID, text); err != nil {
				fmt.Printf("send failed: %v\n", err)
			}
		}
	}
}

// sendMessage persists via REST first, then broadcasts the persisted id to
// already-connected peers over the socket.
func sendMessage(ctx context.Context, api *rest.Client, manager *realtime.Manager, channelID int64, text string) error {
	msg, err := api.SendChannelMessage(ctx, channelID, text)
	if err != nil {
		return err
	}
	manager.BroadcastMessage(proto.NewMessageData{
		ID:        msg.ID,
		ChannelID: channelID,
		Content:   text,
	})
	return nil
}
