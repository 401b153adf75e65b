// Command ws_smoke checks a running relay end to end: two peers join a group,
// one shouts and the other must hear it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vovakirdan/wirechat-peer/internal/substrate"
	"github.com/vovakirdan/wirechat-peer/internal/substrate/wsnode"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "relay WebSocket address")
	group := flag.String("group", "smoke", "group name")
	text := flag.String("text", "hello from smoke test", "message text to shout")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	listener, err := wsnode.Dial(ctx, wsnode.Config{URL: *addr, Name: "smoke-listener"}, nil)
	if err != nil {
		return fmt.Errorf("dial listener: %w", err)
	}
	defer listener.Close()

	speaker, err := wsnode.Dial(ctx, wsnode.Config{URL: *addr, Name: "smoke-speaker"}, nil)
	if err != nil {
		return fmt.Errorf("dial speaker: %w", err)
	}
	defer speaker.Close()

	if err := listener.Join(*group); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	if err := speaker.Join(*group); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	// wait until the listener sees the speaker in the group, then shout
	shouted := false
	for {
		select {
		case msg, ok := <-listener.Events():
			if !ok {
				return fmt.Errorf("listener lost the relay")
			}
			fmt.Printf("listener <- %s %v\n", msg.Tag, msg.Frames)
			switch {
			case msg.Tag == substrate.TagJoin && msg.Frames[0] == speaker.ID() && !shouted:
				if err := speaker.Shout(*group, []byte(*text)); err != nil {
					return fmt.Errorf("shout: %w", err)
				}
				shouted = true
			case msg.Tag == substrate.TagShout && msg.Frames[2] == *text:
				fmt.Println("ok")
				return nil
			}
		case <-ctx.Done():
			return fmt.Errorf("no shout received: %w", ctx.Err())
		}
	}
}
