package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"shop-assistant-be/internal/dto"
	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/internal/repository/memory"
	"shop-assistant-be/internal/service"
	"shop-assistant-be/pkg/assistant/pipeline"
	"shop-assistant-be/pkg/canon"
	"shop-assistant-be/pkg/catalog"
	"shop-assistant-be/pkg/events"
	pktNats "shop-assistant-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// scripted conversation used when stdin is not a terminal session
var defaultScript = []string{
	"oi, bom dia",
	"quero um iphone",
	"até 4000",
	"mais barato",
	"e perfume?",
	"iphone 15",
	"iphone 15",
	"hola, busco un drone",
	"que horas são?",
}

type turnFunc func(ctx context.Context, sessionID, text string) (dto.ChatResponse, error)

func main() {
	mode := flag.String("mode", "local", "local | remote | monitor")
	baseURL := flag.String("url", "http://localhost:3000/api", "REST base url for remote mode")
	natsURL := flag.String("nats", "nats://localhost:4222", "NATS url for monitor mode")
	seedPath := flag.String("seed", "data/catalog.json", "catalog seed for local mode")
	canonPath := flag.String("canon", "", "dictionary file for local mode (compiled-in default when empty)")
	interactive := flag.Bool("i", false, "read utterances from stdin instead of the built-in script")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *mode == "monitor" {
		if err := monitor(ctx, *natsURL); err != nil {
			log.Fatalf("monitor: %v", err)
		}
		return
	}

	var turn turnFunc
	switch *mode {
	case "local":
		t, err := localTurns(*seedPath, *canonPath)
		if err != nil {
			log.Fatalf("local pipeline: %v", err)
		}
		turn = t
	case "remote":
		turn = remoteTurns(*baseURL)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}

	color.Cyan("=== Shop Assistant Simulation (%s) ===", *mode)
	sessionID := uuid.NewString()
	fmt.Printf("Session: %s\n", sessionID)

	utterances := defaultScript
	if *interactive {
		utterances = nil
		color.Yellow("Type a message, empty line to quit.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for i := 0; ; i++ {
		var text string
		if *interactive {
			fmt.Print("> ")
			if !scanner.Scan() {
				return
			}
			text = strings.TrimSpace(scanner.Text())
			if text == "" {
				return
			}
		} else {
			if i >= len(utterances) {
				return
			}
			text = utterances[i]
			fmt.Printf("\nUSER: %s\n", text)
		}

		start := time.Now()
		resp, err := turn(ctx, sessionID, text)
		elapsed := time.Since(start)
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		printReply(resp, elapsed)
	}
}

func printReply(resp dto.ChatResponse, elapsed time.Duration) {
	color.Green("ASSISTANT: %s", resp.Reply)
	meta := fmt.Sprintf("  [%s | %s", resp.Intent, resp.Language)
	if resp.ResponseType != "" {
		meta += " | " + resp.ResponseType
	}
	if resp.ClarificationFocus != "" {
		meta += " | ask " + resp.ClarificationFocus
	}
	meta += fmt.Sprintf(" | %v]", elapsed.Round(time.Millisecond))
	color.Yellow(meta)

	for _, it := range resp.Items {
		price := "-"
		if it.Price != nil {
			price = fmt.Sprintf("%.2f", *it.Price)
		}
		fmt.Printf("    • %s (%s) %s\n", it.Title, it.Category, price)
	}
	if len(resp.Suggestions) > 0 {
		fmt.Printf("    suggestions: %s\n", strings.Join(resp.Suggestions, ", "))
	}
}

func localTurns(seedPath, canonPath string) (turnFunc, error) {
	log := logger.NewNopLogger()

	dict := canon.NewStore(log)
	if err := dict.LoadOrDefault(canonPath); err != nil {
		return nil, err
	}

	items, err := catalog.LoadItemsFile(seedPath)
	if err != nil {
		return nil, err
	}

	sessions := memory.NewSessionRepository(time.Hour, nil, log)
	p := pipeline.New(dict, sessions, catalog.NewMemoryExecutor(items, dict), log)

	return func(ctx context.Context, sessionID, text string) (dto.ChatResponse, error) {
		reply, err := p.Handle(ctx, sessionID, text)
		if err != nil {
			return dto.ChatResponse{}, err
		}
		return *service.NewChatResponse(reply), nil
	}, nil
}

func remoteTurns(baseURL string) turnFunc {
	client := &http.Client{Timeout: 15 * time.Second}
	url := strings.TrimRight(baseURL, "/") + "/assistant/chat"

	return func(ctx context.Context, sessionID, text string) (dto.ChatResponse, error) {
		body, _ := json.Marshal(dto.ChatRequest{SessionId: sessionID, Message: text})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return dto.ChatResponse{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return dto.ChatResponse{}, err
		}
		defer resp.Body.Close()

		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return dto.ChatResponse{}, fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
		}

		var envelope struct {
			Data dto.ChatResponse `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return dto.ChatResponse{}, err
		}
		return envelope.Data, nil
	}
}

// monitor tails every assistant event on the bus until interrupted.
func monitor(ctx context.Context, natsURL string) error {
	sub, err := pktNats.NewSubscriber(natsURL, logger.NewNopLogger())
	if err != nil {
		return err
	}
	defer sub.Close()

	stopSub, err := sub.Subscribe(ctx, ">", "", func(_ context.Context, ev events.Event) error {
		color.Cyan("%s %s session=%s",
			ev.Timestamp().Format("15:04:05"), ev.EventType(), events.String(ev, "session_id"))
		color.Yellow("  [%s | %s | %s | %d results | %.0fms]",
			events.String(ev, "intent"), events.String(ev, "language"), events.String(ev, "response_type"),
			int(events.Number(ev, "result_count")), events.Number(ev, "duration_ms"))
		return nil
	})
	if err != nil {
		return err
	}
	defer stopSub()

	color.Cyan("=== Monitoring %s (Ctrl+C to stop) ===", pktNats.StreamName)
	<-ctx.Done()
	return nil
}
