// Command twistedchess plays one game of twisted chess in the terminal
// against a peer connected to the same relay room.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"TwistedChess/game/config"
	"TwistedChess/game/network"
	"TwistedChess/game/relay"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

var log = slog.Default().With("package", "main")

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to a .toml or .yaml config file")
	server := flag.String("server", "", "relay WebSocket URL (overrides config)")
	room := flag.String("room", "", "room code to join")
	create := flag.Bool("create", false, "create a new room and print its code")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.ServerURL = *server
	}
	level := cfg.Level()
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
		level = cfg.Level()
	} else if level < slog.LevelWarn {
		// Keep the board readable unless asked otherwise.
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	log = slog.Default().With("package", "main")

	code := *room
	if *create || code == "" {
		code = relay.NewRoomCode(cfg.RoomCodeLength)
		fmt.Printf("room code: %s\n", code)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := play(ctx, cfg, code, os.Stdin, os.Stdout); err != nil {
		log.Error("game ended", "error", err)
		os.Exit(1)
	}
}

// game wires a session to the terminal.
type game struct {
	session *network.Session
	out     io.Writer
	outMu   sync.Mutex
	prompt  bool
}

func (g *game) show() {
	g.outMu.Lock()
	defer g.outMu.Unlock()
	render(g.out, snapshot(g.session))
	if g.prompt && g.session.MyTurn() {
		io.WriteString(g.out, "> ")
	}
}

func (g *game) println(a ...any) {
	g.outMu.Lock()
	defer g.outMu.Unlock()
	fmt.Fprintln(g.out, a...)
}

func play(ctx context.Context, cfg config.Config, code string, in *os.File, out io.Writer) error {
	fmt.Fprintf(out, "waiting for the relay at %s...\n", cfg.ServerURL)
	client, err := network.Dial(ctx, cfg.ServerURL, code, network.WithWriteTimeout(cfg.WriteTimeout.Duration))
	if err != nil {
		return err
	}
	defer client.Close()

	g := &game{
		out:    out,
		prompt: isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()),
	}
	g.session = network.NewSession(client.Color(), network.WithSender(client), network.WithOnChange(g.show))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- client.Listen(ctx, g.session.HandlePayload)
		cancel()
	}()

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	g.show()
	for {
		select {
		case <-ctx.Done():
			g.println("connection closed")
			select {
			case err := <-listenErr:
				return err
			default:
				return nil
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if done := g.handle(ctx, line); done {
				return nil
			}
		}
	}
}

// handle runs one input line and reports whether the player quit.
func (g *game) handle(ctx context.Context, line string) bool {
	cmd, err := parseCommand(line)
	if err != nil {
		g.println(err)
		return false
	}
	switch cmd.kind {
	case cmdQuit:
		return true
	case cmdBoard:
		g.show()
	case cmdMoves:
		g.println(g.session.Select(cmd.from))
	case cmdMove:
		err := g.session.Play(ctx, cmd.from, cmd.to, cmd.promotion)
		switch {
		case errors.Is(err, network.ErrIllegalMove), errors.Is(err, network.ErrNotYourTurn), errors.Is(err, network.ErrGameOver):
			g.println(err)
		case err != nil:
			g.println("move not delivered:", err)
		}
	}
	return false
}
