// Command tcrtc joins a Tinychat room and keeps a live view of its members.
//
// It fetches a join token, opens the room websocket, joins with the requested
// nickname and then follows join, nick, quit and userlist events until the
// connection fails. Pings are answered automatically.
//
// Room and nickname come from flags, the environment (TINYCHAT_ROOM,
// TINYCHAT_NICK, optionally via a .env file) or an interactive prompt.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kvazau/TcRTC/tinychat/config"
	"github.com/kvazau/TcRTC/tinychat/session"
	"github.com/kvazau/TcRTC/tinychat/token"
	"github.com/kvazau/TcRTC/transport/websocket"
	"github.com/urfave/cli/v3"
)

// Version information
const (
	Version = "0.1.0"
	AppName = "TcRTC Tinychat Client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := newCommand(cfg, os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

// newCommand builds the CLI. Flag defaults come from cfg so that flags
// override the environment.
func newCommand(cfg *config.Config, in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "tcrtc",
		Usage:   "join a Tinychat room and follow its members",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "room", Aliases: []string{"r"}, Usage: "room to join", Value: cfg.Room},
			&cli.StringFlag{Name: "nick", Aliases: []string{"n"}, Usage: "nickname to request", Value: cfg.Nickname},
			&cli.StringFlag{Name: "token-url", Usage: "token endpoint base URL", Value: cfg.TokenURL},
			&cli.StringFlag{Name: "token-path", Usage: "gjson path of the token in the token response", Value: cfg.TokenPath},
			&cli.StringFlag{Name: "socket-url", Usage: "websocket endpoint", Value: cfg.SocketURL},
			&cli.DurationFlag{Name: "http-timeout", Usage: "token request timeout", Value: cfg.HTTPTimeout},
			&cli.StringFlag{Name: "record", Usage: "append every inbound frame to `FILE`", Value: cfg.RecordPath},
			&cli.BoolFlag{Name: "debug", Usage: "log every frame sent and received", Value: cfg.Debug},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyFlags(cfg, cmd)
			setupLogging(cfg.Debug)

			if err := promptMissing(cfg, in, out); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Printf("Starting %s v%s", AppName, Version)
			return run(ctx, cfg, out, dialerFor(cfg))
		},
	}
}

func applyFlags(cfg *config.Config, cmd *cli.Command) {
	cfg.Room = cmd.String("room")
	cfg.Nickname = cmd.String("nick")
	cfg.TokenURL = cmd.String("token-url")
	cfg.TokenPath = cmd.String("token-path")
	cfg.SocketURL = cmd.String("socket-url")
	cfg.HTTPTimeout = cmd.Duration("http-timeout")
	cfg.RecordPath = cmd.String("record")
	cfg.Debug = cmd.Bool("debug")
}

func setupLogging(debug bool) {
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// promptMissing asks for room and nickname when neither flags nor the
// environment provided them.
func promptMissing(cfg *config.Config, in io.Reader, out io.Writer) error {
	if cfg.Room != "" && cfg.Nickname != "" {
		return nil
	}

	reader := bufio.NewReader(in)
	var err error
	if cfg.Room == "" {
		if cfg.Room, err = prompt(reader, out, "What room? "); err != nil {
			return err
		}
	}
	if cfg.Nickname == "" {
		if cfg.Nickname, err = prompt(reader, out, "What is your nickname? "); err != nil {
			return err
		}
	}
	return nil
}

func prompt(r *bufio.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// dialerFor returns a dial function presenting the Tinychat handshake to the
// configured socket URL.
func dialerFor(cfg *config.Config) session.DialFunc {
	profile := websocket.DefaultProfile()
	profile.URL = cfg.SocketURL
	if u, err := url.Parse(cfg.SocketURL); err == nil && u.Host != "" {
		profile.Host = u.Host
	}

	dialer := websocket.NewDialer(profile)
	return func(ctx context.Context) (session.Conn, error) {
		conn, err := dialer.Dial(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// run drives one session: connect, join, then the receive loop. It returns
// nil only when the loop was stopped by a signal.
func run(ctx context.Context, cfg *config.Config, out io.Writer, dial session.DialFunc) error {
	fetcher := token.NewFetcher(cfg.TokenURL,
		token.WithResultPath(cfg.TokenPath),
		token.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	)

	opts := []session.Option{
		session.WithObserver(newRosterPrinter(out, cfg.Room)),
		session.WithDebug(cfg.Debug),
	}

	if cfg.RecordPath != "" {
		f, err := os.OpenFile(cfg.RecordPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open record file: %w", err)
		}
		defer f.Close()
		opts = append(opts, session.WithRecorder(f))
		log.Printf("Recording inbound frames to %s", cfg.RecordPath)
	}

	sess := session.New(cfg.Room, cfg.Nickname, fetcher, opts...)

	if err := sess.Connect(ctx, dial); err != nil {
		return err
	}
	defer sess.Close()
	log.Printf("Connected to %s", cfg.SocketURL)

	if err := sess.JoinRoom(ctx); err != nil {
		return err
	}

	// Closing the session is the only way to unblock the receive loop
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		sess.Close()
	}()

	err := sess.RunLoop()
	if sigCtx.Err() != nil {
		log.Println("Received signal. Shutting down...")
		return nil
	}
	return err
}
