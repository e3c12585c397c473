// Command analyze replays frame logs written by "tcrtc --record" and prints
// quick, human-readable statistics about them: how many frames of each type
// arrived, how many were rejected, how many pongs the client would have sent,
// and the roster the session ends up with.
//
// Frames are fed through the same dispatch the live client uses, so a log
// captured from a misbehaving room can be inspected offline.
package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/kvazau/TcRTC/tinychat/protocol"
	"github.com/kvazau/TcRTC/tinychat/session"
	"github.com/urfave/cli/v3"
)

// Frames larger than this are reported as unreadable.
const maxFrameSize = 16 << 20

// Report summarises one frame log
type Report struct {
	File        string
	Frames      int
	Undecodable int
	Rejected    int
	Pongs       int
	Commands    map[string]int
	Members     map[protocol.Handle]session.Member
}

// replayConn stands in for the socket: it never delivers frames and only
// counts what the session writes.
type replayConn struct {
	writes int
}

func (c *replayConn) WriteText(data []byte) error {
	c.writes++
	return nil
}

func (c *replayConn) ReadText() ([]byte, error) {
	return nil, io.EOF
}

func (c *replayConn) Close() error {
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "replay recorded Tinychat frames and summarise them",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "log every replayed frame"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return fmt.Errorf("no frame logs given")
			}

			for _, path := range cmd.Args().Slice() {
				fmt.Printf("\n=== Analyzing %s ===\n", path)
				report, err := analyzeFile(ctx, path, cmd.Bool("debug"))
				if err != nil {
					fmt.Printf("Error: %v\n", err)
					continue
				}
				printReport(os.Stdout, report)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

func analyzeFile(ctx context.Context, path string, debug bool) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame log: %w", err)
	}
	defer f.Close()

	return analyze(ctx, f, filepath.Base(path), debug)
}

// analyze replays every line of r. Unlike the live loop it keeps going past
// frames that cannot be decoded.
func analyze(ctx context.Context, r io.Reader, name string, debug bool) (*Report, error) {
	conn := &replayConn{}
	sess := session.New("replay", "replay", nil, session.WithDebug(debug))
	if err := sess.Connect(ctx, func(context.Context) (session.Conn, error) { return conn, nil }); err != nil {
		return nil, err
	}

	report := &Report{
		File:     name,
		Commands: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		report.Frames++

		msg, err := protocol.Decode(line)
		if err != nil {
			report.Undecodable++
			continue
		}

		tag := msg.Tag()
		if tag == "" {
			tag = "(none)"
		}
		report.Commands[tag]++

		if err := sess.Handle(msg); err != nil {
			report.Rejected++
			if debug {
				log.Printf("Rejected frame %d: %v", report.Frames, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read frame log: %w", err)
	}

	report.Pongs = conn.writes
	report.Members = sess.Members()
	return report, nil
}

func printReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Frames: %d (undecodable: %d, rejected: %d)\n", r.Frames, r.Undecodable, r.Rejected)
	fmt.Fprintf(w, "Pongs sent: %d\n", r.Pongs)

	tags := make([]string, 0, len(r.Commands))
	for tag := range r.Commands {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	fmt.Fprintln(w, "Commands:")
	for _, tag := range tags {
		label := tag
		if protocol.ParseCommand(tag) == protocol.CommandUnknown {
			label = color.YellowString(tag)
		}
		fmt.Fprintf(w, "  %-12s %d\n", label, r.Commands[tag])
	}

	handles := make([]string, 0, len(r.Members))
	for h := range r.Members {
		handles = append(handles, string(h))
	}
	sort.Strings(handles)

	fmt.Fprintf(w, "Final roster (%d):\n", len(handles))
	for _, h := range handles {
		m := r.Members[protocol.Handle(h)]
		extra := make([]string, 0, len(m))
		for k := range m {
			if k != protocol.FieldNick {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)

		line := fmt.Sprintf("  %s %s", color.CyanString(h), m.Nick())
		if len(extra) > 0 {
			line += fmt.Sprintf(" [%s]", strings.Join(extra, ", "))
		}
		fmt.Fprintln(w, line)
	}
}
