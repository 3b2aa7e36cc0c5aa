package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/luciancaetano/lobby/tcp"
	"github.com/luciancaetano/lobby/ws"
)

var (
	nameFlag string
	pathFlag string
)

// joinCmd connects the terminal to a chat room.
var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a chat room",
	Long:  "Connect to a running chat room. Each line typed is sent to the room; messages from others are printed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		return join(cmd.Context(), in, cmd.OutOrStdout(), isTerminal(in))
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
	joinCmd.Flags().StringVar(&nameFlag, "name", "", "Name to join with (prompted if empty)")
	joinCmd.Flags().StringVar(&pathFlag, "path", "/ws", "WebSocket path of the room")
}

func dialRoom(ctx context.Context, name string) (io.ReadWriteCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch transportFlag {
	case "tcp":
		conn, err := tcp.Dial(ctx, addrFlag, name)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case "websocket":
		conn, err := ws.Dial(ctx, "ws://"+addrFlag+pathFlag, name)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", transportFlag)
	}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// join chats over a room connection until in is exhausted. When prompt is
// set the user is asked for a name if none was given on the command line.
func join(ctx context.Context, in io.Reader, out io.Writer, prompt bool) error {
	lines := bufio.NewScanner(in)

	name := nameFlag
	if name == "" {
		if prompt {
			fmt.Fprint(out, "Name: ")
		}
		if !lines.Scan() {
			return lines.Err()
		}
		name = strings.TrimRight(lines.Text(), " \t\r")
	}

	fmt.Fprintln(out, "Connecting...")
	conn, err := dialRoom(ctx, name)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Print what the others say.
	go func() {
		if _, err := io.Copy(out, conn); err != nil {
			fmt.Fprintln(out, err)
		}
		fmt.Fprintln(out, "Connection closed.")
	}()

	for lines.Scan() {
		line := strings.TrimRight(lines.Text(), " \t\r")
		if line == "" {
			continue
		}
		if _, err := conn.Write([]byte(line)); err != nil {
			return err
		}
	}
	return lines.Err()
}
