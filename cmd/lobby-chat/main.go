// Command lobby-chat runs a small chat room on top of a lobby, or joins one.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	addrFlag      string
	transportFlag string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lobby-chat",
	Short: "Chat room built on the lobby connection core",
	Long: `lobby-chat is a demonstration chat room:

- serve: accept clients and relay every message to everyone else
- join:  connect to a running room and chat from the terminal

Clients send their name followed by a NUL byte, then plain text.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "127.0.0.1:8080", "Address of the chat room")
	rootCmd.PersistentFlags().StringVar(&transportFlag, "transport", "tcp", "Transport to use (tcp or websocket)")
}
