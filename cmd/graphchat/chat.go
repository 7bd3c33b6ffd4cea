package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"graphchat/internal/chat"
)

// slowTurnThreshold is how long a turn may take before the REPL warns.
const slowTurnThreshold = 5 * time.Second

const replHelp = `Available commands:
  exit, quit  leave the chat
  clear       start a new conversation
  help        show this help
Anything else is asked against the knowledge base.`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the knowledge base",
	Long: `Chat with the knowledge base.

Examples:
  graphchat chat
  graphchat chat --query "What is a graph database?"
  graphchat chat --user-id alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user-id")
		query, _ := cmd.Flags().GetString("query")

		cfg, store, err := openStore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer store.Close(ctx)

		orchestrator := buildOrchestrator(cfg, store)

		// One-shot mode.
		if query != "" {
			result, err := orchestrator.RunTurn(ctx, chat.TurnRequest{
				Query:  query,
				UserID: userID,
			})
			if err != nil {
				return err
			}
			fmt.Println(result.Response)
			return nil
		}

		printStep("Interactive mode. Commands: 'exit', 'quit', 'clear', 'help'")
		if !cfg.HasLLM() {
			printWarning("No LLM configured, answers use search summaries")
		}

		conversationID := uuid.New().String()
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("\nYou: ")
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			switch strings.ToLower(input) {
			case "exit", "quit":
				fmt.Println("\nGoodbye!")
				return nil
			case "clear":
				conversationID = uuid.New().String()
				printSuccess("Started a new conversation")
				continue
			case "help":
				fmt.Println(replHelp)
				continue
			}

			start := time.Now()
			result, err := orchestrator.RunTurn(ctx, chat.TurnRequest{
				Query:          input,
				UserID:         userID,
				ConversationID: conversationID,
			})
			if err != nil {
				printError("%v", err)
				continue
			}
			elapsed := time.Since(start)

			fmt.Printf("\nAssistant: %s\n", result.Response)
			if elapsed > slowTurnThreshold {
				printWarning("Response took %.1fs", elapsed.Seconds())
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		fmt.Println("\nGoodbye!")
		return nil
	},
}

func init() {
	chatCmd.Flags().String("user-id", "", "attribute the conversation to this user")
	chatCmd.Flags().String("query", "", "answer a single question and exit")
}
