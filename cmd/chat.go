package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/api"
	"github.com/iksnae/quest-log/internal/service"
)

var (
	chatSessionID   int
	chatPersonaID   int
	chatHistoryFile string
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"librarian"},
	Short:   "Ask the campaign librarian about your campaign",
	Long: `Talk to the librarian, the backend's language model that answers
questions from a campaign's sessions, personas, highlights and quotes.

Run 'questlog chat index' once after importing sessions so the librarian
can find them.`,
}

var chatStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the librarian's model is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := connect()
		if err != nil {
			return err
		}
		status, err := svc.ChatStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to check librarian: %w", err)
		}
		displayChatStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

var chatIndexCmd = &cobra.Command{
	Use:   "index [campaign-id]",
	Short: "Index a campaign so the librarian can search it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		id, err := campaignArg(args, cfg)
		if err != nil {
			return err
		}

		var msg string
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Indexing campaign %d", id), func() error {
			var indexErr error
			msg, indexErr = svc.IndexCampaign(cmd.Context(), id)
			return indexErr
		})
		if err != nil {
			return err
		}
		if msg == "" {
			msg = fmt.Sprintf("Campaign %d indexed", id)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✅ "+msg))
		return nil
	},
}

var chatAskCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the librarian a question, or start a conversation",
	Long: `Ask the librarian about the selected campaign.

With a question, the answer is printed and the command exits. Without one,
questions are read line by line until end of input or /exit, and every
question is asked with the conversation so far. /reset starts over.

--history keeps the conversation in a file so later runs can follow up.`,
	Example: `  questlog chat ask "Who is the Masked Woman?"
  questlog chat ask --history lighthouse.yaml "What happened at the lighthouse?"
  questlog chat ask --history lighthouse.yaml "And who fell in the sea?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}

		history, err := loadChatHistory(chatHistoryFile)
		if err != nil {
			return err
		}
		conv := svc.NewConversation(cid,
			service.AboutSession(chatSessionID),
			service.AboutPersona(chatPersonaID),
			service.WithHistory(history),
		)

		if len(args) > 0 {
			if err := askOnce(cmd, conv, strings.Join(args, " ")); err != nil {
				return err
			}
			return saveChatHistory(chatHistoryFile, conv.History())
		}
		return chatLoop(cmd, conv)
	},
}

// chatLoop reads questions from the command's input. A failed question is
// reported and the conversation carries on without it.
func chatLoop(cmd *cobra.Command, conv *service.Conversation) error {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w, infoStyle.Render("📚 Ask the librarian. /reset starts over, /exit leaves."))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		_, _ = fmt.Fprint(w, labelStyle.Render("> "))
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(w)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			conv.Reset()
			if err := saveChatHistory(chatHistoryFile, nil); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(w, infoStyle.Render("Conversation cleared"))
			continue
		}

		if err := askOnce(cmd, conv, line); err != nil {
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ "+err.Error()))
			continue
		}
		if err := saveChatHistory(chatHistoryFile, conv.History()); err != nil {
			return err
		}
	}
}

func askOnce(cmd *cobra.Command, conv *service.Conversation, question string) error {
	var reply *api.ChatReply
	err := internal.ShowProgress(cmd.Context(), "Consulting the archives", func() error {
		var err error
		reply, err = conv.Ask(cmd.Context(), question)
		return err
	})
	if err != nil {
		return err
	}
	displayChatReply(cmd.OutOrStdout(), reply)
	return nil
}

func displayChatReply(w io.Writer, reply *api.ChatReply) {
	_, _ = fmt.Fprintf(w, "%s %s\n", nameStyle.Render("📚 Librarian:"), reply.Response)
	if len(reply.ContextSources) > 0 {
		_, _ = fmt.Fprintln(w, dateStyle.Render("   Sources: "+strings.Join(reply.ContextSources, ", ")))
	}
}

func displayChatStatus(w io.Writer, status *api.ChatStatus) {
	if status.Online() {
		_, _ = fmt.Fprintln(w, successStyle.Render("✅ Librarian online"))
	} else {
		_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Librarian offline"))
	}
	_, _ = fmt.Fprintf(w, "   Host: %s\n", status.Host)
	_, _ = fmt.Fprintf(w, "   Model: %s\n", status.ConfiguredModel)
	if len(status.AvailableModels) > 0 {
		_, _ = fmt.Fprintf(w, "   Available: %s\n", strings.Join(status.AvailableModels, ", "))
	}
	if status.Error != "" {
		_, _ = fmt.Fprintf(w, "   Error: %s\n", status.Error)
	}
}

// loadChatHistory reads a saved conversation. No path or a missing file is
// an empty conversation.
func loadChatHistory(path string) ([]api.ChatMessage, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}
	var history []api.ChatMessage
	if err := yaml.Unmarshal(data, &history); err != nil {
		return nil, &internal.ParseError{Source: "chat history", Key: path, Err: err}
	}
	return history, nil
}

func saveChatHistory(path string, history []api.ChatMessage) error {
	if path == "" {
		return nil
	}
	if history == nil {
		history = []api.ChatMessage{}
	}
	data, err := yaml.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode chat history: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create chat history directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write chat history: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatStatusCmd, chatIndexCmd, chatAskCmd)

	chatAskCmd.Flags().IntVar(&chatSessionID, "session", 0, "Focus on one session")
	chatAskCmd.Flags().IntVar(&chatPersonaID, "persona", 0, "Focus on one persona")
	chatAskCmd.Flags().StringVar(&chatHistoryFile, "history", "", "Keep the conversation in this YAML file")
}
