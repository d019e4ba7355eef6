package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashureev/agentchat/internal/agentapi"
	"github.com/ashureev/agentchat/internal/config"
	"github.com/ashureev/agentchat/internal/convlog"
	"github.com/ashureev/agentchat/internal/tui"
)

var (
	envFile string
	apiURL  string
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "agentchat",
	Short: "Chat with a conversational agent from the terminal",
	Long: `Chat with a conversational agent from the terminal.

The agent may pause a conversation to ask for a structured answer (text,
number, date, checkbox or radio). Answer it in place and the conversation
resumes.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVarP(&envFile, "env", "e", "", "Environment file (default .env)")
	rootCmd.Flags().StringVar(&apiURL, "api", "", "Agent API base URL, overrides AGENT_API_BASE_URL")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Write JSON logs to this file")
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}
	if apiURL != "" {
		if err := os.Setenv("AGENT_API_BASE_URL", apiURL); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// The terminal belongs to the UI; logs only go to a file when asked.
	logger, closeLog, err := newLogger(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	backend, err := agentapi.NewClient(cfg.AgentAPIBaseURL, logger)
	if err != nil {
		return fmt.Errorf("create agent client: %w", err)
	}

	conversationLog, err := convlog.New(convlog.Config{
		Enabled:       cfg.ConversationLog.Enabled,
		Dir:           cfg.ConversationLog.Dir,
		GlobalEnabled: cfg.ConversationLog.GlobalEnabled,
		GlobalPath:    cfg.ConversationLog.GlobalPath,
		QueueSize:     cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("create conversation logger: %w", err)
	}
	defer func() {
		if closeErr := conversationLog.Close(); closeErr != nil {
			logger.Error("Failed to close conversation logger", "error", closeErr)
		}
	}()

	logger.Info("Starting terminal chat", "agent_api", backend.BaseURL())
	return tui.Run(ctx, backend, tui.Options{
		Logger:          logger,
		ConversationLog: conversationLog,
	})
}

func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}
