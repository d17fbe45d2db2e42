package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"smartq/internal/adapter/llm"
	"smartq/internal/config"
	"smartq/internal/logger"
	"smartq/internal/service"
)

var rootCmd = &cobra.Command{
	Use:           "smartq",
	Short:         "Generate and evaluate quiz questions with a local LLM",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (defaults to ./config.yaml when present)")
	rootCmd.PersistentFlags().String("server", "", "LLM endpoint base URL (overrides llm.server)")
	rootCmd.PersistentFlags().String("model", "", "Model name (overrides llm.model)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-call timeout (overrides llm.timeout)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(evaluateCmd)
}

// session is everything a single CLI invocation needs.
type session struct {
	svc     service.QuizService
	timeout time.Duration
	logger  *zap.Logger
}

func newSession(cmd *cobra.Command) (*session, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, err
	}

	if s, _ := cmd.Flags().GetString("server"); s != "" {
		cfg.LLM.Server = s
	}
	if m, _ := cmd.Flags().GetString("model"); m != "" {
		cfg.LLM.Model = m
	}
	if t, _ := cmd.Flags().GetDuration("timeout"); t > 0 {
		cfg.LLM.Timeout = t
	}

	l, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, err
	}

	transport, err := llm.NewTransport(cfg.LLM, l)
	if err != nil {
		return nil, err
	}

	return &session{
		svc:     service.NewQuizService(transport, nil, l),
		timeout: cfg.LLM.Timeout,
		logger:  l,
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
