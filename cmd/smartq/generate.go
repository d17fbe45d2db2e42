package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smartq/internal/dto"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one quiz question about a topic",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		instructions, _ := cmd.Flags().GetString("instructions")
		kbPath, _ := cmd.Flags().GetString("knowledge-base")

		req := dto.GenerateQuizRequest{Topic: topic, SystemPrompt: instructions}
		if kbPath != "" {
			kb, err := os.ReadFile(kbPath)
			if err != nil {
				return &usageError{err: fmt.Errorf("read knowledge base: %w", err)}
			}
			req.KnowledgeBase = string(kb)
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.logger.Sync() }()

		question, err := s.svc.GenerateQuestion(cmd.Context(), req.ToDomain(), s.timeout)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), dto.NewQuizResponse(question))
	},
}

func init() {
	generateCmd.Flags().String("topic", "", "Subject of the question")
	generateCmd.Flags().String("instructions", "", "System instructions steering the question")
	generateCmd.Flags().String("knowledge-base", "", "Path to a text file with reference material")
}
