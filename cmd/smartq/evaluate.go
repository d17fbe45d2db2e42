package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"smartq/internal/domain"
	"smartq/internal/dto"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate an answer to a quiz question",
	Long:  "Reads an evaluation request (question, options, selected_options, additional_answer) as JSON from --file, or stdin when --file is \"-\".",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		req, err := readEvaluationRequest(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.logger.Sync() }()

		record, err := s.svc.EvaluateAnswer(cmd.Context(), req.ToDomain(), s.timeout)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), dto.NewEvaluationResponse(record))
	},
}

func init() {
	evaluateCmd.Flags().StringP("file", "f", "-", "Path to the evaluation request JSON")
}

func readEvaluationRequest(stdin io.Reader, path string) (dto.EvaluateAnswerRequest, error) {
	var req dto.EvaluateAnswerRequest

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, &usageError{err: fmt.Errorf("open request file: %w", err)}
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, domain.NewInputError("file", fmt.Sprintf("request is not valid JSON: %v", err))
	}
	return req, nil
}
