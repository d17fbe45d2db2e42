package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartq/internal/domain"
	"smartq/internal/dto"
)

func fakeOllama(t *testing.T, response string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := json.Marshal(map[string]any{"response": response, "done": true})
		_, _ = w.Write(raw)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	srv := fakeOllama(t, `{"question":"2+2?","options":[{"text":"4","isCorrect":true},{"text":"5","isCorrect":false}],"explanation":"math"}`)

	out, err := run(t, "", "generate", "--server", srv.URL, "--topic", "arithmetic", "--instructions", "easy")
	require.NoError(t, err)

	var got dto.QuizResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "2+2?", got.Question)
	assert.Len(t, got.Options, 2)
	assert.NotEmpty(t, got.ID)
}

func TestEvaluateCommand(t *testing.T) {
	srv := fakeOllama(t, `{"isCorrect":true,"feedback":"Nope","detailedExplanation":"4 is right"}`)

	path := filepath.Join(t.TempDir(), "answer.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"question": "2+2?",
		"options": [{"text": "4", "isCorrect": true}, {"text": "5", "isCorrect": false}],
		"selected_options": [{"index": 1, "text": "5"}]
	}`), 0o600))

	out, err := run(t, "", "evaluate", "--server", srv.URL, "--file", path)
	require.NoError(t, err)

	var got dto.EvaluationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.IsCorrect)
	assert.Equal(t, "4 is right", got.DetailedExplanation)
}

func TestEvaluateCommand_InvalidStdin(t *testing.T) {
	_, err := run(t, "{", "evaluate", "--file", "-")
	var inputErr *domain.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, exitInvalidInput, report(err))
}

func TestReport(t *testing.T) {
	assert.Equal(t, exitInvalidInput, report(domain.InputErrors{domain.NewInputError("topic", "topic is required")}))
	assert.Equal(t, exitFailure, report(domain.NewTransportError(domain.TransportTimeout, 0, errors.New("slow"))))
	assert.Equal(t, exitInvalidInput, report(&usageError{err: errors.New("unknown flag: --nope")}))
}
