package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flashnest/flashnest-go/internal/types"
	"github.com/flashnest/flashnest-go/prompts"
)

// maxCompletionTokens bounds the generation response size; 50 flashcards of
// short question/answer pairs fit comfortably.
const maxCompletionTokens = 1000

// GenerateChatCompletion POSTs a chat-completion request to the generation
// endpoint and returns the first choice's message content. The bearer key is
// added by the generation client's transport.
func GenerateChatCompletion(ctx context.Context, httpClient *http.Client, baseURL, model, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	req := types.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxCompletionTokens,
		Messages: []types.ChatMessage{
			{Role: "system", Content: prompts.System()},
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/api/v1/chat/completions", baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", wrapTransportErr("chat completion", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, http.StatusOK, "chat completion"); err != nil {
		return "", err
	}

	var cr types.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("chat completion: response has no choices")
	}
	return cr.Choices[0].Message.Content, nil
}
