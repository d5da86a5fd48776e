package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hpungsan/forward/internal/item"
)

const classifySystemPrompt = `You sort captured notes into exactly one category.
Reply with a single word, nothing else: task, spark, project, or reminder.
task: something concrete to do. spark: an idea or observation to keep.
project: a multi-step initiative. reminder: something time-bound to not forget.`

const stepsSystemPrompt = `You break a task into the smallest possible physical starter steps.
Reply with strict JSON and nothing else, in this shape:
{"steps": ["tiny first step", ...]}
Each step must be a single concrete physical action taking under two
minutes. Never plan the whole task; only lower the cost of starting it.`

const summarizeSystemPrompt = `You condense a long free-form note.
Reply with strict JSON and nothing else, in this shape:
{"title": "short title", "summary": "two or three sentences", "actions": ["concrete next step", ...]}
Keep the title under ten words and list at most five actions.`

// Remote is a chat-completions client for classification and
// summarization. The zero value is not usable; construct with
// NewRemote.
type Remote struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewRemote builds a client against an OpenAI-compatible chat
// completions endpoint.
func NewRemote(baseURL, model, apiKey string) *Remote {
	return &Remote{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// chat sends one system+user exchange and returns the model reply.
func (r *Remote) chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("chat API status %d: %s", resp.StatusCode, detail)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Classify asks the model for a single-word category.
func (r *Remote) Classify(ctx context.Context, content string) (item.Category, error) {
	reply, err := r.chat(ctx, classifySystemPrompt, content)
	if err != nil {
		return item.CategoryUncategorised, err
	}
	cat, ok := NormalizeCategory(reply)
	if !ok {
		return item.CategoryUncategorised, fmt.Errorf("unrecognized category reply %q", reply)
	}
	return cat, nil
}

// Summarize asks the model to condense a brain dump into a title,
// summary, and action list.
func (r *Remote) Summarize(ctx context.Context, content string) (*Summary, error) {
	reply, err := r.chat(ctx, summarizeSystemPrompt, content)
	if err != nil {
		return nil, err
	}

	var s Summary
	if err := json.Unmarshal([]byte(extractJSON(reply)), &s); err != nil {
		return nil, fmt.Errorf("summary reply is not valid JSON: %w", err)
	}
	if s.Title == "" && s.Summary == "" {
		return nil, fmt.Errorf("summary reply is empty")
	}
	return &s, nil
}

// Steps asks the model for a starter-step breakdown of a task.
func (r *Remote) Steps(ctx context.Context, content, phase string, maxSteps int) ([]string, error) {
	prompt := content
	if phase != "" {
		prompt = fmt.Sprintf("Task: %s\nProject phase: %s", content, phase)
	}
	if maxSteps > 0 {
		prompt = fmt.Sprintf("%s\nReturn at most %d steps.", prompt, maxSteps)
	}

	reply, err := r.chat(ctx, stepsSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Steps []string `json:"steps"`
	}
	if err := json.Unmarshal([]byte(extractJSON(reply)), &parsed); err != nil {
		return nil, fmt.Errorf("steps reply is not valid JSON: %w", err)
	}
	if len(parsed.Steps) == 0 {
		return nil, fmt.Errorf("steps reply is empty")
	}
	if maxSteps > 0 && len(parsed.Steps) > maxSteps {
		parsed.Steps = parsed.Steps[:maxSteps]
	}
	return parsed.Steps, nil
}

// extractJSON trims chatter around the outermost JSON object. Models
// occasionally wrap the object in prose or code fences despite the
// prompt.
func extractJSON(reply string) string {
	start := -1
	depth := 0
	for i, r := range reply {
		switch r {
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return reply[start : i+1]
				}
			}
		}
	}
	return reply
}
