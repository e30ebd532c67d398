package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sow-backend/internal/audits/compliance"
	"sow-backend/internal/llm"
)

func testInput() llm.AnalyzeInput {
	return llm.AnalyzeInput{
		DocumentText: "This SOW is a fixed price engagement.",
		Timeline: compliance.ProjectTimeline{
			ProjectName:    "Carve-out Alpha",
			BuildEndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			TestEndDate:    time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
			CutoverEndDate: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		TableCount: 2,
	}
}

func chatReply(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	out, _ := json.Marshal(payload)
	return string(out)
}

func TestAnalyzeSOWStripsCodeFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		w.Write([]byte(chatReply("```json\n{\"pillars\": []}\n```")))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", "deepseek-chat", srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	raw, err := client.AnalyzeSOW(context.Background(), testInput())
	if err != nil {
		t.Fatalf("AnalyzeSOW: %v", err)
	}
	if string(raw) != `{"pillars": []}` {
		t.Fatalf("unexpected raw output: %s", raw)
	}
}

func TestAnalyzeSOWFixRetryOnInvalidJSON(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(chatReply("not json at all")))
			return
		}
		w.Write([]byte(chatReply(`{"pillars": []}`)))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", "deepseek-chat", srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	raw, err := client.AnalyzeSOW(context.Background(), testInput())
	if err != nil {
		t.Fatalf("AnalyzeSOW: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if !json.Valid(raw) {
		t.Fatalf("expected valid JSON, got %s", raw)
	}
}

func TestAnalyzeSOWNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient("test-key", "deepseek-chat", srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.AnalyzeSOW(context.Background(), testInput()); err == nil {
		t.Fatalf("expected error for non-200 response")
	} else if !strings.Contains(err.Error(), "http status 429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "deepseek-chat", ""); err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if _, err := NewClient("key", "", ""); err == nil {
		t.Fatalf("expected error for missing model")
	}
}

func TestUserPromptTruncatesDocument(t *testing.T) {
	input := testInput()
	input.DocumentText = strings.Repeat("a", documentTextLimit+500)

	prompt := userPrompt(input)
	if strings.Contains(prompt, strings.Repeat("a", documentTextLimit+1)) {
		t.Fatalf("expected document text to be truncated")
	}
	if !strings.Contains(prompt, "Carve-out Alpha") {
		t.Fatalf("expected project name in prompt")
	}
	if !strings.Contains(prompt, "2026-06-30") {
		t.Fatalf("expected cutover date in prompt")
	}
	if !strings.Contains(prompt, "2 tables found") {
		t.Fatalf("expected table count in prompt")
	}
}

func TestSystemPromptListsAllPillars(t *testing.T) {
	prompt := systemPrompt()
	for _, name := range []string{"Pricing Model", "Schedule", "Data Handling", "Sign-off Blocks"} {
		if !strings.Contains(prompt, name) {
			t.Fatalf("expected %q in system prompt", name)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json_fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare_fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "unterminated", in: "```json\n{\"a\":1}", want: `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFences(tc.in); got != tc.want {
				t.Fatalf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
