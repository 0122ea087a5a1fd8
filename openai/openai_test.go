package openai

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/llamaedge/llamaedge/api"
)

func TestToChatCompletion(t *testing.T) {
	created := time.Unix(1700000000, 0)
	r := api.ChatResponse{
		Model:      "m",
		CreatedAt:  created,
		Message:    api.Message{Role: "assistant", Content: "d e"},
		DoneReason: "stop",
		Done:       true,
		Usage:      api.NewUsage("a b c", "d e"),
	}

	stop := "stop"
	want := ChatCompletion{
		Id:                "chatcmpl-1",
		Object:            "chat.completion",
		Created:           1700000000,
		Model:             "m",
		SystemFingerprint: systemFingerprint,
		Choices: []Choice{{
			Message:      Message{Role: "assistant", Content: "d e"},
			FinishReason: &stop,
		}},
		Usage: Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}

	if diff := cmp.Diff(want, ToChatCompletion("chatcmpl-1", r)); diff != "" {
		t.Errorf("ChatCompletion falsch (-want +got):\n%s", diff)
	}
}

func TestToCompletion(t *testing.T) {
	got := ToCompletion("cmpl-1", api.GenerateResponse{
		Model:      "m",
		Response:   "hi",
		DoneReason: "stop",
		Done:       true,
		Usage:      api.NewUsage("p q", "hi"),
	})

	if got.Object != "text_completion" || len(got.Choices) != 1 {
		t.Fatalf("unerwartete Completion: %+v", got)
	}
	if got.Choices[0].Text != "hi" || *got.Choices[0].FinishReason != "stop" {
		t.Errorf("Choice = %+v", got.Choices[0])
	}
	if got.Usage.TotalTokens != 3 {
		t.Errorf("Usage = %+v", got.Usage)
	}
}

func TestToChunk(t *testing.T) {
	c := ToChunk("id", api.ChatResponse{Model: "m", Message: api.Message{Role: "assistant", Content: "Hel"}})
	if c.Choices[0].FinishReason != nil {
		t.Error("Zwischen-Chunk darf keinen Finish-Reason haben")
	}

	b, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"delta":{"role":"assistant","content":"Hel"}`) {
		t.Errorf("Chunk-JSON = %s", b)
	}
	if strings.Contains(string(b), `"usage"`) {
		t.Errorf("Chunk ohne Usage erwartet: %s", b)
	}

	final := api.ChatResponse{Model: "m", DoneReason: "stop", Done: true, Usage: api.NewUsage("a", "b c")}
	last := ToChunk("id", final)
	if last.Choices[0].FinishReason == nil || *last.Choices[0].FinishReason != "stop" {
		t.Error("letzter Chunk braucht finish_reason stop")
	}

	u := ToUsageChunk("id", final)
	if len(u.Choices) != 0 || u.Usage == nil || u.Usage.TotalTokens != 3 {
		t.Errorf("Usage-Chunk = %+v", u)
	}
}

func TestToListCompletion(t *testing.T) {
	got := ToListCompletion(api.ListResponse{Models: []api.ListModelResponse{{
		Name:     "llama-2-7b",
		Template: "llama-2-chat",
		LoadedAt: time.Unix(1700000000, 0),
	}}})

	want := ListCompletion{
		Object: "list",
		Data: []Model{{
			Id:      "llama-2-7b:llama-2-chat",
			Object:  "model",
			Created: 1700000000,
			OwnedBy: "Not specified",
		}},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListCompletion falsch (-want +got):\n%s", diff)
	}

	if empty := ToListCompletion(api.ListResponse{}); empty.Data == nil {
		t.Error("leere Liste muss als [] serialisiert werden")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID("chatcmpl"), NewID("chatcmpl")
	if a == b {
		t.Error("IDs muessen eindeutig sein")
	}
	if !strings.HasPrefix(a, "chatcmpl-") {
		t.Errorf("Praefix fehlt: %s", a)
	}
}

func TestFromChatRequest(t *testing.T) {
	var r ChatCompletionRequest
	body := `{
		"model": "m",
		"messages": [
			{"role": "system", "content": "Be brief."},
			{"role": "User", "content": [{"type": "text", "text": "a"}, {"type": "text", "text": "b"}]}
		],
		"max_tokens": 16,
		"temperature": 0.5,
		"stop": ["", "###", "END"],
		"stream": true
	}`
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatal(err)
	}

	got, err := FromChatRequest(r)
	if err != nil {
		t.Fatal(err)
	}

	stream := true
	want := &api.ChatRequest{
		Model: "m",
		Messages: []api.Message{
			{Role: "system", Content: "Be brief."},
			{Role: "user", Content: "a\nb"},
		},
		Stream: &stream,
		Options: map[string]any{
			"n-predict":      16,
			"temp":           0.5,
			"reverse-prompt": "###",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ChatRequest falsch (-want +got):\n%s", diff)
	}

	// die Optionen muessen sich auf api.Options anwenden lassen
	opts := api.DefaultOptions()
	if err := opts.FromMap(got.Options); err != nil {
		t.Fatal(err)
	}
	if opts.NPredict != 16 || opts.Temperature != 0.5 || *opts.Stop() != "###" {
		t.Errorf("Optionen = %+v", opts)
	}
}

func TestFromChatRequestErrors(t *testing.T) {
	neg := -1
	cases := []struct {
		name string
		req  ChatCompletionRequest
	}{
		{"no messages", ChatCompletionRequest{Model: "m"}},
		{"bad role", ChatCompletionRequest{Messages: []Message{{Role: "tool", Content: "x"}}}},
		{"image part", ChatCompletionRequest{Messages: []Message{{Role: "user", Content: []any{map[string]any{"type": "image_url"}}}}}},
		{"nil content", ChatCompletionRequest{Messages: []Message{{Role: "user"}}}},
		{"bad stop", ChatCompletionRequest{Messages: []Message{{Role: "user", Content: "x"}}, Stop: 3.0}},
		{"negative max tokens", ChatCompletionRequest{Messages: []Message{{Role: "user", Content: "x"}}, MaxTokens: &neg}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromChatRequest(tt.req); err == nil {
				t.Error("Fehler erwartet")
			}
		})
	}
}

func TestFromCompleteRequest(t *testing.T) {
	cases := []struct {
		name    string
		prompt  any
		want    string
		wantErr bool
	}{
		{"string", "  Once upon ", "Once upon", false},
		{"list joined", []any{"Once", "upon a", "time"}, "Once upon a time", false},
		{"list with number", []any{"a", 1.0}, "", true},
		{"missing", nil, "", true},
		{"number", 3.0, "", true},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromCompleteRequest(CompletionRequest{Prompt: tt.prompt})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Prompt != tt.want {
				t.Errorf("Prompt = %q, erwartet %q", got.Prompt, tt.want)
			}
			if !tt.wantErr && !got.Raw {
				t.Error("Completions laufen ohne Template")
			}
		})
	}
}

func TestNewError(t *testing.T) {
	cases := map[int]string{
		http.StatusBadRequest:          "invalid_request_error",
		http.StatusNotFound:            "not_found_error",
		http.StatusInternalServerError: "api_error",
	}
	for code, etype := range cases {
		if got := NewError(code, "x").Error.Type; got != etype {
			t.Errorf("NewError(%d) = %s, erwartet %s", code, got, etype)
		}
	}
}
