package api

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConversation(t *testing.T) {
	c := NewConversation("Be brief.")
	c.Append(Message{Role: RoleUser, Content: "Hi"})

	msgs := c.Messages()
	msgs[0].Content = "changed"

	want := []Message{
		{Role: RoleSystem, Content: "Be brief."},
		{Role: RoleUser, Content: "Hi"},
	}
	if diff := cmp.Diff(want, c.Messages()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}

	if n := NewConversation("").Len(); n != 0 {
		t.Errorf("empty system prompt must not add a message, got %d", n)
	}
}

func TestNewUsage(t *testing.T) {
	got := NewUsage("  one two\nthree ", "four\tfive")
	want := Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if n := CountTokens("   "); n != 0 {
		t.Errorf("blank text counts %d words", n)
	}
}

func TestStatusError(t *testing.T) {
	cases := []struct {
		err  StatusError
		want string
	}{
		{StatusError{Status: "503 Service Unavailable", ErrorMessage: "loading"}, "503 Service Unavailable: loading"},
		{StatusError{Status: "500 Internal Server Error"}, "500 Internal Server Error"},
		{StatusError{ErrorMessage: "boom"}, "boom"},
		{StatusError{}, "something went wrong, please see the server logs for details"},
	}

	for _, tt := range cases {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleSystem, RoleUser, RoleAssistant, RoleFunction} {
		if !ValidRole(r) {
			t.Errorf("%q should be valid", r)
		}
	}
	for _, r := range []string{"", "tool", "User"} {
		if ValidRole(r) {
			t.Errorf("%q should be invalid", r)
		}
	}
}

func TestOptionsFromMap(t *testing.T) {
	opts := DefaultOptions()
	err := opts.FromMap(map[string]any{
		"n-predict":      float64(64),
		"ctx-size":       2048,
		"temp":           1,
		"repeat-penalty": 1.3,
		"enable-log":     true,
		"reverse-prompt": "</s>",
		"unknown":        "ignored",
	})
	if err != nil {
		t.Fatal(err)
	}

	want := DefaultOptions().WithStop("</s>")
	want.NPredict = 64
	want.CtxSize = 2048
	want.Temperature = 1
	want.RepeatPenalty = 1.3
	want.LogEnable = true

	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsFromMapErrors(t *testing.T) {
	cases := map[string]map[string]any{
		"int":    {"n-predict": "many"},
		"float":  {"temp": "hot"},
		"bool":   {"enable-log": "yes"},
		"string": {"reverse-prompt": 3},
	}

	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			if err := opts.FromMap(m); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestOptionsStop(t *testing.T) {
	opts := DefaultOptions()
	if opts.Stop() != nil {
		t.Fatal("default options must not stop")
	}

	if opts.WithStop("").Stop() != nil {
		t.Error("empty stop string must be ignored")
	}

	if s := opts.WithStop("User:").Stop(); s == nil || *s != "User:" {
		t.Errorf("unexpected stop %v", s)
	}

	opts.CtxSize = 10
	if n := opts.OutputLimit(); n != 60 {
		t.Errorf("output limit = %d", n)
	}
}

func TestOptionsMetadata(t *testing.T) {
	opts := DefaultOptions().WithStop("</s>")
	b, err := opts.Metadata()
	if err != nil {
		t.Fatal(err)
	}

	var back Options
	if err := back.FromMap(mustDecode(t, b)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(opts, back); diff != "" {
		t.Errorf("metadata round trip mismatch (-want +got):\n%s", diff)
	}
}

func mustDecode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	return m
}
