package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/llamaedge/llamaedge/api"
)

func TestResolveCoversEveryKind(t *testing.T) {
	if err := validate(); err != nil {
		t.Fatal(err)
	}

	for _, k := range Kinds() {
		s := Resolve(k)
		if s == nil {
			t.Fatalf("Resolve(%s) = nil", k)
		}
		if s.Kind != k {
			t.Errorf("Resolve(%s).Kind = %s", k, s.Kind)
		}
	}
}

func TestResolveInvalidKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range kind")
		}
	}()

	Resolve(numKinds)
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		name       string
		want       Kind
		suggestion string
		wantErr    bool
	}{
		{name: "llama-2-chat", want: Llama2Chat},
		{name: "chatml", want: ChatML},
		{name: "vicuna-1.1-chat", want: Vicuna11Chat},
		{name: "mistral-instruct-v0.1", want: MistralInstruct},
		{name: "chatlm", suggestion: "chatml", wantErr: true},
		{name: "zephir", suggestion: "zephyr", wantErr: true},
		{name: "foo", wantErr: true},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			k, err := ParseKind(tt.name)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if k != tt.want {
					t.Errorf("ParseKind(%q) = %s, want %s", tt.name, k, tt.want)
				}
				return
			}

			var uerr *UnknownKindError
			if !errors.As(err, &uerr) {
				t.Fatalf("expected UnknownKindError, got %v", err)
			}
			if uerr.Suggestion != tt.suggestion {
				t.Errorf("suggestion = %q, want %q", uerr.Suggestion, tt.suggestion)
			}
		})
	}
}

func TestKindNamesRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatal(err)
		}

		var got Kind
		if err := got.UnmarshalText(b); err != nil {
			t.Fatal(err)
		}
		if got != k {
			t.Errorf("round trip %s -> %s", k, got)
		}
	}
}

func TestRenderChatML(t *testing.T) {
	prompt, err := Render(ChatML, []api.Message{
		{Role: api.RoleSystem, Content: "be terse"},
		{Role: api.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "<|im_start|>system\nbe terse<|im_end|>\n<|im_start|>user\nhi<|im_end|>\n<|im_start|>assistant"
	if diff := cmp.Diff(want, prompt); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if n := strings.Count(prompt, "<|im_start|>system\n"); n != 1 {
		t.Errorf("system wrapper appears %d times", n)
	}
	if n := strings.Count(prompt, "<|im_start|>user\n"); n != 1 {
		t.Errorf("user wrapper appears %d times", n)
	}
	if strings.Index(prompt, "system") > strings.Index(prompt, "user") {
		t.Error("system turn must precede user turn")
	}
	if strings.Contains(prompt, "<|im_start|>assistant\n") {
		t.Error("no assistant content expected")
	}
	if !strings.HasSuffix(prompt, Resolve(ChatML).Prime) {
		t.Error("prompt must end with the priming cue")
	}
}

func TestRender(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		msgs []api.Message
		want string
	}{
		{
			name: "llama2 multi turn",
			kind: Llama2Chat,
			msgs: []api.Message{
				{Role: api.RoleSystem, Content: "S"},
				{Role: api.RoleUser, Content: " u1 "},
				{Role: api.RoleAssistant, Content: "a1"},
				{Role: api.RoleUser, Content: "u2"},
			},
			want: "<s>[INST] <<SYS>>\nS <</SYS>>\n\nu1 [/INST] a1 </s><s>[INST] u2 [/INST]",
		},
		{
			name: "llama2 default system",
			kind: Llama2Chat,
			msgs: []api.Message{{Role: api.RoleUser, Content: "hello"}},
			want: "<s>[INST] <<SYS>>\n" + llama2System + " <</SYS>>\n\nhello [/INST]",
		},
		{
			name: "mistral skips system",
			kind: MistralInstruct,
			msgs: []api.Message{
				{Role: api.RoleSystem, Content: "ignored"},
				{Role: api.RoleUser, Content: "hi"},
				{Role: api.RoleAssistant, Content: "hello"},
				{Role: api.RoleUser, Content: "bye"},
			},
			want: "<s>[INST] hi [/INST]hello</s>[INST] bye [/INST]",
		},
		{
			name: "openchat",
			kind: OpenChat,
			msgs: []api.Message{{Role: api.RoleUser, Content: "hi"}},
			want: "GPT4 User: hi<|end_of_turn|>GPT4 Assistant:",
		},
		{
			name: "zephyr",
			kind: Zephyr,
			msgs: []api.Message{
				{Role: api.RoleSystem, Content: "sys"},
				{Role: api.RoleUser, Content: "hi"},
			},
			want: "<|system|>\nsys</s>\n<|user|>\nhi</s>\n<|assistant|>",
		},
		{
			name: "wizard coder keeps last instruction",
			kind: WizardCoder,
			msgs: []api.Message{
				{Role: api.RoleUser, Content: "first"},
				{Role: api.RoleAssistant, Content: "answer"},
				{Role: api.RoleUser, Content: "second"},
			},
			want: wizardSystem + "\n\n### Instruction:\nsecond\n\n### Response:",
		},
		{
			name: "function rendered as user",
			kind: DeepseekChat,
			msgs: []api.Message{
				{Role: api.RoleUser, Content: "q"},
				{Role: api.RoleAssistant, Content: "a"},
				{Role: api.RoleFunction, Content: "f", Name: "lookup"},
			},
			want: "User: q\n\nAssistant: a<|end_of_sentence|>\n\nUser: f\n\nAssistant:",
		},
		{
			name: "baichuan",
			kind: Baichuan2,
			msgs: []api.Message{
				{Role: api.RoleSystem, Content: "sys"},
				{Role: api.RoleUser, Content: "你好"},
			},
			want: "sys\n\n用户:你好\n\n助手:",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.kind, tt.msgs)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	msgs := []api.Message{
		{Role: api.RoleSystem, Content: "You are terse."},
		{Role: api.RoleUser, Content: "What is Go?"},
		{Role: api.RoleAssistant, Content: "A language."},
		{Role: api.RoleUser, Content: "Who made it?"},
	}

	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			first, err := Render(k, msgs)
			if err != nil {
				t.Fatal(err)
			}
			second, err := Render(k, msgs)
			if err != nil {
				t.Fatal(err)
			}
			if first != second {
				t.Errorf("render is not deterministic:\n%q\n%q", first, second)
			}
			if !strings.HasSuffix(first, Resolve(k).Prime) {
				t.Errorf("prompt %q does not end with %q", first, Resolve(k).Prime)
			}
			if !strings.Contains(first, "Who made it?") {
				t.Errorf("prompt %q lost the last user turn", first)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	cases := []struct {
		name  string
		msgs  []api.Message
		err   error
		index int
	}{
		{"empty", nil, ErrNoMessages, -1},
		{"system not first", []api.Message{
			{Role: api.RoleUser, Content: "hi"},
			{Role: api.RoleSystem, Content: "late"},
		}, ErrSystemNotFirst, 1},
		{"only system", []api.Message{{Role: api.RoleSystem, Content: "s"}}, ErrNoUserMessage, -1},
		{"unknown role", []api.Message{
			{Role: api.RoleUser, Content: "hi"},
			{Role: "tool", Content: "x"},
		}, ErrUnknownRole, 1},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(ChatML, tt.msgs)
			if !errors.Is(err, tt.err) {
				t.Fatalf("got %v, want %v", err, tt.err)
			}

			var perr *PromptBuildError
			if !errors.As(err, &perr) {
				t.Fatalf("expected PromptBuildError, got %T", err)
			}
			if perr.Index != tt.index {
				t.Errorf("index = %d, want %d", perr.Index, tt.index)
			}
			if perr.Kind != ChatML {
				t.Errorf("kind = %s, want chatml", perr.Kind)
			}
		})
	}
}
