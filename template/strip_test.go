package template

import "testing"

func TestStrip(t *testing.T) {
	cases := []struct {
		name   string
		kind   Kind
		output string
		want   string
	}{
		{"baichuan cuts at user marker", Baichuan2, "你好！\n用户:再见", "你好！"},
		{"openchat suffix", OpenChat, " Hello there<|end_of_turn|>", "Hello there"},
		{"openchat repeated suffix", OpenChat, "Hi<|end_of_turn|><|end_of_turn|>", "Hi"},
		{"chatml end marker", ChatML, "Sure.<|im_end|>\n", "Sure."},
		{"chatml start before end", ChatML, "Sure.\n<|im_start|>user\nmore<|im_end|>", "Sure."},
		{"zephyr eos", Zephyr, "Done.</s>", "Done."},
		{"zephyr eos angle", Zephyr, "Done.</s><", "Done."},
		{"mistrallite eos", MistralLite, "ok </s>", "ok"},
		{"deepseek chat", DeepseekChat, "Answer<|end_of_sentence|>", "Answer"},
		{"belle human", BelleLlama2Chat, "Answer\nHuman:", "Answer"},
		{"default trims only", Llama2Chat, "  keep </s> as is  ", "keep </s> as is"},
		{"no marker", ChatML, "  plain  ", "plain"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.output, tt.kind); got != tt.want {
				t.Errorf("Strip(%q, %s) = %q, want %q", tt.output, tt.kind, got, tt.want)
			}
		})
	}
}

func TestStripIdempotent(t *testing.T) {
	outputs := []string{
		"Hello<|end_of_turn|>",
		"A<|im_end|>B<|im_start|>C",
		"x</s></s><",
		"答案\n用户:问题",
		"reply Human:",
		"thanks<|end_of_sentence|>  ",
		"   ",
		"",
	}

	for _, k := range Kinds() {
		for _, out := range outputs {
			once := Strip(out, k)
			if twice := Strip(once, k); twice != once {
				t.Errorf("%s: Strip not idempotent for %q: %q -> %q", k, out, once, twice)
			}
		}
	}
}
