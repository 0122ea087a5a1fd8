// Package template - Prompt-Templates fuer Chat-Dialekte
// Hauptmodul: Strategy-Records und Registry
package template

import (
	"fmt"
)

// Wrapper umschliesst den Inhalt eines Turns
type Wrapper struct {
	Prefix string
	Suffix string
}

func (w Wrapper) wrap(content string) string {
	return w.Prefix + content + w.Suffix
}

// Strategy beschreibt einen Dialekt deklarativ. Ein generischer Renderer
// (Build) erzeugt daraus den Prompt.
type Strategy struct {
	Kind Kind

	// System umschliesst die System-Nachricht. DefaultSystem wird verwendet,
	// wenn keine System-Nachricht vorhanden ist; ist es leer, entfaellt der
	// System-Block.
	System        Wrapper
	DefaultSystem string

	// NoSystem: der Dialekt kennt keinen System-Turn, System-Nachrichten
	// werden uebersprungen.
	NoSystem bool

	// FirstUser gilt fuer den ersten Turn nach dem System-Block.
	FirstUser Wrapper
	User      Wrapper
	Assistant Wrapper

	// Prime wird nach allen Turns angehaengt und leitet die Antwort ein.
	Prime string

	// TrimContent entfernt Leerraum um jeden Nachrichteninhalt.
	TrimContent bool

	// LastUserOnly rendert nur die letzte User-Nachricht.
	LastUserOnly bool

	// EndOfTurn ist der Marker, mit dem das Modell einen Turn abschliesst.
	EndOfTurn string

	// Nachbearbeitung fuer Single-Shot-Ausgaben, siehe Strip.
	CutAt      []string
	TrimSuffix []string
}

const (
	llama2System   = "You are a helpful, respectful and honest assistant. Always answer as short as possible, while being safe."
	codeLlamaSys   = "Write code to solve the following coding problem that obeys the constraints and passes the example test cases. Please wrap your code answer using ```:"
	vicunaSystem   = "A chat between a curious user and an artificial intelligence assistant. The assistant gives helpful, detailed, and polite answers to the user's questions."
	chatMLSystem   = "Answer as concisely as possible."
	baichuanSystem = "以下内容为人类用户与一位智能助手的对话。"
	wizardSystem   = "Below is an instruction that describes a task. Write a response that appropriately completes the request."
	zephyrSystem   = "You are a friendly chatbot."
	intelSystem    = "You are a chatbot developed by Intel. Please answer all questions to the best of your ability."
	deepseekSystem = "You are an AI programming assistant, utilizing the DeepSeek Coder model, developed by DeepSeek Company, and you only answer questions related to computer science. For politically sensitive questions, security and privacy issues, and other non-computer science questions, you will refuse to answer."
)

var strategies = map[Kind]*Strategy{
	Llama2Chat: {
		System:        Wrapper{"<s>[INST] <<SYS>>\n", " <</SYS>>\n\n"},
		DefaultSystem: llama2System,
		FirstUser:     Wrapper{"", " [/INST]"},
		User:          Wrapper{"<s>[INST] ", " [/INST]"},
		Assistant:     Wrapper{" ", " </s>"},
		TrimContent:   true,
		EndOfTurn:     "</s>",
	},
	CodeLlama: {
		System:        Wrapper{"<s>[INST] <<SYS>>\n", " <</SYS>>\n\n"},
		DefaultSystem: codeLlamaSys,
		FirstUser:     Wrapper{"", " [/INST]"},
		User:          Wrapper{"<s>[INST] ", " [/INST]"},
		Assistant:     Wrapper{" ", " </s>"},
		TrimContent:   true,
		EndOfTurn:     "</s>",
	},
	MistralInstruct: {
		NoSystem:    true,
		FirstUser:   Wrapper{"<s>[INST] ", " [/INST]"},
		User:        Wrapper{"[INST] ", " [/INST]"},
		Assistant:   Wrapper{"", "</s>"},
		TrimContent: true,
		EndOfTurn:   "</s>",
	},
	MistralLite: {
		NoSystem:    true,
		FirstUser:   Wrapper{"<|prompter|>", "</s>"},
		User:        Wrapper{"<|prompter|>", "</s>"},
		Assistant:   Wrapper{"<|assistant|>", "</s>"},
		Prime:       "<|assistant|>",
		TrimContent: true,
		EndOfTurn:   "</s>",
		TrimSuffix:  []string{"</s><", "</s>"},
	},
	OpenChat: {
		NoSystem:    true,
		FirstUser:   Wrapper{"GPT4 User: ", "<|end_of_turn|>"},
		User:        Wrapper{"GPT4 User: ", "<|end_of_turn|>"},
		Assistant:   Wrapper{"GPT4 Assistant: ", "<|end_of_turn|>"},
		Prime:       "GPT4 Assistant:",
		TrimContent: true,
		EndOfTurn:   "<|end_of_turn|>",
		TrimSuffix:  []string{"<|end_of_turn|>"},
	},
	BelleLlama2Chat: {
		NoSystem:    true,
		FirstUser:   Wrapper{"Human: \n", "\n\n"},
		User:        Wrapper{"Human: \n", "\n\n"},
		Assistant:   Wrapper{"Assistant:", "\n\n"},
		Prime:       "Assistant:",
		TrimContent: true,
		EndOfTurn:   "Human:",
		TrimSuffix:  []string{"Human:"},
	},
	VicunaChat: {
		System:        Wrapper{"", " "},
		DefaultSystem: vicunaSystem,
		FirstUser:     Wrapper{"USER: ", " "},
		User:          Wrapper{"USER: ", " "},
		Assistant:     Wrapper{"ASSISTANT: ", " "},
		Prime:         "ASSISTANT:",
		TrimContent:   true,
		EndOfTurn:     "</s>",
	},
	Vicuna11Chat: {
		System:        Wrapper{"", "\n"},
		DefaultSystem: vicunaSystem,
		FirstUser:     Wrapper{"USER: ", "\n"},
		User:          Wrapper{"USER: ", "\n"},
		Assistant:     Wrapper{"ASSISTANT: ", "</s>\n"},
		Prime:         "ASSISTANT:",
		TrimContent:   true,
		EndOfTurn:     "</s>",
	},
	ChatML: {
		System:        Wrapper{"<|im_start|>system\n", "<|im_end|>"},
		DefaultSystem: chatMLSystem,
		FirstUser:     Wrapper{"\n<|im_start|>user\n", "<|im_end|>"},
		User:          Wrapper{"\n<|im_start|>user\n", "<|im_end|>"},
		Assistant:     Wrapper{"\n<|im_start|>assistant\n", "<|im_end|>"},
		Prime:         "\n<|im_start|>assistant",
		EndOfTurn:     "<|im_end|>",
		CutAt:         []string{"<|im_start|>", "<|im_end|>"},
	},
	Baichuan2: {
		System:        Wrapper{"", "\n\n"},
		DefaultSystem: baichuanSystem,
		FirstUser:     Wrapper{"用户:", "\n\n"},
		User:          Wrapper{"用户:", "\n\n"},
		Assistant:     Wrapper{"助手:", "\n"},
		Prime:         "助手:",
		TrimContent:   true,
		EndOfTurn:     "用户:",
		CutAt:         []string{"用户:"},
	},
	WizardCoder: {
		System:        Wrapper{"", "\n\n"},
		DefaultSystem: wizardSystem,
		FirstUser:     Wrapper{"### Instruction:\n", "\n\n"},
		User:          Wrapper{"### Instruction:\n", "\n\n"},
		Assistant:     Wrapper{"### Response:\n", "\n\n"},
		Prime:         "### Response:",
		TrimContent:   true,
		LastUserOnly:  true,
	},
	Zephyr: {
		System:        Wrapper{"<|system|>\n", "</s>"},
		DefaultSystem: zephyrSystem,
		FirstUser:     Wrapper{"\n<|user|>\n", "</s>"},
		User:          Wrapper{"\n<|user|>\n", "</s>"},
		Assistant:     Wrapper{"\n<|assistant|>\n", "</s>"},
		Prime:         "\n<|assistant|>",
		EndOfTurn:     "</s>",
		TrimSuffix:    []string{"</s><", "</s>"},
	},
	IntelNeural: {
		System:        Wrapper{"### System:\n", ""},
		DefaultSystem: intelSystem,
		FirstUser:     Wrapper{"\n### User:\n", ""},
		User:          Wrapper{"\n### User:\n", ""},
		Assistant:     Wrapper{"\n### Assistant:\n", ""},
		Prime:         "\n### Assistant:",
		TrimContent:   true,
	},
	DeepseekChat: {
		NoSystem:    true,
		FirstUser:   Wrapper{"User: ", ""},
		User:        Wrapper{"\n\nUser: ", ""},
		Assistant:   Wrapper{"\n\nAssistant: ", "<|end_of_sentence|>"},
		Prime:       "\n\nAssistant:",
		TrimContent: true,
		EndOfTurn:   "<|end_of_sentence|>",
		TrimSuffix:  []string{"<|end_of_sentence|>"},
	},
	DeepseekCoder: {
		System:        Wrapper{"", ""},
		DefaultSystem: deepseekSystem,
		FirstUser:     Wrapper{"\n### Instruction:\n", ""},
		User:          Wrapper{"\n### Instruction:\n", ""},
		Assistant:     Wrapper{"\n### Response:\n", "\n<|EOT|>"},
		Prime:         "\n### Response:",
		TrimContent:   true,
		EndOfTurn:     "<|EOT|>",
	},
}

func init() {
	if err := validate(); err != nil {
		panic(err)
	}

	for k, s := range strategies {
		s.Kind = k
	}
}

// validate prueft dass jeder Dialekt genau eine Strategy hat
func validate() error {
	for _, k := range Kinds() {
		if strategies[k] == nil {
			return fmt.Errorf("template: no strategy registered for %s", k)
		}
	}

	if len(strategies) != int(numKinds) {
		return fmt.Errorf("template: %d strategies registered for %d kinds", len(strategies), numKinds)
	}

	return nil
}

// Resolve gibt die Strategy fuer k zurueck. Ein Wert ausserhalb der
// Aufzaehlung ist ein Programmierfehler.
func Resolve(k Kind) *Strategy {
	s, ok := strategies[k]
	if !ok {
		panic(fmt.Sprintf("template: unknown kind %d", int(k)))
	}
	return s
}
