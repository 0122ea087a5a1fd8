// cmd_options.go - Gemeinsame Flags fuer serve und chat
// Hauptfunktionen: addRunFlags, runOptionsFromFlags, readOptionsFile
package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/llamaedge/llamaedge/api"
	"github.com/llamaedge/llamaedge/envconfig"
	"github.com/llamaedge/llamaedge/template"
)

// runOptions - Aus Flags aufgeloeste Einstellungen eines Laufs
type runOptions struct {
	Model      string
	Kind       template.Kind
	Options    api.Options
	Runner     *url.URL
	LogPrompts bool
	LogStat    bool
}

// addRunFlags - Registriert die Modell- und Generierungs-Flags
func addRunFlags(cmd *cobra.Command) {
	defaults := api.DefaultOptions()

	flags := cmd.Flags()
	flags.StringP("model-name", "m", "default", "Model name")
	flags.IntP("ctx-size", "c", defaults.CtxSize, "Size of the prompt context")
	flags.IntP("n-predict", "n", defaults.NPredict, "Number of tokens to predict")
	flags.IntP("n-gpu-layers", "g", defaults.NGPULayers, "Number of layers to run on the GPU")
	flags.IntP("batch-size", "b", defaults.BatchSize, "Batch size for prompt processing")
	flags.Float32("temp", defaults.Temperature, "Temperature for sampling")
	flags.Float32("repeat-penalty", defaults.RepeatPenalty, "Penalize repeat sequence of tokens")
	flags.StringP("reverse-prompt", "r", "", "Halt generation at PROMPT, return control")
	flags.StringP("prompt-template", "p", template.Llama2Chat.String(), "Prompt template ("+kindList()+")")
	flags.Bool("log-prompts", false, "Print prompt strings to stdout")
	flags.Bool("log-stat", false, "Print statistics to stdout")
	flags.Bool("log-all", false, "Print all log information to stdout")
	flags.String("runner", "", "URL of the inference runner (default from LLAMAEDGE_RUNNER)")
	flags.String("options-file", "", "YAML file with default options")
}

// runOptionsFromFlags - Loest die Flags auf. Reihenfolge: Standardwerte,
// dann options-file, dann explizit gesetzte Flags.
func runOptionsFromFlags(cmd *cobra.Command) (runOptions, error) {
	flags := cmd.Flags()

	var ro runOptions
	ro.Model, _ = flags.GetString("model-name")

	name, _ := flags.GetString("prompt-template")
	kind, err := template.ParseKind(name)
	if err != nil {
		return runOptions{}, err
	}
	ro.Kind = kind

	ro.Options = api.DefaultOptions()
	if path, _ := flags.GetString("options-file"); path != "" {
		m, err := readOptionsFile(path)
		if err != nil {
			return runOptions{}, err
		}
		if err := ro.Options.FromMap(m); err != nil {
			return runOptions{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if flags.Changed("ctx-size") {
		ro.Options.CtxSize, _ = flags.GetInt("ctx-size")
	}
	if flags.Changed("n-predict") {
		ro.Options.NPredict, _ = flags.GetInt("n-predict")
	}
	if flags.Changed("n-gpu-layers") {
		ro.Options.NGPULayers, _ = flags.GetInt("n-gpu-layers")
	}
	if flags.Changed("batch-size") {
		ro.Options.BatchSize, _ = flags.GetInt("batch-size")
	}
	if flags.Changed("temp") {
		ro.Options.Temperature, _ = flags.GetFloat32("temp")
	}
	if flags.Changed("repeat-penalty") {
		ro.Options.RepeatPenalty, _ = flags.GetFloat32("repeat-penalty")
	}
	if flags.Changed("reverse-prompt") {
		stop, _ := flags.GetString("reverse-prompt")
		ro.Options = ro.Options.WithStop(stop)
	}

	if ro.Options.CtxSize <= 0 {
		return runOptions{}, fmt.Errorf("ctx-size must be positive, got %d", ro.Options.CtxSize)
	}

	ro.LogPrompts, _ = flags.GetBool("log-prompts")
	ro.LogStat, _ = flags.GetBool("log-stat")
	if all, _ := flags.GetBool("log-all"); all {
		ro.LogPrompts = true
		ro.LogStat = true
	}
	ro.Options.LogEnable = ro.Options.LogEnable || ro.LogStat

	ro.Runner = envconfig.RunnerURL()
	if s, _ := flags.GetString("runner"); s != "" {
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return runOptions{}, fmt.Errorf("invalid runner url %q", s)
		}
		ro.Runner = u
	}

	return ro, nil
}

// readOptionsFile - Liest eine YAML-Map mit Options-Schluesseln
func readOptionsFile(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse options file %s: %w", path, err)
	}
	return m, nil
}

func kindList() string {
	var names []string
	for _, k := range template.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}
