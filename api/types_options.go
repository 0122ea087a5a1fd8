// types_options.go - Generierungs-Optionen fuer die Inferenz-Engine
// Enthaelt: Options, DefaultOptions(), FromMap(), Metadata()

package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/llamaedge/llamaedge/envconfig"
)

// Options sind die Generierungs-Optionen eines Aufrufs. Sie werden als JSON
// mit den Schluesseln unten serialisiert und der Engine als opake
// Konfiguration uebergeben. If you add a new option here, also add it to the
// serve and chat flags.
type Options struct {
	LogEnable     bool    `json:"enable-log"`
	StreamStdout  bool    `json:"stream-stdout"`
	CtxSize       int     `json:"ctx-size"`
	NPredict      int     `json:"n-predict"`
	NGPULayers    int     `json:"n-gpu-layers"`
	BatchSize     int     `json:"batch-size"`
	Temperature   float32 `json:"temp"`
	RepeatPenalty float32 `json:"repeat-penalty"`
	ReversePrompt *string `json:"reverse-prompt,omitempty"`
}

// DefaultOptions ist der Standard-Satz von Optionen; diese Werte werden
// verwendet, wenn der Benutzer keine anderen Werte explizit angibt.
func DefaultOptions() Options {
	return Options{
		CtxSize:       int(envconfig.ContextLength()),
		NPredict:      1024,
		NGPULayers:    100,
		BatchSize:     4096,
		Temperature:   0.8,
		RepeatPenalty: 1.1,
	}
}

// Stop gibt den konfigurierten Stop-String zurueck; nil wenn keiner gesetzt ist
func (opts Options) Stop() *string {
	if opts.ReversePrompt == nil || *opts.ReversePrompt == "" {
		return nil
	}
	return opts.ReversePrompt
}

// WithStop gibt eine Kopie mit gesetztem Stop-String zurueck
func (opts Options) WithStop(stop string) Options {
	opts.ReversePrompt = &stop
	return opts
}

// OutputLimit ist die maximale Groesse einer Single-Shot-Ausgabe in Bytes
func (opts Options) OutputLimit() int {
	return opts.CtxSize * 6
}

// Metadata serialisiert die Optionen fuer die Engine
func (opts Options) Metadata() ([]byte, error) {
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("serialize options: %w", err)
	}
	return b, nil
}

// FromMap laedt Options-Werte aus einer Map (JSON- oder YAML-dekodiert)
func (opts *Options) FromMap(m map[string]any) error {
	valueOpts := reflect.ValueOf(opts).Elem() // names of the fields in the options struct
	typeOpts := reflect.TypeOf(opts).Elem()   // types of the fields in the options struct

	// build map of json struct tags to their types
	jsonOpts := make(map[string]reflect.StructField)
	for _, field := range reflect.VisibleFields(typeOpts) {
		jsonTag := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonTag != "" {
			jsonOpts[jsonTag] = field
		}
	}

	for key, val := range m {
		opt, ok := jsonOpts[key]
		if !ok {
			slog.Warn("invalid option provided", "option", key)
			continue
		}

		field := valueOpts.FieldByName(opt.Name)
		if !field.IsValid() || !field.CanSet() || val == nil {
			continue
		}

		switch field.Kind() {
		case reflect.Int:
			switch t := val.(type) {
			case int:
				field.SetInt(int64(t))
			case int64:
				field.SetInt(t)
			case float64:
				// when JSON unmarshals numbers, it uses float64, not int
				field.SetInt(int64(t))
			default:
				return fmt.Errorf("option %q must be of type integer", key)
			}
		case reflect.Bool:
			val, ok := val.(bool)
			if !ok {
				return fmt.Errorf("option %q must be of type boolean", key)
			}
			field.SetBool(val)
		case reflect.Float32:
			switch t := val.(type) {
			case float64:
				field.SetFloat(t)
			case int:
				// YAML decodes "1" as int
				field.SetFloat(float64(t))
			default:
				return fmt.Errorf("option %q must be of type float32", key)
			}
		case reflect.Pointer:
			if field.Type().Elem().Kind() != reflect.String {
				return fmt.Errorf("unknown type loading config params: %v %v", field.Kind(), field.Type())
			}
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("option %q must be of type string", key)
			}
			field.Set(reflect.ValueOf(&s))
		default:
			return fmt.Errorf("unknown type loading config params: %v", field.Kind())
		}
	}

	return nil
}
