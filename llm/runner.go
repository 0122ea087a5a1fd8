// Package llm - Streaming- und Single-Shot-Generierung
//
// Runner verbindet Guard, Decoder und Nachbearbeitung:
// - RunStreaming: Token-weise mit Sink, Ergebnis ist die akzeptierte Ausgabe
// - RunNonStreaming: ein Compute-Aufruf, Ausgabe begrenzt und nachbearbeitet
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/llamaedge/llamaedge/api"
	"github.com/llamaedge/llamaedge/logutil"
	"github.com/llamaedge/llamaedge/template"
)

// DoneReason ist der Grund fuer das Ende einer Generierung. Auch eine am
// Ausgabelimit abgeschnittene Antwort endet mit DoneReasonStop.
type DoneReason int

const (
	// DoneReasonStop means the model finished, hit the stop string or the output limit
	DoneReasonStop DoneReason = iota
)

func (d DoneReason) String() string {
	switch d {
	case DoneReasonStop:
		return "stop"
	default:
		return ""
	}
}

// CompletionRequest beschreibt eine einzelne Generierung
type CompletionRequest struct {
	// Prompt ist der fertig gerenderte Prompt
	Prompt string

	// Options ueberschreibt die Standard-Optionen des Runners
	Options *api.Options

	// Raw schaltet die Dialekt-Nachbearbeitung ab; die Ausgabe wird nur getrimmt
	Raw bool
}

// Result ist das Ergebnis einer Generierung
type Result struct {
	Content    string
	DoneReason DoneReason
	Usage      api.Usage

	// TokenInfo stammt von der Engine, sofern sie welche liefert
	TokenInfo *TokenInfo

	Duration time.Duration
}

// Runner fuehrt Generierungen auf einer geteilten Engine aus
type Runner struct {
	guard    *Guard
	kind     template.Kind
	defaults api.Options
}

// NewRunner erstellt einen Runner fuer die Engine e im Dialekt kind
func NewRunner(e Engine, kind template.Kind, defaults api.Options) *Runner {
	return &Runner{
		guard:    NewGuard(e),
		kind:     kind,
		defaults: defaults,
	}
}

// Kind gibt den Prompt-Dialekt des Runners zurueck
func (r *Runner) Kind() template.Kind {
	return r.kind
}

// Options gibt die Standard-Optionen des Runners zurueck
func (r *Runner) Options() api.Options {
	return r.defaults
}

func (r *Runner) options(req CompletionRequest) api.Options {
	if req.Options != nil {
		return *req.Options
	}
	return r.defaults
}

// RunStreaming generiert Token fuer Token und ruft fn fuer jeden akzeptierten
// Chunk auf. fn laeuft synchron innerhalb der Engine-Sperre. Ein Engine-Fehler
// liefert einen InferenceError; bereits gelieferte Chunks bleiben geliefert.
func (r *Runner) RunStreaming(ctx context.Context, req CompletionRequest, fn func(string)) (Result, error) {
	opts := r.options(req)
	start := time.Now()

	var res Result
	err := r.guard.Do(ctx, func(e Engine) error {
		if err := setInputs(e, req.Prompt, opts); err != nil {
			return err
		}

		d := NewDecoder(e, opts.Stop())
		defer func() {
			// the engine may still be generating after a stop or a failure
			if d.State() != EndOfSequence {
				closeEngine(e)
			}
		}()

		for chunk, err := range d.Chunks() {
			if err != nil {
				return err
			}
			if fn != nil {
				fn(chunk)
			}
		}

		logutil.Trace("decode finished", "state", d.State(), "bytes", len(d.Output()))
		res.Content = d.Output()
		res.TokenInfo = tokenInfo(e, opts)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	res.DoneReason = DoneReasonStop
	res.Usage = api.NewUsage(req.Prompt, res.Content)
	res.Duration = time.Since(start)
	return res, nil
}

// RunNonStreaming fuehrt eine vollstaendige Generierung in einem Schritt aus.
// Die Ausgabe endet vor dem ersten Stop-String, wird auf OutputLimit Bytes
// begrenzt und fuer den Dialekt des Runners nachbearbeitet.
func (r *Runner) RunNonStreaming(ctx context.Context, req CompletionRequest) (Result, error) {
	opts := r.options(req)
	start := time.Now()

	var raw []byte
	var info *TokenInfo
	err := r.guard.Do(ctx, func(e Engine) error {
		if err := setInputs(e, req.Prompt, opts); err != nil {
			return err
		}

		if err := e.Compute(); err != nil && !errors.Is(err, ErrEndOfSequence) {
			return engineErr("compute", err)
		}

		out, err := e.GetOutput(SlotPrompt)
		if err != nil {
			return engineErr("get output", err)
		}

		raw = out
		info = tokenInfo(e, opts)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if stop := opts.Stop(); stop != nil {
		if i := bytes.Index(raw, []byte(*stop)); i >= 0 {
			raw = raw[:i]
		}
	}

	raw = truncate(raw, opts.OutputLimit())

	content := strings.ToValidUTF8(string(raw), "�")
	if req.Raw {
		content = strings.TrimSpace(content)
	} else {
		content = template.Strip(content, r.kind)
	}

	return Result{
		Content:    content,
		DoneReason: DoneReasonStop,
		Usage:      api.NewUsage(req.Prompt, content),
		TokenInfo:  info,
		Duration:   time.Since(start),
	}, nil
}

// truncate kuerzt b auf hoechstens limit Bytes, ohne eine UTF-8-Sequenz zu teilen
func truncate(b []byte, limit int) []byte {
	if limit <= 0 || len(b) <= limit {
		return b
	}

	i := limit
	for i > 0 && !utf8.RuneStart(b[i]) {
		i--
	}
	return b[:i]
}

// closeEngine gibt offene Ressourcen der Engine frei, etwa einen Stream, der
// nach einem Stop-String nicht mehr gelesen wird
func closeEngine(e Engine) {
	c, ok := e.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		slog.Debug("close engine", "error", err)
	}
}

func setInputs(e Engine, prompt string, opts api.Options) error {
	if err := e.SetInput(SlotPrompt, []byte(prompt)); err != nil {
		return engineErr("set input", err)
	}

	metadata, err := opts.Metadata()
	if err != nil {
		return err
	}

	if err := e.SetInput(SlotMetadata, metadata); err != nil {
		return engineErr("set metadata", err)
	}

	return nil
}

// tokenInfo liest die Token-Statistik der Engine. Fehler sind nicht fatal.
func tokenInfo(e Engine, opts api.Options) *TokenInfo {
	b, err := e.GetOutput(SlotMetadata)
	if err != nil || len(b) == 0 {
		return nil
	}

	var info TokenInfo
	if err := json.Unmarshal(b, &info); err != nil {
		slog.Debug("invalid token info", "error", err)
		return nil
	}

	if opts.LogEnable {
		slog.Info("token info", "input_tokens", info.InputTokens, "output_tokens", info.OutputTokens)
	}

	return &info
}
