// Package llm - Engine ueber einen externen Runner-Prozess
//
// RunnerEngine spricht den /completion Endpunkt eines llama.cpp-kompatiblen
// Runners an:
// - Compute: ein Request ohne Streaming
// - ComputeNext: liest pro Aufruf ein Event aus dem SSE-Stream
// - Slot 1 der Ausgabe liefert die Token-Info als JSON
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/llamaedge/llamaedge/api"
)

// maximum size of a single event line from the runner
const maxBufferSize = 512 * 1000

// RunnerEngine implementiert Engine gegen einen Runner per HTTP
type RunnerEngine struct {
	ctx    context.Context
	client *http.Client
	base   *url.URL

	prompt []byte
	opts   api.Options

	output []byte
	token  []byte
	info   TokenInfo

	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

// NewRunnerEngine erstellt eine Engine fuer den Runner unter base. ctx begrenzt
// die Lebensdauer aller Requests.
func NewRunnerEngine(ctx context.Context, base *url.URL, client *http.Client) *RunnerEngine {
	if client == nil {
		client = http.DefaultClient
	}
	return &RunnerEngine{ctx: ctx, base: base, client: client, opts: api.DefaultOptions()}
}

type runnerRequest struct {
	Prompt        string   `json:"prompt"`
	NPredict      int      `json:"n_predict"`
	Temperature   float32  `json:"temperature"`
	RepeatPenalty float32  `json:"repeat_penalty"`
	CachePrompt   bool     `json:"cache_prompt"`
	Stream        bool     `json:"stream"`
	Stop          []string `json:"stop,omitempty"`
}

type runnerResponse struct {
	Content         string `json:"content"`
	Stop            bool   `json:"stop"`
	TokensEvaluated int    `json:"tokens_evaluated"`
	TokensPredicted int    `json:"tokens_predicted"`
}

// SetInput belegt Slot 0 mit dem Prompt und Slot 1 mit den Optionen
func (e *RunnerEngine) SetInput(slot int, data []byte) error {
	switch slot {
	case SlotPrompt:
		e.reset()
		e.prompt = bytes.Clone(data)
	case SlotMetadata:
		opts := api.DefaultOptions()
		if err := json.Unmarshal(data, &opts); err != nil {
			return fmt.Errorf("invalid metadata: %w", err)
		}
		e.opts = opts
	default:
		return fmt.Errorf("invalid input slot %d", slot)
	}
	return nil
}

// Compute fuehrt die Generierung ohne Streaming aus
func (e *RunnerEngine) Compute() error {
	e.reset()

	body, err := e.post(false)
	if err != nil {
		return err
	}
	defer body.Close()

	var resp runnerResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return fmt.Errorf("error unmarshalling llm prediction response: %v", err)
	}

	e.output = []byte(resp.Content)
	e.info = TokenInfo{InputTokens: resp.TokensEvaluated, OutputTokens: resp.TokensPredicted}
	return nil
}

// ComputeNext oeffnet beim ersten Aufruf den Stream und liest danach je ein Token
func (e *RunnerEngine) ComputeNext() error {
	if e.done {
		return ErrEndOfSequence
	}

	if e.scanner == nil {
		body, err := e.post(true)
		if err != nil {
			return err
		}
		e.body = body
		e.scanner = bufio.NewScanner(body)
		e.scanner.Buffer(make([]byte, 0, maxBufferSize), maxBufferSize)
	}

	for e.scanner.Scan() {
		line := e.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		evt, ok := bytes.CutPrefix(line, []byte("data: "))
		if !ok {
			evt = line
		}

		var c runnerResponse
		if err := json.Unmarshal(evt, &c); err != nil {
			return fmt.Errorf("error unmarshalling llm prediction response: %v", err)
		}

		if c.Stop {
			e.info = TokenInfo{InputTokens: c.TokensEvaluated, OutputTokens: c.TokensPredicted}
			e.closeStream()
			e.done = true
		}

		if c.Content != "" {
			e.token = []byte(c.Content)
			return nil
		}

		if e.done {
			return ErrEndOfSequence
		}
	}

	err := e.scanner.Err()
	e.closeStream()
	if err != nil {
		return fmt.Errorf("read runner stream: %w", err)
	}
	return errors.New("runner closed the stream before the end of sequence")
}

// GetOutput liefert die Ausgabe von Compute (Slot 0) oder die Token-Info (Slot 1)
func (e *RunnerEngine) GetOutput(slot int) ([]byte, error) {
	switch slot {
	case SlotPrompt:
		return e.output, nil
	case SlotMetadata:
		return json.Marshal(e.info)
	default:
		return nil, fmt.Errorf("invalid output slot %d", slot)
	}
}

// GetOutputSingle liefert das zuletzt gelesene Token
func (e *RunnerEngine) GetOutputSingle(slot int) ([]byte, error) {
	if slot != SlotPrompt {
		return nil, fmt.Errorf("invalid output slot %d", slot)
	}
	return e.token, nil
}

// Close beendet einen offenen Stream
func (e *RunnerEngine) Close() error {
	e.closeStream()
	return nil
}

func (e *RunnerEngine) reset() {
	e.closeStream()
	e.output = nil
	e.token = nil
	e.info = TokenInfo{}
	e.done = false
}

func (e *RunnerEngine) closeStream() {
	if e.body != nil {
		e.body.Close()
	}
	e.body = nil
	e.scanner = nil
}

func (e *RunnerEngine) post(stream bool) (io.ReadCloser, error) {
	// JSON marshaling mit unescaped special chars
	buffer := &bytes.Buffer{}
	enc := json.NewEncoder(buffer)
	enc.SetEscapeHTML(false)

	r := runnerRequest{
		Prompt:        string(e.prompt),
		NPredict:      e.opts.NPredict,
		Temperature:   e.opts.Temperature,
		RepeatPenalty: e.opts.RepeatPenalty,
		CachePrompt:   true,
		Stream:        stream,
	}
	if stop := e.opts.Stop(); stop != nil {
		r.Stop = []string{*stop}
	}

	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to marshal data: %v", err)
	}

	endpoint := e.base.JoinPath("completion")
	req, err := http.NewRequestWithContext(e.ctx, http.MethodPost, endpoint.String(), buffer)
	if err != nil {
		return nil, fmt.Errorf("error creating POST request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := e.client.Do(req)
	if err != nil && errors.Is(err, context.Canceled) {
		return nil, err
	} else if err != nil {
		slog.Error("post predict", "error", err)
		return nil, errors.New("model runner has unexpectedly stopped, check the runner logs for details")
	}

	if res.StatusCode >= 400 {
		defer res.Body.Close()
		bodyBytes, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("failed reading llm error response: %w", err)
		}
		slog.Error("llm predict error", "status", res.StatusCode, "body", string(bodyBytes))
		return nil, api.StatusError{StatusCode: res.StatusCode, ErrorMessage: strings.TrimSpace(string(bodyBytes))}
	}

	return res.Body, nil
}
