// translate.go - Gemeinsame Uebersetzungsschicht der Kompatibilitaets-Endpunkte
//
// Jeder Kompatibilitaets-Endpunkt besteht aus zwei Haelften:
// - rewrite: bindet den fremden Request und ersetzt den Body durch den nativen
// - translateWriter: schreibt die nativen NDJSON-Zeilen des Handlers im
//   Antwortformat des Protokolls (JSON oder SSE)
//
// Das Protokoll selbst steckt in einem responder (openai.go, anthropic.go).
package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/llamaedge/llamaedge/api"
)

// sseEvent ist ein Server-Sent-Event. Ein leerer name laesst die event-Zeile
// weg; ein string in data wird unveraendert geschrieben, alles andere als JSON.
type sseEvent struct {
	name string
	data any
}

// responder kennt das Antwortformat eines Protokolls
type responder interface {
	// reply liefert den Body einer ungestreamten Antwort
	reply(line []byte) (any, error)

	// errorBody liefert die Fehlerhuelle fuer Antworten mit Status != 200
	errorBody(code int, msg string) any
}

// streamResponder kann zusaetzlich gestreamte Antworten erzeugen
type streamResponder interface {
	responder

	// events liefert die Events fuer eine native Antwortzeile
	events(line []byte) ([]sseEvent, error)

	// failure liefert das Event fuer einen Fehler, der nach Beginn des Streams
	// gemeldet wird. Danach kommt kein Abschluss-Event mehr.
	failure(msg string) sseEvent
}

// streamError ist die Fehlerzeile, die der Handler mitten im Stream schreibt
type streamError struct {
	Error string `json:"error"`
}

// translateWriter ersetzt den gin-Writer des Requests
type translateWriter struct {
	gin.ResponseWriter

	r responder

	// stream ist nil fuer ungestreamte Antworten
	stream streamResponder
}

func newTranslateWriter(w gin.ResponseWriter, r streamResponder, stream bool) *translateWriter {
	tw := &translateWriter{ResponseWriter: w, r: r}
	if stream {
		tw.stream = r
	}
	return tw
}

// Write nimmt genau eine native Antwortzeile entgegen
func (w *translateWriter) Write(data []byte) (int, error) {
	if code := w.Status(); code != http.StatusOK {
		var serr api.StatusError
		if err := json.Unmarshal(data, &serr); err != nil {
			return 0, err
		}
		return len(data), w.writeJSON(w.r.errorBody(code, serr.Error()))
	}

	if w.stream == nil {
		body, err := w.r.reply(data)
		if err != nil {
			return 0, err
		}
		return len(data), w.writeJSON(body)
	}

	var events []sseEvent
	if serr := (streamError{}); json.Unmarshal(data, &serr) == nil && serr.Error != "" {
		events = []sseEvent{w.stream.failure(serr.Error)}
	} else {
		var err error
		if events, err = w.stream.events(data); err != nil {
			return 0, err
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	for _, e := range events {
		if err := w.writeEvent(e); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

func (w *translateWriter) writeJSON(v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w.ResponseWriter).Encode(v)
}

func (w *translateWriter) writeEvent(e sseEvent) error {
	payload, ok := e.data.(string)
	if !ok {
		b, err := json.Marshal(e.data)
		if err != nil {
			return err
		}
		payload = string(b)
	}

	var frame []byte
	if e.name != "" {
		frame = fmt.Appendf(frame, "event: %s\n", e.name)
	}
	frame = fmt.Appendf(frame, "data: %s\n\n", payload)

	_, err := w.ResponseWriter.Write(frame)
	return err
}

// rewrite bindet den Request vom Typ R, uebersetzt ihn mit convert und legt das
// Ergebnis als JSON-Body fuer den nativen Handler ab. Bei false ist der Request
// bereits mit der Fehlerhuelle aus errorBody beantwortet.
func rewrite[R, N, E any](c *gin.Context, errorBody func(int, string) E, convert func(R) (N, error)) (R, bool) {
	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(http.StatusBadRequest, err.Error()))
		return req, false
	}

	native, err := convert(req)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(http.StatusBadRequest, err.Error()))
		return req, false
	}

	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(native); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(http.StatusInternalServerError, err.Error()))
		return req, false
	}

	c.Request.Body = io.NopCloser(&b)
	return req, true
}

// decode liest eine native Antwortzeile
func decode[T any](line []byte) (T, error) {
	var v T
	err := json.Unmarshal(line, &v)
	return v, err
}
