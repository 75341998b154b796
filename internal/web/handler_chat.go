package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/vbonduro/nutribot/internal/chat"
)

const maxMessageBytes = 4 << 10

// chatEvent is the SSE payload for one turn.
type chatEvent struct {
	ID   string    `json:"id"`
	Role chat.Role `json:"role"`
	Kind chat.Kind `json:"kind"`
	HTML string    `json:"html"`
}

// readMessage takes the message from a JSON body or a form field.
func readMessage(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
			return "", err
		}
		return body.Message, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostFormValue("message"), nil
}

// handleChat runs one chat turn and streams its messages as server-sent
// events: the user echo, then the placeholder, then the result after the
// thinking delay (or the help text at once). The stream ends with a "done"
// event. Blank input gets 204 and no stream.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	text, err := readMessage(w, r)
	if err != nil {
		http.Error(w, "invalid message", http.StatusBadRequest)
		return
	}

	// Buffered for every turn a submission can emit, so the delayed result
	// never blocks even if the client has gone away.
	sink := chat.NewChanSink(4)
	p := chat.NewPresenter(s.engine, sink,
		chat.WithDelay(s.thinkDelay),
		chat.WithLogger(s.logger),
	)
	if !p.Submit(text) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, canFlush := w.(http.Flusher)
	enc := json.NewEncoder(w)

	for {
		select {
		case <-r.Context().Done():
			return
		case m := <-sink.C():
			if err := writeEvent(w, enc, m); err != nil {
				s.logger.Debug("chat stream closed", "error", err)
				return
			}
			if canFlush {
				flusher.Flush()
			}
			if m.Final() {
				writeDone(w, s.logger)
				if canFlush {
					flusher.Flush()
				}
				return
			}
		}
	}
}

func writeEvent(w io.Writer, enc *json.Encoder, m chat.Message) error {
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if err := enc.Encode(chatEvent{ID: m.ID, Role: m.Role, Kind: m.Kind, HTML: m.HTML}); err != nil {
		return err
	}
	_, err := w.Write([]byte("\n"))
	return err
}

func writeDone(w io.Writer, logger *slog.Logger) {
	if _, err := w.Write([]byte("event: done\ndata: {}\n\n")); err != nil {
		logger.Error("write done event failed", "error", err)
	}
}
