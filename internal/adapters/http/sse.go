package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kirillkom/claimsense/internal/core/usecase"
)

type revealChunk struct {
	Delta string `json:"delta"`
}

// writeRevealStream sends text as server-sent events, one rune per event, then [DONE].
// It stops early when the client goes away.
func writeRevealStream(w http.ResponseWriter, r *http.Request, text string, pace usecase.RevealPacer) error {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return fmt.Errorf("streaming is not supported by response writer: %w", err)
	}

	for chunk := range usecase.Reveal(r.Context(), text, pace) {
		payload, err := json.Marshal(revealChunk{Delta: chunk})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		if err := rc.Flush(); err != nil {
			return err
		}
	}
	if err := r.Context().Err(); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "data: [DONE]\n\n"); err != nil {
		return err
	}
	return rc.Flush()
}
