package httpadapter

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

type assistantChatRequest struct {
	domain.AssistantRequest
	Stream bool `json:"stream,omitempty"`
}

func (rt *Router) handleAssistantChat(w http.ResponseWriter, r *http.Request, _ domain.Session) {
	var req assistantChatRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	reply, err := rt.assistant.Reply(r.Context(), req.AssistantRequest)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAssistantReply(reply.Fallback, string(reply.Language))
	}

	if !req.Stream {
		writeJSON(w, http.StatusOK, reply)
		return
	}

	w.Header().Set(assistantLanguageHeader, string(reply.Language))
	w.Header().Set(assistantFallbackHeader, strconv.FormatBool(reply.Fallback))
	if err := writeRevealStream(w, r, reply.Reply, rt.pace); err != nil {
		slog.Warn("assistant_stream_interrupted",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
	}
}
