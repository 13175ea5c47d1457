package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

type TextImprover interface {
	ImproveText(ctx context.Context, text string) (string, error)
}

type ImproveTextRequest struct {
	Text string `json:"text"`
}

type ImproveTextResponse struct {
	Text string `json:"text"`
}

func ImproveTextHandler(
	log *slog.Logger,
	llm TextImprover,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.ImproveTextHandler"

		log := log.With(slog.String("op", op))

		var req ImproveTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("failed to decode request", slog.String("error", err.Error()))
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.Text == "" {
			http.Error(w, "Text is required", http.StatusBadRequest)
			return
		}

		improved, err := llm.ImproveText(r.Context(), req.Text)
		if err != nil {
			log.Error("failed to improve text", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ImproveTextResponse{Text: improved})
	}
}
