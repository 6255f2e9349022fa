package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/sitecheck/internal/classify"
	"github.com/angeloszaimis/sitecheck/internal/healthcheck"
	"github.com/angeloszaimis/sitecheck/internal/model"
)

type healthResponse struct {
	OK        bool   `json:"ok"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// invalidResponse is returned for input rejected before probing.
type invalidResponse struct {
	Error          string  `json:"error"`
	Classification string  `json:"classification"`
	Reason         string  `json:"reason"`
	Advice         *string `json:"advice"`
	HealthScore    int     `json:"healthScore"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		OK:        true,
		Version:   Version,
		Timestamp: model.FormatTime(h.now()),
	})
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing ?url parameter")
		return
	}

	result, err := h.checker.Check(r.Context(), raw)
	if err != nil {
		var ve *healthcheck.ValidationError
		if errors.As(err, &ve) {
			h.logger.Debug("rejected check target",
				slog.String("url", raw),
				slog.String("request_id", requestIDFromContext(r.Context())),
				slog.Any("err", err))
			writeJSON(w, http.StatusBadRequest, invalidResponse{
				Error:          ve.Message(),
				Classification: string(classify.InvalidDomain),
				Reason:         classify.Reason(classify.InvalidDomain),
				Advice:         model.StringPtr(classify.Advice(classify.InvalidDomain)),
				HealthScore:    0,
			})
			return
		}

		h.logger.Error("check failed", slog.String("url", raw), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
