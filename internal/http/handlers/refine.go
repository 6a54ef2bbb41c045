package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"server/internal/generate"
	"server/internal/middleware"
	"server/internal/providers/prompt"
	"server/internal/replicate"
)

type refineRequest struct {
	Prompt string `json:"prompt"`
}

type refineResponse struct {
	RefinedPrompt  string                `json:"refined_prompt"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`
	Prediction     *replicate.Prediction `json:"prediction"`
}

// RefinePrompt sends the draft prompt through the configured text model and
// returns whatever usable text comes back. When nothing can be extracted the
// original prompt is returned unchanged, still as HTTP 200.
func (a *App) RefinePrompt(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	draft := strings.TrimSpace(req.Prompt)
	if draft == "" {
		a.error(w, http.StatusBadRequest, "prompt is required", nil)
		return
	}
	if strings.TrimSpace(a.RefineVersion) == "" {
		a.Log.Error().Msg("REFINE_VERSION missing from configuration")
		a.error(w, http.StatusInternalServerError, "refine model is not configured", nil)
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	res, err := a.Runner.Run(r.Context(), replicate.PredictionRequest{
		Version: a.RefineVersion,
		Input:   prompt.RefineInput(draft, locale),
	})
	if err != nil {
		a.runError(w, err)
		return
	}

	refined := generate.ExtractText(res.Prediction)
	if refined == "" {
		refined = draft
	}
	a.Log.Debug().
		Str("subject", prompt.Subject(draft)).
		Str("locale", locale).
		Bool("fallback", refined == draft).
		Msg("prompt refined")

	a.json(w, http.StatusOK, refineResponse{
		RefinedPrompt:  refined,
		ElapsedSeconds: res.ElapsedSeconds,
		Prediction:     res.Prediction,
	})
}
