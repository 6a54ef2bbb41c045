package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/generate"
	"server/internal/replicate"
)

type predictionResponse struct {
	ElapsedSeconds float64               `json:"elapsed_seconds"`
	Prediction     *replicate.Prediction `json:"prediction"`
	Image          string                `json:"image,omitempty"`
}

// CreatePrediction accepts the browser form payload, normalizes it for the
// selected model, runs the remote job to a terminal state, and returns the
// final snapshot. A job that terminates as failed/canceled still comes back as
// HTTP 200; its own status field carries the outcome.
func (a *App) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload", nil)
		return
	}

	modelKey, _ := raw["model_key"].(string)
	model, input, err := a.Models.Normalize(raw, modelKey)
	if err != nil {
		a.normalizeError(w, err)
		return
	}

	res, err := a.Runner.Run(r.Context(), replicate.PredictionRequest{
		Version: model.Version,
		Input:   input,
	})
	if err != nil {
		a.runError(w, err)
		return
	}

	a.json(w, http.StatusOK, predictionResponse{
		ElapsedSeconds: res.ElapsedSeconds,
		Prediction:     res.Prediction,
		Image:          generate.ExtractImage(res.Prediction, outputFormat(input)),
	})
}

func (a *App) normalizeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, generate.ErrUnknownModel):
		a.error(w, http.StatusBadRequest, "unknown model", nil)
	case errors.Is(err, generate.ErrMissingPrompt):
		a.error(w, http.StatusBadRequest, "prompt is required", nil)
	case errors.Is(err, generate.ErrMissingVersion):
		a.Log.Error().Err(err).Msg("model version missing from configuration")
		a.error(w, http.StatusInternalServerError, "model is not configured", nil)
	default:
		a.Log.Error().Err(err).Msg("payload normalization failed")
		a.error(w, http.StatusInternalServerError, "unexpected error", nil)
	}
}

// outputFormat is the MIME subtype hint used when a provider hands back raw
// base64 instead of a URL. Only the nano-banana variant carries one.
func outputFormat(input any) string {
	if in, ok := input.(generate.NanoBananaInput); ok {
		return in.OutputFormat
	}
	return "jpeg"
}
