package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/generate"
	"server/internal/infra"
	"server/internal/replicate"
)

// PredictionRunner drives one create-then-poll run against the prediction API.
// Satisfied by *replicate.Client; stubbed in tests.
type PredictionRunner interface {
	Run(ctx context.Context, req replicate.PredictionRequest) (*replicate.RunResult, error)
}

// App carries the handler dependencies: model registry, job runner, and logger.
// Handlers share nothing mutable; every request runs independently.
type App struct {
	Log           infra.Logger
	Models        *generate.Registry
	Runner        PredictionRunner
	RefineVersion string
}

func NewApp(cfg *infra.Config, log infra.Logger, runner PredictionRunner) *App {
	models := generate.NewRegistry(cfg.DefaultModel,
		generate.Model{Key: generate.ModelSeedream, Version: cfg.SeedreamVersion},
		generate.Model{Key: generate.ModelNanoBanana, Version: cfg.NanoBananaVersion},
	)
	return &App{
		Log:           log,
		Models:        models,
		Runner:        runner,
		RefineVersion: cfg.RefineVersion,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string, details any) {
	body := map[string]any{"error": msg}
	if details != nil {
		body["details"] = details
	}
	a.json(w, code, body)
}

// runError maps job-runner failures onto the response contract: provider
// status and body pass through verbatim, timeouts become 504 with the
// last-known snapshot, anything else is a generic 500 logged server-side.
func (a *App) runError(w http.ResponseWriter, err error) {
	var apiErr *replicate.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		a.error(w, status, "provider error", providerDetails(apiErr.Body))
		return
	}
	var timeoutErr *replicate.TimeoutError
	if errors.As(err, &timeoutErr) {
		a.error(w, http.StatusGatewayTimeout, "prediction timed out", timeoutErr.Last)
		return
	}
	a.Log.Error().Err(err).Msg("prediction run failed")
	a.error(w, http.StatusInternalServerError, "unexpected error", nil)
}

// providerDetails keeps a JSON provider body structured instead of
// double-encoding it as a string.
func providerDetails(body string) any {
	if body == "" {
		return nil
	}
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}
