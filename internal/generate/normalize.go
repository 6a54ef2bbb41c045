package generate

import (
	"strconv"
	"strings"
)

// Field bounds and defaults for the seedream variant.
const (
	minCustomDimension = 1024
	maxCustomDimension = 4096
	minMaxImages       = 1
	maxMaxImages       = 15

	defaultSize           = "2K"
	defaultSeedreamAspect = "match_input_image"
	defaultSequentialMode = "disabled"
	defaultBananaAspect   = "16:9"
	defaultOutputFormat   = "jpg"
)

// SeedreamInput is the provider payload for the seedream model.
type SeedreamInput struct {
	Prompt                    string   `json:"prompt"`
	Size                      string   `json:"size"`
	AspectRatio               string   `json:"aspect_ratio"`
	SequentialImageGeneration string   `json:"sequential_image_generation"`
	MaxImages                 int      `json:"max_images"`
	Width                     *int     `json:"width,omitempty"`
	Height                    *int     `json:"height,omitempty"`
	ImageInput                []string `json:"image_input,omitempty"`
}

// NanoBananaInput is the provider payload for the nano-banana model.
type NanoBananaInput struct {
	Prompt       string   `json:"prompt"`
	AspectRatio  string   `json:"aspect_ratio"`
	OutputFormat string   `json:"output_format"`
	ImageInput   []string `json:"image_input,omitempty"`
}

// Normalize shapes a raw, untyped request body into the provider input for the
// resolved model. Unknown fields are dropped; only the resolved variant's
// fields appear in the result. Lenient on input, strict on output.
func (r *Registry) Normalize(raw map[string]any, modelKey string) (Model, any, error) {
	model, err := r.Resolve(modelKey)
	if err != nil {
		return Model{}, nil, err
	}

	prompt := strings.TrimSpace(stringField(raw, "prompt"))
	if prompt == "" {
		return Model{}, nil, ErrMissingPrompt
	}

	var input any
	switch model.Key {
	case ModelNanoBanana:
		input = normalizeNanoBanana(raw, prompt)
	default:
		input = normalizeSeedream(raw, prompt)
	}
	return model, input, nil
}

func normalizeSeedream(raw map[string]any, prompt string) SeedreamInput {
	in := SeedreamInput{
		Prompt:                    prompt,
		Size:                      normalizeSize(stringField(raw, "size")),
		AspectRatio:               stringOr(raw, "aspect_ratio", defaultSeedreamAspect),
		SequentialImageGeneration: stringOr(raw, "sequential_image_generation", defaultSequentialMode),
		MaxImages:                 clampInt(intField(raw, "max_images", minMaxImages), minMaxImages, maxMaxImages),
		ImageInput:                imageList(raw["image_input"]),
	}
	if in.Size == "custom" {
		in.Width = customDimension(raw, "width")
		in.Height = customDimension(raw, "height")
	}
	return in
}

func normalizeNanoBanana(raw map[string]any, prompt string) NanoBananaInput {
	return NanoBananaInput{
		Prompt:       prompt,
		AspectRatio:  stringOr(raw, "aspect_ratio", defaultBananaAspect),
		OutputFormat: stringOr(raw, "output_format", defaultOutputFormat),
		ImageInput:   imageList(raw["image_input"]),
	}
}

// normalizeSize accepts only the provider's size vocabulary; anything else
// falls back to the default. "custom" stays lower-case, the rest upper-case.
func normalizeSize(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "custom") {
		return "custom"
	}
	switch upper := strings.ToUpper(v); upper {
	case "1K", "2K", "4K":
		return upper
	}
	return defaultSize
}

// customDimension parses and clamps a width/height value. An unparseable value
// is omitted entirely rather than defaulted.
func customDimension(raw map[string]any, key string) *int {
	n, ok := parseInt(raw[key])
	if !ok {
		return nil
	}
	n = clampInt(n, minCustomDimension, maxCustomDimension)
	return &n
}

// imageList keeps only entries that are non-empty strings after trimming.
// Non-string and blank entries are dropped without error.
func imageList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func stringOr(raw map[string]any, key, fallback string) string {
	if s := stringField(raw, key); s != "" {
		return s
	}
	return fallback
}

func intField(raw map[string]any, key string, fallback int) int {
	if n, ok := parseInt(raw[key]); ok {
		return n
	}
	return fallback
}

// parseInt accepts the numeric shapes a JSON body can carry: numbers decode as
// float64, form-style values arrive as strings.
func parseInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
