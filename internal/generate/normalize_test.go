package generate

import "testing"

func testRegistry() *Registry {
	return NewRegistry(ModelSeedream,
		Model{Key: ModelSeedream, Version: "seedream-v4"},
		Model{Key: ModelNanoBanana, Version: "nano-banana-v1"},
	)
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	r := testRegistry()
	m, err := r.Resolve("  SeeDream ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.Version != "seedream-v4" {
		t.Fatalf("version = %q", m.Version)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r := testRegistry()
	m, err := r.Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.Key != ModelSeedream {
		t.Fatalf("key = %q, want seedream", m.Key)
	}
}

func TestResolveUnknownModel(t *testing.T) {
	r := testRegistry()
	if _, err := r.Resolve("dall-e"); err != ErrUnknownModel {
		t.Fatalf("err = %v, want ErrUnknownModel", err)
	}
}

func TestResolveMissingVersion(t *testing.T) {
	r := NewRegistry(ModelSeedream, Model{Key: ModelSeedream, Version: "  "})
	if _, err := r.Resolve(ModelSeedream); err != ErrMissingVersion {
		t.Fatalf("err = %v, want ErrMissingVersion", err)
	}
}

func TestNormalizeRejectsBlankPrompt(t *testing.T) {
	r := testRegistry()
	if _, _, err := r.Normalize(map[string]any{"prompt": "   "}, ModelSeedream); err != ErrMissingPrompt {
		t.Fatalf("err = %v, want ErrMissingPrompt", err)
	}
	if _, _, err := r.Normalize(map[string]any{}, ModelSeedream); err != ErrMissingPrompt {
		t.Fatalf("err = %v, want ErrMissingPrompt", err)
	}
}

func TestNormalizeNanoBananaDefaults(t *testing.T) {
	r := testRegistry()
	_, input, err := r.Normalize(map[string]any{"prompt": "a cat"}, ModelNanoBanana)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	in, ok := input.(NanoBananaInput)
	if !ok {
		t.Fatalf("input type = %T, want NanoBananaInput", input)
	}
	if in.Prompt != "a cat" {
		t.Fatalf("prompt = %q", in.Prompt)
	}
	if in.AspectRatio != "16:9" {
		t.Fatalf("aspect_ratio = %q, want 16:9", in.AspectRatio)
	}
	if in.OutputFormat != "jpg" {
		t.Fatalf("output_format = %q, want jpg", in.OutputFormat)
	}
	if in.ImageInput != nil {
		t.Fatalf("image_input = %#v, want nil", in.ImageInput)
	}
}

func TestNormalizeSeedreamDefaults(t *testing.T) {
	r := testRegistry()
	_, input, err := r.Normalize(map[string]any{"prompt": "a dog"}, ModelSeedream)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	in, ok := input.(SeedreamInput)
	if !ok {
		t.Fatalf("input type = %T, want SeedreamInput", input)
	}
	if in.Size != "2K" {
		t.Fatalf("size = %q, want 2K", in.Size)
	}
	if in.AspectRatio != "match_input_image" {
		t.Fatalf("aspect_ratio = %q", in.AspectRatio)
	}
	if in.SequentialImageGeneration != "disabled" {
		t.Fatalf("sequential_image_generation = %q", in.SequentialImageGeneration)
	}
	if in.MaxImages != 1 {
		t.Fatalf("max_images = %d, want 1", in.MaxImages)
	}
	if in.Width != nil || in.Height != nil {
		t.Fatalf("width/height should be absent outside custom size")
	}
}

func TestNormalizeSizeVocabulary(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1k", "1K"},
		{"2K", "2K"},
		{"4k", "4K"},
		{"CUSTOM", "custom"},
		{"8K", "2K"},
		{"", "2K"},
		{"huge", "2K"},
	}
	for _, tc := range cases {
		if got := normalizeSize(tc.in); got != tc.want {
			t.Fatalf("normalizeSize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeCustomDimensionsClampAndOmit(t *testing.T) {
	r := testRegistry()
	raw := map[string]any{
		"prompt": "a dog",
		"size":   "custom",
		"width":  "abc",
		"height": float64(5000),
	}
	_, input, err := r.Normalize(raw, ModelSeedream)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	in := input.(SeedreamInput)
	if in.Width != nil {
		t.Fatalf("width = %v, want omitted for unparseable input", *in.Width)
	}
	if in.Height == nil || *in.Height != 4096 {
		t.Fatalf("height = %v, want 4096", in.Height)
	}

	raw["width"] = "500"
	_, input, err = r.Normalize(raw, ModelSeedream)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	in = input.(SeedreamInput)
	if in.Width == nil || *in.Width != 1024 {
		t.Fatalf("width = %v, want clamped to 1024", in.Width)
	}
}

func TestNormalizeMaxImagesClamping(t *testing.T) {
	r := testRegistry()
	cases := []struct {
		in   any
		want int
	}{
		{float64(0), 1},
		{float64(999), 15},
		{"7", 7},
		{"abc", 1},
		{nil, 1},
	}
	for _, tc := range cases {
		_, input, err := r.Normalize(map[string]any{"prompt": "p", "max_images": tc.in}, ModelSeedream)
		if err != nil {
			t.Fatalf("normalize: %v", err)
		}
		if got := input.(SeedreamInput).MaxImages; got != tc.want {
			t.Fatalf("max_images(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeFiltersImageInput(t *testing.T) {
	r := testRegistry()
	raw := map[string]any{
		"prompt":      "p",
		"image_input": []any{" https://example.com/a.png ", "", float64(7), "data:image/png;base64,xyz", "   "},
	}
	_, input, err := r.Normalize(raw, ModelNanoBanana)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	got := input.(NanoBananaInput).ImageInput
	if len(got) != 2 {
		t.Fatalf("image_input = %#v, want 2 entries", got)
	}
	if got[0] != "https://example.com/a.png" {
		t.Fatalf("image_input[0] = %q", got[0])
	}
}

func TestNormalizeNoCrossVariantLeakage(t *testing.T) {
	r := testRegistry()
	raw := map[string]any{
		"prompt":        "a cat",
		"size":          "4K",
		"max_images":    float64(3),
		"output_format": "png",
	}

	_, bananaInput, err := r.Normalize(raw, ModelNanoBanana)
	if err != nil {
		t.Fatalf("normalize nano-banana: %v", err)
	}
	if _, ok := bananaInput.(NanoBananaInput); !ok {
		t.Fatalf("input type = %T, want NanoBananaInput", bananaInput)
	}

	_, seedreamInput, err := r.Normalize(raw, ModelSeedream)
	if err != nil {
		t.Fatalf("normalize seedream: %v", err)
	}
	if _, ok := seedreamInput.(SeedreamInput); !ok {
		t.Fatalf("input type = %T, want SeedreamInput", seedreamInput)
	}
}
