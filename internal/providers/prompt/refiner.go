// Package prompt builds the instruction payload for the prompt-refinement
// model. The refine endpoint sends the user's draft prompt through the same
// prediction API as image generation; this package only shapes its input.
package prompt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	instructionEN = "You are a prompt engineer for text-to-image models. " +
		"Rewrite the user's prompt into a single, vivid, detailed image prompt. " +
		"Keep the subject and intent, add concrete visual details (lighting, composition, style), " +
		"and answer with the rewritten prompt only, no commentary."
	instructionID = "Kamu adalah prompt engineer untuk model text-to-image. " +
		"Tulis ulang prompt pengguna menjadi satu prompt gambar yang hidup dan detail. " +
		"Pertahankan subjek dan maksudnya, tambahkan detail visual konkret (pencahayaan, komposisi, gaya), " +
		"dan jawab hanya dengan prompt hasil tulis ulang, tanpa komentar."
)

// RefineInput assembles the provider input for one refinement call. The
// instruction is phrased in the caller's locale so the model answers in the
// language the form was written in.
func RefineInput(userPrompt, locale string) map[string]any {
	return map[string]any{
		"prompt":        strings.TrimSpace(userPrompt),
		"system_prompt": instructionFor(locale),
		"max_tokens":    512,
	}
}

func instructionFor(locale string) string {
	if strings.EqualFold(strings.TrimSpace(locale), "id") {
		return instructionID
	}
	return instructionEN
}

// Subject condenses a draft prompt into a short title-cased subject line for
// log and UI labels.
func Subject(userPrompt string) string {
	words := strings.Fields(userPrompt)
	if len(words) > 6 {
		words = words[:6]
	}
	c := cases.Title(language.Und)
	return c.String(strings.Join(words, " "))
}
