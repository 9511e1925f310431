package services

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

// Models frequently wrap their JSON in a markdown fence despite being told
// not to. Strip exactly one leading and one trailing fence.
var (
	fenceOpenRe  = regexp.MustCompile("^```(?:json)?\n?")
	fenceCloseRe = regexp.MustCompile("\n?```$")
)

// StripCodeFence removes a surrounding markdown code fence, if present.
// Unfenced input is returned unchanged, so the operation is idempotent.
func StripCodeFence(raw string) string {
	if len(raw) < 3 || raw[:3] != "```" {
		return raw
	}
	raw = fenceOpenRe.ReplaceAllString(raw, "")
	return fenceCloseRe.ReplaceAllString(raw, "")
}

// NormalizeModelOutput parses the raw model text into a SpeciesResult.
// A model-reported error object passes through as-is (tagged with the
// category); successful objects get the category and model injected.
// No schema validation beyond the error-key check: whatever fields the
// model emitted pass through verbatim.
func NormalizeModelOutput(raw string, category models.Category, modelUsed string) models.SpeciesResult {
	cleaned := StripCodeFence(raw)

	var result models.SpeciesResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		debugLog("Unparseable model output: %s", truncateText(cleaned, 200))
		return models.ErrorResult(fmt.Sprintf("Error al procesar la respuesta de la IA: %v", err), category)
	}

	result["tipo"] = string(category)
	if !result.IsError() {
		result["modelo_usado"] = modelUsed
	}
	return result
}
