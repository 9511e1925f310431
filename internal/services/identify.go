package services

import (
	"context"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/metrics"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

// IdentifyService runs the full identification pipeline: build the prompt,
// call Gemini through its fallback chain, normalize the output and enrich
// the result with an illustration and, for birds and insects, a recording.
type IdentifyService struct {
	gemini *GeminiService
	images *ImageSearchService
	sounds *SoundSearchService
}

func NewIdentifyService(gemini *GeminiService, images *ImageSearchService, sounds *SoundSearchService) *IdentifyService {
	return &IdentifyService{gemini: gemini, images: images, sounds: sounds}
}

// IdentifyImage analyzes an uploaded photo.
func (s *IdentifyService) IdentifyImage(ctx context.Context, image []byte, mimeType string, category models.Category) models.SpeciesResult {
	return s.identify(ctx, BuildPrompt(category, ""), image, mimeType, category)
}

// IdentifyQuery answers a free-text question about a species.
func (s *IdentifyService) IdentifyQuery(ctx context.Context, query string, category models.Category) models.SpeciesResult {
	return s.identify(ctx, BuildPrompt(category, query), nil, "", category)
}

func (s *IdentifyService) identify(ctx context.Context, prompt string, image []byte, mimeType string, category models.Category) models.SpeciesResult {
	raw, modelUsed, genErr := s.gemini.GenerateWithFallback(ctx, prompt, image, mimeType)
	if genErr != nil {
		metrics.IdentifyResultsTotal.WithLabelValues(string(category), "api_error").Inc()
		if genErr.Code != "" {
			return models.CodedErrorResult(genErr.Message, category, genErr.Code)
		}
		return models.ErrorResult(genErr.Message, category)
	}

	result := NormalizeModelOutput(raw, category, modelUsed)
	if result.IsError() {
		// The model answered but refused or produced unparseable output.
		metrics.IdentifyResultsTotal.WithLabelValues(string(category), "model_error").Inc()
		return result
	}
	metrics.IdentifyResultsTotal.WithLabelValues(string(category), "ok").Inc()

	s.enrich(ctx, result, category)
	return result
}

// enrich attaches the illustration and recording to a successful result.
// Neither lookup can fail the identification.
func (s *IdentifyService) enrich(ctx context.Context, result models.SpeciesResult, category models.Category) {
	commonName := stringField(result, "nombre")
	scientificName := stringField(result, "cientifico")

	result["imagen_url"] = s.images.FindImage(ctx, scientificName, commonName, category)

	if category.HasSound() {
		if record := s.sounds.FindSound(ctx, commonName, scientificName, category); record != nil {
			result["sonido"] = record
		}
	}
}

// stringField pulls a string value out of the model's loosely-typed result.
func stringField(result models.SpeciesResult, key string) string {
	if v, ok := result[key].(string); ok {
		return v
	}
	return ""
}
