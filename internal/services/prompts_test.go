package services

import (
	"strings"
	"testing"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

// Every category prompt must ask for the full response schema.
var schemaFields = []string{
	"nombre", "cientifico", "descripcion", "habitat",
	"peligrosidad", "estado_conservacion", "dato_curioso", "puntos",
}

func TestBuildPromptSchemaFields(t *testing.T) {
	for _, category := range []models.Category{
		models.CategoryInsect, models.CategoryPlant, models.CategoryBird, models.CategoryAnimal,
	} {
		t.Run(string(category), func(t *testing.T) {
			prompt := BuildPrompt(category, "")
			for _, field := range schemaFields {
				if !strings.Contains(prompt, `"`+field+`"`) {
					t.Errorf("Prompt for %s missing field %q", category, field)
				}
			}
			if !strings.Contains(prompt, "Responde SOLO con el JSON") {
				t.Errorf("Prompt for %s missing JSON-only instruction", category)
			}
		})
	}
}

func TestBuildPromptCategoryVocabulary(t *testing.T) {
	tests := []struct {
		category models.Category
		expert   string
		subjects string
	}{
		{models.CategoryInsect, "entomólogo", "insectos de Chile"},
		{models.CategoryPlant, "botánico", "flora nativa de Chile"},
		{models.CategoryBird, "ornitólogo", "aves de Chile"},
		{models.CategoryAnimal, "zoólogo", "fauna nativa de Chile"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			prompt := BuildPrompt(tt.category, "")
			if !strings.Contains(prompt, tt.expert) {
				t.Errorf("Prompt for %s missing expert %q", tt.category, tt.expert)
			}
			if !strings.Contains(prompt, tt.subjects) {
				t.Errorf("Prompt for %s missing subjects %q", tt.category, tt.subjects)
			}
		})
	}
}

func TestBuildPromptImageVsQuery(t *testing.T) {
	imagePrompt := BuildPrompt(models.CategoryBird, "")
	if !strings.Contains(imagePrompt, "Analiza la imagen") {
		t.Error("Image prompt should ask to analyze the attached image")
	}

	queryPrompt := BuildPrompt(models.CategoryBird, "¿qué come el cóndor?")
	if !strings.Contains(queryPrompt, "¿qué come el cóndor?") {
		t.Error("Query prompt should embed the user's question")
	}
	if strings.Contains(queryPrompt, "Analiza la imagen") {
		t.Error("Query prompt should not mention an image")
	}
}

func TestBuildPromptUnknownCategoryFallsBack(t *testing.T) {
	prompt := BuildPrompt(models.Category("dinosaurio"), "")
	if !strings.Contains(prompt, "entomólogo") {
		t.Error("Unknown category should fall back to the insect persona")
	}
}
