package services

import (
	"fmt"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

// categoryPersona maps each category to the expert persona and subject
// wording used in the instruction text. Templates are configuration data:
// resolver and client code never embed species knowledge.
type categoryPersona struct {
	Expert   string // "entomólogo", "botánico", ...
	Subject  string // "un insecto", "una planta", ...
	Subjects string // "insectos de Chile", "flora nativa de Chile", ...
	Habitat  string // habitat verb ("vive", "crece")
}

var personas = map[models.Category]categoryPersona{
	models.CategoryInsect: {"entomólogo", "un insecto", "insectos de Chile", "vive"},
	models.CategoryPlant:  {"botánico", "una planta", "flora nativa de Chile", "crece"},
	models.CategoryBird:   {"ornitólogo", "un ave", "aves de Chile", "vive"},
	models.CategoryAnimal: {"zoólogo", "un animal", "fauna nativa de Chile", "vive"},
}

const promptSchema = `{
    "nombre": "Nombre común en Chile (si tiene varios, usa el más conocido)",
    "cientifico": "Nombre científico en latín",
    "descripcion": "Explicación divertida y educativa para niños de 8 años, máximo 3 oraciones",
    "habitat": "Dónde %s en Chile (regiones o zonas)",
    "peligrosidad": "Baja/Media/Alta",
    "estado_conservacion": "Estado de conservación (Preocupación menor, Vulnerable, En peligro, etc.)",
    "dato_curioso": "Un dato sorprendente sobre la especie",
    "puntos": un número entero entre 10 y 100 basado en la rareza de la especie en Chile
}`

// BuildPrompt returns the instruction string for the generative model.
// With an empty query the prompt asks to analyze the attached image;
// otherwise it asks to identify the species described by the query.
// Pure string construction, no failure mode.
func BuildPrompt(category models.Category, query string) string {
	p, ok := personas[category]
	if !ok {
		p = personas[models.CategoryInsect]
	}

	task := "Analiza la imagen"
	if query != "" {
		task = fmt.Sprintf("Identifica la especie descrita a continuación: %q.", query)
	}

	return fmt.Sprintf(`Eres un experto %s chileno especializado en %s.
%s y devuelve ÚNICAMENTE un objeto JSON válido con esta estructura exacta:
%s

Si no puedes identificar %s, devuelve:
{"error": "No pude identificar %s. ¡Intenta de nuevo!"}

IMPORTANTE: Responde SOLO con el JSON, sin texto adicional ni markdown.`,
		p.Expert, p.Subjects, task, fmt.Sprintf(promptSchema, p.Habitat), p.Subject, p.Subject)
}
