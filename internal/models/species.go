package models

// Category selects the prompt template and downstream resolver behavior.
type Category string

const (
	CategoryInsect Category = "insecto"
	CategoryPlant  Category = "planta"
	CategoryBird   Category = "ave"
	CategoryAnimal Category = "animal"
)

// ParseCategory normalizes a client-supplied category, defaulting to insect
// for absent or unknown values (matches the app's historical behavior).
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryInsect, CategoryPlant, CategoryBird, CategoryAnimal:
		return Category(s)
	default:
		return CategoryInsect
	}
}

// HasSound reports whether the category can carry a sound recording.
// Birds and insects do; plants and other animals are served without audio.
func (c Category) HasSound() bool {
	return c == CategoryBird || c == CategoryInsect
}

// Error codes surfaced to the client so it can show differentiated messages.
const (
	ErrCodeQuotaExceeded = "QUOTA_EXCEEDED"
	ErrCodeAPIKey        = "API_KEY_ERROR"
)

// SpeciesResult is the identification payload returned to the client.
// The model's JSON is passed through verbatim (weak contract: no schema
// validation beyond the error-key check), so a map is the honest shape.
// Success results carry nombre/cientifico/descripcion/habitat/peligrosidad/
// estado_conservacion/dato_curioso/puntos plus injected tipo and modelo_usado.
// Error results carry error/tipo and optionally codigo_error.
type SpeciesResult map[string]any

// IsError reports whether the result is the error variant.
func (r SpeciesResult) IsError() bool {
	_, ok := r["error"]
	return ok
}

// ErrorResult builds the error variant of a SpeciesResult.
func ErrorResult(message string, category Category) SpeciesResult {
	return SpeciesResult{"error": message, "tipo": string(category)}
}

// CodedErrorResult builds an error variant with a structured error code.
func CodedErrorResult(message string, category Category, code string) SpeciesResult {
	r := ErrorResult(message, category)
	r["codigo_error"] = code
	return r
}

// SoundQuality is the Xeno-Canto recording grade, A (best) through E (worst).
type SoundQuality string

// Sound sources.
const (
	SoundSourceXenoCanto = "Xeno-Canto"
	SoundSourceWikimedia = "Wikimedia Commons"
	SoundSourceLocal     = "Archivo local"
)

// SoundRecord is a normalized recording from any of the sound sources.
type SoundRecord struct {
	URL            string       `json:"url"`
	CommonName     string       `json:"nombre"`
	ScientificName string       `json:"cientifico,omitempty"`
	SoundType      string       `json:"tipo_sonido"`
	Location       string       `json:"ubicacion,omitempty"`
	Recordist      string       `json:"grabador,omitempty"`
	Quality        SoundQuality `json:"calidad,omitempty"`
	Duration       string       `json:"duracion,omitempty"`
	License        string       `json:"licencia,omitempty"`
	SourceID       string       `json:"fuente_id,omitempty"`
	Source         string       `json:"fuente"`
}
