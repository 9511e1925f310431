package services

import (
	"context"
	"strings"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/metrics"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

// SoundSearchService resolves a recording for a species through the
// fallback chain: Xeno-Canto, then Wikimedia Commons, then the bundled
// insect files. Absence of a sound is not an error.
type SoundSearchService struct {
	xenoCanto *XenoCantoService
	wikimedia *WikimediaAudioService
	local     *LocalSoundLibrary
	aliases   map[string]string // lowercase common name -> scientific name
}

// NewSoundSearchService wires the chain from the environment. The alias
// table can be overridden with BIRD_ALIASES_FILE.
func NewSoundSearchService(xenoCanto *XenoCantoService, wikimedia *WikimediaAudioService, local *LocalSoundLibrary) *SoundSearchService {
	return &SoundSearchService{
		xenoCanto: xenoCanto,
		wikimedia: wikimedia,
		local:     local,
		aliases:   loadTableFile("BIRD_ALIASES_FILE", defaultBirdAliases),
	}
}

// NewSoundSearchServiceWithAliases builds the service around an injected
// alias table, for tests.
func NewSoundSearchServiceWithAliases(xenoCanto *XenoCantoService, wikimedia *WikimediaAudioService, local *LocalSoundLibrary, aliases map[string]string) *SoundSearchService {
	return &SoundSearchService{xenoCanto: xenoCanto, wikimedia: wikimedia, local: local, aliases: aliases}
}

// ResolveScientificName maps a common name to a scientific name using the
// alias table: exact match first, then substring in either direction.
// Falls back to the raw common name as the query term.
func (s *SoundSearchService) ResolveScientificName(commonName string) string {
	lower := strings.ToLower(strings.TrimSpace(commonName))
	if lower == "" {
		return commonName
	}

	if sci, ok := s.aliases[lower]; ok {
		return sci
	}
	for name, sci := range s.aliases {
		if strings.Contains(lower, name) || strings.Contains(name, lower) {
			return sci
		}
	}
	return commonName
}

// FindSound returns the best available recording for the species, or nil.
// Plants and non-sound categories return immediately with no network calls.
func (s *SoundSearchService) FindSound(ctx context.Context, commonName, scientificName string, category models.Category) *models.SoundRecord {
	if !category.HasSound() {
		return nil
	}

	query := scientificName
	if query == "" {
		query = s.ResolveScientificName(commonName)
	}

	record, err := s.xenoCanto.SearchRecording(ctx, query, commonName)
	if err != nil {
		infoLog("Xeno-Canto lookup for %q failed: %v", query, err)
	}
	if record != nil {
		metrics.SoundLookupsTotal.WithLabelValues("xeno_canto").Inc()
		return record
	}

	record, err = s.wikimedia.SearchAudio(ctx, query)
	if err != nil {
		infoLog("Wikimedia audio lookup for %q failed: %v", query, err)
	}
	if record != nil {
		metrics.SoundLookupsTotal.WithLabelValues("wikimedia").Inc()
		return record
	}

	if category == models.CategoryInsect {
		if record = s.local.Find(commonName); record != nil {
			metrics.SoundLookupsTotal.WithLabelValues("local").Inc()
			return record
		}
	}

	metrics.SoundLookupsTotal.WithLabelValues("none").Inc()
	return nil
}
