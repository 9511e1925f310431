package services

import (
	"testing"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

func TestLocalSoundLibraryFind(t *testing.T) {
	lib := NewLocalSoundLibraryWithTable(map[string]string{
		"grillo":    "grillo.mp3",
		"cigarra":   "cigarra.mp3",
		"chicharra": "cigarra.mp3",
	})

	tests := []struct {
		name        string
		input       string
		expectedURL string
	}{
		{"exact name", "grillo", "/static/sounds/grillo.mp3"},
		{"name inside a phrase", "Grillo del campo", "/static/sounds/grillo.mp3"},
		{"synonym shares a file", "chicharra", "/static/sounds/cigarra.mp3"},
		{"unknown name", "mariposa", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := lib.Find(tt.input)
			if tt.expectedURL == "" {
				if record != nil {
					t.Errorf("Expected nil for %q, got %+v", tt.input, record)
				}
				return
			}
			if record == nil {
				t.Fatalf("Expected a record for %q", tt.input)
			}
			if record.URL != tt.expectedURL {
				t.Errorf("Find(%q).URL = %s, want %s", tt.input, record.URL, tt.expectedURL)
			}
			if record.Source != models.SoundSourceLocal {
				t.Errorf("Expected local source, got %s", record.Source)
			}
		})
	}
}
