package services

import (
	"log"
	"os"
	"path"
	"strings"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

// LocalSoundLibrary serves the small set of insect recordings bundled with
// the app, the last resort when neither archive has a match.
type LocalSoundLibrary struct {
	soundsDir string
	table     map[string]string // lowercase name fragment -> filename
}

// NewLocalSoundLibrary creates the library. The directory is served under
// /static/sounds; the name table can be overridden with INSECT_SOUNDS_FILE.
func NewLocalSoundLibrary() *LocalSoundLibrary {
	soundsDir := os.Getenv("LOCAL_SOUNDS_DIR")
	if soundsDir == "" {
		soundsDir = "./static/sounds"
	}

	if err := os.MkdirAll(soundsDir, 0755); err != nil {
		log.Printf("Warning: could not create local sounds directory: %v", err)
	}

	return &LocalSoundLibrary{
		soundsDir: soundsDir,
		table:     loadTableFile("INSECT_SOUNDS_FILE", defaultInsectSounds),
	}
}

// NewLocalSoundLibraryWithTable builds a library around an injected table.
func NewLocalSoundLibraryWithTable(table map[string]string) *LocalSoundLibrary {
	return &LocalSoundLibrary{soundsDir: "./static/sounds", table: table}
}

// Find matches the common name against the table by substring and returns
// a SoundRecord pointing at the static file, or nil.
func (l *LocalSoundLibrary) Find(commonName string) *models.SoundRecord {
	lower := strings.ToLower(strings.TrimSpace(commonName))

	for name, file := range l.table {
		if strings.Contains(lower, name) {
			return &models.SoundRecord{
				URL:        path.Join("/static/sounds", file),
				CommonName: commonName,
				SoundType:  "sonido característico",
				SourceID:   file,
				Source:     models.SoundSourceLocal,
			}
		}
	}
	return nil
}

// Dir returns the on-disk directory the static route should serve.
func (l *LocalSoundLibrary) Dir() string {
	return l.soundsDir
}
