package services

import (
	"encoding/json"
	"log"
	"os"
)

// Static lookup tables. These are configuration data, not engineering:
// resolvers receive them injected and can be tested against small tables.
// Both can be replaced wholesale with JSON files via environment variables.

// defaultBirdAliases maps Chilean common bird names to scientific names for
// Xeno-Canto queries.
var defaultBirdAliases = map[string]string{
	"chincol":              "Zonotrichia capensis",
	"chincolito":           "Zonotrichia capensis",
	"gorrión":              "Zonotrichia capensis",
	"jilguero":             "Spinus barbatus",
	"jote cabeza negra":    "Coragyps atratus",
	"jote":                 "Coragyps atratus",
	"chuncho":              "Glaucidium nana",
	"lechuza":              "Tyto alba",
	"cóndor":               "Vultur gryphus",
	"condor":               "Vultur gryphus",
	"cóndor andino":        "Vultur gryphus",
	"picaflor":             "Sephanoides sephaniodes",
	"picaflor chico":       "Sephanoides sephaniodes",
	"colibrí":              "Sephanoides sephaniodes",
	"loica":                "Leistes loyca",
	"zorzal":               "Turdus falcklandii",
	"zorzal patagónico":    "Turdus falcklandii",
	"tordo":                "Curaeus curaeus",
	"mirlo":                "Curaeus curaeus",
	"loro tricahue":        "Cyanoliseus patagonus",
	"tricahue":             "Cyanoliseus patagonus",
	"catita":               "Myiopsitta monachus",
	"choroy":               "Enicognathus leptorhynchus",
	"diuca":                "Diuca diuca",
	"diuca común":          "Diuca diuca",
	"queltehue":            "Vanellus chilensis",
	"treile":               "Vanellus chilensis",
	"tero":                 "Vanellus chilensis",
	"traile":               "Vanellus chilensis",
	"tiuque":               "Phalcoboenus chimango",
	"chimango":             "Phalcoboenus chimango",
	"carancho":             "Phalcoboenus chimango",
	"aguilucho":            "Geranoaetus polyosoma",
	"ñandú":                "Rhea pennata",
	"suri":                 "Rhea pennata",
	"carpintero":           "Colaptes pitius",
	"pitío":                "Colaptes pitius",
	"fío fío":              "Elaenia albiceps",
	"fiofio":               "Elaenia albiceps",
	"perdiz":               "Nothoprocta perdicaria",
	"perdiz chilena":       "Nothoprocta perdicaria",
	"codorniz":             "Callipepla californica",
	"huairavo":             "Nycticorax nycticorax",
	"garza":                "Ardea alba",
	"garza blanca":         "Ardea alba",
	"garza chica":          "Egretta thula",
	"bandurria":            "Theristicus melanopis",
	"flamenco":             "Phoenicopterus chilensis",
	"flamenco chileno":     "Phoenicopterus chilensis",
	"pelícano":             "Pelecanus thagus",
	"piquero":              "Sula variegata",
	"cormorán":             "Phalacrocorax brasilianus",
	"pingüino":             "Spheniscus humboldti",
	"pingüino de humboldt": "Spheniscus humboldti",
	"pingüino magallánico": "Spheniscus magellanicus",
	"gaviota":              "Larus dominicanus",
	"gaviota dominicana":   "Larus dominicanus",
	"pilpilén":             "Haematopus palliatus",
	"zarapito":             "Numenius phaeopus",
	"playero":              "Calidris alba",
	"tucúquere":            "Bubo magellanicus",
	"pequén":               "Athene cunicularia",
	"nuco":                 "Asio flammeus",
	"águila":               "Geranoaetus melanoleucus",
	"águila mora":          "Geranoaetus melanoleucus",
	"halcón peregrino":     "Falco peregrinus",
	"cernícalo":            "Falco sparverius",
}

// defaultInsectSounds maps insect names to bundled audio files; there is no
// public insect recordings API worth the trouble.
var defaultInsectSounds = map[string]string{
	"grillo":    "grillo.mp3",
	"cigarra":   "cigarra.mp3",
	"chicharra": "cigarra.mp3",
	"abeja":     "abeja.mp3",
	"abejorro":  "abejorro.mp3",
}

// loadTableFile replaces a default table with the contents of a JSON file
// (object of string to string) when the given env var points at one.
func loadTableFile(envVar string, defaults map[string]string) map[string]string {
	path := os.Getenv(envVar)
	if path == "" {
		return defaults
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: could not read %s=%s, using built-in table: %v", envVar, path, err)
		return defaults
	}

	table := make(map[string]string)
	if err := json.Unmarshal(data, &table); err != nil {
		log.Printf("Warning: invalid JSON in %s, using built-in table: %v", envVar, err)
		return defaults
	}

	log.Printf("Loaded %d entries from %s", len(table), path)
	return table
}
