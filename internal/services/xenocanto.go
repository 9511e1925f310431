package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

const (
	xenoCantoAPIURL  = "https://xeno-canto.org/api/3/recordings"
	xenoCantoTimeout = 10 * time.Second
)

// qualityRank orders Xeno-Canto grades best (A) to worst (E).
// Unknown grades sort after E.
var qualityRank = map[string]int{"A": 0, "B": 1, "C": 2, "D": 3, "E": 4}

// XenoCantoService queries the Xeno-Canto bioacoustic archive for bird
// (and some insect) recordings.
type XenoCantoService struct {
	apiKey     string
	httpClient *http.Client
}

// NewXenoCantoService creates the client. The v3 API accepts an optional
// key (XENO_CANTO_API_KEY) for higher limits; queries work without one.
func NewXenoCantoService() *XenoCantoService {
	return &XenoCantoService{
		apiKey:     os.Getenv("XENO_CANTO_API_KEY"),
		httpClient: &http.Client{Timeout: xenoCantoTimeout},
	}
}

type xenoCantoResponse struct {
	NumRecordings string               `json:"numRecordings"`
	Recordings    []xenoCantoRecording `json:"recordings"`
}

type xenoCantoRecording struct {
	ID        string `json:"id"`
	Genus     string `json:"gen"`
	Species   string `json:"sp"`
	English   string `json:"en"`
	SoundType string `json:"type"`
	Location  string `json:"loc"`
	Recordist string `json:"rec"`
	Quality   string `json:"q"`
	Duration  string `json:"length"`
	File      string `json:"file"`
	License   string `json:"lic"`
}

// SearchRecording finds the best recording for the query term.
// Chilean recordings are preferred: the query is first filtered with
// cnt:chile and retried unfiltered when that yields nothing.
func (s *XenoCantoService) SearchRecording(ctx context.Context, query, fallbackName string) (*models.SoundRecord, error) {
	recordings, err := s.query(ctx, query+" cnt:chile")
	if err != nil {
		return nil, err
	}
	if len(recordings) == 0 {
		recordings, err = s.query(ctx, query)
		if err != nil {
			return nil, err
		}
	}
	if len(recordings) == 0 {
		return nil, nil
	}

	sort.SliceStable(recordings, func(i, j int) bool {
		return rankQuality(recordings[i].Quality) < rankQuality(recordings[j].Quality)
	})
	best := recordings[0]

	// Xeno-Canto serves protocol-relative file URLs (//xeno-canto.org/...)
	fileURL := best.File
	if fileURL != "" && !strings.HasPrefix(fileURL, "http") {
		fileURL = "https:" + fileURL
	}

	name := best.English
	if name == "" {
		name = fallbackName
	}
	soundType := best.SoundType
	if soundType == "" {
		soundType = "canto"
	}
	quality := best.Quality
	if quality == "" {
		quality = "C"
	}
	license := best.License
	if license == "" {
		license = "CC BY-NC-SA 4.0"
	}

	return &models.SoundRecord{
		URL:            fileURL,
		CommonName:     name,
		ScientificName: strings.TrimSpace(best.Genus + " " + best.Species),
		SoundType:      soundType,
		Location:       orUnknown(best.Location),
		Recordist:      orUnknown(best.Recordist),
		Quality:        models.SoundQuality(quality),
		Duration:       best.Duration,
		License:        license,
		SourceID:       best.ID,
		Source:         models.SoundSourceXenoCanto,
	}, nil
}

func (s *XenoCantoService) query(ctx context.Context, q string) ([]xenoCantoRecording, error) {
	endpoint := xenoCantoAPIURL + "?query=" + url.QueryEscape(q)
	if s.apiKey != "" {
		endpoint += "&key=" + url.QueryEscape(s.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", wikiUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("xeno-canto returned status %d", resp.StatusCode)
	}

	var data xenoCantoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.NumRecordings == "0" {
		return nil, nil
	}
	return data.Recordings, nil
}

func rankQuality(q string) int {
	if r, ok := qualityRank[q]; ok {
		return r
	}
	return 5
}

func orUnknown(s string) string {
	if s == "" {
		return "Desconocido"
	}
	return s
}
