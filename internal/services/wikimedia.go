package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

const (
	wikimediaAPIURL  = "https://commons.wikimedia.org/w/api.php"
	wikimediaTimeout = 10 * time.Second
)

// audioExtensions marks file titles worth considering in Commons search hits.
var audioExtensions = []string{".mp3", ".ogg", ".wav", ".flac"}

// WikimediaAudioService searches Wikimedia Commons for audio files, used as
// a fallback when Xeno-Canto has no recording.
type WikimediaAudioService struct {
	httpClient *http.Client
}

func NewWikimediaAudioService() *WikimediaAudioService {
	return &WikimediaAudioService{
		httpClient: &http.Client{Timeout: wikimediaTimeout},
	}
}

type commonsSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type commonsFileResponse struct {
	Query struct {
		Pages map[string]struct {
			ImageInfo []struct {
				URL         string `json:"url"`
				ExtMetadata map[string]struct {
					Value string `json:"value"`
				} `json:"extmetadata"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// SearchAudio looks for an audio file matching the query on Commons.
// Several query variants are tried in the file namespace; hits are filtered
// to common audio extensions and the first match's direct URL and license
// metadata are resolved. Returns nil without error when nothing matches.
func (s *WikimediaAudioService) SearchAudio(ctx context.Context, query string) (*models.SoundRecord, error) {
	variants := []string{query + " audio", query + " sound", query}

	var fileTitle string
	for _, variant := range variants {
		title, err := s.searchFile(ctx, variant)
		if err != nil {
			return nil, err
		}
		if title != "" {
			fileTitle = title
			break
		}
	}
	if fileTitle == "" {
		return nil, nil
	}

	fileURL, license, artist, err := s.resolveFile(ctx, fileTitle)
	if err != nil {
		return nil, err
	}
	if fileURL == "" {
		return nil, nil
	}

	if license == "" {
		license = "CC BY-SA"
	}
	if artist == "" {
		artist = "Colaborador de Wikimedia"
	}

	return &models.SoundRecord{
		URL:        fileURL,
		CommonName: query,
		SoundType:  "grabación",
		Recordist:  artist,
		License:    license,
		SourceID:   fileTitle,
		Source:     models.SoundSourceWikimedia,
	}, nil
}

// searchFile searches the file namespace and returns the first audio title.
func (s *WikimediaAudioService) searchFile(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"list":        {"search"},
		"srsearch":    {query},
		"srnamespace": {"6"}, // File: namespace
		"srlimit":     {"5"},
	}

	var resp commonsSearchResponse
	if err := s.get(ctx, params, &resp); err != nil {
		return "", err
	}

	for _, hit := range resp.Query.Search {
		lower := strings.ToLower(hit.Title)
		for _, ext := range audioExtensions {
			if strings.Contains(lower, ext) {
				return hit.Title, nil
			}
		}
	}
	return "", nil
}

// resolveFile fetches the direct URL and license metadata for a file title.
func (s *WikimediaAudioService) resolveFile(ctx context.Context, title string) (fileURL, license, artist string, err error) {
	params := url.Values{
		"action": {"query"},
		"format": {"json"},
		"prop":   {"imageinfo"},
		"iiprop": {"url|extmetadata"},
		"titles": {title},
	}

	var resp commonsFileResponse
	if err := s.get(ctx, params, &resp); err != nil {
		return "", "", "", err
	}

	for _, page := range resp.Query.Pages {
		if len(page.ImageInfo) == 0 {
			continue
		}
		info := page.ImageInfo[0]
		if info.URL == "" {
			continue
		}
		return info.URL, info.ExtMetadata["LicenseShortName"].Value, info.ExtMetadata["Artist"].Value, nil
	}
	return "", "", "", nil
}

func (s *WikimediaAudioService) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", wikimediaAPIURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", wikiUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikimedia returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
