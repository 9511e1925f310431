package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/metrics"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

const (
	wikipediaAPIFormat = "https://%s.wikipedia.org/w/api.php"
	wikipediaTimeout   = 10 * time.Second

	// Required by the Wikimedia robot policy
	wikiUserAgent = "ExploradorChileno/1.0 (https://github.com/j-alexander-acosta/explorador-chileno) Go-HTTP-Client"
)

// wikipediaLocales is the lookup order: the English Wikipedia has the best
// coverage of scientific names, Spanish catches Chilean common names.
var wikipediaLocales = []string{"en", "es"}

// categoryPlaceholders are inline SVG data URIs returned when every lookup
// fails. Selecting one is not a network call and cannot fail.
var categoryPlaceholders = map[models.Category]string{
	models.CategoryInsect: "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'%3E%3Ccircle cx='50' cy='50' r='45' fill='%232E8B57'/%3E%3Ctext x='50' y='60' font-size='40' text-anchor='middle' fill='white'%3E🐞%3C/text%3E%3C/svg%3E",
	models.CategoryPlant:  "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'%3E%3Ccircle cx='50' cy='50' r='45' fill='%2334A853'/%3E%3Ctext x='50' y='60' font-size='40' text-anchor='middle' fill='white'%3E🌿%3C/text%3E%3C/svg%3E",
	models.CategoryBird:   "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'%3E%3Ccircle cx='50' cy='50' r='45' fill='%234285F4'/%3E%3Ctext x='50' y='60' font-size='40' text-anchor='middle' fill='white'%3E🦅%3C/text%3E%3C/svg%3E",
	models.CategoryAnimal: "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'%3E%3Ccircle cx='50' cy='50' r='45' fill='%23A0522D'/%3E%3Ctext x='50' y='60' font-size='40' text-anchor='middle' fill='white'%3E🦊%3C/text%3E%3C/svg%3E",
}

// ImageSearchService resolves an illustration URL for a species from
// Wikipedia, falling back to a static placeholder. It never fails.
type ImageSearchService struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewImageSearchService creates the resolver with a shared rate limiter so
// a burst of identifications stays within Wikipedia's comfort zone.
func NewImageSearchService() *ImageSearchService {
	return &ImageSearchService{
		httpClient: &http.Client{Timeout: wikipediaTimeout},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
}

// FindImage returns the best-effort illustration URL for the species.
// Strictly ordered, first hit wins:
//  1. direct-title pageimages lookup for the scientific name, en then es
//     (with a full-text search retry per locale)
//  2. full-text search with the common name plus disambiguating suffixes
//  3. category placeholder (unconditional)
func (s *ImageSearchService) FindImage(ctx context.Context, scientificName, commonName string, category models.Category) string {
	reqID := uuid.New().String()[:8]

	if scientificName != "" {
		for _, locale := range wikipediaLocales {
			if img, ok := s.titleImage(ctx, reqID, scientificName, locale); ok {
				metrics.ImageLookupsTotal.WithLabelValues("wikipedia_" + locale).Inc()
				return img
			}
			if img, ok := s.searchImage(ctx, reqID, scientificName, locale); ok {
				metrics.ImageLookupsTotal.WithLabelValues("wikipedia_" + locale).Inc()
				return img
			}
		}
	}

	if commonName != "" {
		// Disambiguating suffixes keep "chinita" from resolving to a person
		terms := []string{commonName + " insecto", commonName + " animal", commonName}
		for _, term := range terms {
			for _, locale := range wikipediaLocales {
				if img, ok := s.searchImage(ctx, reqID, term, locale); ok {
					metrics.ImageLookupsTotal.WithLabelValues("wikipedia_" + locale).Inc()
					return img
				}
			}
		}
	}

	metrics.ImageLookupsTotal.WithLabelValues("placeholder").Inc()
	debugLog("[%s] No illustration found for %q/%q, using %s placeholder", reqID, scientificName, commonName, category)
	return Placeholder(category)
}

// Placeholder returns the static fallback image for a category.
func Placeholder(category models.Category) string {
	if p, ok := categoryPlaceholders[category]; ok {
		return p
	}
	return categoryPlaceholders[models.CategoryInsect]
}

type wikipediaPagesResponse struct {
	Query struct {
		Pages map[string]struct {
			Thumbnail *struct {
				Source string `json:"source"`
			} `json:"thumbnail"`
		} `json:"pages"`
	} `json:"query"`
}

type wikipediaSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// titleImage looks up the lead image of the article with the exact title.
func (s *ImageSearchService) titleImage(ctx context.Context, reqID, title, locale string) (string, bool) {
	params := url.Values{
		"action":      {"query"},
		"titles":      {title},
		"prop":        {"pageimages"},
		"format":      {"json"},
		"pithumbsize": {"500"},
	}

	var resp wikipediaPagesResponse
	if err := s.get(ctx, locale, params, &resp); err != nil {
		debugLog("[%s] Wikipedia %s title lookup for %q failed: %v", reqID, locale, title, err)
		return "", false
	}

	for pageID, page := range resp.Query.Pages {
		if pageID != "-1" && page.Thumbnail != nil && page.Thumbnail.Source != "" {
			return page.Thumbnail.Source, true
		}
	}
	return "", false
}

// searchImage runs a full-text search and fetches the top hit's lead image.
func (s *ImageSearchService) searchImage(ctx context.Context, reqID, term, locale string) (string, bool) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {term},
		"format":   {"json"},
		"srlimit":  {"1"},
	}

	var resp wikipediaSearchResponse
	if err := s.get(ctx, locale, params, &resp); err != nil {
		debugLog("[%s] Wikipedia %s search for %q failed: %v", reqID, locale, term, err)
		return "", false
	}
	if len(resp.Query.Search) == 0 {
		return "", false
	}

	return s.titleImage(ctx, reqID, resp.Query.Search[0].Title, locale)
}

// get performs a rate-limited GET against one Wikipedia mirror.
func (s *ImageSearchService) get(ctx context.Context, locale string, params url.Values, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := fmt.Sprintf(wikipediaAPIFormat, locale) + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, http.NoBody)
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
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
