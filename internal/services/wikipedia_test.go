package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"golang.org/x/time/rate"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

func newTestImageService() *ImageSearchService {
	return &ImageSearchService{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

const thumbnailBody = `{"query":{"pages":{"12345":{"thumbnail":{"source":"https://upload.wikimedia.org/chincol.jpg"}}}}}`
const missingPageBody = `{"query":{"pages":{"-1":{}}}}`
const emptySearchBody = `{"query":{"search":[]}}`

func TestFindImageDirectTitleHit(t *testing.T) {
	svc := newTestImageService()
	httpmock.ActivateNonDefault(svc.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://en.wikipedia.org/w/api.php",
		func(req *http.Request) (*http.Response, error) {
			if req.URL.Query().Get("titles") == "Zonotrichia capensis" {
				return httpmock.NewStringResponse(200, thumbnailBody), nil
			}
			return httpmock.NewStringResponse(200, missingPageBody), nil
		})

	img := svc.FindImage(context.Background(), "Zonotrichia capensis", "Chincol", models.CategoryBird)
	if img != "https://upload.wikimedia.org/chincol.jpg" {
		t.Errorf("Expected direct thumbnail URL, got %s", img)
	}
	if httpmock.GetTotalCallCount() != 1 {
		t.Errorf("Expected 1 API call, got %d", httpmock.GetTotalCallCount())
	}
}

func TestFindImageSearchFallback(t *testing.T) {
	svc := newTestImageService()
	httpmock.ActivateNonDefault(svc.httpClient)
	defer httpmock.DeactivateAndReset()

	// Title lookups miss; the full-text search finds the article
	responder := func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		switch {
		case q.Get("list") == "search" && strings.Contains(q.Get("srsearch"), "chinita"):
			return httpmock.NewStringResponse(200, `{"query":{"search":[{"title":"Coccinellidae"}]}}`), nil
		case q.Get("list") == "search":
			return httpmock.NewStringResponse(200, emptySearchBody), nil
		case q.Get("titles") == "Coccinellidae":
			return httpmock.NewStringResponse(200, thumbnailBody), nil
		default:
			return httpmock.NewStringResponse(200, missingPageBody), nil
		}
	}
	httpmock.RegisterResponder("GET", "https://en.wikipedia.org/w/api.php", responder)
	httpmock.RegisterResponder("GET", "https://es.wikipedia.org/w/api.php", responder)

	img := svc.FindImage(context.Background(), "", "chinita", models.CategoryInsect)
	if img != "https://upload.wikimedia.org/chincol.jpg" {
		t.Errorf("Expected thumbnail from search fallback, got %s", img)
	}
}

func TestFindImagePlaceholderWhenEverythingMisses(t *testing.T) {
	svc := newTestImageService()
	httpmock.ActivateNonDefault(svc.httpClient)
	defer httpmock.DeactivateAndReset()

	responder := func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("list") == "search" {
			return httpmock.NewStringResponse(200, emptySearchBody), nil
		}
		return httpmock.NewStringResponse(200, missingPageBody), nil
	}
	httpmock.RegisterResponder("GET", "https://en.wikipedia.org/w/api.php", responder)
	httpmock.RegisterResponder("GET", "https://es.wikipedia.org/w/api.php", responder)

	img := svc.FindImage(context.Background(), "Nonexistus speciesus", "bicho inventado", models.CategoryPlant)
	if img != Placeholder(models.CategoryPlant) {
		t.Errorf("Expected plant placeholder, got %s", img)
	}
}

func TestFindImageSurvivesUpstreamErrors(t *testing.T) {
	svc := newTestImageService()
	httpmock.ActivateNonDefault(svc.httpClient)
	defer httpmock.DeactivateAndReset()

	responder := httpmock.NewStringResponder(503, "Service Unavailable")
	httpmock.RegisterResponder("GET", "https://en.wikipedia.org/w/api.php", responder)
	httpmock.RegisterResponder("GET", "https://es.wikipedia.org/w/api.php", responder)

	img := svc.FindImage(context.Background(), "Vultur gryphus", "cóndor", models.CategoryBird)
	if img != Placeholder(models.CategoryBird) {
		t.Errorf("Expected placeholder despite upstream failure, got %s", img)
	}
}

func TestPlaceholder(t *testing.T) {
	for _, category := range []models.Category{
		models.CategoryInsect, models.CategoryPlant, models.CategoryBird, models.CategoryAnimal,
	} {
		if Placeholder(category) == "" {
			t.Errorf("Missing placeholder for %s", category)
		}
	}

	// Unknown categories get the insect placeholder rather than nothing
	if Placeholder(models.Category("otro")) != Placeholder(models.CategoryInsect) {
		t.Error("Unknown category should fall back to the insect placeholder")
	}
}
