package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

// newTestGeminiService builds an enabled service with an httpmock-backed
// client and a short model chain.
func newTestGeminiService(modelChain ...string) *GeminiService {
	return &GeminiService{
		apiKey:     "test-key",
		httpClient: &http.Client{},
		models:     modelChain,
		enabled:    true,
		dailyLimit: 10,
		dayStart:   time.Now(),
	}
}

func modelURL(model string) string {
	return fmt.Sprintf(geminiAPIURL, model)
}

func successBody(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func TestGenerateWithFallbackFirstSuccess(t *testing.T) {
	svc := newTestGeminiService("gemini-2.0-flash", "gemini-pro")
	httpmock.ActivateNonDefault(svc.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", modelURL("gemini-2.0-flash"),
		httpmock.NewStringResponder(200, successBody(`{"nombre": "Chincol"}`)))

	text, modelUsed, genErr := svc.GenerateWithFallback(context.Background(), "prompt", nil, "")
	if genErr != nil {
		t.Fatalf("Unexpected error: %v", genErr)
	}
	if modelUsed != "gemini-2.0-flash" {
		t.Errorf("Expected gemini-2.0-flash, got %s", modelUsed)
	}
	if text != `{"nombre": "Chincol"}` {
		t.Errorf("Unexpected text: %s", text)
	}
	if httpmock.GetTotalCallCount() != 1 {
		t.Errorf("Expected 1 API call, got %d", httpmock.GetTotalCallCount())
	}
}

func TestGenerateWithFallbackQuotaFallsThrough(t *testing.T) {
	svc := newTestGeminiService("gemini-2.0-flash", "gemini-pro")
	httpmock.ActivateNonDefault(svc.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", modelURL("gemini-2.0-flash"),
		httpmock.NewStringResponder(429, `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"quota"}}`))
	httpmock.RegisterResponder("POST", modelURL("gemini-pro"),
		httpmock.NewStringResponder(200, successBody("ok")))

	_, modelUsed, genErr := svc.GenerateWithFallback(context.Background(), "prompt", nil, "")
	if genErr != nil {
		t.Fatalf("Unexpected error: %v", genErr)
	}
	if modelUsed != "gemini-pro" {
		t.Errorf("Expected fallback to gemini-pro, got %s", modelUsed)
	}
}

func TestGenerateWithFallbackAllQuota(t *testing.T) {
	svc := newTestGeminiService("gemini-2.0-flash", "gemini-pro")
	httpmock.ActivateNonDefault(svc.httpClient)
	defer httpmock.DeactivateAndReset()

	for _, m := range svc.models {
		httpmock.RegisterResponder("POST", modelURL(m),
			httpmock.NewStringResponder(429, `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`))
	}

	_, _, genErr := svc.GenerateWithFallback(context.Background(), "prompt", nil, "")
	if genErr == nil {
		t.Fatal("Expected error when every model is out of quota")
	}
	if genErr.Code != models.ErrCodeQuotaExceeded {
		t.Errorf("Expected code %s, got %s", models.ErrCodeQuotaExceeded, genErr.Code)
	}
}

func TestGenerateWithFallbackKeyErrorWins(t *testing.T) {
	svc := newTestGeminiService("gemini-2.0-flash", "gemini-pro")
	httpmock.ActivateNonDefault(svc.httpClient)
	defer httpmock.DeactivateAndReset()

	// One quota failure plus one credential failure: the credential error
	// is the actionable one.
	httpmock.RegisterResponder("POST", modelURL("gemini-2.0-flash"),
		httpmock.NewStringResponder(429, `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`))
	httpmock.RegisterResponder("POST", modelURL("gemini-pro"),
		httpmock.NewStringResponder(400, `{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"API key not valid"}}`))

	_, _, genErr := svc.GenerateWithFallback(context.Background(), "prompt", nil, "")
	if genErr == nil {
		t.Fatal("Expected error")
	}
	if genErr.Code != models.ErrCodeAPIKey {
		t.Errorf("Expected code %s, got %s", models.ErrCodeAPIKey, genErr.Code)
	}
}

func TestGenerateWithFallbackSkipsUnknownModels(t *testing.T) {
	svc := newTestGeminiService("gemini-pro-vision", "gemini-pro")
	httpmock.ActivateNonDefault(svc.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", modelURL("gemini-pro-vision"),
		httpmock.NewStringResponder(404, `{"error":{"code":404,"status":"NOT_FOUND","message":"model not found"}}`))
	httpmock.RegisterResponder("POST", modelURL("gemini-pro"),
		httpmock.NewStringResponder(200, successBody("ok")))

	text, modelUsed, genErr := svc.GenerateWithFallback(context.Background(), "prompt", nil, "")
	if genErr != nil {
		t.Fatalf("Unexpected error: %v", genErr)
	}
	if modelUsed != "gemini-pro" || text != "ok" {
		t.Errorf("Expected gemini-pro/ok, got %s/%s", modelUsed, text)
	}
}

func TestGenerateWithFallbackOnlyUnknownModels(t *testing.T) {
	svc := newTestGeminiService("gemini-pro-vision")
	httpmock.ActivateNonDefault(svc.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", modelURL("gemini-pro-vision"),
		httpmock.NewStringResponder(404, `{"error":{"code":404,"status":"NOT_FOUND"}}`))

	_, _, genErr := svc.GenerateWithFallback(context.Background(), "prompt", nil, "")
	if genErr == nil {
		t.Fatal("Expected error when no model is available")
	}
	// Skipped models are not attempts, so this is the generic message
	if genErr.Code != "" {
		t.Errorf("Expected no error code, got %s", genErr.Code)
	}
}

func TestGenerateDisabledWithoutKey(t *testing.T) {
	svc := newTestGeminiService("gemini-pro")
	svc.enabled = false

	_, _, genErr := svc.GenerateWithFallback(context.Background(), "prompt", nil, "")
	if genErr == nil {
		t.Fatal("Expected error when service is disabled")
	}
	if genErr.Code != models.ErrCodeAPIKey {
		t.Errorf("Expected code %s, got %s", models.ErrCodeAPIKey, genErr.Code)
	}
}

func TestGeminiDailyLimiting(t *testing.T) {
	svc := newTestGeminiService("gemini-pro")
	svc.dailyLimit = 3

	for i := 0; i < 3; i++ {
		if !svc.checkDailyLimit() {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}
	if svc.checkDailyLimit() {
		t.Error("4th request should be blocked by daily limit")
	}
	if remaining := svc.GetRequestsRemaining(); remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", remaining)
	}
}

func TestGenerateWithFallbackDailyLimitExhausted(t *testing.T) {
	svc := newTestGeminiService("gemini-pro")
	svc.dailyLimit = 0

	_, _, genErr := svc.GenerateWithFallback(context.Background(), "prompt", nil, "")
	if genErr == nil {
		t.Fatal("Expected error once the daily budget is spent")
	}
	if genErr.Code != models.ErrCodeQuotaExceeded {
		t.Errorf("Expected code %s, got %s", models.ErrCodeQuotaExceeded, genErr.Code)
	}
}

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		expected   attemptKind
	}{
		{"http 429", 429, "{}", attemptQuota},
		{"quota in body", 400, `{"message":"Quota exceeded for requests"}`, attemptQuota},
		{"resource exhausted", 400, `{"status":"RESOURCE_EXHAUSTED"}`, attemptQuota},
		{"http 404", 404, "{}", attemptNotFound},
		{"not found in body", 400, "model not found", attemptNotFound},
		{"http 401", 401, "{}", attemptKeyError},
		{"http 403", 403, "{}", attemptKeyError},
		{"api key in body", 400, "API key not valid", attemptKeyError},
		{"api_key_invalid", 400, `{"reason":"API_KEY_INVALID"}`, attemptKeyError},
		{"permission denied", 400, `{"status":"PERMISSION_DENIED"}`, attemptKeyError},
		{"server error", 500, "internal error", attemptOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyAPIError(tt.statusCode, tt.body); got != tt.expected {
				t.Errorf("classifyAPIError(%d, %q) = %d, want %d", tt.statusCode, tt.body, got, tt.expected)
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("corto", 10); got != "corto" {
		t.Errorf("Expected unchanged, got %q", got)
	}
	if got := truncateText("ñañañañaña", 5); got != "ñañañ..." {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
}
