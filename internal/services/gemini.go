package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/metrics"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

const (
	geminiAPIURL  = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	geminiTimeout = 30 * time.Second

	defaultGeminiDailyLimit = 200
)

// defaultModels is the fallback chain, best first. Free-tier quota runs out
// on the flash models first, so the chain degrades toward older models.
var defaultModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro-vision",
	"gemini-pro",
}

// attemptKind classifies a single failed model attempt.
type attemptKind int

const (
	attemptQuota attemptKind = iota // 429 / quota exhausted, try next model
	attemptNotFound                 // unknown model, skip silently
	attemptKeyError                 // invalid or expired credential
	attemptOther                    // anything else
)

// GenerateError is the aggregated, user-facing failure of the whole chain.
// Code is empty for generic failures.
type GenerateError struct {
	Message string
	Code    string
}

func (e *GenerateError) Error() string { return e.Message }

// GeminiService calls the Gemini generateContent API, walking an ordered
// list of models until one succeeds.
type GeminiService struct {
	apiKey     string
	httpClient *http.Client
	models     []string
	enabled    bool

	mu            sync.Mutex
	dailyLimit    int
	requestsToday int
	dayStart      time.Time
}

// NewGeminiService creates the service from the environment.
// A missing GOOGLE_API_KEY disables the service; callers get a structured
// error per request instead of a startup failure.
func NewGeminiService() *GeminiService {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		// Try reading from file as fallback (for local dev)
		if keyPath := os.Getenv("GOOGLE_API_KEY_FILE"); keyPath != "" {
			if data, err := os.ReadFile(keyPath); err == nil {
				apiKey = strings.TrimSpace(string(data))
			}
		}
	}

	svc := &GeminiService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: geminiTimeout},
		models:     defaultModels,
		enabled:    apiKey != "",
		dailyLimit: defaultGeminiDailyLimit,
		dayStart:   time.Now(),
	}

	if svc.enabled {
		keyPreview := apiKey
		if len(keyPreview) > 10 {
			keyPreview = keyPreview[:10] + "..."
		}
		infoLog("Gemini service: enabled (models=%d, key=%s)", len(svc.models), keyPreview)
	} else {
		infoLog("Gemini service: disabled (no GOOGLE_API_KEY)")
	}

	return svc
}

// IsEnabled returns whether a Gemini API key is configured.
func (s *GeminiService) IsEnabled() bool {
	return s.enabled
}

// Models returns the configured fallback chain.
func (s *GeminiService) Models() []string {
	return s.models
}

// checkDailyLimit consumes one request from today's budget.
// Returns false once the budget is exhausted.
func (s *GeminiService) checkDailyLimit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.dayStart) >= 24*time.Hour {
		s.dayStart = time.Now()
		s.requestsToday = 0
	}
	if s.requestsToday >= s.dailyLimit {
		return false
	}
	s.requestsToday++
	return true
}

// GetRequestsRemaining returns how many identification requests are left today.
func (s *GeminiService) GetRequestsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.dayStart) >= 24*time.Hour {
		return s.dailyLimit
	}
	remaining := s.dailyLimit - s.requestsToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiAPIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateWithFallback sends the prompt (and optional inline image) to each
// model in order. The first success wins; failures are classified and the
// chain continues. After exhausting the list the most actionable error is
// returned: quota beats credential beats generic.
func (s *GeminiService) GenerateWithFallback(ctx context.Context, prompt string, image []byte, mimeType string) (text, modelUsed string, genErr *GenerateError) {
	if !s.enabled {
		return "", "", &GenerateError{
			Message: "No hay una API Key configurada. Revisa tu archivo .env.",
			Code:    models.ErrCodeAPIKey,
		}
	}

	if !s.checkDailyLimit() {
		return "", "", &GenerateError{
			Message: "⏰ ¡Has usado todas las consultas gratuitas de hoy! Intenta mañana o usa una nueva API Key. Visita https://aistudio.google.com/app/apikey para obtener una nueva.",
			Code:    models.ErrCodeQuotaExceeded,
		}
	}

	attempted := 0
	quotaHits := 0
	keyError := false
	var firstOther error

	for _, model := range s.models {
		output, kind, err := s.tryModel(ctx, model, prompt, image, mimeType)
		if err == nil {
			metrics.GeminiRequestsTotal.WithLabelValues(model, "ok").Inc()
			debugLog("Model %s succeeded (%d bytes)", model, len(output))
			return output, model, nil
		}

		switch kind {
		case attemptNotFound:
			// Unknown model: skip silently, not counted as an attempt
			metrics.GeminiRequestsTotal.WithLabelValues(model, "not_found").Inc()
			debugLog("Model %s not available, skipping", model)
			continue
		case attemptQuota:
			metrics.GeminiRequestsTotal.WithLabelValues(model, "quota").Inc()
			infoLog("Model %s quota exhausted", model)
			quotaHits++
		case attemptKeyError:
			metrics.GeminiRequestsTotal.WithLabelValues(model, "key_error").Inc()
			infoLog("Model %s rejected API key: %v", model, err)
			keyError = true
		default:
			metrics.GeminiRequestsTotal.WithLabelValues(model, "error").Inc()
			infoLog("Model %s failed: %v", model, err)
			if firstOther == nil {
				firstOther = fmt.Errorf("%s: %w", model, err)
			}
		}
		attempted++
	}

	// Most actionable error wins: quota > credential > generic > none.
	switch {
	case attempted > 0 && quotaHits == attempted:
		return "", "", &GenerateError{
			Message: "⏰ ¡Has usado todas las consultas gratuitas de hoy! Intenta mañana o usa una nueva API Key. Visita https://aistudio.google.com/app/apikey para obtener una nueva.",
			Code:    models.ErrCodeQuotaExceeded,
		}
	case keyError:
		return "", "", &GenerateError{
			Message: "La API Key no es válida o ha expirado. Consigue una nueva en https://aistudio.google.com/app/apikey.",
			Code:    models.ErrCodeAPIKey,
		}
	case firstOther != nil:
		return "", "", &GenerateError{Message: fmt.Sprintf("No se pudo completar el análisis: %v", firstOther)}
	default:
		return "", "", &GenerateError{Message: "No hay modelos disponibles para analizar. Por favor, verifica tu API Key."}
	}
}

// tryModel performs one generateContent call against a single model.
func (s *GeminiService) tryModel(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, attemptKind, error) {
	parts := []geminiPart{{Text: prompt}}
	if len(image) > 0 {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}})
	}

	reqJSON, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: parts}}})
	if err != nil {
		return "", attemptOther, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(geminiAPIURL, model) + "?key=" + s.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return "", attemptOther, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", attemptOther, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", attemptOther, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		kind := classifyAPIError(resp.StatusCode, string(body))
		return "", kind, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncateText(string(body), 200))
	}

	metrics.GeminiAPILatency.Observe(time.Since(startTime).Seconds())

	var apiResp geminiAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", attemptOther, fmt.Errorf("failed to parse API response: %w", err)
	}
	if apiResp.Error != nil {
		kind := classifyAPIError(apiResp.Error.Code, apiResp.Error.Status+" "+apiResp.Error.Message)
		return "", kind, fmt.Errorf("API error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", attemptOther, fmt.Errorf("no response from model")
	}

	return strings.TrimSpace(apiResp.Candidates[0].Content.Parts[0].Text), attemptOther, nil
}

// classifyAPIError maps an upstream failure to an attempt kind.
// Quota is checked before credentials: Gemini reports key problems with
// 400 bodies mentioning "API key", while rate limits use 429/RESOURCE_EXHAUSTED.
func classifyAPIError(statusCode int, body string) attemptKind {
	lower := strings.ToLower(body)

	switch {
	case statusCode == http.StatusTooManyRequests,
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "resource_exhausted"):
		return attemptQuota
	case statusCode == http.StatusNotFound,
		strings.Contains(lower, "not found"):
		return attemptNotFound
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden,
		strings.Contains(lower, "api key"),
		strings.Contains(lower, "api_key_invalid"),
		strings.Contains(lower, "permission_denied"):
		return attemptKeyError
	default:
		return attemptOther
	}
}

// truncateText truncates text to maxLen runes with ellipsis.
func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
