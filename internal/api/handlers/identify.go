package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/services"
)

// allowedImageTypes maps upload extensions to the MIME type sent to Gemini.
var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type IdentifyHandler struct {
	identify *services.IdentifyService
	sounds   *services.SoundSearchService
	gemini   *services.GeminiService
	worker   *services.MetricsWorker
}

func NewIdentifyHandler(identify *services.IdentifyService, sounds *services.SoundSearchService, gemini *services.GeminiService, worker *services.MetricsWorker) *IdentifyHandler {
	return &IdentifyHandler{
		identify: identify,
		sounds:   sounds,
		gemini:   gemini,
		worker:   worker,
	}
}

// Analyze identifies the species in an uploaded photo
// POST /api/analizar (multipart: imagen, tipo)
func (h *IdentifyHandler) Analyze(c *gin.Context) {
	category := models.ParseCategory(c.PostForm("tipo"))

	fileHeader, err := c.FormFile("imagen")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "¡Ups! No recibí ninguna imagen. ¿Puedes intentar de nuevo?",
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	mimeType, ok := allowedImageTypes[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Ese tipo de archivo no me sirve. Sube una foto PNG, JPG, GIF o WebP.",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No pude leer la imagen. ¿Puedes intentar de nuevo?",
		})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No pude leer la imagen. ¿Puedes intentar de nuevo?",
		})
		return
	}

	result := h.identify.IdentifyImage(c.Request.Context(), image, mimeType, category)
	c.JSON(http.StatusOK, result)
}

type searchRequest struct {
	Query    string `json:"consulta" binding:"required"`
	Category string `json:"tipo"`
}

// Search identifies a species from a free-text question
// POST /api/buscar
func (h *IdentifyHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Escribe qué quieres buscar, por ejemplo: ¿qué come el cóndor?",
		})
		return
	}

	category := models.ParseCategory(req.Category)
	result := h.identify.IdentifyQuery(c.Request.Context(), strings.TrimSpace(req.Query), category)
	c.JSON(http.StatusOK, result)
}

type soundRequest struct {
	CommonName     string `json:"nombre" binding:"required"`
	ScientificName string `json:"cientifico"`
	Category       string `json:"tipo"`
}

// Sound resolves a recording for an already-identified species
// POST /api/sonido
func (h *IdentifyHandler) Sound(c *gin.Context) {
	var req soundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Necesito el nombre del animal para buscar su sonido.",
		})
		return
	}

	category := models.ParseCategory(req.Category)
	record := h.sounds.FindSound(c.Request.Context(), req.CommonName, req.ScientificName, category)
	if record == nil {
		c.JSON(http.StatusOK, gin.H{
			"encontrado": false,
			"mensaje":    "No encontré una grabación de " + req.CommonName + ". ¡Sigue explorando!",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"encontrado": true,
		"sonido":     record,
	})
}

// Health is the liveness probe
// GET /api/salud
func (h *IdentifyHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"mensaje": "¡El explorador está listo para la aventura!",
	})
}

// Status reports quota and worker state for operators
// GET /api/admin/estado
func (h *IdentifyHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"gemini_habilitado":   h.gemini.IsEnabled(),
		"consultas_restantes": h.gemini.GetRequestsRemaining(),
		"modelos":             h.gemini.Models(),
		"metricas":            h.worker.Status(),
	})
}

// RefreshMetrics forces a ledger-gauge refresh outside the worker's schedule
// POST /api/admin/metricas
func (h *IdentifyHandler) RefreshMetrics(c *gin.Context) {
	h.worker.Refresh()
	c.JSON(http.StatusOK, gin.H{
		"mensaje":  "Métricas del libro de descubrimientos actualizadas",
		"metricas": h.worker.Status(),
	})
}
