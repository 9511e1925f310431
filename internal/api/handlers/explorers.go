package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/metrics"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/middleware"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

type ExplorerHandler struct {
	db *gorm.DB
}

func NewExplorerHandler(db *gorm.DB) *ExplorerHandler {
	return &ExplorerHandler{db: db}
}

type registerRequest struct {
	FirstName string `json:"nombre" binding:"required"`
	LastName  string `json:"apellido"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"telefono"`
}

// Register creates an explorer and logs them in
// POST /api/registro
func (h *ExplorerHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Necesito al menos tu nombre y un email válido para registrarte.",
		})
		return
	}

	explorer := models.Explorer{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
	}

	if err := h.db.Create(&explorer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Ese email ya está registrado. ¿Quieres iniciar sesión?",
				"code":  "EMAIL_TAKEN",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No pude guardar tu registro. Intenta de nuevo."})
		return
	}

	if err := middleware.SetExplorerID(c, explorer.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No pude crear tu sesión. Intenta de nuevo."})
		return
	}

	metrics.ExplorersTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{
		"mensaje":    "¡Bienvenido a la aventura, " + explorer.FirstName + "!",
		"explorador": explorer,
	})
}

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Login starts a session for an existing explorer. Email only, no password.
// POST /api/login
func (h *ExplorerHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Necesito tu email para iniciar sesión."})
		return
	}

	var explorer models.Explorer
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.db.First(&explorer, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No encontré ese email. ¿Quieres registrarte?",
				"code":  "EXPLORER_NOT_FOUND",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No pude buscar tu cuenta. Intenta de nuevo."})
		return
	}

	if err := middleware.SetExplorerID(c, explorer.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No pude crear tu sesión. Intenta de nuevo."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":    "¡Hola de nuevo, " + explorer.FirstName + "!",
		"explorador": explorer,
	})
}

// Logout clears the session
// POST /api/logout
func (h *ExplorerHandler) Logout(c *gin.Context) {
	if err := middleware.ClearExplorer(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No pude cerrar tu sesión."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "¡Hasta la próxima aventura!"})
}

// Profile returns the logged-in explorer with their discovery count
// GET /api/perfil
func (h *ExplorerHandler) Profile(c *gin.Context) {
	id, _ := middleware.ExplorerID(c)

	var explorer models.Explorer
	if err := h.db.Preload("Discoveries").First(&explorer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Session points at a deleted row; force a fresh login
			_ = middleware.ClearExplorer(c)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Tu cuenta ya no existe. Regístrate de nuevo.",
				"code":  "AUTH_REQUIRED",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No pude cargar tu perfil."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"explorador":            explorer,
		"total_descubrimientos": len(explorer.Discoveries),
	})
}

type syncPointsRequest struct {
	TotalPoints *int `json:"puntos_totales" binding:"required"`
}

// SyncPoints overwrites the explorer's accumulated points with the client's
// tally. The client is trusted here; points are a game, not a currency.
// POST /api/sincronizar_puntos
func (h *ExplorerHandler) SyncPoints(c *gin.Context) {
	id, _ := middleware.ExplorerID(c)

	var req syncPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil || *req.TotalPoints < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Necesito un total de puntos válido."})
		return
	}

	result := h.db.Model(&models.Explorer{}).Where("id = ?", id).Update("total_points", *req.TotalPoints)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No pude guardar tus puntos."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":        "¡Puntos sincronizados!",
		"puntos_totales": *req.TotalPoints,
	})
}

type saveDiscoveryRequest struct {
	CommonName     string `json:"nombre" binding:"required"`
	ScientificName string `json:"cientifico"`
	Category       string `json:"tipo"`
	ImageURL       string `json:"imagen_url"`
	Points         int    `json:"puntos"`
}

// SaveDiscovery appends an identification to the explorer's ledger
// POST /api/guardar_descubrimiento
func (h *ExplorerHandler) SaveDiscovery(c *gin.Context) {
	id, _ := middleware.ExplorerID(c)

	var req saveDiscoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Necesito al menos el nombre de tu descubrimiento."})
		return
	}

	discovery := models.Discovery{
		ExplorerID:     id,
		CommonName:     req.CommonName,
		ScientificName: req.ScientificName,
		Category:       models.ParseCategory(req.Category),
		ImageURL:       req.ImageURL,
		Points:         req.Points,
	}

	if err := h.db.Create(&discovery).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No pude guardar tu descubrimiento."})
		return
	}

	if req.Points > 0 {
		h.db.Model(&models.Explorer{}).Where("id = ?", id).
			Update("total_points", gorm.Expr("total_points + ?", req.Points))
	}

	// Keep the ledger gauges fresh without waiting for the worker tick
	metrics.UpdateLedgerMetrics(h.db)

	c.JSON(http.StatusCreated, gin.H{
		"mensaje":        fmt.Sprintf("¡Descubrimiento guardado! +%d puntos", req.Points),
		"descubrimiento": discovery,
	})
}

// GetDiscoveries lists the explorer's ledger, newest first
// GET /api/descubrimientos
func (h *ExplorerHandler) GetDiscoveries(c *gin.Context) {
	id, _ := middleware.ExplorerID(c)

	var discoveries []models.Discovery
	if err := h.db.Where("explorer_id = ?", id).Order("created_at DESC").Find(&discoveries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No pude cargar tus descubrimientos."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"descubrimientos": discoveries,
		"total":           len(discoveries),
	})
}
