package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/api/handlers"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/database"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/metrics"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/middleware"
	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if os.Getenv("GOOGLE_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY_FILE") == "" {
		log.Println("Warning: GOOGLE_API_KEY not set, identification requests will fail with API_KEY_ERROR")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./explorador.db"
	}
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.RunMigrations(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "explorador-dev-secret"
		log.Println("Warning: SESSION_SECRET not set, using development default")
	}

	// Services
	gemini := services.NewGeminiService()
	images := services.NewImageSearchService()
	localSounds := services.NewLocalSoundLibrary()
	sounds := services.NewSoundSearchService(
		services.NewXenoCantoService(),
		services.NewWikimediaAudioService(),
		localSounds,
	)
	identify := services.NewIdentifyService(gemini, images, sounds)
	worker := services.NewMetricsWorker(database.GetDB())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go worker.Start(ctx)

	// Handlers
	identifyHandler := handlers.NewIdentifyHandler(identify, sounds, gemini, worker)
	explorerHandler := handlers.NewExplorerHandler(database.GetDB())

	router := setupRouter(sessionSecret, localSounds.Dir(), identifyHandler, explorerHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Explorador Chileno backend listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func setupRouter(sessionSecret, soundsDir string, identifyHandler *handlers.IdentifyHandler, explorerHandler *handlers.ExplorerHandler) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = 16 << 20 // photos from phone cameras

	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	router.Use(cors.New(corsConfig))

	router.Use(middleware.Sessions(sessionSecret))
	router.Use(metrics.HTTPMetrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/static/sounds", soundsDir)

	api := router.Group("/api")
	{
		api.GET("/salud", identifyHandler.Health)
		api.POST("/analizar", identifyHandler.Analyze)
		api.POST("/buscar", identifyHandler.Search)
		api.POST("/sonido", identifyHandler.Sound)

		api.POST("/registro", explorerHandler.Register)
		api.POST("/login", explorerHandler.Login)
		api.GET("/logout", explorerHandler.Logout)

		auth := api.Group("")
		auth.Use(middleware.RequireExplorer())
		{
			auth.GET("/perfil", explorerHandler.Profile)
			auth.GET("/descubrimientos", explorerHandler.GetDiscoveries)
			auth.POST("/guardar_descubrimiento", explorerHandler.SaveDiscovery)
			auth.POST("/sincronizar_puntos", explorerHandler.SyncPoints)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AdminKeyAuth())
		{
			admin.GET("/estado", identifyHandler.Status)
			admin.POST("/metricas", identifyHandler.RefreshMetrics)
		}
	}

	return router
}
