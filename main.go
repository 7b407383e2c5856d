package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"google.golang.org/genai"

	"github.com/jledbetter-dev/stagepilot/config"
	"github.com/jledbetter-dev/stagepilot/database"
	"github.com/jledbetter-dev/stagepilot/handlers"
	"github.com/jledbetter-dev/stagepilot/llm"
	"github.com/jledbetter-dev/stagepilot/media"
	"github.com/jledbetter-dev/stagepilot/pipeline"
	"github.com/jledbetter-dev/stagepilot/queue"
	"github.com/jledbetter-dev/stagepilot/repository"
	"github.com/jledbetter-dev/stagepilot/storage"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	db, err := database.InitGormDB(cfg.DatabaseURL, cfg.DBConnectAttempts, cfg.DBConnectDelay)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}
	if err := database.SeedDefaultUser(db, cfg.DefaultUserID, cfg.DefaultUserEmail); err != nil {
		log.Fatalf("FATAL: Failed to seed default user: %v", err)
	}

	propertyRepo := repository.NewPropertyRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	imageRepo := repository.NewImageRepository(db)
	jobRepo := repository.NewJobRepository(db)

	var store storage.Store
	var storagePrefixes []string
	var localStore *storage.LocalStore
	switch cfg.StorageDriver {
	case "local":
		localStore, err = storage.NewLocalStore(cfg.StorageLocalPath, cfg.StoragePublicEndpoint)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize local storage: %v", err)
		}
		store = localStore
		storagePrefixes = []string{localStore.PublicPrefix()}
	default:
		minioStore, err := storage.NewMinIOStore(cfg.StorageEndpoint, cfg.StoragePublicEndpoint,
			cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StorageUseSSL)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize object storage: %v", err)
		}
		store = minioStore
		storagePrefixes = []string{minioStore.InternalPrefix(), minioStore.PublicPrefix()}
	}
	buckets := []string{cfg.BucketUploads, cfg.BucketResults, cfg.BucketThumbnails}
	if err := store.EnsureBuckets(buckets); err != nil {
		log.Fatalf("FATAL: Failed to provision storage buckets: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("FATAL: Invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("FATAL: Failed to connect to redis: %v", err)
	}
	cancel()

	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create model client: %v", err)
	}

	preprocessor := media.NewPreprocessor(store, storagePrefixes, cfg.MaxEncodeDimension)
	reasoner := llm.NewGeminiReasoner(genaiClient, cfg.AnalysisModel, preprocessor)

	var synth llm.Synthesizer
	switch cfg.SynthesizerBackend {
	case "chat":
		synth = llm.NewChatSynthesizer(genaiClient, cfg.ChatImageModel, preprocessor)
	default:
		synth = llm.NewImagenSynthesizer(genaiClient, cfg.ImagenModel, preprocessor)
	}
	log.Printf("Using %s synthesizer backend", cfg.SynthesizerBackend)

	stagingPipeline := pipeline.New(jobRepo, roomRepo, imageRepo, reasoner, synth, store, cfg.BucketResults)
	dispatcher := queue.NewDispatcher(rdb, cfg.ResultRetention)
	workerPool := queue.NewWorkerPool(rdb, dispatcher, stagingPipeline, jobRepo,
		cfg.NumStagingWorkers, cfg.JobTimeout, cfg.StaleJobAge, cfg.ReaperInterval)
	workerPool.Start()
	defer workerPool.Stop()

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	imageHandler := &handlers.ImageHandler{
		Images:        imageRepo,
		Rooms:         roomRepo,
		Store:         store,
		UploadsBucket: cfg.BucketUploads,
		DefaultUserID: cfg.DefaultUserID,
	}
	jobHandler := &handlers.JobHandler{
		Jobs:          jobRepo,
		Images:        imageRepo,
		Dispatcher:    dispatcher,
		DefaultUserID: cfg.DefaultUserID,
	}
	propertyHandler := &handlers.PropertyHandler{
		Properties:    propertyRepo,
		Rooms:         roomRepo,
		DefaultUserID: cfg.DefaultUserID,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/images", func(r chi.Router) {
			r.Post("/upload", imageHandler.Upload)
			r.Get("/{imageID}", imageHandler.Get)
			r.Delete("/{imageID}", imageHandler.Delete)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", jobHandler.Create)
			r.Get("/", jobHandler.List)
			r.Get("/{jobID}", jobHandler.Get)
			r.Delete("/{jobID}", jobHandler.Delete)
		})

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", propertyHandler.List)
			r.Post("/", propertyHandler.Create)
			r.Get("/{propertyID}", propertyHandler.Get)
			r.Post("/{propertyID}/rooms", propertyHandler.CreateRoom)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/{roomID}", propertyHandler.GetRoom)
			r.Delete("/{roomID}", propertyHandler.DeleteRoom)
		})
	})

	// the local driver serves blobs straight from disk
	if localStore != nil {
		fileServer := http.StripPrefix("/blob/", http.FileServer(http.Dir(localStore.BasePath())))
		r.Get("/blob/*", fileServer.ServeHTTP)
		log.Printf("Registered blob server at /blob/* from %s", localStore.BasePath())
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Welcome to the StagePilot API"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
