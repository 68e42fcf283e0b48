package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jsonblog/backend/internal/auth"
	"github.com/jsonblog/backend/internal/config"
	"github.com/jsonblog/backend/internal/handlers"
	appMiddleware "github.com/jsonblog/backend/internal/middleware"
	"github.com/jsonblog/backend/internal/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	userService, err := services.NewMongoUserService(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("user store: %v", err)
	}
	articleService, err := services.NewMongoArticleService(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("article store: %v", err)
	}
	tagService, err := services.NewMongoTagService(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("tag store: %v", err)
	}
	directoryService, err := services.NewMongoDirectoryService(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("directory store: %v", err)
	}

	cipher := auth.NewCipher(cfg.CipherSecret)

	userHandler := handlers.NewUserHandler(
		userService, cipher,
		cfg.JWTSecret, cfg.CookieTTL,
		cfg.DefaultPassword, cfg.TemporaryTTL, cfg.BcryptCost,
	)
	articleHandler := handlers.NewArticleHandler(articleService, userService, tagService, directoryService)
	tagHandler := handlers.NewTagHandler(tagService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appMiddleware.Authenticate(userService, cfg.JWTSecret, appMiddleware.DefaultWhitelist()))

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/logout", userHandler.Logout)
		r.Get("/my", userHandler.My)
		r.Put("/my", userHandler.UpdateMy)
		r.Put("/password", userHandler.UpdatePassword)
		r.Post("/create", userHandler.Create)
		r.Post("/review", userHandler.Review)
	})

	r.Route("/article", func(r chi.Router) {
		r.Post("/", articleHandler.Create)
		r.Delete("/", articleHandler.Delete)
		r.Put("/", articleHandler.Update)
		r.Get("/list", articleHandler.List)
		r.Put("/review", articleHandler.Review)
	})

	r.Route("/tag", func(r chi.Router) {
		r.Post("/", tagHandler.Create)
		r.Delete("/", tagHandler.Delete)
		r.Put("/", tagHandler.Update)
		r.Get("/list", tagHandler.List)
		r.Post("/audit", tagHandler.Audit)
	})

	r.Route("/directory", func(r chi.Router) {
		r.Post("/", directoryHandler.Create)
		r.Delete("/", directoryHandler.Delete)
		r.Put("/", directoryHandler.Update)
		r.Get("/list", directoryHandler.List)
	})

	log.Printf("API server starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
