package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petshop/internal/api"
	"petshop/internal/api/handler"
	"petshop/internal/app/service"
	"petshop/internal/common/security"
	"petshop/internal/domain/repository"
	"petshop/internal/platform/cache"
	"petshop/internal/platform/config"
	"petshop/internal/platform/database"
	"petshop/internal/platform/metrics"
)

func main() {
	cfg := config.Load()
	log.Println("Configuration loaded.")

	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected.")

	rdb, err := cache.Connect(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("Redis connected.")

	if err := metrics.Register(nil); err != nil {
		log.Fatalf("Could not register metrics: %v", err)
	}

	tokens := security.NewTokens(cfg.JWTSecret, cfg.JWTExpiresIn)
	passwords := security.NewPasswords(cfg.BcryptCost)

	userRepo := repository.NewPgUserRepository(db)
	roleRepo := repository.NewPgRoleRepository(db)
	petRepo := repository.NewPgPetRepository(db)
	editRepo := repository.NewPgEditRepository(db)

	resolver := service.NewRoleResolver(roleRepo, rdb, cfg.RoleCacheTTL)
	authService := service.NewAuthService(userRepo, resolver, tokens, passwords)
	userService := service.NewUserService(userRepo, editRepo, authService, passwords)
	petService := service.NewPetService(petRepo, editRepo)

	router := api.NewRouter(
		tokens,
		handler.NewAuthHandler(authService, cfg.CookieMaxAge),
		handler.NewUserHandler(userService, cfg.CookieMaxAge),
		handler.NewPetHandler(petService),
	)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
