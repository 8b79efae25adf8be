package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mlukic/flare/internal/config"
	"github.com/mlukic/flare/internal/database"
	postgresrepo "github.com/mlukic/flare/internal/repository/postgres"
	"github.com/mlukic/flare/internal/service"
	"github.com/mlukic/flare/internal/transport/http/handlers"
	"github.com/mlukic/flare/internal/transport/http/middleware"
	"github.com/mlukic/flare/internal/transport/sse"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	friendRepo := postgresrepo.NewFriendRepo(pool)
	noteRepo := postgresrepo.NewNoteRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	friendService := service.NewFriendService(friendRepo, userRepo)
	noteService := service.NewNoteService(noteRepo, userRepo, friendRepo)

	// Live push
	registry := sse.NewRegistry()
	noteService.SetNotifier(sse.NewRegistryNotifier(registry))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	friendHandler := handlers.NewFriendHandler(friendService)
	noteHandler := handlers.NewNoteHandler(noteService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)

	// Protected - Auth
	mux.Handle("GET /auth/me", auth(http.HandlerFunc(authHandler.Me)))

	// Protected - Friends
	mux.Handle("POST /friends/request", auth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("POST /friends/respond", auth(http.HandlerFunc(friendHandler.Respond)))
	mux.Handle("GET /friends", auth(http.HandlerFunc(friendHandler.ListFriends)))
	mux.Handle("GET /friends/requests", auth(http.HandlerFunc(friendHandler.ListRequests)))

	// Protected - Notes
	mux.Handle("POST /notes", auth(http.HandlerFunc(noteHandler.Send)))
	mux.Handle("GET /notes/inbox", auth(http.HandlerFunc(noteHandler.Inbox)))
	mux.Handle("GET /notes/outbox", auth(http.HandlerFunc(noteHandler.Outbox)))
	mux.Handle("POST /notes/{id}/read", auth(http.HandlerFunc(noteHandler.MarkRead)))
	mux.Handle("DELETE /notes/{id}", auth(http.HandlerFunc(noteHandler.Delete)))

	// Stream endpoint does its own auth (token via query param)
	mux.HandleFunc("GET /notes/stream", sse.ServeStream(registry, cfg.JWTSecret))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    addr,
		Handler: middleware.CORS(mux),
		// Request contexts derive from the signal context so open
		// streams observe shutdown instead of holding it to the deadline.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	sweeper := service.NewSweeper(noteRepo, cfg.SweepInterval)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sweeper.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
