package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storefront/catalog-api/internal/auth"
	"github.com/storefront/catalog-api/internal/config"
	"github.com/storefront/catalog-api/internal/database"
	"github.com/storefront/catalog-api/internal/handlers"
	"github.com/storefront/catalog-api/internal/routes"
	"github.com/storefront/catalog-api/internal/store"
)

func main() {
	createStaff := flag.Bool("create-staff", false, "create a staff account and exit")
	email := flag.String("email", "", "email for -create-staff")
	password := flag.String("password", "", "password for -create-staff")
	superuser := flag.Bool("superuser", false, "with -create-staff, also grant superuser")
	flag.Parse()

	// 0. --- Load configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// 1. --- Database Connection + schema ---
	db, err := database.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to primary database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 2. --- Services ---
	st := store.New(db)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, st)
	accounts := auth.NewAccounts(st, tokens, cfg.PasswordMinLength)

	if *createStaff {
		user, err := accounts.Register(context.Background(), auth.Registration{
			Email:       *email,
			Password:    *password,
			IsStaff:     true,
			IsSuperuser: *superuser,
		})
		if err != nil {
			log.Fatalf("Failed to create staff user: %v", err)
		}
		log.Printf("Created staff user %s (id %d, superuser=%t)", user.Email, user.ID, user.IsSuperuser)
		return
	}

	app := &handlers.Handlers{
		Store:    st,
		Accounts: accounts,
		Tokens:   tokens,
		MediaDir: cfg.MediaDir,
		BaseURL:  cfg.BaseURL,
	}

	// 3. --- Background Worker ---
	// Revoked tokens are only needed until they would have expired anyway.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			n, err := st.PurgeExpiredTokens(context.Background(), time.Now().UTC())
			if err != nil {
				log.Printf("WARNING: purging revoked tokens failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Purged %d expired revoked tokens", n)
			}
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app, cfg)

	// --- Start Server ---
	log.Printf("Starting catalog API server on %s...", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
