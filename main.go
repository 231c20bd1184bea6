// ABOUTME: Entry point for the mindcoach web service
// ABOUTME: Loads config, opens the session store, and starts the HTTP server
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/harperreed/mindcoach/auth"
	"github.com/harperreed/mindcoach/coach"
	"github.com/harperreed/mindcoach/config"
	"github.com/harperreed/mindcoach/db"
	"github.com/harperreed/mindcoach/gcal"
	"github.com/harperreed/mindcoach/handlers"
	"github.com/harperreed/mindcoach/web"
)

const version = "0.1.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mindcoach version %s\n", version)
		os.Exit(0)
	}

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.HasGoogleCredentials() {
		log.Printf("[main] GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set; sign-in disabled")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Printf("[main] OPENAI_API_KEY not set; chat disabled")
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open session database: %v", err)
	}
	defer database.Close()
	log.Printf("[main] session database: %s", cfg.DBPath)

	// Expired sessions are swept on a schedule; they also stop resolving
	// immediately on expiry regardless.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SweepCron, func() {
		if n, err := db.PurgeExpiredSessions(database); err != nil {
			log.Printf("[main] session sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("[main] swept %d expired sessions", n)
		}
	}); err != nil {
		log.Fatalf("Invalid sweep_cron %q: %v", cfg.SweepCron, err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	refresher := &auth.Refresher{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
	}
	gateway := &gcal.Gateway{}

	theCoach := &coach.Coach{
		Tokens:     refresher,
		Calendar:   gateway,
		LLM:        coach.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, ""),
		MaxResults: int64(cfg.MaxResults),
	}

	oauthConfig := auth.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)
	sessionTTL := time.Duration(cfg.SessionDays) * 24 * time.Hour
	chatTimeout := time.Duration(cfg.ChatTimeoutSeconds) * time.Second

	server := web.NewServer(
		handlers.NewChatHandlers(database, theCoach, cfg.OpenAIAPIKey != "", chatTimeout),
		handlers.NewCalendarHandlers(database, gateway, refresher),
		handlers.NewAuthHandlers(database, oauthConfig, sessionTTL),
	)

	if err := server.Start(cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
