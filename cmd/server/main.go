package main

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"kiddierewards/internal/config"
	"kiddierewards/internal/database"
	"kiddierewards/internal/handlers"
	"kiddierewards/internal/repository"
	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	entryRepo := repository.NewPointEntryRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)

	// Initialize security primitives
	tokens := security.NewTokenIssuer(cfg.SessionSecret)
	csrf := security.NewCSRFGenerator(cfg.SessionSecret)
	limiter := security.NewRateLimiter(10, time.Minute)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := service.NewAuthService(userRepo, emailService, cfg.SessionDuration)
	familyService := service.NewFamilyService(familyRepo, memberRepo, invitationRepo)
	pinAuthService := service.NewPinAuthService(memberRepo)
	pointsService := service.NewPointsService(entryRepo, memberRepo)
	suggestionsService := service.NewSuggestionsService(entryRepo)
	dashboardService := service.NewDashboardService(entryRepo, memberRepo)
	invitationService := service.NewInvitationService(invitationRepo, familyRepo, emailService)

	oauthProviders := handlers.NewOAuthProviders(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.FacebookClientID, cfg.FacebookClientSecret, cfg.AppleClientID, cfg.AppleClientSecret)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, familyService, tokens, csrf, limiter)
	authHandler := handlers.NewAuthHandler(authService, templates, oauthProviders, cfg.OAuthRedirectBaseURL)
	securityHandler := handlers.NewSecurityHandler(pinAuthService, tokens, templates, csrf, cfg.PinGateDuration)
	familyHandler := handlers.NewFamilyHandler(familyService, templates, csrf)
	parentHandler := handlers.NewParentHandler(dashboardService, pointsService, familyService, templates, csrf)
	pointsHandler := handlers.NewPointsHandler(pointsService, suggestionsService, familyService, templates, csrf)
	membersHandler := handlers.NewMembersHandler(familyService, templates, csrf)
	invitationsHandler := handlers.NewInvitationsHandler(invitationService, templates, csrf)
	childHandler := handlers.NewChildHandler(pinAuthService, authService, familyService, pointsService, tokens, templates, cfg.ChildSessionDuration)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)
	mux.HandleFunc("GET /auth/forgot-password", authHandler.ShowForgotPassword)
	mux.HandleFunc("POST /auth/forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("GET /auth/reset-password", authHandler.ShowResetPassword)
	mux.HandleFunc("POST /auth/reset-password", middleware.RateLimit(authHandler.ResetPassword))

	// Onboarding: signed in but not yet in a family
	mux.HandleFunc("GET /family/onboarding", middleware.RequireUser(familyHandler.ShowOnboarding))
	mux.HandleFunc("GET /family/create", middleware.RequireUser(familyHandler.ShowCreateFamily))
	mux.HandleFunc("POST /family/create", middleware.RequireUser(middleware.CSRFProtect(familyHandler.CreateFamily)))
	mux.HandleFunc("GET /family/join", middleware.RequireUser(familyHandler.ShowJoinFamily))
	mux.HandleFunc("POST /family/join", middleware.RequireUser(middleware.CSRFProtect(familyHandler.JoinFamily)))

	// PIN re-verification gate
	mux.HandleFunc("GET /security/enter-pin", middleware.RequireParent(securityHandler.ShowEnterPin))
	mux.HandleFunc("POST /security/enter-pin", middleware.RequireParent(middleware.CSRFProtect(middleware.RateLimit(securityHandler.EnterPin))))

	// Protected parent routes
	mux.HandleFunc("GET /parent/dashboard", middleware.RequireParent(parentHandler.Dashboard))
	mux.HandleFunc("GET /parent/points/add", middleware.RequireParent(pointsHandler.ShowAddPoints))
	mux.HandleFunc("POST /parent/points/add", middleware.RequireParent(middleware.CSRFProtect(pointsHandler.AddPoints)))
	mux.HandleFunc("GET /parent/points/{id}/edit", middleware.RequireParent(pointsHandler.ShowEditPoint))
	mux.HandleFunc("POST /parent/points/{id}/edit", middleware.RequireParent(middleware.CSRFProtect(pointsHandler.EditPoint)))
	mux.HandleFunc("GET /parent/points/suggestions", middleware.RequireParent(pointsHandler.Suggestions))
	mux.HandleFunc("POST /parent/reset", middleware.RequireParent(middleware.RequirePinVerified(middleware.CSRFProtect(parentHandler.TriggerReset))))

	mux.HandleFunc("GET /parent/children", middleware.RequireParent(membersHandler.ListChildren))
	mux.HandleFunc("POST /parent/children/create", middleware.RequireParent(middleware.CSRFProtect(membersHandler.CreateChild)))
	mux.HandleFunc("POST /parent/children/{id}/update", middleware.RequireParent(middleware.CSRFProtect(membersHandler.UpdateChild)))
	mux.HandleFunc("POST /parent/children/{id}/toggle", middleware.RequireParent(middleware.CSRFProtect(membersHandler.ToggleChild)))
	mux.HandleFunc("POST /parent/children/{id}/regenerate-pin", middleware.RequireParent(middleware.RequirePinVerified(middleware.CSRFProtect(membersHandler.RegeneratePin))))

	mux.HandleFunc("GET /parent/invitations", middleware.RequireParent(invitationsHandler.ListInvitations))
	mux.HandleFunc("POST /parent/invitations/create", middleware.RequireParent(middleware.CSRFProtect(invitationsHandler.CreateInvitation)))
	mux.HandleFunc("POST /parent/invitations/{id}/revoke", middleware.RequireParent(middleware.CSRFProtect(invitationsHandler.RevokeInvitation)))

	mux.HandleFunc("GET /parent/settings", middleware.RequireParent(middleware.RequirePinVerified(parentHandler.ShowSettings)))
	mux.HandleFunc("POST /parent/settings", middleware.RequireParent(middleware.RequirePinVerified(middleware.CSRFProtect(parentHandler.UpdateSettings))))

	// Child routes
	mux.HandleFunc("GET /child/select", childHandler.ShowSelectChild)
	mux.HandleFunc("POST /child/login", middleware.RateLimit(childHandler.ChildLogin))
	mux.HandleFunc("GET /child/me", middleware.RequireChild(childHandler.Me))
	mux.HandleFunc("POST /child/logout", childHandler.ChildLogout)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background cleanup of expired sessions and reset tokens
	go cleanupLoop(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// cleanupLoop purges expired sessions and password reset tokens every hour
func cleanupLoop(authService *service.AuthService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Failed to clean up expired sessions: %v", err)
		}
		if err := authService.CleanupExpiredResetTokens(); err != nil {
			log.Printf("Failed to clean up expired reset tokens: %v", err)
		}
	}
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	patterns := []string{
		filepath.Join(templatesPath, "auth/*.tmpl"),
		filepath.Join(templatesPath, "security/*.tmpl"),
		filepath.Join(templatesPath, "family/*.tmpl"),
		filepath.Join(templatesPath, "parent/*.tmpl"),
		filepath.Join(templatesPath, "child/*.tmpl"),
		filepath.Join(templatesPath, "components/*.tmpl"),
	}

	var files []string
	files = append(files, filepath.Join(templatesPath, "base.tmpl"))

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
	}

	return template.New("").Funcs(funcMap).ParseFiles(files...)
}
