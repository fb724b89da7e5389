// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/leadforge/leadforge-backend/internal/config"
	"github.com/leadforge/leadforge-backend/internal/controller"
	"github.com/leadforge/leadforge-backend/internal/db"
	"github.com/leadforge/leadforge-backend/internal/handler"
	"github.com/leadforge/leadforge-backend/internal/leads"
	"github.com/leadforge/leadforge-backend/internal/queue"
	"github.com/leadforge/leadforge-backend/internal/repository"
	"github.com/leadforge/leadforge-backend/internal/service"
	"github.com/leadforge/leadforge-backend/internal/session"
	"github.com/leadforge/leadforge-backend/internal/trigger"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()

	// Init DB
	db.Init(cfg)
	q := queue.NewInMemoryQueue()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	chatRepo := &repository.ChatRepository{DB: db.DB}
	eventRepo := &repository.EventRepository{DB: db.DB}
	queue.StartOutreachSubscriber(q, eventRepo, queue.MockSender)

	limiter := rate.NewLimiter(rate.Limit(cfg.TriggerRatePerMin)/60.0, cfg.TriggerBurst)
	triggerClient := trigger.NewClient(
		cfg.WorkflowTriggerURL,
		cfg.TriggerTimeout,
		limiter,
		uint32(cfg.BreakerMaxFailures),
		eventRepo,
	)
	if cfg.WorkflowTriggerURL == "" {
		log.Println("⚠️ WORKFLOW_TRIGGER_URL not set, trigger calls will return not_configured")
	}

	sessionStore := &session.Store{
		Campaigns: campaignRepo,
		Messages:  chatRepo,
	}

	leadsClient := leads.NewClient(cfg.EnrichmentAPIURL, campaignRepo)

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		EventRepo:    eventRepo,
		Queue:        q,
		DB:           db.DB,
	}

	wizardSessions := service.NewWizardSessions(campaignRepo, triggerClient, eventRepo)
	chatSessions := service.NewChatSessions(sessionStore, triggerClient)

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
		Leads:           leadsClient,
		AMQPURL:         cfg.AMQPURL,
	}

	wizardHandler := &handler.WizardHandler{Sessions: wizardSessions}
	chatHandler := &handler.ChatHandler{Sessions: chatSessions, Wizards: wizardSessions}

	r := chi.NewRouter()

	// Wizard routes
	r.Post("/wizard", wizardHandler.StartWizardHandler)
	r.Put("/wizard/{token}/draft", wizardHandler.UpdateDraftHandler)
	r.Post("/wizard/{token}/next", wizardHandler.NextHandler)
	r.Post("/wizard/{token}/prev", wizardHandler.PrevHandler)
	r.Post("/wizard/{token}/retrigger", wizardHandler.RetryTriggerHandler)
	r.Post("/wizard/{token}/complete", wizardHandler.CompleteHandler)

	// Campaign routes
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaignDetails)
	r.Get("/campaigns/{id}/progress", campaignController.GetProgress)
	r.Get("/campaigns/{id}/leads", campaignController.GetLeads)
	r.Post("/campaigns/{id}/launch", campaignController.LaunchOutreach)

	// Chat routes
	r.Post("/campaigns/{id}/chat/open", chatHandler.OpenChatHandler)
	r.Post("/campaigns/{id}/chat/messages", chatHandler.PostMessageHandler)
	r.Post("/campaigns/{id}/chat/apply", chatHandler.ApplyToFormHandler)
	r.Get("/campaigns/{id}/chat/history", chatHandler.GetHistoryHandler)

	log.Println("🚀 Server running on", cfg.ServerAddr)
	log.Fatal(http.ListenAndServe(cfg.ServerAddr, r))
}
