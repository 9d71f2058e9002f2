// File: transitops/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transitops/config"
	"transitops/cron"
	"transitops/database"
	auditRepoPkg "transitops/database/repository/audit"
	bookingRepoPkg "transitops/database/repository/booking"
	fleetRepoPkg "transitops/database/repository/fleet"
	networkRepoPkg "transitops/database/repository/network"
	operatorRepoPkg "transitops/database/repository/operator"
	sequencesRepoPkg "transitops/database/repository/sequences"
	tripRepoPkg "transitops/database/repository/trip"
	"transitops/handlers"
	"transitops/routes"
	"transitops/services/command"
	"transitops/services/intelligence"
	"transitops/services/operator"
	"transitops/services/vision"
	"transitops/services/wizard"
	"transitops/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitSessionCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	sequences := sequencesRepoPkg.NewMongoSequences()
	tripRepo := tripRepoPkg.NewMongoTripRepo(sequences)
	networkRepo := networkRepoPkg.NewMongoNetworkRepo(sequences)
	fleetRepo := fleetRepoPkg.NewMongoFleetRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	operatorRepo := operatorRepoPkg.NewMongoOperatorRepo()
	auditRepo := auditRepoPkg.NewMongoAuditRepo()

	// interpreter provider.
	var provider intelligence.Provider
	if config.AppConfig.InterpreterProvider == "local" {
		provider = intelligence.NewLocalProvider()
	} else {
		provider = intelligence.NewGeminiProvider(config.AppConfig.GeminiAPIKey)
	}
	adapter := intelligence.NewDefaultIntentAdapter(provider,
		time.Duration(config.AppConfig.InterpreterTimeout)*time.Second)

	// services.
	operatorService := operator.NewDefaultOperatorService(operatorRepo)
	ocrService := vision.NewGoogleOCRService()

	executor := &command.DefaultActionExecutor{
		TripRepo:    tripRepo,
		NetworkRepo: networkRepo,
		FleetRepo:   fleetRepo,
		BookingRepo: bookingRepo,
	}
	sessions := command.NewSessionManager(&command.RedisSessionStore{
		Client: utils.GetSessionCacheClient(),
	})
	wizardService := wizard.NewDefaultWizardService(
		&wizard.RedisWizardStore{Client: utils.GetSessionCacheClient()},
		networkRepo, fleetRepo, executor)

	commandService := &command.DefaultCommandService{
		Adapter:  adapter,
		Resolver: &command.DefaultEntityResolver{TripRepo: tripRepo, NetworkRepo: networkRepo},
		Analyzer: &command.DefaultConsequenceAnalyzer{TripRepo: tripRepo, BookingRepo: bookingRepo},
		Sessions: sessions,
		Executor: executor,
		Wizard:   wizardService,
		Enqueue:  cron.NewExpiryEnqueuer(),
	}

	cron.InitSessionExpiryWorker(sessions)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		RegisterOperatorHandler: handlers.RegisterOperatorHandler(operatorService),
		LoginOperatorHandler:    handlers.LoginOperatorHandler(operatorService),

		SubmitCommandHandler:  handlers.SubmitCommandHandler(commandService),
		ImageCommandHandler:   handlers.ImageCommandHandler(commandService, ocrService),
		ConfirmCommandHandler: handlers.ConfirmCommandHandler(commandService),
		PendingCommandHandler: handlers.PendingCommandHandler(commandService),

		AuditTrailHandler: handlers.AuditTrailHandler(auditRepo),
	}

	routes.RegisterRoutes(router, handlerBundle, operatorRepo)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
