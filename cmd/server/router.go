package main

import (
	"net/http"

	"github.com/ethicbank/portal-api/internal/api"
	apiMiddleware "github.com/ethicbank/portal-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewHTTPMetrics(app.metrics).Handler)

	authHandler := api.NewAuthHandler(app.sessions, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	statusHandler := api.NewStatusHandler(app.registry)
	accountHandler := api.NewAccountHandler(app.userService, app.logger)
	walletHandler := api.NewWalletHandler(app.walletStore, app.logger)
	transactionHandler := api.NewTransactionHandler(app.ledgerService, app.logger)
	investmentHandler := api.NewInvestmentHandler(app.investmentStore, app.logger)
	savingsHandler := api.NewSavingsHandler(app.savingsService, app.logger)
	rewardHandler := api.NewRewardHandler(app.rewardService, app.notificationStore, app.logger)
	chatHandler := api.NewChatHandler(app.chatService, app.logger)
	integrationHandler := api.NewIntegrationHandler(app.registry, app.userService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Post("/auth/wallet", authHandler.WalletLogin)

		r.Get("/services", statusHandler.ServiceNames)
		r.Get("/services/status", statusHandler.ServicesStatus)

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/me", accountHandler.Me)
			r.Patch("/me", accountHandler.UpdateMe)
			r.Delete("/me", accountHandler.DeleteMe)

			r.Route("/wallets", func(r chi.Router) {
				r.Get("/", walletHandler.List)
				r.Post("/", walletHandler.Create)
				r.Get("/{id}", walletHandler.Get)
				r.Patch("/{id}", walletHandler.Update)
				r.Delete("/{id}", walletHandler.Delete)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", transactionHandler.List)
				r.Post("/", transactionHandler.Create)
				r.Get("/{id}", transactionHandler.Get)
				r.Post("/{id}/settle", transactionHandler.Settle)
			})

			r.Route("/investments", func(r chi.Router) {
				r.Get("/", investmentHandler.List)
				r.Post("/", investmentHandler.Create)
				r.Get("/{id}", investmentHandler.Get)
				r.Patch("/{id}", investmentHandler.Update)
				r.Delete("/{id}", investmentHandler.Delete)
			})

			r.Route("/savings", func(r chi.Router) {
				r.Get("/", savingsHandler.List)
				r.Post("/", savingsHandler.Create)
				r.Get("/{id}", savingsHandler.Get)
				r.Delete("/{id}", savingsHandler.Delete)
				r.Post("/{id}/deposit", savingsHandler.Deposit)
			})

			r.Get("/rewards", rewardHandler.ListRewards)
			r.Post("/rewards/{id}/redeem", rewardHandler.Redeem)
			r.Get("/notifications", rewardHandler.ListNotifications)
			r.Post("/notifications/{id}/read", rewardHandler.MarkNotificationRead)

			r.Post("/chat", chatHandler.Send)
			r.Get("/chat/history", chatHandler.History)

			// Vendor integrations, resolved from the registry per request
			r.Post("/swap/quote", integrationHandler.SwapQuote)
			r.Post("/swap/transaction", integrationHandler.SwapTransaction)
			r.Post("/cards", integrationHandler.IssueCard)
			r.Post("/payments/intents", integrationHandler.CreatePaymentIntent)
			r.Post("/ramp/quote", integrationHandler.RampQuote)
			r.Post("/ramp/url", integrationHandler.RampURL)
			r.Post("/kyc/applicant", integrationHandler.CreateKYCApplicant)
			r.Post("/kyc/token", integrationHandler.KYCToken)
			r.Get("/kyc/status/{applicantId}", integrationHandler.KYCStatus)
		})
	})

	r.Get("/health", statusHandler.Health)
	r.Handle("/metrics", promhttp.HandlerFor(app.metrics, promhttp.HandlerOpts{}))

	return r
}
