package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/remitline/remitline-backend/internal/usecase/feeadmin"
	"github.com/remitline/remitline-backend/internal/usecase/rates"
	"github.com/remitline/remitline-backend/internal/usecase/release"
	"github.com/remitline/remitline-backend/internal/usecase/settlement"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	settlementService *settlement.SettlementService,
	releaseService *release.ReleaseService,
	feeAdminService *feeadmin.FeeAdminService,
	rateService *rates.RateService,
	fundStore domain.FundStore,
	jwtSecret []byte,
	log *slog.Logger,
) http.Handler {
	h := &Handlers{
		settlement: settlementService,
		release:    releaseService,
		feeAdmin:   feeAdminService,
		rates:      rateService,
		funds:      fundStore,
		log:        log,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RequireAuth(jwtSecret))

		// Transfers
		r.Post("/transfers", h.ExecuteTransfer)
		r.Post("/transfers/simple", h.CreateSimpleTransfer)
		r.Get("/transfers/{id}", h.GetTransfer)
		r.Post("/transfers/{id}/release", h.ReleaseTransfer)

		// Funds
		r.Get("/funds/{id}", h.GetFund)

		// Commission rates
		r.Get("/branches/{branchID}/rates", h.ListCommissionRates)
		r.Put("/branches/{branchID}/rates", h.UpdateCommissionRate)

		// Exchange rates
		r.Get("/rates/{code}", h.QuoteRate)
		r.Post("/rates/{code}/refresh", h.RefreshRate)
	})

	return r
}
