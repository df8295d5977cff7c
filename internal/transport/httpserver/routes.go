package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"parish-app-go/internal/config"
	"parish-app-go/internal/metrics"
	"parish-app-go/internal/transport/httpserver/handler"
	"parish-app-go/internal/transport/httpserver/middleware"
	"parish-app-go/pkg/logger"
)

// NewRouter mounts every route. m may be nil when metrics are disabled.
func NewRouter(cfg config.Config, handlers *handler.Handlers, m *metrics.Metrics, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.NewCORS(cfg.AllowedOrigins))
	if m != nil {
		r.Use(middleware.NewMetrics(m))
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/hello", func(r chi.Router) {
		r.Get("/", handlers.Hello)
		r.Get("/greet", handlers.Greet)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)
		r.Get("/hello", handlers.Hello)
		r.Get("/hello/greet", handlers.Greet)

		r.Route("/faithful", func(r chi.Router) {
			r.Get("/", handlers.ListFaithful)
			r.Post("/", handlers.CreateFaithful)

			r.Get("/search", handlers.SearchSacramentInfo)
			r.Get("/search/name", handlers.SearchFaithfulByName)
			r.Get("/search/parish", handlers.SearchFaithfulByParish)
			r.Get("/search/subparish", handlers.SearchFaithfulBySubparish)
			r.Get("/search/bec", handlers.SearchFaithfulByBEC)
			r.Get("/search/baptism", handlers.FaithfulByBaptismID)
			r.Get("/search/confirmation", handlers.FaithfulByConfirmationID)
			r.Get("/search/matrimony", handlers.FaithfulByMatrimonyID)
			r.Get("/search/spouse", handlers.FaithfulBySpouseBaptismID)
			r.Get("/search/born", handlers.SearchFaithfulBornBetween)
			r.Get("/search/status", handlers.SearchFaithfulByStatus)
			r.Get("/sacraments/completed", handlers.FaithfulWithAllSacraments)

			r.Get("/stats/count", handlers.CountFaithful)
			r.Get("/stats/by-parish", handlers.FaithfulByParishStats)
			r.Get("/stats/by-subparish", handlers.FaithfulBySubparishStats)
			r.Get("/stats/by-bec", handlers.FaithfulByBECStats)

			r.Get("/{id}", handlers.GetFaithful)
			r.Put("/{id}", handlers.UpdateFaithful)
			r.Delete("/{id}", handlers.DeleteFaithful)
			r.Get("/{id}/sacrament-info", handlers.GetSacramentInfo)
		})

		r.Route("/donations", func(r chi.Router) {
			r.Get("/", handlers.ListDonations)
			r.Post("/", handlers.CreateDonation)

			r.Get("/faithful/{faithfulId}", handlers.ListDonationsByFaithful)
			r.Delete("/faithful/{faithfulId}", handlers.DeleteDonationsByFaithful)
			r.Get("/year/{year}", handlers.ListDonationsByYear)
			r.Get("/type/{contributionType}", handlers.ListDonationsByType)

			r.Get("/statistics/faithful/{faithfulId}/total", handlers.DonationTotalByFaithful)
			r.Get("/statistics/faithful/{faithfulId}/count", handlers.DonationCountByFaithful)
			r.Get("/statistics/year/{year}/total", handlers.DonationTotalByYear)
			r.Get("/statistics/year/{year}/by-type", handlers.DonationTotalsByType)
			r.Get("/statistics/year/{year}/monthly", handlers.DonationMonthlyTotals)
			r.Get("/statistics/year/{year}/top-donors", handlers.TopDonors)
			r.Get("/statistics/total", handlers.DonationTotal)
			r.Get("/statistics/summary", handlers.DonationSummary)
			r.Get("/statistics/available-years", handlers.DonationYears)
			r.Get("/statistics/by-subparish", handlers.DonationTotalsBySubparish)
			r.Get("/statistics/by-bec", handlers.DonationTotalsByBEC)

			r.Get("/{id}", handlers.GetDonation)
			r.Put("/{id}", handlers.UpdateDonation)
			r.Delete("/{id}", handlers.DeleteDonation)
		})

		r.Route("/priests", func(r chi.Router) {
			r.Get("/", handlers.ListPriests)
			r.Post("/", handlers.CreatePriest)
			r.Get("/{id}", handlers.GetPriest)
			r.Put("/{id}", handlers.UpdatePriest)
			r.Delete("/{id}", handlers.DeletePriest)
		})

		r.Route("/masses", func(r chi.Router) {
			r.Get("/", handlers.ListMasses)
			r.Post("/", handlers.CreateMass)
			r.Get("/priest/{priestId}", handlers.ListMassesByPriest)
			r.Get("/{id}", handlers.GetMass)
			r.Put("/{id}", handlers.UpdateMass)
			r.Delete("/{id}", handlers.DeleteMass)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", handlers.ListEvents)
			r.Post("/", handlers.CreateEvent)
			r.Get("/{id}", handlers.GetEvent)
			r.Put("/{id}", handlers.UpdateEvent)
			r.Delete("/{id}", handlers.DeleteEvent)
		})

		r.Route("/intentions", func(r chi.Router) {
			r.Get("/", handlers.ListIntentions)
			r.Post("/", handlers.CreateIntention)
			r.Get("/{id}", handlers.GetIntention)
			r.Put("/{id}", handlers.UpdateIntention)
			r.Patch("/{id}/payment", handlers.UpdateIntentionPayment)
			r.Delete("/{id}", handlers.DeleteIntention)
		})

		r.Route("/statistics", func(r chi.Router) {
			r.Get("/masses", handlers.MassStatistics)
			r.Get("/masses/by-priest/{priestId}", handlers.MassCountByPriest)
			r.Get("/masses/yearly", handlers.YearlyMassCounts)
			r.Get("/masses/types", handlers.MassTypeDistribution)

			r.Get("/priests", handlers.PriestStatistics)
			r.Get("/priests/top", handlers.TopCelebratingPriests)
			r.Get("/priests/celebrating", handlers.AllCelebratingPriests)
			r.Get("/priests/in-period", handlers.CelebratingPriestsInPeriod)
			r.Get("/priests/workload", handlers.PriestWorkload)
			r.Get("/priests/types", handlers.PriestTypeBreakdown)
			r.Get("/priests/ordination-years", handlers.OrdinationYears)

			r.Get("/intentions", handlers.IntentionStatistics)
			r.Get("/intentions/unpaid", handlers.UnpaidIntentionDetails)
			r.Get("/intentions/types", handlers.IntentionTypeCounts)

			r.Get("/dashboard", handlers.Dashboard)
			r.Get("/dashboard/month", handlers.CurrentMonthDashboard)
			r.Get("/dashboard/week", handlers.CurrentWeekDashboard)

			r.Get("/year/{year}", handlers.YearStatistics)
			r.Get("/compare", handlers.ComparePeriods)
		})
	})

	return r
}
