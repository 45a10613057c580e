package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/masar-hr/payroll-engine-go/internal/handler/http/middleware"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/jwt"
)

func NewRouter(
	JWTService jwt.Service,
	payrollHandler PayrollRunHandler,
	policyHandler PolicyHandler,
	exportHandler ExportHandler,
	advanceHandler AdvanceHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication and a company-scoped token
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireCompany)

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/runs", func(r chi.Router) {
					r.Post("/", payrollHandler.RunPayroll)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetRun)
						r.Get("/validation", payrollHandler.ValidateRun)
						r.Post("/lock", payrollHandler.LockRun)
						r.Post("/adjustments", payrollHandler.CreateAdjustmentRun)
						r.Post("/mark-paid", payrollHandler.MarkRunPaid)

						r.Route("/exports", func(r chi.Router) {
							r.Get("/ledger", exportHandler.LedgerProjection)
							r.Get("/bank-transfers", exportHandler.BankTransfers)
							r.Get("/gosi", exportHandler.GosiReport)
						})
					})
				})

				r.Get("/payslips/{id}", payrollHandler.GetPayslip)
			})

			r.Route("/policies", func(r chi.Router) {
				r.Post("/events", policyHandler.TriggerEvent)
				r.Patch("/{id}/status", policyHandler.ChangeStatus)
			})

			r.Route("/advances", func(r chi.Router) {
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/balance", advanceHandler.GetBalance)
					r.Post("/payments", advanceHandler.RecordPayment)
					r.Post("/cancel", advanceHandler.Cancel)
				})
			})
		})
	})
	return r
}
