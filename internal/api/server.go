package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stadiumfit/scorecard/internal/service"
)

type Server struct {
	mx              *chi.Mux
	identityService service.IdentityServiceI
	catalogService  service.CatalogServiceI
	ledgerService   service.LedgerServiceI
	reportService   ReportServiceI
	jwtService      JWTServiceI
}

type ServicesList struct {
	IdentityService service.IdentityServiceI
	CatalogService  service.CatalogServiceI
	LedgerService   service.LedgerServiceI
	ReportService   ReportServiceI
	JwtService      JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:              chi.NewMux(),
		identityService: servicesOptions.IdentityService,
		catalogService:  servicesOptions.CatalogService,
		ledgerService:   servicesOptions.LedgerService,
		reportService:   servicesOptions.ReportService,
		jwtService:      servicesOptions.JwtService,
	}
	s.mountRoutes()
	return s
}

func (s *Server) mountRoutes() {
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Use(s.RequestIDMiddleware)
		r.Use(s.SettingUpLoggerMiddleware)
		r.Post("/auth/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Use(s.LoggerExtensionMiddleware)
			r.Post("/auth/logout", s.Logout)
			r.Post("/auth/pin", s.ChangePin)

			r.Get("/users", s.ListUsers)
			r.Post("/users", s.AddUser)
			r.Put("/users/{id}", s.UpdateUser)
			r.Delete("/users/{id}", s.DeleteUser)
			r.Post("/users/{id}/pin-reset", s.ResetUserPin)

			r.Get("/catalog/categories", s.GetCategories)
			r.Get("/catalog/actions", s.GetActions)
			r.Get("/catalog/actions/grouped", s.GetActionsGrouped)

			r.Post("/admin/catalog/init", s.InitializeCatalog)
			r.Post("/admin/categories", s.CreateCategory)
			r.Put("/admin/categories/{id}", s.UpdateCategory)
			r.Delete("/admin/categories/{id}", s.DeleteCategory)
			r.Post("/admin/actions", s.CreateAction)
			r.Put("/admin/actions/{id}", s.UpdateAction)
			r.Delete("/admin/actions/{id}", s.DeleteAction)
			r.Get("/admin/targets", s.GetTargets)
			r.Post("/admin/targets", s.UpdateTargets)
			r.Get("/admin/targets/history", s.GetTargetHistory)

			r.Get("/kpi/selection", s.GetSelection)
			r.Put("/kpi/selection/{actionID}", s.SetQuantity)
			r.Delete("/kpi/selection", s.ResetSelection)
			r.Post("/kpi/submit", s.SubmitActions)
			r.Get("/kpi/summary", s.GetSummary)
			r.Get("/kpi/progress", s.GetProgress)
			r.Get("/kpi/report", s.GetReport)
			r.Post("/reports/email", s.EmailReport)
		})
	})
}

func (s *Server) Handler() http.Handler {
	return s.mx
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.mx)
}
