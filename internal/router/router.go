package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jeannegris/equora/internal/handler"
	"github.com/jeannegris/equora/internal/middleware"
	"github.com/jeannegris/equora/pkg/jwtutil"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UsersHandler
	TwoFA    *handler.TwoFAHandler
	Staff    *handler.StaffHandler
	Schedule *handler.ScheduleHandler
	Profiles *handler.ProfileHandler
	Catalog  *handler.CatalogHandler
	Payment  *handler.PaymentHandler
	BKAuth   *handler.StorefrontAuthHandler
	AguaAuth *handler.StorefrontAuthHandler
	Stats    *handler.StatsHandler
	Status   *handler.StatusHandler
}

// Guards bundles the auth middleware per tenant.
type Guards struct {
	EquoraSession func(http.Handler) http.Handler
	EquoraAdmin   func(http.Handler) http.Handler
	StaffSession  func(http.Handler) http.Handler
	BKBearer      func(http.Handler) http.Handler
	AguaBearer    func(http.Handler) http.Handler
}

// NewGuards wires the guards from the auth components.
func NewGuards(
	equora middleware.SessionVerifier,
	admin middleware.AdminChecker,
	staff middleware.SessionVerifier,
	bkSigner, aguaSigner *jwtutil.Signer,
) Guards {
	return Guards{
		EquoraSession: middleware.SessionGuard("equora_session", equora, nil),
		EquoraAdmin:   middleware.SessionGuard("equora_session", equora, admin),
		StaffSession:  middleware.SessionGuard("gpac_session", staff, nil),
		BKBearer:      middleware.BearerGuard(bkSigner),
		AguaBearer:    middleware.BearerGuard(aguaSigner),
	}
}

func SetupRoutes(r chi.Router, h Handlers, g Guards, uploadDir string) chi.Router {
	// ---- Global Middleware ----
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", h.Status.HandleRoot)
	r.Post("/status", h.Status.HandleCreate)
	r.Get("/status", h.Status.HandleList)

	uploadsFS := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
	r.Get("/uploads/*", uploadsFS.ServeHTTP)

	// ============================================================
	// equora admin panel
	// ============================================================
	r.Route("/admin", func(ar chi.Router) {
		ar.Post("/login/password", h.Auth.HandleLoginPassword)
		ar.Post("/login/2fa", h.Auth.HandleLogin2FA)
		ar.Get("/login/me", h.Auth.HandleMe)
		ar.Post("/logout", h.Auth.HandleLogout)

		// Account creation stays open; mutations need an admin session.
		ar.Post("/users", h.Users.HandleCreate)
		ar.Get("/users", h.Users.HandleList)
		ar.Get("/users/{id}", h.Users.HandleGet)
		ar.With(g.EquoraAdmin).Put("/users/{id}", h.Users.HandleUpdate)
		ar.With(g.EquoraAdmin).Delete("/users/{id}", h.Users.HandleDelete)

		ar.With(g.EquoraSession).Post("/clients", h.Stats.HandleCreateClient)
		ar.With(g.EquoraSession).Get("/clients", h.Stats.HandleListClients)

		ar.Post("/stats/access", h.Stats.HandleRecordAccess)
		ar.Get("/stats/access", h.Stats.HandleListAccess)
		ar.With(g.EquoraAdmin).Delete("/stats/access", h.Stats.HandleClearAccess)
	})

	// ============================================================
	// gpac staff
	// ============================================================
	r.Route("/2fa", func(tr chi.Router) {
		tr.Use(g.StaffSession)
		tr.Get("/status", h.TwoFA.HandleStatus)
		tr.Post("/setup", h.TwoFA.HandleSetup)
		tr.Post("/verify", h.TwoFA.HandleVerify)
		tr.Post("/disable", h.TwoFA.HandleDisable)
	})

	r.Route("/colaboradores", func(cr chi.Router) {
		cr.Post("/login", h.Staff.HandleLogin)
		cr.Post("/login/2fa", h.Staff.HandleVerify2FA)
		cr.Post("/logout", h.Staff.HandleLogout)
		cr.Post("/reset-password", h.Staff.HandleResetPassword)

		cr.Group(func(pr chi.Router) {
			pr.Use(g.StaffSession)
			pr.Post("/", h.Staff.HandleCreate)
			pr.Get("/", h.Staff.HandleList)
			pr.Get("/{id}", h.Staff.HandleGet)
			pr.Put("/{id}", h.Staff.HandleUpdate)
			pr.Delete("/{id}", h.Staff.HandleDelete)
		})
	})

	r.Route("/perfis", func(pr chi.Router) {
		pr.Use(g.StaffSession)
		pr.Post("/", h.Profiles.HandleCreate)
		pr.Get("/", h.Profiles.HandleList)
		pr.Put("/{id}", h.Profiles.HandleUpdate)
		pr.Delete("/{id}", h.Profiles.HandleDelete)
	})

	r.Route("/pacientes", func(pr chi.Router) {
		pr.Use(g.StaffSession)
		pr.Post("/", h.Schedule.HandleCreatePatient)
		pr.Get("/", h.Schedule.HandleListPatients)
		pr.Get("/{id}", h.Schedule.HandleGetPatient)
		pr.Put("/{id}", h.Schedule.HandleUpdatePatient)
		pr.Delete("/{id}", h.Schedule.HandleDeletePatient)
	})

	r.Route("/agendamentos", func(ar chi.Router) {
		ar.Use(g.StaffSession)
		ar.Post("/", h.Schedule.HandleCreateAppointment)
		ar.Get("/", h.Schedule.HandleListAppointments)
		ar.Put("/{id}", h.Schedule.HandleUpdateAppointment)
		ar.Delete("/{id}", h.Schedule.HandleDeleteAppointment)
	})

	// ============================================================
	// bkautocenter storefront
	// ============================================================
	r.Route("/bkautocenter", func(br chi.Router) {
		br.Post("/auth/register", h.BKAuth.HandleRegister)
		br.Post("/auth/login", h.BKAuth.HandleLogin)
		br.Get("/auth/me", h.BKAuth.HandleMe)

		br.Get("/tires", h.Catalog.HandleListTires)
		br.Get("/services", h.Catalog.HandleListServices)
		br.Group(func(mr chi.Router) {
			mr.Use(g.BKBearer)
			mr.Post("/tires", h.Catalog.HandleCreateTire)
			mr.Put("/tires/{id}", h.Catalog.HandleUpdateTire)
			mr.Delete("/tires/{id}", h.Catalog.HandleDeleteTire)
			mr.Post("/services", h.Catalog.HandleCreateService)
			mr.Put("/services/{id}", h.Catalog.HandleUpdateService)
			mr.Delete("/services/{id}", h.Catalog.HandleDeleteService)
			mr.Post("/upload", h.Catalog.HandleUpload)
		})

		br.Post("/checkout", h.Payment.HandleCheckout)
		br.Get("/callback", h.Payment.HandleCallback)
		br.Post("/webhook/mercadopago", h.Payment.HandleWebhook)
		br.With(g.BKBearer).Get("/orders", h.Payment.HandleListOrders)
		br.Get("/orders/{ref}", h.Payment.HandleGetOrder)
	})

	// ============================================================
	// aguanaboca storefront
	// ============================================================
	r.Post("/auth/login", h.AguaAuth.HandleLogin)
	r.Get("/auth/me", h.AguaAuth.HandleMe)

	r.Route("/produtos", func(pr chi.Router) {
		pr.Get("/", h.Catalog.HandleListProdutos)
		pr.Group(func(mr chi.Router) {
			mr.Use(g.AguaBearer)
			mr.Post("/", h.Catalog.HandleCreateProduto)
			mr.Put("/{id}", h.Catalog.HandleUpdateProduto)
			mr.Delete("/{id}", h.Catalog.HandleDeleteProduto)
			mr.Post("/upload", h.Catalog.HandleUpload)
		})
	})

	return r
}
