package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"churchledger/internal/auth"
	"churchledger/internal/core"
	"churchledger/internal/log"
	"churchledger/internal/metrics"
	"churchledger/internal/middleware/ratelimit"
	"churchledger/internal/middleware/security"
	"churchledger/internal/middleware/trace"
	"churchledger/internal/services"
	appweb "churchledger/web"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Logger    *log.Logger
	Metrics   *metrics.Metrics
	Sessions  *auth.Sessions
	Users     *services.UserService
	Members   *services.MemberService
	Entries   *services.EntryService
	Approvals *services.ApprovalService
	Balances  *services.BalanceService
	Dashboard *services.DashboardService
	Admin     *services.AdminService

	// Ready reports whether storage answers; nil means always ready.
	Ready func(ctx context.Context) error

	RateLimitPerMinute int

	// Now is the clock used for form defaults and the CSV month.
	Now func() time.Time
}

type Server struct {
	http.Server
	Deps

	templates map[string]*template.Template
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	guard     *auth.Guard

	shutdownOnce sync.Once
}

var allRoles = core.AllRoles

// NewServer parses templates, mounts routes and wraps them in the
// middleware chain, returning a ready-to-run server.
func NewServer(addr string, deps Deps) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Server{
		Deps:      deps,
		templates: templates,
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
	}
	s.guard = &auth.Guard{Deny: s.accessDenied, InvalidForm: s.invalidForm}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.Logger.WithComponent(log.ComponentHTTP).Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.Metrics.Handler())

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)

	s.handle(mux, "GET /dashboard", s.handleDashboard, allRoles...)
	s.handle(mux, "GET /reports", s.handleReports, allRoles...)
	s.handle(mux, "GET /download_report_csv", s.handleDownloadCSV, allRoles...)

	s.handle(mux, "GET /users", s.handleUsers, core.RoleAdmin)
	s.handle(mux, "GET /users/new", s.handleNewUserForm, core.RoleAdmin)
	s.handle(mux, "POST /users/new", s.handleCreateUser, core.RoleAdmin)
	s.handle(mux, "GET /users/{id}/edit", s.handleEditUserForm, core.RoleAdmin)
	s.handle(mux, "POST /users/{id}/edit", s.handleUpdateUser, core.RoleAdmin)
	s.handle(mux, "POST /users/{id}/delete", s.handleDeleteUser, core.RolePastor)

	s.handle(mux, "GET /members", s.handleMembers, core.RolePastor)
	s.handle(mux, "GET /members/new", s.handleNewMemberForm, core.RolePastor)
	s.handle(mux, "POST /members/new", s.handleCreateMember, core.RolePastor)
	s.handle(mux, "POST /members/{id}/toggle", s.handleToggleMember, core.RolePastor)

	s.handle(mux, "GET /attendance", s.handleAttendanceForm, core.RoleUsher)
	s.handle(mux, "POST /attendance", s.handleRecordAttendance, core.RoleUsher)
	s.handle(mux, "GET /giving", s.handleGivingForm, core.RoleFinance)
	s.handle(mux, "POST /giving", s.handleRecordGiving, core.RoleFinance)
	s.handle(mux, "GET /expenses/add", s.handleExpenseForm, core.RoleFinance)
	s.handle(mux, "POST /expenses/add", s.handleAddExpense, core.RoleFinance)
	s.handle(mux, "GET /expenses/approve", s.handleApprovals, core.RolePastor)
	s.handle(mux, "POST /expenses/approve", s.handleApprove, core.RolePastor)

	s.handle(mux, "POST /admin/clear-data", s.handleClearData, core.RoleAdmin)
	return mux
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc, roles ...core.Role) {
	mux.Handle(pattern, s.guard.Require(roles...)(h))
}

// middleware wraps h, outermost first: logger, trace, request id, threat
// detection, headers, rate limit, session.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.Sessions.Middleware(s.Users)(h)
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.UnsafeMethods, s.rateLimited)(h)
	h = security.NoStore(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(s.suspicious)(h)
	h = log.RequestIDMiddleware(trace.RequestID)(h)
	h = trace.NewMiddleware(s.detector.ExtractClientIP, s.Metrics.ObserveRequest).Middleware(h)
	return log.Middleware(s.Logger)(h)
}

func (s *Server) accessDenied(w http.ResponseWriter, r *http.Request) {
	s.Metrics.AccessDenied()
	u, _ := auth.CurrentUser(r.Context())
	log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).DebugContext(r.Context(), "Access denied",
		log.FieldPath, r.URL.Path,
		log.FieldMethod, r.Method,
		log.FieldUserID, u.ID,
		log.FieldRole, u.Role.String())
	Redirect("/login").Danger("Access denied!").Write(w, r)
}

func (s *Server) invalidForm(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "CSRF token mismatch",
		log.FieldPath, r.URL.Path)
	Redirect("/dashboard").Danger("Invalid form submission.").Write(w, r)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.Metrics.RateLimited()
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").
		Header("Retry-After", "60").
		Write(w, r)
}

func (s *Server) suspicious(r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
		log.NewFields().
			WithClientIP(s.detector.ExtractClientIP(r)).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
			ToSlice()...)
}

// Shutdown stops the rate limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close stops the rate limiter without serving. Used by tests.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.Server.Close()
}
