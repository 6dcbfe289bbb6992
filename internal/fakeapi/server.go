// Package fakeapi is an in-memory stand-in for the admin backend. It answers
// with the same mixed response envelopes as the real service and supports
// fault injection, so the console and its tests can run without one.
package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/travel-assistant/concierge/internal/adminapi"
)

// Default credentials accepted by the login endpoint.
const (
	DefaultEmail    = "admin@example.com"
	DefaultPassword = "admin123"
)

const tokenTTL = time.Hour

// Options configures New.
type Options struct {
	Secret   string
	Email    string
	Password string
	Logger   *slog.Logger
	// Empty starts with no records.
	Empty bool
}

type fault struct {
	status  int
	message string
}

// Server serves the admin API from memory.
type Server struct {
	e         *echo.Echo
	secret    []byte
	email     string
	password  string
	endpoints adminapi.Endpoints
	log       *slog.Logger

	mu     sync.Mutex
	db     *dataset
	faults map[string][]fault
}

type requestValidator struct {
	v *playgroundvalidator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	if err := rv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// New builds a server with seeded data.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		e:         echo.New(),
		secret:    []byte(orDefault(opts.Secret, "concierge-fake-secret-0123456789")),
		email:     orDefault(opts.Email, DefaultEmail),
		password:  orDefault(opts.Password, DefaultPassword),
		endpoints: adminapi.DefaultEndpoints(),
		log:       logger.With("component", "fakeapi"),
		faults:    make(map[string][]fault),
	}
	if opts.Empty {
		s.db = newDataset()
	} else {
		s.db = seed(time.Now())
	}

	e := s.e
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: playgroundvalidator.New()}
	e.HTTPErrorHandler = s.errorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(s.injectFaults)
	s.routes()
	return s
}

func (s *Server) routes() {
	ep := s.endpoints
	e := s.e
	auth := s.requireToken

	e.POST(ep.Login, s.login)

	e.GET(ep.Users, s.listUsers, auth)
	e.POST(ep.Users, s.listUsers, auth)
	e.POST(ep.UserToggle, s.toggleUser, auth)
	e.GET(ep.UserInfo, s.userInfo, auth)

	e.GET(ep.Interests, s.listInterests, auth)
	e.POST(ep.Interests, s.createInterest, auth)
	e.PATCH(ep.Interests, s.updateInterest, auth)
	e.DELETE(ep.Interests, s.deleteInterest, auth)

	e.GET(ep.Events, s.listEvents, auth)
	e.POST(ep.Events, s.createEvent, auth)
	e.PATCH(ep.Events, s.updateEvent, auth)
	e.DELETE(ep.Events, s.deleteEvent, auth)
	e.GET(ep.EventSummary, s.eventSummary, auth)

	e.GET(ep.Plans, s.listPlans, auth)
	e.POST(ep.Plans, s.createPlan, auth)
	e.PATCH(ep.Plans, s.updatePlan, auth)
	e.DELETE(ep.Plans, s.deletePlan, auth)

	e.GET(ep.Terms, s.terms, auth)
	e.GET(ep.UserGrowth, s.userGrowth, auth)
	e.GET(ep.Revenue, s.revenue, auth)
	e.PATCH(ep.Profile, s.updateProfile, auth)
}

// ServeHTTP lets the server be mounted on httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info("fake admin api listening", "addr", addr)
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// FailNext makes the next request matching method and path fail with status
// and message. Calls queue up.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToUpper(method) + " " + path
	s.faults[key] = append(s.faults[key], fault{status: status, message: message})
}

func (s *Server) injectFaults(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + c.Request().URL.Path
		s.mu.Lock()
		queue := s.faults[key]
		var f *fault
		if len(queue) > 0 {
			f = &queue[0]
			s.faults[key] = queue[1:]
		}
		s.mu.Unlock()
		if f != nil {
			s.log.Debug("injected fault", "request", key, "status", f.status)
			return c.JSON(f.status, echo.Map{"status": "error", "message": f.message})
		}
		return next(c)
	}
}

// IssueToken signs an access token for the admin with the given id.
func (s *Server) IssueToken(subject string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "fakeapi",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Authentication credentials were not provided."})
		}
		_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		})
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Given token not valid for any token type"})
		}
		return next(c)
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = fmt.Sprint(he.Message)
	}
	_ = c.JSON(status, echo.Map{"status": "error", "message": message})
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
