// Package server exposes lookups over a JSON HTTP API built on gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vulnverified/iseeyou/internal/config"
	"github.com/vulnverified/iseeyou/internal/logging"
	"github.com/vulnverified/iseeyou/internal/lookup"
)

// ShutdownTimeout bounds how long in-flight requests may finish after a stop signal.
const ShutdownTimeout = 10 * time.Second

// Server is the HTTP front end of a lookup.Service.
type Server struct {
	cfg     config.Server
	svc     *lookup.Service
	version string
	router  *gin.Engine
}

// New builds the router. Call gin.SetMode before New to change gin's mode.
func New(cfg config.Server, svc *lookup.Service, version string) *Server {
	s := &Server{cfg: cfg, svc: svc, version: version}

	r := gin.New()
	r.Use(requestLogger(), gin.CustomRecovery(recoverJSON), corsMiddleware(cfg.CORSOrigins))
	s.routes(r.Group(cfg.BasePath))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	s.router = r
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes(api *gin.RouterGroup) {
	api.GET("/health", s.health)

	domain := api.Group("/domain")
	domain.POST("/whois", single(domainField, s.svc.DomainWhois))
	domain.POST("/dns", s.domainDNS)
	domain.POST("/headers", single(domainField, s.svc.DomainHeaders))

	email := api.Group("/email")
	email.POST("/validate", single(emailField, s.svc.EmailValidate))
	email.POST("/haveibeenpwned", single(emailField, s.svc.EmailBreaches))
	email.POST("/domain-emails", single(domainField, s.svc.DomainEmails))

	ip := api.Group("/ip")
	ip.POST("/geolocation", single(ipField, s.svc.IPGeolocation))
	ip.POST("/whois", single(ipField, s.svc.IPWhois))
	ip.POST("/reverse-dns", single(ipField, s.svc.IPReverseDNS))
	ip.POST("/shodan", single(ipField, s.svc.IPServices))

	username := api.Group("/username")
	username.POST("/search", s.usernameSearch)
	username.POST("/sherlock", single(usernameField, s.svc.UsernameCatalog))
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
