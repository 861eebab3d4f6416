package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/vulnverified/iseeyou/internal/engine"
	"github.com/vulnverified/iseeyou/internal/logging"
	"github.com/vulnverified/iseeyou/internal/lookup"
)

// DefaultSearchLimit is how many catalog sites /username/search checks when
// the request names no limit.
const DefaultSearchLimit = 7

// lookupRequest is the union of every route's JSON body.
type lookupRequest struct {
	Domain      string   `json:"domain"`
	Email       string   `json:"email"`
	IP          string   `json:"ip"`
	Username    string   `json:"username"`
	RecordTypes []string `json:"record_types"`
	Limit       *int     `json:"limit"`
}

// bind decodes the body. An empty body is an empty request, so the missing
// field is reported rather than the JSON error.
func bind(c *gin.Context) (lookupRequest, bool) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return req, false
	}
	return req, true
}

// chainContext attaches a chain reporter tagged with the route.
func chainContext(c *gin.Context) context.Context {
	rep := logging.NewChainReporter(logrus.Fields{"route": c.FullPath()})
	return lookup.WithReporter(c.Request.Context(), rep)
}

func respond(c *gin.Context, env engine.Envelope, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, env)
	case engine.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.Logger.WithError(err).WithField("route", c.FullPath()).Error("lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type lookupFunc func(ctx context.Context, value string) (engine.Envelope, error)

// single serves routes that take one field of the request.
func single(field func(lookupRequest) string, fn lookupFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind(c)
		if !ok {
			return
		}
		env, err := fn(chainContext(c), field(req))
		respond(c, env, err)
	}
}

func domainField(r lookupRequest) string   { return r.Domain }
func emailField(r lookupRequest) string    { return r.Email }
func ipField(r lookupRequest) string       { return r.IP }
func usernameField(r lookupRequest) string { return r.Username }

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "I See You OSINT API is running",
		"version": s.version,
	})
}

func (s *Server) domainDNS(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}
	env, err := s.svc.DomainDNS(chainContext(c), req.Domain, req.RecordTypes)
	respond(c, env, err)
}

func (s *Server) usernameSearch(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}
	limit := DefaultSearchLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	env, err := s.svc.UsernameSearch(c.Request.Context(), req.Username, limit)
	respond(c, env, err)
}
