package middleware

import (
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/metrics"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Middleware runs trace injection, bearer auth and per-IP rate limiting
// before a handler.
type Middleware struct {
	authToken    string
	noAuthBypass bool
	limiter      *IPRateLimiter
	logger       *logger_i.Logger
}

func New(authToken string, noAuthBypass bool) *Middleware {
	return &Middleware{
		authToken:    authToken,
		noAuthBypass: noAuthBypass,
		limiter:      NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND),
		logger:       logger_i.NewLogger("middleware"),
	}
}

// WithLimiter swaps the rate limiter, e.g. for a looser one in tests.
func (m *Middleware) WithLimiter(l *IPRateLimiter) *Middleware {
	m.limiter = l
	return m
}

func (m *Middleware) Limiter() *IPRateLimiter { return m.limiter }

func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
		}()

		re := m.processRequest(requestResponseStruct{req: r, writer: rec})
		if !handleBadRequest(re) {
			return
		}
		next(rec, re.req)
	}
}

// Public skips auth; it is used for /health.
func (m *Middleware) Public(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		re := injectTrace(requestResponseStruct{req: r, writer: w, logger: m.logger})
		next(w, re.req)
	}
}

func (m *Middleware) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = m.logger
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Debug("New request received", "path", re.req.URL.Path)

	re = m.authenticate(re)
	if re.badRequest.isBadRequest {
		return re
	}
	return m.rateLimiter(re)
}
