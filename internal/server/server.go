// Package server exposes the generation pipeline over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/pipeline"
	"github.com/rezonia/invoice-generator/pkg/logger"
)

// Config holds server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server is the HTTP API server.
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *pipeline.Pipeline
	log      *logger.Logger
}

// NewServer creates the API server around an assembled pipeline.
func NewServer(config *Config, p *pipeline.Pipeline, log *logger.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.Nop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())

	s := &Server{
		config:   config,
		router:   router,
		pipeline: p,
		log:      log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/invoices", s.handleGenerate)
		v1.POST("/invoices/preview", s.handlePreview)
		v1.POST("/validate", s.handleValidate)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestID tags every request so log lines correlate with responses.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"profile": string(s.pipeline.Profile()),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleGenerate runs the full pipeline. The default response is JSON with
// the document base64 encoded; ?format=pdf returns the raw bytes with the
// compliance verdict in a header.
func (s *Server) handleGenerate(c *gin.Context) {
	var inv model.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	result, err := s.pipeline.Generate(c.Request.Context(), &inv)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if c.Query("format") == "pdf" {
		compliant := "false"
		if result.Report.Compliant {
			compliant = "true"
		}
		c.Header("X-Compliance-Compliant", compliant)
		c.Header("Content-Disposition", `attachment; filename="invoice-`+result.Invoice.Number+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", result.Document)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Document:       result.Document,
		AttachmentName: result.AttachmentName,
		Profile:        string(s.pipeline.Profile()),
		Totals:         totalsOutput(result.Invoice.Currency, result.Invoice.Totals, s.pipeline.Places(result.Invoice.Currency)),
		Report:         result.Report,
	})
}

// handlePreview validates and computes totals without producing a document.
func (s *Server) handlePreview(c *gin.Context) {
	var inv model.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	enriched, err := s.pipeline.Preview(c.Request.Context(), &inv)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, PreviewResponse{
		Invoice: enriched,
		Totals:  totalsOutput(enriched.Currency, enriched.Totals, s.pipeline.Places(enriched.Currency)),
	})
}

// handleValidate runs the compliance check on an uploaded document.
func (s *Server) handleValidate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	report := s.pipeline.ValidateDocument(body)
	c.JSON(http.StatusOK, report)
}

// writeError maps pipeline errors onto HTTP statuses: bad input is 422,
// composition failures are 500.
func (s *Server) writeError(c *gin.Context, err error) {
	var verrs *model.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:      "invoice validation failed",
			Violations: verrs.Violations,
		})
		return
	}

	var gerr *model.GenerationError
	if errors.As(err, &gerr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   gerr.Message,
			Details: gerr.Error(),
			Field:   gerr.Field,
		})
		return
	}

	var cerr *model.CompositionError
	if errors.As(err, &cerr) {
		s.log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("composition failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "document composition failed",
			Details: cerr.Message,
		})
		return
	}

	s.log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("generation failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
