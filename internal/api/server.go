package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/textgen/internal/inference"
	"github.com/samcharles93/textgen/internal/logger"
	"github.com/samcharles93/textgen/internal/tokenizer"
)

// Config wires the server to a codec and a generator. Metrics, when set,
// is served at GET /metrics.
type Config struct {
	Codec     *tokenizer.Codec
	Generator *inference.Generator
	Defaults  inference.GenDefaults
	Store     *GenerationStore
	Metrics   http.Handler
	Log       logger.Logger
}

type Server struct {
	codec    *tokenizer.Codec
	gen      *inference.Generator
	defaults inference.GenDefaults
	store    *GenerationStore
	metrics  http.Handler
	log      logger.Logger
	clock    func() time.Time
}

// MaxGenerateSteps bounds the steps a single generate request may ask for.
const MaxGenerateSteps = 100_000

func NewServer(cfg Config) *Server {
	store := cfg.Store
	if store == nil {
		store = NewGenerationStore(DefaultStoreCapacity)
	}
	log := cfg.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		codec:    cfg.Codec,
		gen:      cfg.Generator,
		defaults: cfg.Defaults,
		store:    store,
		metrics:  cfg.Metrics,
		log:      log,
		clock:    time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/vocabulary", s.handleVocabulary)
	e.POST("/v1/encode", s.handleEncode)
	e.POST("/v1/decode", s.handleDecode)

	e.POST("/v1/generate", s.handleGenerate)
	e.GET("/v1/generations/:id", s.handleGetGeneration)
	e.DELETE("/v1/generations/:id", s.handleDeleteGeneration)

	if s.metrics != nil {
		e.GET("/metrics", func(c *echo.Context) error {
			s.metrics.ServeHTTP(c.Response(), c.Request())
			return nil
		})
	}
}

func (s *Server) handleVocabulary(c *echo.Context) error {
	if s.codec == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "vocabulary not configured", "", "")
	}
	v := s.codec.Vocabulary()
	sentinel, _ := v.Sentinel()
	return c.JSON(http.StatusOK, VocabularyResponse{
		Object:   "vocabulary",
		Mode:     v.Mode().String(),
		Size:     v.Size(),
		Sentinel: sentinel,
	})
}

func (s *Server) handleEncode(c *echo.Context) error {
	if s.codec == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "vocabulary not configured", "", "")
	}
	req, err := decodeJSON[EncodeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	ids, err := s.codec.Encode(req.Tokens)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, EncodeResponse{IDs: ids})
}

func (s *Server) handleDecode(c *echo.Context) error {
	if s.codec == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "vocabulary not configured", "", "")
	}
	req, err := decodeJSON[DecodeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	toks, err := s.codec.Decode(req.IDs)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, DecodeResponse{Tokens: toks, Text: strings.Join(toks, " ")})
}

func (s *Server) handleGenerate(c *echo.Context) error {
	if s.gen == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "generator not configured", "", "")
	}
	body, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if len(body.Seed) == 0 {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "seed is required", "seed", "")
	}
	if body.Steps != nil && *body.Steps < 0 {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "steps must be >= 0", "steps", "")
	}
	if body.Steps != nil && *body.Steps > MaxGenerateSteps {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", fmt.Sprintf("steps must be <= %d", MaxGenerateSteps), "steps", "")
	}

	req := inference.ResolveRequest(inference.RequestOptions{
		Seed:         body.Seed,
		Temperatures: body.Temperatures,
		Steps:        body.Steps,
		RNGSeed:      body.RNGSeed,
		Parallel:     body.Parallel,
	}, s.defaults)

	results, err := s.gen.Sweep(c.Request().Context(), req)
	if err != nil {
		s.log.Warn("generation failed", "error", err)
		return writeDomainError(c, err)
	}

	resp := GenerateResponse{
		ID:        newGenerationID(),
		Object:    "generation",
		CreatedAt: s.clock().Unix(),
		Seed:      req.Seed,
		Steps:     req.Steps,
		Results:   make([]GenerationResult, 0, len(results)),
	}
	for _, r := range results {
		resp.Results = append(resp.Results, GenerationResult{
			ID:          r.ID,
			Temperature: r.Temperature,
			Text:        r.Text,
			IDs:         r.IDs,
			Usage: GenerationUsage{
				PrimingSteps:    r.Stats.PrimingSteps,
				GeneratedTokens: r.Stats.TokensGenerated,
				TokensPerSecond: r.Stats.TPS,
			},
		})
	}
	if body.Store == nil || *body.Store {
		s.store.Put(resp)
	}
	s.log.Info("generation complete", "id", resp.ID, "runs", len(resp.Results), "steps", req.Steps)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetGeneration(c *echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return writeNotFound(c, "generation not found")
	}
	resp, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "generation not found")
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteGeneration(c *echo.Context) error {
	id := c.Param("id")
	if id == "" || !s.store.Delete(id) {
		return writeNotFound(c, "generation not found")
	}
	return c.JSON(http.StatusOK, DeleteGenerationResp{
		ID:      id,
		Object:  "generation",
		Deleted: true,
	})
}
