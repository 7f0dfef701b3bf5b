package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cognicore/jobtopic/pkg/jobtopic/ingest"
	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/store"
)

// maxBodyBytes caps request bodies; job descriptions are a few KB.
const maxBodyBytes = 1 << 20

// Engine is the part of *jobtopic.Engine the API serves.
type Engine interface {
	Trace(doc string) ingest.Stages
	Analyzer(ctx context.Context, prefix string) (func(string) []string, error)
	Store() store.Store
}

// API holds dependencies for API handlers.
type API struct {
	engine Engine
	logger *log.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(engine Engine, logger *log.Logger) *API {
	return &API{engine: engine, logger: logger}
}

// NewRouter builds a gin engine with middleware and every route.
func NewRouter(engine Engine, logger *log.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger), RequestSizeLimitMiddleware(maxBodyBytes))
	SetupRoutes(router, engine, logger)
	return router
}

// SetupRoutes defines all the API routes.
func SetupRoutes(router *gin.Engine, engine Engine, logger *log.Logger) {
	h := NewAPI(engine, logger)

	router.GET("/health", h.HealthCheckHandler)

	v1 := router.Group("/v1")
	{
		v1.POST("/process", h.ProcessHandler)
		v1.POST("/phrases/:prefix", h.PhrasesHandler)
		v1.GET("/jobs", h.ListJobsHandler)
		v1.GET("/jobs/:id", h.GetJobHandler)
	}
}

// HealthCheckHandler reports liveness and the number of stored jobs.
func (h *API) HealthCheckHandler(c *gin.Context) {
	n, err := h.engine.Store().CountJobs(c.Request.Context())
	if err != nil {
		h.logger.Printf("health: count jobs: %v", err)
		SendError(c, http.StatusServiceUnavailable, ErrorCodeInternalError, "store unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "jobs": n})
}

// TextRequest carries one raw document.
type TextRequest struct {
	Text  string `json:"text" binding:"required"`
	Trace bool   `json:"trace"`
}

// ProcessResponse is the cleaned token sequence, with every stage when
// trace was requested.
type ProcessResponse struct {
	Tokens    []string               `json:"tokens"`
	Sentences [][]string             `json:"sentences,omitempty"`
	Tagged    [][]ingest.TaggedToken `json:"tagged,omitempty"`
	Lemmas    []string               `json:"lemmas,omitempty"`
}

func bindText(c *gin.Context) (TextRequest, bool) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "body must be JSON with a non-empty text field")
		return req, false
	}
	if strings.TrimSpace(req.Text) == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "text must not be blank")
		return req, false
	}
	return req, true
}

// ProcessHandler runs one text through the cleaning pipeline.
func (h *API) ProcessHandler(c *gin.Context) {
	req, ok := bindText(c)
	if !ok {
		return
	}

	st := h.engine.Trace(req.Text)
	resp := ProcessResponse{Tokens: st.Tokens}
	if req.Trace {
		resp.Sentences = st.Sentences
		resp.Tagged = st.Tagged
		resp.Lemmas = st.Lemmas
	}
	c.JSON(http.StatusOK, resp)
}

// PhrasesHandler cleans one text and merges phrases with the models
// trained under :prefix.
func (h *API) PhrasesHandler(c *gin.Context) {
	req, ok := bindText(c)
	if !ok {
		return
	}
	prefix := c.Param("prefix")

	analyze, err := h.engine.Analyzer(c.Request.Context(), prefix)
	switch {
	case errors.Is(err, internalerr.ErrModelNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeModelNotFound,
			"no phrase models for prefix "+strconv.Quote(prefix)+"; train them first")
		return
	case errors.Is(err, internalerr.ErrInvalidInput):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	case err != nil:
		h.logger.Printf("phrases %q: %v", prefix, err)
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, "failed to load phrase models")
		return
	}

	c.JSON(http.StatusOK, gin.H{"prefix": prefix, "tokens": analyze(req.Text)})
}

// GetJobHandler returns one stored job.
func (h *API) GetJobHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "job id must be a positive integer")
		return
	}

	job, err := h.engine.Store().GetJob(c.Request.Context(), id)
	if errors.Is(err, internalerr.ErrNotFound) {
		SendError(c, http.StatusNotFound, ErrorCodeJobNotFound, "job "+c.Param("id")+" not found")
		return
	}
	if err != nil {
		h.logger.Printf("get job %d: %v", id, err)
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, "failed to load job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobsHandler returns a page of jobs with the total count.
func (h *API) ListJobsHandler(c *gin.Context) {
	offset, err1 := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, err2 := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(store.DefaultListLimit)))
	if err1 != nil || err2 != nil || offset < 0 || limit < 1 || limit > 500 {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "offset must be >= 0 and limit 1..500")
		return
	}

	ctx := c.Request.Context()
	jobs, err := h.engine.Store().ListJobs(ctx, offset, limit)
	if err != nil {
		h.logger.Printf("list jobs: %v", err)
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, "failed to list jobs")
		return
	}
	total, err := h.engine.Store().CountJobs(ctx)
	if err != nil {
		h.logger.Printf("count jobs: %v", err)
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, "failed to count jobs")
		return
	}
	if jobs == nil {
		jobs = []store.Job{}
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": total, "offset": offset, "limit": limit})
}
