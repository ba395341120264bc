// Package api serves the case REST endpoints consumed by the console.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/credit-eval/cet-console/internal/bus"
	"github.com/credit-eval/cet-console/internal/model"
	"github.com/credit-eval/cet-console/internal/store"
)

// CaseRepository is the subset of the store the handlers read from.
type CaseRepository interface {
	ListCases(ctx context.Context) ([]model.Case, error)
	ListCasesByStatus(ctx context.Context, status model.Status) ([]model.Case, error)
	GetCase(ctx context.Context, id string) (model.Case, error)
	LogCaseAction(ctx context.Context, caseID, action, actor string, details map[string]interface{}) error
}

// Handler binds the case endpoints to a repository and a notification bus.
type Handler struct {
	cases  CaseRepository
	bus    bus.Bus
	logger *log.Logger
	engine *gin.Engine
}

// NewHandler returns a handler. A nil bus disables notifications.
func NewHandler(cases CaseRepository, b bus.Bus, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if b == nil {
		b = bus.NewNullBus(logger)
	}
	return &Handler{cases: cases, bus: b, logger: logger}
}

// RegisterRoutes mounts the handlers on router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	h.engine = router
	api := router.Group("/api")
	{
		api.GET("/cases", h.ListCases)
		api.GET("/cases/filter/:status", h.FilterCases)
		api.GET("/cases/:id", h.GetCase)
		api.GET("/debug", h.Debug)
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (h *Handler) fail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorBody{Detail: detail})
}

// ListCases returns every case.
func (h *Handler) ListCases(c *gin.Context) {
	cases, err := h.cases.ListCases(c.Request.Context())
	if err != nil {
		h.logger.Printf("list cases: %v", err)
		h.fail(c, http.StatusInternalServerError, "Failed to list cases")
		return
	}
	c.JSON(http.StatusOK, cases)
}

// GetCase returns one case by id or 404.
func (h *Handler) GetCase(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	kase, err := h.cases.GetCase(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		h.fail(c, http.StatusNotFound, fmt.Sprintf("Case with ID %s not found", id))
		return
	}
	if err != nil {
		h.logger.Printf("get case %s: %v", id, err)
		h.fail(c, http.StatusInternalServerError, "Failed to load case")
		return
	}

	// Viewing is recorded but never blocks the response.
	if err := h.cases.LogCaseAction(ctx, kase.ID, store.ActionViewed, "api", map[string]interface{}{
		"client": c.ClientIP(),
	}); err != nil {
		h.logger.Printf("audit view of %s: %v", kase.ID, err)
	}
	if err := h.bus.PublishCaseEvent(ctx, bus.CaseMessage{
		CaseID:    kase.ID,
		Action:    bus.ActionViewed,
		Status:    string(kase.Status),
		Timestamp: time.Now().Unix(),
	}); err != nil {
		h.logger.Printf("publish view of %s: %v", kase.ID, err)
	}

	c.JSON(http.StatusOK, kase)
}

// FilterCases returns the cases in one status bucket. The status must match
// exactly; anything else is an empty bucket.
func (h *Handler) FilterCases(c *gin.Context) {
	status := model.Status(c.Param("status"))
	if !status.Valid() {
		c.JSON(http.StatusOK, []model.Case{})
		return
	}

	cases, err := h.cases.ListCasesByStatus(c.Request.Context(), status)
	if err != nil {
		h.logger.Printf("filter cases by %s: %v", status, err)
		h.fail(c, http.StatusInternalServerError, "Failed to list cases")
		return
	}
	c.JSON(http.StatusOK, cases)
}

type debugBody struct {
	Routes     []string    `json:"routes"`
	CasesCount int         `json:"cases_count"`
	CaseIDs    []string    `json:"case_ids"`
	SampleCase *model.Case `json:"sample_case"`
}

// Debug reports the mounted routes and a summary of the stored cases.
func (h *Handler) Debug(c *gin.Context) {
	ctx := c.Request.Context()
	body := debugBody{Routes: []string{}, CaseIDs: []string{}}

	if h.engine != nil {
		for _, r := range h.engine.Routes() {
			body.Routes = append(body.Routes, r.Method+" "+r.Path)
		}
	}

	cases, err := h.cases.ListCases(ctx)
	if err != nil {
		h.logger.Printf("debug list cases: %v", err)
		h.fail(c, http.StatusInternalServerError, "Failed to list cases")
		return
	}
	body.CasesCount = len(cases)
	for _, kase := range cases {
		body.CaseIDs = append(body.CaseIDs, kase.ID)
	}
	if len(cases) > 0 {
		body.SampleCase = &cases[0]
	}
	c.JSON(http.StatusOK, body)
}
