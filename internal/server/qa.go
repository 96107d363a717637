package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/rag"
)

// QAHandler exposes the question-answering pipeline over HTTP.
type QAHandler struct {
	Pipeline *rag.Pipeline
	Timeout  time.Duration
}

type askRequest struct {
	Question string `json:"question"`
}

type searchResponse struct {
	Comparison bool        `json:"comparison"`
	Seasons    []int       `json:"seasons"`
	Hits       []searchHit `json:"hits"`
}

type searchHit struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Page       int     `json:"page"`
	ChunkIndex int     `json:"chunk_index"`
	Season     int     `json:"season,omitempty"`
	Distance   float64 `json:"distance"`
}

// Register mounts the QA endpoints on the given group.
func (h *QAHandler) Register(g *echo.Group) {
	g.POST("/ask", h.ask)
	g.POST("/search", h.search)
}

func (h *QAHandler) ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	answer, err := h.Pipeline.Ask(ctx, req.Question)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, answer)
}

func (h *QAHandler) search(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	plan, hits, err := h.Pipeline.Search(ctx, req.Question)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := searchResponse{
		Comparison: plan.IsComparison,
		Seasons:    plan.Seasons,
		Hits:       make([]searchHit, len(hits)),
	}
	for i, h := range hits {
		resp.Hits[i] = toSearchHit(h)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *QAHandler) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}

func toSearchHit(h index.Hit) searchHit {
	return searchHit{
		Text:       h.Text,
		Source:     h.Meta.Source,
		Page:       h.Meta.Page,
		ChunkIndex: h.Meta.ChunkIndex,
		Season:     h.Meta.Season,
		Distance:   h.Distance,
	}
}
