package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	core "github.com/raagalabs/carnaticguru/internal/agent/core"
)

// QueryProcessor answers a routed query. The orchestrator implements it.
type QueryProcessor interface {
	Process(ctx context.Context, query core.UserQuery) (core.AgentReply, error)
}

type QueryHandler struct {
	Directory *userDirectory
	Processor QueryProcessor
	Logger    *log.Logger
}

type queryRequest struct {
	UserID   string `json:"user_id"`
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
}

type queryResponse struct {
	Response string `json:"response"`
	UserName string `json:"user_name"`
	Category string `json:"category"`
	Tstamp   string `json:"timestamp"`
}

func (h *QueryHandler) Register(g *echo.Group) {
	g.POST("/query", h.query)
}

func (h *QueryHandler) query(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}

	user, ok := h.Directory.resolve(c.Request().Context(), req.UserID)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user")
	}

	h.Logger.Printf("query from %s: %.100s", user.Name, req.Query)

	reply, err := h.Processor.Process(c.Request().Context(), core.UserQuery{
		UserID:    req.UserID,
		Content:   req.Query,
		Category:  req.Category,
		Timestamp: time.Now(),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	category := req.Category
	if category == "" {
		category = "General"
	}
	return c.JSON(http.StatusOK, queryResponse{
		Response: reply.Response,
		UserName: user.Name,
		Category: category,
		Tstamp:   time.Now().Format(time.RFC3339),
	})
}
