package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/raagalabs/carnaticguru/internal/store"
)

// sessionReader is the slice of store.Store the history endpoint needs.
type sessionReader interface {
	ListEvents(ctx context.Context, appName, userID, sessionID string) ([]store.Event, error)
}

type SessionsHandler struct {
	Directory *userDirectory
	Store     sessionReader
	AppName   string
}

type sessionEvent struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

func (h *SessionsHandler) Register(g *echo.Group) {
	g.GET("/session/:user_id", h.history)
}

func (h *SessionsHandler) history(c echo.Context) error {
	userID := c.Param("user_id")
	if _, ok := h.Directory.resolve(c.Request().Context(), userID); !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user")
	}

	sessionID := userID + "_session"
	events, err := h.Store.ListEvents(c.Request().Context(), h.AppName, userID, sessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := make([]sessionEvent, 0, len(events))
	for _, e := range events {
		out = append(out, sessionEvent{Author: e.Author, Text: e.Content})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
		"num_events": len(out),
		"events":     out,
	})
}
