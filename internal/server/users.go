package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/raagalabs/carnaticguru/internal/store"
)

// fallbackUsers keeps the service usable when the users table is
// unreachable, matching the seeded profiles.
var fallbackUsers = []store.User{
	{ID: "learner_1", Name: "Arjun", Avatar: "👨‍🎓", Color: "#FF6B6B"},
	{ID: "learner_2", Name: "Priya", Avatar: "👩‍🎓", Color: "#4ECDC4"},
	{ID: "learner_3", Name: "Rohan", Avatar: "👨‍🎓", Color: "#45B7D1"},
	{ID: "admin", Name: "Admin", Avatar: "👨‍💼", Color: "#95E1D3"},
}

// userReader is the slice of store.Store the handlers need.
type userReader interface {
	GetUser(ctx context.Context, id string) (store.User, error)
	ListUsers(ctx context.Context) ([]store.User, error)
}

// userDirectory resolves profiles from the store, falling back to the
// built-in roster when the database is unavailable.
type userDirectory struct {
	store  userReader
	logger *log.Logger
}

func newUserDirectory(st userReader) *userDirectory {
	return &userDirectory{
		store:  st,
		logger: log.New(log.Writer(), "[USERS] ", log.LstdFlags),
	}
}

func (d *userDirectory) resolve(ctx context.Context, id string) (store.User, bool) {
	u, err := d.store.GetUser(ctx, id)
	if err == nil {
		return u, true
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		d.logger.Printf("user lookup failed, using fallback roster: %v", err)
		for _, f := range fallbackUsers {
			if f.ID == id {
				return f, true
			}
		}
	}
	return store.User{}, false
}

func (d *userDirectory) list(ctx context.Context) []store.User {
	users, err := d.store.ListUsers(ctx)
	if err != nil || len(users) == 0 {
		if err != nil {
			d.logger.Printf("user list failed, using fallback roster: %v", err)
		}
		return fallbackUsers
	}
	return users
}

type UsersHandler struct {
	Directory *userDirectory
}

func (h *UsersHandler) Register(g *echo.Group) {
	g.GET("/users", h.list)
}

func (h *UsersHandler) list(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users": h.Directory.list(c.Request().Context()),
	})
}
