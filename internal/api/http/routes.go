package httpapi

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bgreenlee/weatherbar/internal/ui"
)

var validate = validator.New()

const uiCallTimeout = 5 * time.Second

// Refresher triggers a weather refresh.
type Refresher interface {
	Refresh()
}

// Preferences reads and writes the saved location.
type Preferences interface {
	Location() string
	DefaultLocation() string
	SetLocation(location string) error
}

// Deps are the collaborators behind the menu API.
type Deps struct {
	Refresher   Refresher
	Preferences Preferences
	Loop        *ui.Loop
	Panel       *ui.Panel
}

// NewApp creates the Fiber app for the local menu API with all routes registered.
func NewApp(deps Deps, withRequestLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weatherbar",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	if withRequestLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherbar",
		})
	})

	RegisterRoutes(app, deps)
	return app
}

// RegisterRoutes wires the menu handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	// "Update" menu item.
	v1.Post("/refresh", func(c *fiber.Ctx) error {
		deps.Refresher.Refresh()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "refreshing"})
	})

	v1.Get("/preferences", func(c *fiber.Ctx) error {
		return c.JSON(preferencesResponse{
			Location:        deps.Preferences.Location(),
			DefaultLocation: deps.Preferences.DefaultLocation(),
		})
	})

	// Saving preferences refreshes with the new location.
	v1.Put("/preferences", func(c *fiber.Ctx) error {
		var req preferencesRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		req.Location = strings.TrimSpace(req.Location)

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := deps.Preferences.SetLocation(req.Location); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save preferences")
		}

		deps.Refresher.Refresh()
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/panel", func(c *fiber.Ctx) error {
		var st ui.PanelState
		if err := onUI(c, deps.Loop, func() { st = deps.Panel.State() }); err != nil {
			return err
		}
		return c.JSON(st)
	})

	v1.Get("/panel.png", func(c *fiber.Ctx) error {
		var (
			buf       bytes.Buffer
			renderErr error
		)
		if err := onUI(c, deps.Loop, func() { renderErr = deps.Panel.RenderPNG(&buf) }); err != nil {
			return err
		}
		if renderErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render panel")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(buf.Bytes())
	})
}

type preferencesRequest struct {
	Location string `json:"location" validate:"required"`
}

type preferencesResponse struct {
	Location        string `json:"location"`
	DefaultLocation string `json:"defaultLocation"`
}

// onUI runs fn on the UI loop, since panel state is owned by it.
func onUI(c *fiber.Ctx, loop *ui.Loop, fn func()) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), uiCallTimeout)
	defer cancel()

	if err := loop.Call(ctx, fn); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "panel unavailable")
	}
	return nil
}
