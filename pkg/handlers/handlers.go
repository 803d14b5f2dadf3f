package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"

	"calendareventservice/pkg/auth"
	"calendareventservice/pkg/cache"
	"calendareventservice/pkg/calendar"
	"calendareventservice/pkg/models"
	"calendareventservice/pkg/store"
)

// headerUserEmail carries the caller's identity on the read endpoints.
const headerUserEmail = "X-User-Email"

// EventSource fetches and normalizes a user's upcoming events.
type EventSource interface {
	Upcoming(ctx context.Context, token *oauth2.Token) ([]models.Event, error)
}

// CodeResolver turns an OAuth authorization code into a token bundle and the
// owning account's email.
type CodeResolver interface {
	Resolve(ctx context.Context, code string) (string, *oauth2.Token, error)
}

// Handler wires the HTTP surface to the store, cache, fetcher and resolver.
// All dependencies are injected at construction; there is no package state.
type Handler struct {
	store    store.UserStore
	cache    *cache.Cache
	events   EventSource
	resolver CodeResolver
	oauthCfg *oauth2.Config
}

func New(users store.UserStore, c *cache.Cache, events EventSource, resolver CodeResolver, oauthCfg *oauth2.Config) *Handler {
	return &Handler{
		store:    users,
		cache:    c,
		events:   events,
		resolver: resolver,
		oauthCfg: oauthCfg,
	}
}

// Register mounts all routes. /events/summary must come before /events/:id.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/", h.handleRoot)
	app.Get("/auth", h.handleAuth)
	app.Get("/oauth2callback", h.handleOAuthCallback)
	app.Get("/events", h.handleEvents)
	app.Get("/events/summary", h.handleEventsSummary)
	app.Get("/events/:id", h.handleEventByID)
}

func (h *Handler) handleRoot(c *fiber.Ctx) error {
	return c.SendString("Calendar events service. Visit /auth to connect your Google Calendar.")
}

func (h *Handler) handleAuth(c *fiber.Ctx) error {
	url := h.oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	return c.Redirect(url)
}

func (h *Handler) handleOAuthCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		log.Printf("No code in query parameters")
		return c.Status(fiber.StatusBadRequest).SendString("No code in query parameters")
	}

	email, token, err := h.resolver.Resolve(c.Context(), code)
	if err != nil {
		var exErr *auth.ExchangeError
		switch {
		case errors.As(err, &exErr):
			log.Printf("Failed to exchange token: %v", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		case errors.Is(err, auth.ErrIdentityUnresolved):
			log.Printf("Identity resolution failed: %v", err)
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		default:
			log.Printf("Callback failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}
	}

	if err := h.store.Save(email, token); err != nil {
		log.Printf("Failed to store token for %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to store token")
	}
	// Fresh credentials make anything cached for this user suspect.
	h.cache.Invalidate(email)

	return c.SendString("Authenticated as " + email + ". Call /events with the X-User-Email header.")
}

func (h *Handler) handleEvents(c *fiber.Ctx) error {
	email, token, ok := h.identify(c)
	if !ok {
		return nil
	}

	if events, ok := h.cache.GetEvents(email); ok {
		return c.JSON(events)
	}

	events, err := h.events.Upcoming(c.Context(), token)
	if err != nil {
		return h.fetchFailed(c, email, err)
	}
	h.cache.PutEvents(email, events)
	return c.JSON(events)
}

func (h *Handler) handleEventsSummary(c *fiber.Ctx) error {
	email, token, ok := h.identify(c)
	if !ok {
		return nil
	}

	if summary, ok := h.cache.GetSummary(email); ok {
		return c.JSON(summary)
	}

	events, err := h.events.Upcoming(c.Context(), token)
	if err != nil {
		return h.fetchFailed(c, email, err)
	}
	summary := calendar.Summarize(events)
	h.cache.PutSummary(email, summary)
	return c.JSON(summary)
}

func (h *Handler) handleEventByID(c *fiber.Ctx) error {
	email, token, ok := h.identify(c)
	if !ok {
		return nil
	}

	// No per-id cache entry: reuse (and arm) the full list.
	events, cached := h.cache.GetEvents(email)
	if !cached {
		fetched, err := h.events.Upcoming(c.Context(), token)
		if err != nil {
			return h.fetchFailed(c, email, err)
		}
		h.cache.PutEvents(email, fetched)
		events = fetched
	}

	id := c.Params("id")
	for _, event := range events {
		if event.ID == id {
			return c.JSON(event)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
}

// identify binds the caller-supplied email header to stored credentials.
// On failure the response has already been written and ok is false.
func (h *Handler) identify(c *fiber.Ctx) (email string, token *oauth2.Token, ok bool) {
	email = c.Get(headerUserEmail)
	if email == "" {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing " + headerUserEmail + " header",
		})
		return "", nil, false
	}

	token, err := h.store.Get(email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated, visit /auth first",
			})
			return "", nil, false
		}
		log.Printf("Failed to read user store for %s: %v", email, err)
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read user store",
		})
		return "", nil, false
	}
	return email, token, true
}

func (h *Handler) fetchFailed(c *fiber.Ctx, email string, err error) error {
	log.Printf("Failed to fetch events for %s: %v", email, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "failed to fetch events: " + err.Error(),
	})
}
