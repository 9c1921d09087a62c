package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/sudo-init-do/talentbook/internal/admin"
	"github.com/sudo-init-do/talentbook/internal/alerts"
	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/booking"
	"github.com/sudo-init-do/talentbook/internal/config"
	"github.com/sudo-init-do/talentbook/internal/db"
	"github.com/sudo-init-do/talentbook/internal/gig"
	"github.com/sudo-init-do/talentbook/internal/messaging"
	mware "github.com/sudo-init-do/talentbook/internal/middleware"
	"github.com/sudo-init-do/talentbook/internal/templates"
	"github.com/sudo-init-do/talentbook/internal/vendor"
)

type app struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	tokens     *auth.Tokens
	catalog    *templates.Catalog
	vendors    *vendor.Service
	pending    *vendor.PendingService
	gigs       *gig.Service
	bookings   *booking.Service
	hub        *messaging.Hub
	dispatcher *alerts.Dispatcher
	worker     *alerts.Worker
	expiry     *cron.Cron
}

// newApp wires stores, services and background jobs. Without DATABASE_URL
// every store lives in memory.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, tokens: auth.NewTokens(cfg.Auth.JWTSecret, cfg.AdminEmailList())}

	var (
		vendorStore  vendor.Store
		pendingStore vendor.PendingStore
		gigStore     gig.Store
		bookingStore booking.Store
	)
	if cfg.UseMemoryStores() {
		slog.Warn("DATABASE_URL not set, using in-memory stores")
		vendorStore, pendingStore = vendor.NewMemoryStore(), vendor.NewMemoryPendingStore()
		gigStore, bookingStore = gig.NewMemoryStore(), booking.NewMemoryStore()
	} else {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		vendorStore, pendingStore = vendor.NewPostgresStore(pool), vendor.NewPostgresPendingStore(pool)
		gigStore, bookingStore = gig.NewPostgresStore(pool), booking.NewPostgresStore(pool)
	}

	catalog, err := templates.Load(cfg.TemplatesPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("load templates: %w", err)
	}
	a.catalog = catalog

	mailer, err := alerts.NewMailer(cfg.Mail)
	if err != nil {
		a.close()
		return nil, err
	}
	processor := alerts.NewProcessor(mailer, alerts.NewMessenger(cfg.Twilio))
	a.dispatcher = alerts.NewDispatcher(cfg.RedisAddr, cfg.PublicBaseURL, processor)
	if cfg.RedisAddr != "" {
		if a.worker, err = alerts.StartWorker(cfg.RedisAddr, processor); err != nil {
			a.close()
			return nil, fmt.Errorf("start alerts worker: %w", err)
		}
	}

	a.hub = messaging.NewHub()
	a.vendors = vendor.NewService(vendorStore)
	a.pending = vendor.NewPendingService(pendingStore, a.vendors, a.dispatcher, cfg.PublicBaseURL, cfg.Invite.TTL)
	a.gigs = gig.NewService(gigStore, a.vendors, catalog, cfg.PublicBaseURL)
	a.bookings = booking.NewService(bookingStore, a.gigs, a.vendors, a.dispatcher, a.hub)
	return a, nil
}

// startJobs launches the invitation expiry schedule.
func (a *app) startJobs(ctx context.Context) error {
	c, err := vendor.StartExpiryScheduler(ctx, a.pending, a.cfg.Invite.ExpirySchedule)
	if err != nil {
		return err
	}
	a.expiry = c
	return nil
}

func (a *app) close() {
	if a.expiry != nil {
		<-a.expiry.Stop().Done()
	}
	a.worker.Close()
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(); err != nil {
			slog.Error("close dispatcher", slog.Any("err", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *app) ready(c echo.Context) error {
	if a.pool == nil {
		return c.JSON(http.StatusOK, echo.Map{"status": "ready", "store": "memory"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := a.pool.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}

func (a *app) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(mware.RequestContext)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
				return nil
			}
			slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	gigs := gig.NewHandler(a.gigs)
	vendors := vendor.NewHandler(a.vendors, a.pending)
	bookings := booking.NewHandler(a.bookings)
	stats := admin.NewHandler(a.gigs, a.bookings, a.vendors, a.pending)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", a.ready)

	// Public
	limiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(a.cfg.HTTP.PublicRateLimit)))
	e.GET("/templates", a.catalog.Handler)
	e.GET("/catalog/gigs", gigs.Catalog)
	e.GET("/gigs/slug/:slug", gigs.GetBySlug)
	e.GET("/vendors", vendors.ListPublic)
	e.GET("/vendors/:id", vendors.GetPublic)
	e.POST("/bookings", bookings.Submit, limiter)
	e.GET("/invites/:token", vendors.ViewInvite)
	e.POST("/invites/:token/confirm", vendors.ConfirmInvite, limiter)
	e.POST("/invites/:token/decline", vendors.DeclineInvite, limiter)

	// Authenticated, per route: unknown paths must stay 404.
	authn := mware.Authenticate(a.tokens, a.vendors)
	e.POST("/gigs", gigs.CreateDraft, authn)
	e.GET("/gigs/:id", gigs.Get, authn)
	e.PATCH("/gigs/:id", gigs.SaveStep, authn)
	e.POST("/gigs/:id/publish", gigs.Publish, authn)
	e.POST("/gigs/:id/unlist", gigs.Unlist, authn)
	e.GET("/vendors/:id/gigs", gigs.ListByVendor, authn)
	e.GET("/vendors/:id/bookings", bookings.ListByVendor, authn)
	e.GET("/vendors/:id/bookings/ws", a.hub.VendorBookingsWS, authn)
	e.PATCH("/vendors/:id", vendors.UpdateProfile, authn)
	e.POST("/vendors/register", vendors.Register, authn, mware.RequireUser)
	e.PATCH("/bookings/:id/status", bookings.SetStatus, authn)

	// Admin
	adm := e.Group("/admin", mware.Authenticate(a.tokens, nil), mware.AdminGuard)
	adm.GET("/stats", stats.Stats)
	adm.GET("/vendors", vendors.AdminList)
	adm.POST("/vendors", vendors.AdminCreate)
	adm.POST("/vendors/:id/archive", vendors.Archive)
	adm.POST("/vendors/:id/unarchive", vendors.Unarchive)
	adm.PATCH("/vendors/:id/flags", vendors.SetFlags)
	adm.GET("/pending-vendors", vendors.ListPending)
	adm.POST("/pending-vendors", vendors.CreatePending)
	adm.PATCH("/pending-vendors/:id", vendors.UpdatePending)
	adm.DELETE("/pending-vendors/:id", vendors.DeletePending)
	adm.POST("/pending-vendors/:id/invite", vendors.InvitePending)
	adm.GET("/gigs", gigs.AdminList)
	adm.POST("/gigs/:id/moderation", gigs.SetModeration)
	adm.POST("/gigs/:id/archive", gigs.Archive)
	adm.GET("/bookings", bookings.AdminList)

	return e
}
