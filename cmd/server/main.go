package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/tlsunbound/authgate"
	"github.com/tlsunbound/authgate/config"
	"github.com/tlsunbound/authgate/identity"
	"github.com/tlsunbound/authgate/middleware/gateware"
	"github.com/tlsunbound/authgate/store"
)

type App struct {
	config   *gconfig.Container[*config.AppConfig]
	logger   *glog.BaseLogger
	store    *store.Store
	identity *identity.Client
	srv      router.Server[*fiber.App]
}

func (a *App) Config() *config.AppConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("authgate"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.AppConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithIdentityClient(app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetServer().GetAddress())

	WaitExitSignal()

	app.store.Close()
}

func WithPersistence(ctx context.Context, app *App) error {
	st, err := store.Open(ctx, app.Config().GetPersistence().GetDSN())
	if err != nil {
		return err
	}

	app.store = st

	return nil
}

func WithIdentityClient(app *App) error {
	cfg := app.Config().GetIdentity()

	client, err := identity.New(identity.Config{
		BaseURL: cfg.GetBaseURL(),
		Timeout: cfg.GetTimeout(),
	})
	if err != nil {
		return err
	}

	app.identity = client

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	engine := django.New(app.Config().GetServer().GetViews(), ".html")

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	gate := gateware.New(gateware.Config{
		CookieName: app.Config().GetCookieName(),
		Verifier:   app.identity,
	})

	authgate.RegisterAuthRoutes(srv.Router().Group("/"),
		func(ac *authgate.AuthController) *authgate.AuthController {
			ac.Identity = app.identity
			ac.Cookies = authgate.NewTokenCookies(app.Config())
			ac.Probe = app.store.Checks()
			ac.Gate = gate
			ac.WithLogger(app.GetLogger("auth:ctrl"))
			return ac
		})

	srv.Router().Get("/", func(ctx router.Context) error {
		return ctx.Render("index", router.ViewContext{
			"title": "Home",
		})
	})

	srv.Router().Get("/protected-example", func(ctx router.Context) error {
		return ctx.Render("protected_example", router.ViewContext{
			"title": "Protected Example",
		})
	})

	srv.Router().Static("/public", "./public")

	app.srv = srv

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
