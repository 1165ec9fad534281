package authgate

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/tlsunbound/authgate/store"
)

// ConnectionProbe reads the seeded connectivity row served by the db-test
// endpoint.
type ConnectionProbe interface {
	Seeded(ctx context.Context) (*store.ConnectionCheck, error)
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")

	app.
		Post(controller.Routes.Logout, controller.LogoutPost).
		SetName("auth.logout.post")

	app.
		Get(controller.Routes.Verify, controller.VerifyGet).
		SetName("auth.verify.get")

	if controller.Gate != nil {
		app.Get(controller.Routes.Example, controller.ExampleGet, controller.Gate).
			SetName("api.example.get")
	} else {
		app.Get(controller.Routes.Example, controller.ExampleGet).
			SetName("api.example.get")
	}

	app.Get(controller.Routes.DBTest, controller.DBTestGet).
		SetName("api.db-test.get")
}

type AuthControllerRoutes struct {
	Login   string
	Logout  string
	Verify  string
	Example string
	DBTest  string
}

type AuthController struct {
	Debug    bool
	Logger   Logger
	Identity IdentityClient
	Cookies  *TokenCookies
	Probe    ConnectionProbe
	Routes   *AuthControllerRoutes

	// Gate, when set, fronts the protected example route.
	Gate router.MiddlewareFunc
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:   "/auth",
			Logout:  "/logout",
			Verify:  "/verify",
			Example: "/example",
			DBTest:  "/db-test",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Identity == nil {
		panic("Missing IdentityClient in auth controller...")
	}

	if c.Cookies == nil {
		c.Cookies = NewTokenCookies(nil)
	}

	return c
}

// WithLogger sets the controller logger.
func (a *AuthController) WithLogger(logger Logger) *AuthController {
	a.Logger = logger
	return a
}

// LoginRequest payload
type LoginRequest struct {
	User string `form:"user" json:"user"`
	Pass string `form:"pass" json:"pass"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.User,
			validation.Required,
		),
		validation.Field(
			&r.Pass,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login: bind payload: %s", err)
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": "Username and password are required",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": "Username and password are required",
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	result, err := a.Identity.Authenticate(ctx.Context(), payload.User, payload.Pass)
	if err != nil {
		a.Logger.Error("login: authenticate %q: %s", payload.User, err)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{
			"error": "Authentication failed",
		})
	}

	if !result.Verified || result.Token == "" {
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"error": "Invalid credentials",
		})
	}

	a.Cookies.Write(ctx, result.Token)

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"user":    payload.User,
	})
}

func (a *AuthController) LogoutPost(ctx router.Context) error {
	a.Cookies.Delete(ctx)
	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
	})
}

func (a *AuthController) VerifyGet(ctx router.Context) error {
	token := a.Cookies.Read(ctx)
	if token == "" {
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"valid": false,
		})
	}

	result, err := a.Identity.Verify(ctx.Context(), token)
	if err != nil {
		a.Logger.Error("verify: %s", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{
			"valid": false,
		})
	}

	if !result.Valid {
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"valid": false,
		})
	}

	body := map[string]any{
		"valid": true,
		"user":  result.User,
		"exp":   result.Exp,
	}
	if result.IssuedAt != 0 {
		body["iat"] = result.IssuedAt
	}

	return ctx.JSON(router.StatusOK, body)
}

// ExampleGet serves a sample payload behind the request gate so a deployment
// can confirm protected routes reject anonymous traffic.
func (a *AuthController) ExampleGet(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "This is a protected API endpoint response!",
		"data": map[string]any{
			"text":      "If you can see this, you are authenticated.",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"info":      "This endpoint is protected and requires a valid authentication token.",
		},
	})
}

// DBTestGet is a public connectivity check that reads the seeded row.
func (a *AuthController) DBTestGet(ctx router.Context) error {
	if a.Probe == nil {
		return ctx.JSON(router.StatusInternalServerError, map[string]any{
			"error": "Database connection failed",
		})
	}

	row, err := a.Probe.Seeded(ctx.Context())
	if err != nil {
		if store.IsNotFound(err) {
			return ctx.JSON(router.StatusNotFound, map[string]any{
				"error": "No data found",
			})
		}
		a.Logger.Error("db-test: %s", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{
			"error": "Database connection failed",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"id":          row.ID,
		"title":       row.Title,
		"description": row.Description,
	})
}
