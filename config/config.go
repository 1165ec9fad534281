// Package config defines the application configuration loaded by
// go-config from config files and environment overrides.
package config

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type AppConfig struct {
	Server      Server      `json:"server"`
	Identity    Identity    `json:"identity"`
	Cookie      Cookie      `json:"cookie"`
	Persistence Persistence `json:"persistence"`
}

type Server struct {
	Address string `json:"address"`
	Views   string `json:"views"`
}

type Identity struct {
	BaseURL           string `json:"base_url"`
	TimeoutExpression string `json:"timeout"`
}

type Cookie struct {
	Name     string `json:"name"`
	MaxAge   int    `json:"max_age"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"http_only"`
}

type Persistence struct {
	DSN string `json:"dsn"`
}

func (a AppConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Identity),
	)
}

func (i Identity) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.BaseURL, validation.Required, is.URL),
	)
}

func (a AppConfig) GetServer() Server {
	return a.Server
}

func (a AppConfig) GetIdentity() Identity {
	return a.Identity
}

func (a AppConfig) GetPersistence() Persistence {
	return a.Persistence
}

// Cookie getters satisfy the auth package's Config interface.

func (a AppConfig) GetCookieName() string {
	return a.Cookie.Name
}

func (a AppConfig) GetCookieMaxAge() int {
	return a.Cookie.MaxAge
}

func (a AppConfig) GetCookieSecure() bool {
	return a.Cookie.Secure
}

func (a AppConfig) GetCookieHTTPOnly() bool {
	return a.Cookie.HTTPOnly
}

func (s Server) GetAddress() string {
	if s.Address == "" {
		return ":8080"
	}
	return s.Address
}

func (s Server) GetViews() string {
	if s.Views == "" {
		return "./views"
	}
	return s.Views
}

func (i Identity) GetBaseURL() string {
	return i.BaseURL
}

func (i Identity) GetTimeout() time.Duration {
	if i.TimeoutExpression == "" {
		return 10 * time.Second
	}
	dur, err := time.ParseDuration(i.TimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", i.TimeoutExpression),
		)
	}
	return dur
}

func (p Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file::memory:?cache=shared"
	}
	return p.DSN
}
