package domain

import (
	"fmt"

	"github.com/stackos/landing/config"
	"github.com/stackos/landing/domain/admin"
	"github.com/stackos/landing/domain/monitoring"
	"github.com/stackos/landing/domain/session"
	"github.com/stackos/landing/domain/waitlist"
	"github.com/stackos/landing/pkg/events"
	"github.com/stackos/landing/web"
)

// SetupCoreDomain mounts every controller on the application router.
func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	rs := appConfig.RouterService

	templates, err := web.Templates()
	if err != nil {
		return fmt.Errorf("load page templates: %w", err)
	}
	rs.SetHTMLTemplate(templates)

	var queue monitoring.MessageQueue
	if _, nop := appConfig.Publisher.(events.NopPublisher); !nop && appConfig.Publisher != nil {
		queue = appConfig.Publisher
	}

	var cache monitoring.Cache
	var store session.TokenStore
	if appConfig.Cache != nil {
		cache = appConfig.Cache
		store = appConfig.Cache
	}

	rs.MountController(monitoring.NewMonitoringControllerFactory(
		appConfig.DB, appConfig.Logger, cache, queue, appConfig.Limiters,
	).CreateController())

	waitlistFactory := waitlist.NewWaitlistServiceFactory(
		appConfig.DB, appConfig.Logger, appConfig.Publisher, appConfig.Limiters, rs.MetricsRegisterer(),
	)
	for _, controller := range waitlistFactory.CreateControllers() {
		rs.MountController(controller)
	}

	sessionFactory := session.NewSessionServiceFactory(session.Config{
		Provider:    appConfig.Auth.Provider,
		Verifier:    appConfig.Auth.Verifier,
		Store:       store,
		AdminEmails: appConfig.Auth.AdminEmails,
		Cookies:     session.CookieConfig{Secure: appConfig.Auth.CookieSecure},
	}, appConfig.Logger, appConfig.Limiters, rs.MetricsRegisterer())
	for _, controller := range sessionFactory.CreateControllers() {
		rs.MountController(controller)
	}

	adminFactory := admin.NewAdminServiceFactory(appConfig.DB, appConfig.Logger)
	for _, controller := range adminFactory.CreateControllers(sessionFactory.RequireSession()) {
		rs.MountController(controller)
	}

	return nil
}
