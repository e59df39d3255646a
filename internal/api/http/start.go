package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/ridhamz/AppointmentEase/config"
	"github.com/ridhamz/AppointmentEase/internal/api/http/router"
	"github.com/ridhamz/AppointmentEase/internal/app"
)

// Start builds the whole application graph and blocks until a stop signal.
func Start(cfg *config.Config, timeout time.Duration, opts ...fx.Option) {
	fx.New(append([]fx.Option{
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module, // This is the http.Module from server.go

		// Invoke *fiber.App because that's what NewServer returns.
		// This forces the creation of fiber.App, triggering the OnStart hook
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
	}, opts...)...).Run()
}
