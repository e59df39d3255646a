package app

import (
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/ridhamz/AppointmentEase/config"
	"github.com/ridhamz/AppointmentEase/internal/repo"
	"github.com/ridhamz/AppointmentEase/internal/service/appointment"
	"github.com/ridhamz/AppointmentEase/internal/service/user"
	"github.com/ridhamz/AppointmentEase/pkg/authorize"
	"github.com/ridhamz/AppointmentEase/pkg/observability"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideUserService,
		ProvideAppointmentService,
	),
)

func ProvideUserService(users repo.UserStore, authz authorize.IAuthorization) user.Service {
	return user.New(users, authz)
}

// The OTel provider must be installed before the service creates its instruments.
func ProvideAppointmentService(
	client *repo.Client,
	users repo.UserStore,
	nc *nats.Conn,
	cfg *config.Config,
	_ *observability.Provider,
) appointment.Service {
	detector := appointment.NewDetector(appointment.WindowFromConfig(cfg.Booking))
	return appointment.New(client, users, detector, appointment.NewNatsPublisher(nc))
}
