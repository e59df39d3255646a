package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix prefixes every environment override, e.g. APPOINTMENTEASE_DATABASE_HOST.
	EnvPrefix = "APPOINTMENTEASE"

	ServiceName = "appointmentease"

	// EventSubjectPrefix is the root NATS subject for appointment events.
	EventSubjectPrefix = "appointmentease.appointment"
)
