package handler

import (
	"context"

	donationsdomain "parish-app-go/internal/domain/donations"
	eventsdomain "parish-app-go/internal/domain/events"
	faithfuldomain "parish-app-go/internal/domain/faithful"
	intentionsdomain "parish-app-go/internal/domain/intentions"
	priestsdomain "parish-app-go/internal/domain/priests"
	statisticsdomain "parish-app-go/internal/domain/statistics"
	"parish-app-go/internal/metrics"
	"parish-app-go/pkg/logger"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type Services struct {
	Faithful   *faithfuldomain.Service
	Priests    *priestsdomain.Service
	Events     *eventsdomain.Service
	Intentions *intentionsdomain.Service
	Donations  *donationsdomain.Service
	Statistics *statisticsdomain.Service
}

type Handlers struct {
	Faithful   *faithfuldomain.Service
	Priests    *priestsdomain.Service
	Events     *eventsdomain.Service
	Intentions *intentionsdomain.Service
	Donations  *donationsdomain.Service
	Statistics *statisticsdomain.Service

	db      Pinger
	metrics *metrics.Metrics
	log     logger.Logger
}

// New wires the handlers. m may be nil when metrics are disabled.
func New(services Services, db Pinger, m *metrics.Metrics, log logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{
		Faithful:   services.Faithful,
		Priests:    services.Priests,
		Events:     services.Events,
		Intentions: services.Intentions,
		Donations:  services.Donations,
		Statistics: services.Statistics,
		db:         db,
		metrics:    m,
		log:        log,
	}
}
