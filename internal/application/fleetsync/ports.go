package fleetsync

import (
	"context"

	"github.com/locafleet/locafleet-api/internal/infrastructure/telemetry"
)

// TelemetryProvider porta de saída para o provedor de telemetria.
// A implementação concreta é telemetry.Client; testes injetam um fake.
// Cada método devolve o corpo cru da resposta para a trilha de integração.
type TelemetryProvider interface {
	Login(ctx context.Context, user, password string) (token, raw string, err error)
	ListCustomers(ctx context.Context, token string) ([]telemetry.CustomerRecord, string, error)
	ListVehicles(ctx context.Context, token, fleetRef string) ([]telemetry.VehicleRecord, string, error)
	VehiclePosition(ctx context.Context, token, providerID string) (*telemetry.Position, string, error)
}
