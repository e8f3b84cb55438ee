package client

import (
	"context"
	"time"

	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/pkg/logger"
	"github.com/okian/spinner/pkg/metrics"
)

// Operation names used in logs and metrics.
const (
	OpGetAuthInfo         = "get_auth_info"
	OpAuthenticate        = "authenticate"
	OpLogout              = "logout"
	OpLoadConfigurations  = "load_configurations"
	OpLoadConfiguration   = "load_configuration_by_id"
	OpSaveConfiguration   = "save_configuration"
	OpDeleteConfiguration = "delete_configuration"
	OpSetActive           = "set_active_configuration"
	OpGetActive           = "get_active_configuration_id"
	OpEnvironmentConfig   = "get_environment_config"
)

type instrumented struct {
	next    Client
	variant string
	logger  logger.Logger
}

// Instrument wraps c so every operation is logged and counted.
func Instrument(c Client, variant string, l logger.Logger) Client {
	if variant == "" {
		variant = "unknown"
	}
	return &instrumented{next: c, variant: variant, logger: logger.OrNop(l)}
}

func (i *instrumented) observe(ctx context.Context, op, result string, started time.Time, err error) {
	latency := time.Since(started)
	metrics.RecordClientOperation(i.variant, op, result, float64(latency.Microseconds())/1000)
	fields := []logger.Field{
		logger.String("variant", i.variant),
		logger.String("operation", op),
		logger.String("result", result),
		logger.Duration("latency", latency),
	}
	switch result {
	case ResultSuccess, ResultRejected, ResultNotFound, ResultNotAuthenticated:
		i.logger.Debug(ctx, "client operation", fields...)
	default:
		metrics.RecordErrorByComponent("client_"+i.variant, result)
		i.logger.Warn(ctx, "client operation failed", append(fields, logger.Error(err))...)
	}
}

func (i *instrumented) GetAuthInfo(ctx context.Context) model.AuthState {
	started := time.Now()
	state := i.next.GetAuthInfo(ctx)
	i.observe(ctx, OpGetAuthInfo, ResultSuccess, started, nil)
	return state
}

func (i *instrumented) Authenticate(ctx context.Context, email, password string) model.AuthState {
	started := time.Now()
	state := i.next.Authenticate(ctx, email, password)
	result := ResultSuccess
	if !state.IsAuthenticated {
		result = ResultRejected
	}
	i.observe(ctx, OpAuthenticate, result, started, nil)
	return state
}

func (i *instrumented) Logout(ctx context.Context) {
	started := time.Now()
	i.next.Logout(ctx)
	i.observe(ctx, OpLogout, ResultSuccess, started, nil)
}

func (i *instrumented) LoadConfigurations(ctx context.Context) ([]model.WheelConfiguration, error) {
	started := time.Now()
	out, err := i.next.LoadConfigurations(ctx)
	i.observe(ctx, OpLoadConfigurations, ResultOf(err), started, err)
	return out, err
}

func (i *instrumented) LoadConfigurationByID(ctx context.Context, id string) (model.WheelConfiguration, error) {
	started := time.Now()
	out, err := i.next.LoadConfigurationByID(ctx, id)
	i.observe(ctx, OpLoadConfiguration, ResultOf(err), started, err)
	return out, err
}

func (i *instrumented) SaveConfiguration(ctx context.Context, cfg model.WheelConfiguration) (string, error) {
	started := time.Now()
	id, err := i.next.SaveConfiguration(ctx, cfg)
	i.observe(ctx, OpSaveConfiguration, ResultOf(err), started, err)
	return id, err
}

func (i *instrumented) DeleteConfiguration(ctx context.Context, id string) error {
	started := time.Now()
	err := i.next.DeleteConfiguration(ctx, id)
	i.observe(ctx, OpDeleteConfiguration, ResultOf(err), started, err)
	return err
}

func (i *instrumented) SetActiveConfiguration(ctx context.Context, id string) error {
	started := time.Now()
	err := i.next.SetActiveConfiguration(ctx, id)
	i.observe(ctx, OpSetActive, ResultOf(err), started, err)
	return err
}

func (i *instrumented) GetActiveConfigurationID(ctx context.Context) (string, bool) {
	started := time.Now()
	id, ok := i.next.GetActiveConfigurationID(ctx)
	i.observe(ctx, OpGetActive, ResultSuccess, started, nil)
	return id, ok
}

func (i *instrumented) GetEnvironmentConfig(ctx context.Context) model.EnvironmentConfig {
	started := time.Now()
	env := i.next.GetEnvironmentConfig(ctx)
	i.observe(ctx, OpEnvironmentConfig, ResultSuccess, started, nil)
	return env
}
