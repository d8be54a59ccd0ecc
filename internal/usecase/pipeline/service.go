package pipeline

import (
	"time"

	"agrimaint/internal/ports"
	"agrimaint/internal/sensorspec"
)

// Params are the immutable pipeline knobs, resolved once at bootstrap.
type Params struct {
	LookbackDays       int
	FailureHorizonDays int
}

// Service runs the batch stages: clean, features, predict, decide. Each
// equipment is evaluated independently and statelessly per run.
type Service struct {
	repo   ports.FleetRepository
	uow    ports.UnitOfWork
	models ports.ModelStore
	spec   sensorspec.Profile
	params Params
	now    func() time.Time
}

func NewService(repo ports.FleetRepository, uow ports.UnitOfWork, models ports.ModelStore, spec sensorspec.Profile, params Params) *Service {
	if params.LookbackDays <= 0 {
		params.LookbackDays = 30
	}
	if params.FailureHorizonDays <= 0 {
		params.FailureHorizonDays = 30
	}
	return &Service{
		repo:   repo,
		uow:    uow,
		models: models,
		spec:   spec,
		params: params,
		now:    time.Now,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
