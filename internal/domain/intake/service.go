package intake

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder receives intake events for metrics.
type Recorder interface {
	PatientCreated()
	ValidationFailed(fields []string)
}

type nopRecorder struct{}

func (nopRecorder) PatientCreated()           {}
func (nopRecorder) ValidationFailed([]string) {}

type Service struct {
	store    Store
	logger   zerolog.Logger
	recorder Recorder
}

func NewService(store Store, logger zerolog.Logger, recorder Recorder) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{store: store, logger: logger, recorder: recorder}
}

// CreatePatient validates p and, when it passes, assigns a fresh id and
// appends it to the store. A rejected submission leaves the store untouched
// and returns a *ValidationError.
func (s *Service) CreatePatient(ctx context.Context, p Patient) (Patient, error) {
	if errs := Validate(p); len(errs) > 0 {
		fields := errs.Fields()
		s.recorder.ValidationFailed(fields)
		s.logger.Debug().Strs("fields", fields).Msg("patient submission rejected")
		return Patient{}, &ValidationError{Fields: errs}
	}
	if err := ctx.Err(); err != nil {
		return Patient{}, err
	}

	p.ID = uuid.NewString()
	s.store.Add(p)
	s.recorder.PatientCreated()
	s.logger.Info().Str("patient_id", p.ID).Str("ruangan", p.Ruangan).Msg("patient admitted")
	return p, nil
}

// ValidatePatient reports field errors without committing anything.
func (s *Service) ValidatePatient(p Patient) FieldErrors {
	return Validate(p)
}

func (s *Service) ListPatients(q Query) Result {
	return Paginate(s.store.All(), q)
}

// Count returns the number of records currently held.
func (s *Service) Count() int {
	return len(s.store.All())
}
