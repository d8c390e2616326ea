package clinic

import (
	"context"

	"github.com/rs/zerolog"
)

type loggingRepo[E Entity] struct {
	next   Repository[E]
	entity string
	log    zerolog.Logger
}

// WithLogging wraps next so every call is logged. Results and errors pass
// through unchanged.
func WithLogging[E Entity](next Repository[E], entity string, logger zerolog.Logger) Repository[E] {
	return &loggingRepo[E]{
		next:   next,
		entity: entity,
		log:    logger.With().Str("component", "repository").Str("entity", entity).Logger(),
	}
}

func (r *loggingRepo[E]) ListPaged(ctx context.Context, skip, take int) ([]*E, error) {
	r.log.Info().Int("skip", skip).Int("take", take).Msgf("getting %ss", r.entity)
	out, err := r.next.ListPaged(ctx, skip, take)
	if err != nil {
		r.log.Error().Err(err).Int("skip", skip).Int("take", take).Msgf("failed to list %ss", r.entity)
		return nil, err
	}
	r.log.Info().Int("count", len(out)).Msgf("retrieved %d %ss", len(out), r.entity)
	return out, nil
}

func (r *loggingRepo[E]) GetByID(ctx context.Context, id int64) (*E, error) {
	r.log.Info().Int64("id", id).Msgf("getting %s", r.entity)
	out, err := r.next.GetByID(ctx, id)
	if err != nil {
		r.log.Error().Err(err).Int64("id", id).Msgf("failed to get %s", r.entity)
		return nil, err
	}
	if out == nil {
		r.log.Warn().Int64("id", id).Msgf("%s not found", r.entity)
	}
	return out, nil
}

func (r *loggingRepo[E]) Create(ctx context.Context, e *E) (*E, error) {
	r.log.Info().Msgf("creating %s", r.entity)
	out, err := r.next.Create(ctx, e)
	if err != nil {
		r.log.Error().Err(err).Msgf("failed to create %s", r.entity)
		return nil, err
	}
	r.log.Info().Int64("id", (*out).GetID()).Msgf("created %s", r.entity)
	return out, nil
}

func (r *loggingRepo[E]) Update(ctx context.Context, e *E) (*E, error) {
	id := (*e).GetID()
	r.log.Info().Int64("id", id).Msgf("updating %s", r.entity)
	out, err := r.next.Update(ctx, e)
	if err != nil {
		r.log.Error().Err(err).Int64("id", id).Msgf("failed to update %s", r.entity)
		return nil, err
	}
	if out == nil {
		r.log.Warn().Int64("id", id).Msgf("%s not found for update", r.entity)
		return nil, nil
	}
	r.log.Info().Int64("id", id).Msgf("updated %s", r.entity)
	return out, nil
}

func (r *loggingRepo[E]) Delete(ctx context.Context, id int64) error {
	r.log.Info().Int64("id", id).Msgf("deleting %s", r.entity)
	if err := r.next.Delete(ctx, id); err != nil {
		r.log.Error().Err(err).Int64("id", id).Msgf("failed to delete %s", r.entity)
		return err
	}
	r.log.Info().Int64("id", id).Msgf("deleted %s", r.entity)
	return nil
}

type loggingAppointmentRepo struct {
	Repository[Appointment]
	next AppointmentRepository
	log  zerolog.Logger
}

// WithAppointmentLogging wraps an AppointmentRepository, including its
// relation lookups.
func WithAppointmentLogging(next AppointmentRepository, logger zerolog.Logger) AppointmentRepository {
	return &loggingAppointmentRepo{
		Repository: WithLogging[Appointment](next, "appointment", logger),
		next:       next,
		log:        logger.With().Str("component", "repository").Str("entity", "appointment").Logger(),
	}
}

func (r *loggingAppointmentRepo) listBy(relation string, id int64, skip, take int, fn func() ([]*Appointment, error)) ([]*Appointment, error) {
	r.log.Info().Str("relation", relation).Int64("relation_id", id).Int("skip", skip).Int("take", take).
		Msg("getting appointments")
	out, err := fn()
	if err != nil {
		r.log.Error().Err(err).Str("relation", relation).Int64("relation_id", id).Msg("failed to list appointments")
		return nil, err
	}
	r.log.Info().Str("relation", relation).Int64("relation_id", id).Int("count", len(out)).
		Msgf("retrieved %d appointments", len(out))
	return out, nil
}

func (r *loggingAppointmentRepo) ListByClinic(ctx context.Context, clinicID int64, skip, take int) ([]*Appointment, error) {
	return r.listBy("clinic", clinicID, skip, take, func() ([]*Appointment, error) {
		return r.next.ListByClinic(ctx, clinicID, skip, take)
	})
}

func (r *loggingAppointmentRepo) ListByDoctor(ctx context.Context, doctorID int64, skip, take int) ([]*Appointment, error) {
	return r.listBy("doctor", doctorID, skip, take, func() ([]*Appointment, error) {
		return r.next.ListByDoctor(ctx, doctorID, skip, take)
	})
}

func (r *loggingAppointmentRepo) ListByPatient(ctx context.Context, patientID int64, skip, take int) ([]*Appointment, error) {
	return r.listBy("patient", patientID, skip, take, func() ([]*Appointment, error) {
		return r.next.ListByPatient(ctx, patientID, skip, take)
	})
}

// WithStoreLogging wraps every repository of s.
func WithStoreLogging(s *Store, logger zerolog.Logger) *Store {
	return &Store{
		Clinics:      WithLogging[Clinic](s.Clinics, "clinic", logger),
		Doctors:      WithLogging[Doctor](s.Doctors, "doctor", logger),
		Patients:     WithLogging[Patient](s.Patients, "patient", logger),
		Appointments: WithAppointmentLogging(s.Appointments, logger),
	}
}
