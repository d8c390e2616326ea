package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicsys/clinic/internal/platform/db"
	"github.com/clinicsys/clinic/pkg/calendar"
)

// pgPool is satisfied by *pgxpool.Pool.
type pgPool interface {
	db.Querier
	db.TxBeginner
}

// NewPGStore returns repositories backed by PostgreSQL.
func NewPGStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Clinics:      NewClinicRepoPG(pool),
		Doctors:      NewDoctorRepoPG(pool),
		Patients:     NewPatientRepoPG(pool),
		Appointments: NewAppointmentRepoPG(pool),
	}
}

// queryList runs a list query and scans every row. The result is never nil.
func queryList[E any](ctx context.Context, q db.Querier, scan func(pgx.Row) (*E, error), sql string, args ...interface{}) ([]*E, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*E, error) {
		return scan(row)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*E{}
	}
	return out, nil
}

// queryOne scans a single row, reporting no row as nil, nil.
func queryOne[E any](row pgx.Row, scan func(pgx.Row) (*E, error)) (*E, error) {
	e, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// deleteWithAppointments removes a parent row and the appointments that
// reference it in one serializable transaction.
func deleteWithAppointments(ctx context.Context, pool pgPool, parentSQL, childSQL string, id int64) error {
	return db.WithTx(ctx, pool, db.Serializable, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, childSQL, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, parentSQL, id)
		return err
	})
}

func toPGDate(d calendar.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func fromPGDate(d pgtype.Date) calendar.Date {
	if !d.Valid {
		return calendar.Date{}
	}
	return calendar.DateOf(d.Time)
}

func toPGTime(t calendar.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

func fromPGTime(t pgtype.Time) calendar.TimeOfDay {
	return calendar.TimeOfDay(time.Duration(t.Microseconds) * time.Microsecond)
}

// -- Clinic Repository --

type clinicRepoPG struct {
	pool pgPool
}

func NewClinicRepoPG(pool *pgxpool.Pool) ClinicRepository {
	return &clinicRepoPG{pool: pool}
}

const clinicCols = `id, name, address, phone_number`

func scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.PhoneNumber); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clinicRepoPG) ListPaged(ctx context.Context, skip, take int) ([]*Clinic, error) {
	if err := CheckPage(skip, take); err != nil {
		return nil, db.Wrap("list", "clinic", 0, err)
	}
	out, err := queryList(ctx, r.pool, scanClinic,
		`SELECT `+clinicCols+` FROM clinics ORDER BY id LIMIT $1 OFFSET $2`, take, skip)
	return out, db.Wrap("list", "clinic", 0, err)
}

func (r *clinicRepoPG) GetByID(ctx context.Context, id int64) (*Clinic, error) {
	c, err := queryOne(r.pool.QueryRow(ctx, `SELECT `+clinicCols+` FROM clinics WHERE id = $1`, id), scanClinic)
	return c, db.Wrap("get", "clinic", id, err)
}

func (r *clinicRepoPG) Create(ctx context.Context, c *Clinic) (*Clinic, error) {
	if err := c.Validate(); err != nil {
		return nil, db.Wrap("create", "clinic", 0, err)
	}
	out, err := scanClinic(r.pool.QueryRow(ctx, `
		INSERT INTO clinics (name, address, phone_number)
		VALUES ($1, $2, $3)
		RETURNING `+clinicCols,
		c.Name, c.Address, c.PhoneNumber,
	))
	if err != nil {
		return nil, db.Wrap("create", "clinic", 0, err)
	}
	return out, nil
}

func (r *clinicRepoPG) Update(ctx context.Context, c *Clinic) (*Clinic, error) {
	if err := c.Validate(); err != nil {
		return nil, db.Wrap("update", "clinic", c.ID, err)
	}
	out, err := queryOne(r.pool.QueryRow(ctx, `
		UPDATE clinics SET name = $2, address = $3, phone_number = $4
		WHERE id = $1
		RETURNING `+clinicCols,
		c.ID, c.Name, c.Address, c.PhoneNumber,
	), scanClinic)
	return out, db.Wrap("update", "clinic", c.ID, err)
}

func (r *clinicRepoPG) Delete(ctx context.Context, id int64) error {
	err := deleteWithAppointments(ctx, r.pool,
		`DELETE FROM clinics WHERE id = $1`,
		`DELETE FROM appointments WHERE clinic_id = $1`, id)
	return db.Wrap("delete", "clinic", id, err)
}

// -- Doctor Repository --

type doctorRepoPG struct {
	pool pgPool
}

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

const doctorCols = `id, first_name, last_name, specialization, phone_number, email`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Specialization, &d.PhoneNumber, &d.Email); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) ListPaged(ctx context.Context, skip, take int) ([]*Doctor, error) {
	if err := CheckPage(skip, take); err != nil {
		return nil, db.Wrap("list", "doctor", 0, err)
	}
	out, err := queryList(ctx, r.pool, scanDoctor,
		`SELECT `+doctorCols+` FROM doctors ORDER BY id LIMIT $1 OFFSET $2`, take, skip)
	return out, db.Wrap("list", "doctor", 0, err)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	d, err := queryOne(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id), scanDoctor)
	return d, db.Wrap("get", "doctor", id, err)
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) (*Doctor, error) {
	if err := d.Validate(); err != nil {
		return nil, db.Wrap("create", "doctor", 0, err)
	}
	out, err := scanDoctor(r.pool.QueryRow(ctx, `
		INSERT INTO doctors (first_name, last_name, specialization, phone_number, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+doctorCols,
		d.FirstName, d.LastName, d.Specialization, d.PhoneNumber, d.Email,
	))
	if err != nil {
		return nil, db.Wrap("create", "doctor", 0, err)
	}
	return out, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) (*Doctor, error) {
	if err := d.Validate(); err != nil {
		return nil, db.Wrap("update", "doctor", d.ID, err)
	}
	out, err := queryOne(r.pool.QueryRow(ctx, `
		UPDATE doctors SET
			first_name = $2, last_name = $3, specialization = $4,
			phone_number = $5, email = $6
		WHERE id = $1
		RETURNING `+doctorCols,
		d.ID, d.FirstName, d.LastName, d.Specialization, d.PhoneNumber, d.Email,
	), scanDoctor)
	return out, db.Wrap("update", "doctor", d.ID, err)
}

func (r *doctorRepoPG) Delete(ctx context.Context, id int64) error {
	err := deleteWithAppointments(ctx, r.pool,
		`DELETE FROM doctors WHERE id = $1`,
		`DELETE FROM appointments WHERE doctor_id = $1`, id)
	return db.Wrap("delete", "doctor", id, err)
}

// -- Patient Repository --

type patientRepoPG struct {
	pool pgPool
}

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

const patientCols = `id, first_name, last_name, date_of_birth, gender, phone_number, email, address`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var dob pgtype.Date
	var gender string
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &dob, &gender,
		&p.PhoneNumber, &p.Email, &p.Address); err != nil {
		return nil, err
	}
	p.DateOfBirth = fromPGDate(dob)
	p.Gender = Gender(gender)
	return &p, nil
}

func (r *patientRepoPG) ListPaged(ctx context.Context, skip, take int) ([]*Patient, error) {
	if err := CheckPage(skip, take); err != nil {
		return nil, db.Wrap("list", "patient", 0, err)
	}
	out, err := queryList(ctx, r.pool, scanPatient,
		`SELECT `+patientCols+` FROM patients ORDER BY id LIMIT $1 OFFSET $2`, take, skip)
	return out, db.Wrap("list", "patient", 0, err)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := queryOne(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id), scanPatient)
	return p, db.Wrap("get", "patient", id, err)
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if err := p.Validate(); err != nil {
		return nil, db.Wrap("create", "patient", 0, err)
	}
	out, err := scanPatient(r.pool.QueryRow(ctx, `
		INSERT INTO patients (first_name, last_name, date_of_birth, gender, phone_number, email, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+patientCols,
		p.FirstName, p.LastName, toPGDate(p.DateOfBirth), string(p.Gender),
		p.PhoneNumber, p.Email, p.Address,
	))
	if err != nil {
		return nil, db.Wrap("create", "patient", 0, err)
	}
	return out, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) (*Patient, error) {
	if err := p.Validate(); err != nil {
		return nil, db.Wrap("update", "patient", p.ID, err)
	}
	out, err := queryOne(r.pool.QueryRow(ctx, `
		UPDATE patients SET
			first_name = $2, last_name = $3, date_of_birth = $4, gender = $5,
			phone_number = $6, email = $7, address = $8
		WHERE id = $1
		RETURNING `+patientCols,
		p.ID, p.FirstName, p.LastName, toPGDate(p.DateOfBirth), string(p.Gender),
		p.PhoneNumber, p.Email, p.Address,
	), scanPatient)
	return out, db.Wrap("update", "patient", p.ID, err)
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) error {
	err := deleteWithAppointments(ctx, r.pool,
		`DELETE FROM patients WHERE id = $1`,
		`DELETE FROM appointments WHERE patient_id = $1`, id)
	return db.Wrap("delete", "patient", id, err)
}

// -- Appointment Repository --

type appointmentRepoPG struct {
	pool pgPool
}

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const appointmentCols = `id, patient_id, doctor_id, clinic_id, appointment_date, appointment_time, status, notes`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date pgtype.Date
	var tod pgtype.Time
	var status string
	if err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ClinicID,
		&date, &tod, &status, &a.Notes); err != nil {
		return nil, err
	}
	a.AppointmentDate = fromPGDate(date)
	a.AppointmentTime = fromPGTime(tod)
	a.Status = AppointmentStatus(status)
	return &a, nil
}

func (r *appointmentRepoPG) ListPaged(ctx context.Context, skip, take int) ([]*Appointment, error) {
	if err := CheckPage(skip, take); err != nil {
		return nil, db.Wrap("list", "appointment", 0, err)
	}
	out, err := queryList(ctx, r.pool, scanAppointment,
		`SELECT `+appointmentCols+` FROM appointments ORDER BY id LIMIT $1 OFFSET $2`, take, skip)
	return out, db.Wrap("list", "appointment", 0, err)
}

func (r *appointmentRepoPG) listBy(ctx context.Context, column string, id int64, skip, take int) ([]*Appointment, error) {
	if err := CheckPage(skip, take); err != nil {
		return nil, db.Wrap("list", "appointment", id, err)
	}
	out, err := queryList(ctx, r.pool, scanAppointment,
		`SELECT `+appointmentCols+` FROM appointments WHERE `+column+` = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		id, take, skip)
	return out, db.Wrap("list", "appointment", id, err)
}

func (r *appointmentRepoPG) ListByClinic(ctx context.Context, clinicID int64, skip, take int) ([]*Appointment, error) {
	return r.listBy(ctx, "clinic_id", clinicID, skip, take)
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID int64, skip, take int) ([]*Appointment, error) {
	return r.listBy(ctx, "doctor_id", doctorID, skip, take)
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID int64, skip, take int) ([]*Appointment, error) {
	return r.listBy(ctx, "patient_id", patientID, skip, take)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := queryOne(r.pool.QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id), scanAppointment)
	return a, db.Wrap("get", "appointment", id, err)
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	if err := a.Validate(); err != nil {
		return nil, db.Wrap("create", "appointment", 0, err)
	}
	out, err := scanAppointment(r.pool.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, clinic_id, appointment_date, appointment_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+appointmentCols,
		a.PatientID, a.DoctorID, a.ClinicID, toPGDate(a.AppointmentDate), toPGTime(a.AppointmentTime),
		string(a.Status), a.Notes,
	))
	if err != nil {
		return nil, db.Wrap("create", "appointment", 0, err)
	}
	return out, nil
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) (*Appointment, error) {
	if err := a.Validate(); err != nil {
		return nil, db.Wrap("update", "appointment", a.ID, err)
	}
	out, err := queryOne(r.pool.QueryRow(ctx, `
		UPDATE appointments SET
			patient_id = $2, doctor_id = $3, clinic_id = $4,
			appointment_date = $5, appointment_time = $6, status = $7, notes = $8
		WHERE id = $1
		RETURNING `+appointmentCols,
		a.ID, a.PatientID, a.DoctorID, a.ClinicID, toPGDate(a.AppointmentDate), toPGTime(a.AppointmentTime),
		string(a.Status), a.Notes,
	), scanAppointment)
	return out, db.Wrap("update", "appointment", a.ID, err)
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return db.Wrap("delete", "appointment", id, err)
}
