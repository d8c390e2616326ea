package clinic

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/clinicsys/clinic/internal/platform/db"
)

type memTable[E any] struct {
	rows map[int64]E
	next int64
}

func newMemTable[E any]() *memTable[E] {
	return &memTable[E]{rows: make(map[int64]E)}
}

// sortedIDs returns the ids of the rows accepted by keep, ascending.
func (t *memTable[E]) sortedIDs(keep func(E) bool) []int64 {
	ids := make([]int64, 0, len(t.rows))
	for id, row := range t.rows {
		if keep == nil || keep(row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// memDB holds every table behind one lock so that reference checks and
// cascades observe a consistent state.
type memDB struct {
	mu           sync.RWMutex
	clinics      *memTable[Clinic]
	doctors      *memTable[Doctor]
	patients     *memTable[Patient]
	appointments *memTable[Appointment]
}

func (m *memDB) deleteAppointments(match func(Appointment) bool) {
	for id, a := range m.appointments.rows {
		if match(a) {
			delete(m.appointments.rows, id)
		}
	}
}

// memRepo implements Repository over one memTable. Rows are copied on the
// way in and out so callers never share state with the store.
type memRepo[E any] struct {
	db       *memDB
	entity   string
	table    func(*memDB) *memTable[E]
	clone    func(E) E
	setID    func(*E, int64)
	validate func(*E) error
	refs     func(*memDB, *E) error
	cascade  func(*memDB, int64)
}

func (r *memRepo[E]) page(ctx context.Context, skip, take int, keep func(E) bool) ([]*E, error) {
	if err := CheckPage(skip, take); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t := r.table(r.db)
	ids := t.sortedIDs(keep)
	out := []*E{}
	if skip >= len(ids) {
		return out, nil
	}
	ids = ids[skip:]
	if take < len(ids) {
		ids = ids[:take]
	}
	for _, id := range ids {
		e := r.clone(t.rows[id])
		out = append(out, &e)
	}
	return out, nil
}

func (r *memRepo[E]) ListPaged(ctx context.Context, skip, take int) ([]*E, error) {
	out, err := r.page(ctx, skip, take, nil)
	if err != nil {
		return nil, db.Wrap("list", r.entity, 0, err)
	}
	return out, nil
}

func (r *memRepo[E]) GetByID(ctx context.Context, id int64) (*E, error) {
	if err := ctx.Err(); err != nil {
		return nil, db.Wrap("get", r.entity, id, err)
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.table(r.db).rows[id]
	if !ok {
		return nil, nil
	}
	e := r.clone(row)
	return &e, nil
}

func (r *memRepo[E]) Create(ctx context.Context, in *E) (*E, error) {
	if err := r.check(ctx, in); err != nil {
		return nil, db.Wrap("create", r.entity, 0, err)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.refs != nil {
		if err := r.refs(r.db, in); err != nil {
			return nil, db.Wrap("create", r.entity, 0, err)
		}
	}

	t := r.table(r.db)
	t.next++
	row := r.clone(*in)
	r.setID(&row, t.next)
	t.rows[t.next] = row

	out := r.clone(row)
	return &out, nil
}

func (r *memRepo[E]) Update(ctx context.Context, in *E) (*E, error) {
	id := entityID(in)
	if err := r.check(ctx, in); err != nil {
		return nil, db.Wrap("update", r.entity, id, err)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t := r.table(r.db)
	if _, ok := t.rows[id]; !ok {
		return nil, nil
	}
	if r.refs != nil {
		if err := r.refs(r.db, in); err != nil {
			return nil, db.Wrap("update", r.entity, id, err)
		}
	}

	row := r.clone(*in)
	t.rows[id] = row

	out := r.clone(row)
	return &out, nil
}

func (r *memRepo[E]) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return db.Wrap("delete", r.entity, id, err)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t := r.table(r.db)
	if _, ok := t.rows[id]; !ok {
		return nil
	}
	if r.cascade != nil {
		r.cascade(r.db, id)
	}
	delete(t.rows, id)
	return nil
}

func (r *memRepo[E]) check(ctx context.Context, in *E) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.validate(in)
}

func entityID(e interface{}) int64 {
	if v, ok := e.(interface{ GetID() int64 }); ok {
		return v.GetID()
	}
	return 0
}

type memAppointmentRepo struct {
	*memRepo[Appointment]
}

func (r *memAppointmentRepo) listBy(ctx context.Context, id int64, skip, take int, match func(Appointment) bool) ([]*Appointment, error) {
	out, err := r.page(ctx, skip, take, match)
	if err != nil {
		return nil, db.Wrap("list", r.entity, id, err)
	}
	return out, nil
}

func (r *memAppointmentRepo) ListByClinic(ctx context.Context, clinicID int64, skip, take int) ([]*Appointment, error) {
	return r.listBy(ctx, clinicID, skip, take, func(a Appointment) bool { return a.ClinicID == clinicID })
}

func (r *memAppointmentRepo) ListByDoctor(ctx context.Context, doctorID int64, skip, take int) ([]*Appointment, error) {
	return r.listBy(ctx, doctorID, skip, take, func(a Appointment) bool { return a.DoctorID == doctorID })
}

func (r *memAppointmentRepo) ListByPatient(ctx context.Context, patientID int64, skip, take int) ([]*Appointment, error) {
	return r.listBy(ctx, patientID, skip, take, func(a Appointment) bool { return a.PatientID == patientID })
}

// NewMemStore returns repositories backed by process memory. Ids start at 1
// per table and are never reused.
func NewMemStore() *Store {
	m := &memDB{
		clinics:      newMemTable[Clinic](),
		doctors:      newMemTable[Doctor](),
		patients:     newMemTable[Patient](),
		appointments: newMemTable[Appointment](),
	}

	return &Store{
		Clinics: &memRepo[Clinic]{
			db:       m,
			entity:   "clinic",
			table:    func(m *memDB) *memTable[Clinic] { return m.clinics },
			clone:    cloneClinic,
			setID:    func(c *Clinic, id int64) { c.ID = id },
			validate: (*Clinic).Validate,
			cascade: func(m *memDB, id int64) {
				m.deleteAppointments(func(a Appointment) bool { return a.ClinicID == id })
			},
		},
		Doctors: &memRepo[Doctor]{
			db:       m,
			entity:   "doctor",
			table:    func(m *memDB) *memTable[Doctor] { return m.doctors },
			clone:    cloneDoctor,
			setID:    func(d *Doctor, id int64) { d.ID = id },
			validate: (*Doctor).Validate,
			cascade: func(m *memDB, id int64) {
				m.deleteAppointments(func(a Appointment) bool { return a.DoctorID == id })
			},
		},
		Patients: &memRepo[Patient]{
			db:       m,
			entity:   "patient",
			table:    func(m *memDB) *memTable[Patient] { return m.patients },
			clone:    clonePatient,
			setID:    func(p *Patient, id int64) { p.ID = id },
			validate: (*Patient).Validate,
			cascade: func(m *memDB, id int64) {
				m.deleteAppointments(func(a Appointment) bool { return a.PatientID == id })
			},
		},
		Appointments: &memAppointmentRepo{&memRepo[Appointment]{
			db:       m,
			entity:   "appointment",
			table:    func(m *memDB) *memTable[Appointment] { return m.appointments },
			clone:    cloneAppointment,
			setID:    func(a *Appointment, id int64) { a.ID = id },
			validate: (*Appointment).Validate,
			refs:     checkAppointmentRefs,
		}},
	}
}

// checkAppointmentRefs mirrors the foreign keys of the appointments table.
func checkAppointmentRefs(m *memDB, a *Appointment) error {
	if _, ok := m.patients.rows[a.PatientID]; !ok {
		return fmt.Errorf("%w: patient %d does not exist", db.ErrConstraintViolation, a.PatientID)
	}
	if _, ok := m.doctors.rows[a.DoctorID]; !ok {
		return fmt.Errorf("%w: doctor %d does not exist", db.ErrConstraintViolation, a.DoctorID)
	}
	if _, ok := m.clinics.rows[a.ClinicID]; !ok {
		return fmt.Errorf("%w: clinic %d does not exist", db.ErrConstraintViolation, a.ClinicID)
	}
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneClinic(c Clinic) Clinic {
	c.Address = cloneString(c.Address)
	c.PhoneNumber = cloneString(c.PhoneNumber)
	return c
}

func cloneDoctor(d Doctor) Doctor {
	d.PhoneNumber = cloneString(d.PhoneNumber)
	d.Email = cloneString(d.Email)
	return d
}

func clonePatient(p Patient) Patient {
	p.PhoneNumber = cloneString(p.PhoneNumber)
	p.Email = cloneString(p.Email)
	p.Address = cloneString(p.Address)
	return p
}

func cloneAppointment(a Appointment) Appointment {
	a.Notes = cloneString(a.Notes)
	return a
}
