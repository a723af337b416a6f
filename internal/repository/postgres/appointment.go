package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/model"
)

const appointmentColumns = `
	id, patient_id, doctor_id, appointment_date_time, end_time,
	status, notes, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, appointment_date_time, end_time,
			status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("appointment not found")
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET doctor_id = $1, appointment_date_time = $2, end_time = $3,
			status = $4, notes = $5, updated_at = $6
		WHERE id = $7
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.DoctorID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM appointments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY appointment_date_time ASC`

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) GetByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY appointment_date_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) GetByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY appointment_date_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) GetByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE appointment_date_time >= $1
		AND appointment_date_time < $2
		ORDER BY appointment_date_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointments by date: %w", err)
	}
	return appointments, nil
}

// AssignPatient implements the upgrade-or-insert rule: a queued patient
// often already owns a doctorless appointment row, and booking them must
// claim that row instead of inserting a second one. The check and the
// write run in one transaction.
func (r *appointmentRepository) AssignPatient(ctx context.Context, patientID, doctorID uuid.UUID, start time.Time, end *time.Time) (*model.Appointment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var existing model.Appointment
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		AND doctor_id IS NULL
		AND status != 'cancelled'
		ORDER BY updated_at DESC
		LIMIT 1
		FOR UPDATE
	`
	err = tx.GetContext(ctx, &existing, query, patientID)
	switch {
	case err == nil:
		existing.DoctorID = &doctorID
		existing.StartTime = start
		existing.EndTime = end
		existing.Status = model.AppointmentStatusBooked
		existing.UpdatedAt = time.Now()

		update := `
			UPDATE appointments
			SET doctor_id = $1, appointment_date_time = $2, end_time = $3,
				status = $4, updated_at = $5
			WHERE id = $6
		`
		if _, err := tx.ExecContext(ctx, update,
			existing.DoctorID,
			existing.StartTime,
			existing.EndTime,
			existing.Status,
			existing.UpdatedAt,
			existing.ID,
		); err != nil {
			return nil, fmt.Errorf("failed to upgrade appointment: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit assignment: %w", err)
		}
		return &existing, nil

	case errors.Is(err, sql.ErrNoRows):
		appointment := &model.Appointment{
			PatientID: patientID,
			DoctorID:  &doctorID,
			StartTime: start,
			EndTime:   end,
			Status:    model.AppointmentStatusBooked,
		}
		appointment.ID = uuid.New()
		appointment.CreatedAt = time.Now()
		appointment.UpdatedAt = time.Now()

		insert := `
			INSERT INTO appointments (
				id, patient_id, doctor_id, appointment_date_time, end_time,
				status, notes, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		if _, err := tx.ExecContext(ctx, insert,
			appointment.ID,
			appointment.PatientID,
			appointment.DoctorID,
			appointment.StartTime,
			appointment.EndTime,
			appointment.Status,
			appointment.Notes,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to create appointment: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit assignment: %w", err)
		}
		return appointment, nil

	default:
		return nil, fmt.Errorf("failed to look up queued appointment: %w", err)
	}
}
