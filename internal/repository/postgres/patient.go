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

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, serial_no, name, age, gender, priority,
			symptoms, avatar, requested_time, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.SerialNo,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Priority,
		patient.Symptoms,
		patient.Avatar,
		patient.RequestedTime,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, serial_no, name, age, gender, priority,
			   symptoms, avatar, requested_time, created_at, updated_at
		FROM patients
		WHERE id = $1
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("patient not found")
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, age = $2, gender = $3, priority = $4,
			symptoms = $5, avatar = $6, updated_at = $7
		WHERE id = $8
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Priority,
		patient.Symptoms,
		patient.Avatar,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}

	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM patients
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}

	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `
		SELECT id, serial_no, name, age, gender, priority,
			   symptoms, avatar, requested_time, created_at, updated_at
		FROM patients
		ORDER BY serial_no ASC
	`
	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) GetUnassigned(ctx context.Context) ([]*model.Patient, error) {
	query := `
		SELECT p.id, p.serial_no, p.name, p.age, p.gender, p.priority,
			   p.symptoms, p.avatar, p.requested_time, p.created_at, p.updated_at
		FROM patients p
		LEFT JOIN appointments a
			ON a.patient_id = p.id
			AND a.doctor_id IS NOT NULL
			AND a.status != 'cancelled'
		WHERE a.id IS NULL
		ORDER BY p.serial_no ASC
	`
	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) NextSerialNo(ctx context.Context) (int, error) {
	query := `
		SELECT COALESCE(MAX(serial_no), 0) + 1 FROM patients
	`
	var next int
	if err := r.db.GetContext(ctx, &next, query); err != nil {
		return 0, fmt.Errorf("failed to compute next serial number: %w", err)
	}
	return next, nil
}
