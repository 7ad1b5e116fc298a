// Package repository implements the storage contract in front of the
// archivos / registros_telefonicos tables: atomic state transitions on the
// file record, and transactional delete+bulk-insert of canonical rows.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/db"
	"github.com/phantoooomCam/sabanas-server/internal/models"
	"github.com/phantoooomCam/sabanas-server/pkg/errors"
	"github.com/phantoooomCam/sabanas-server/pkg/logger"
)

type Repository struct {
	db *db.DB
}

func New(database *db.DB) *Repository {
	return &Repository{db: database}
}

// GetFile loads the archivos row for id, or nil if it doesn't exist.
func (r *Repository) GetFile(ctx context.Context, id int64) (*models.FileRecord, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id_sabanas, ruta, estado, id_carrier, nombre_carrier, iniciado_en, finalizado_en
        FROM archivos WHERE id_sabanas = ?`, id)

	var rec models.FileRecord
	var carrierID sql.NullInt64
	var carrierName sql.NullString
	var startedAt, finishedAt sql.NullTime

	err := row.Scan(&rec.ID, &rec.Path, &rec.State, &carrierID, &carrierName, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "failed to load file record")
	}

	if carrierID.Valid {
		v := int(carrierID.Int64)
		rec.CarrierID = &v
	}
	if carrierName.Valid {
		rec.CarrierName = &carrierName.String
	}
	if startedAt.Valid {
		rec.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		rec.FinishedAt = &finishedAt.Time
	}

	return &rec, nil
}

// TryTransitionState is the sole synchronization primitive: a single
// conditional UPDATE keyed on the currently observed state. Returns true
// iff exactly one row was changed.
func (r *Repository) TryTransitionState(ctx context.Context, id int64, expected, next models.FileState, setStartedAt, setFinishedAt bool) (bool, error) {
	query := "UPDATE archivos SET estado = ?"
	args := []interface{}{next}

	if setStartedAt {
		query += ", iniciado_en = ?"
		args = append(args, time.Now().UTC())
	}
	if setFinishedAt {
		query += ", finalizado_en = ?"
		args = append(args, time.Now().UTC())
	}

	query += " WHERE id_sabanas = ? AND estado = ?"
	args = append(args, id, expected)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrDatabase, "failed to transition file state")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrDatabase, "failed to read affected rows")
	}

	return n == 1, nil
}

// MarkError unconditionally transitions a file to the error state.
func (r *Repository) MarkError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE archivos SET estado = ?, finalizado_en = ? WHERE id_sabanas = ?`,
		models.StateError, time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "failed to mark file as error")
	}
	return nil
}

// SetCarrier records the dispatcher's decision for a file, best-effort.
func (r *Repository) SetCarrier(ctx context.Context, id int64, carrierID int, carrierName string) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE archivos SET id_carrier = ?, nombre_carrier = ? WHERE id_sabanas = ?`,
		carrierID, carrierName, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "failed to record carrier")
	}
	return nil
}

// ReplaceRecords deletes all existing canonical rows for fileID and bulk
// inserts rows, atomically. Returns the number of rows inserted.
func (r *Repository) ReplaceRecords(ctx context.Context, fileID int64, rows []models.CanonicalRecord) (int, error) {
	var inserted int

	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM registros_telefonicos WHERE id_sabanas = ?`, fileID); err != nil {
			return errors.Wrap(err, errors.ErrDatabase, "failed to delete existing records")
		}

		if len(rows) == 0 {
			inserted = 0
			return nil
		}

		const batchSize = 500
		for start := 0; start < len(rows); start += batchSize {
			end := start + batchSize
			if end > len(rows) {
				end = len(rows)
			}
			if err := insertBatch(ctx, tx, fileID, rows[start:end]); err != nil {
				return err
			}
		}

		inserted = len(rows)
		return nil
	})

	if err != nil {
		return 0, err
	}

	logger.WithContext(ctx).WithField("file_id", fileID).WithField("rows", inserted).Info("replaced canonical records")
	return inserted, nil
}

func insertBatch(ctx context.Context, tx *sql.Tx, fileID int64, rows []models.CanonicalRecord) error {
	query, args := buildInsertQuery(fileID, rows)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, errors.ErrValidation, "failed to bulk insert canonical records")
	}
	return nil
}

// buildInsertQuery is the pure query-construction half of insertBatch,
// split out so it can be tested without a live database.
func buildInsertQuery(fileID int64, rows []models.CanonicalRecord) (string, []interface{}) {
	query := `INSERT INTO registros_telefonicos
        (id_sabanas, numero_a, numero_b, id_tipo_registro, fecha_hora, duracion,
         latitud, longitud, azimuth, latitud_decimal, longitud_decimal, altitud,
         coordenada_objetivo, imei, telefono)
        VALUES `

	args := make([]interface{}, 0, len(rows)*15)
	for i, rec := range rows {
		if i > 0 {
			query += ", "
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			fileID, rec.NumberA, rec.NumberB, rec.RecordType, rec.EventAt, rec.DurationSec,
			rec.LatitudeRaw, rec.LongitudeRaw, rec.Azimuth, rec.LatitudeDec, rec.LongitudeDec,
			rec.Altitude, rec.TargetCoordinate, rec.IMEI, rec.Phone,
		)
	}

	return query, args
}

// ResetStuckProcessing resets archivos stuck in "processing" past
// stuckAfter back to "error", for the reaper (C10).
func (r *Repository) ResetStuckProcessing(ctx context.Context, stuckAfter time.Duration) (int64, error) {
	horizon := time.Now().UTC().Add(-stuckAfter)
	result, err := r.db.ExecContext(ctx, `
        UPDATE archivos SET estado = ?, finalizado_en = ?
        WHERE estado = ? AND iniciado_en IS NOT NULL AND iniciado_en < ?`,
		models.StateError, time.Now().UTC(), models.StateProcessing, horizon)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabase, "failed to reap stuck files")
	}
	return result.RowsAffected()
}

// CountRecordsForFile returns how many canonical rows a file holds; the
// process and stats CLI commands use it to report the persisted count.
func (r *Repository) CountRecordsForFile(ctx context.Context, fileID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registros_telefonicos WHERE id_sabanas = ?`, fileID).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabase, "failed to count records")
	}
	return count, nil
}
