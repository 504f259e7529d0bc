// Package postgres keeps a read-only copy of the registry in PostgreSQL for
// reporting tools that cannot read the workbook.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

const (
	createCaregiversTable = `
		CREATE TABLE IF NOT EXISTS registry_caregivers (
			caregiver_id TEXT PRIMARY KEY,
			caregiver_name TEXT NOT NULL,
			gender TEXT,
			date_of_birth DATE,
			age INT,
			profession TEXT,
			education_level TEXT,
			zonal_leader TEXT,
			address TEXT,
			phone_number TEXT,
			bank TEXT,
			account_number TEXT,
			number_of_kids INT,
			verification_status TEXT,
			registered_at TIMESTAMPTZ,
			last_updated TIMESTAMPTZ
		)
	`
	createChildrenTable = `
		CREATE TABLE IF NOT EXISTS registry_children (
			child_id TEXT PRIMARY KEY,
			caregiver_id TEXT NOT NULL,
			caregiver_name TEXT,
			child_name TEXT NOT NULL,
			child_gender TEXT,
			child_date_of_birth DATE,
			child_age INT,
			child_phone_number TEXT,
			child_education_level TEXT,
			child_school_name TEXT,
			child_class_level TEXT,
			child_profession TEXT,
			registered_at TIMESTAMPTZ,
			last_updated TIMESTAMPTZ
		)
	`
	upsertCaregiverQuery = `
		INSERT INTO registry_caregivers (caregiver_id, caregiver_name, gender, date_of_birth, age, profession, education_level, zonal_leader, address, phone_number, bank, account_number, number_of_kids, verification_status, registered_at, last_updated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (caregiver_id) DO UPDATE SET
			caregiver_name = EXCLUDED.caregiver_name,
			gender = EXCLUDED.gender,
			date_of_birth = EXCLUDED.date_of_birth,
			age = EXCLUDED.age,
			profession = EXCLUDED.profession,
			education_level = EXCLUDED.education_level,
			zonal_leader = EXCLUDED.zonal_leader,
			address = EXCLUDED.address,
			phone_number = EXCLUDED.phone_number,
			bank = EXCLUDED.bank,
			account_number = EXCLUDED.account_number,
			number_of_kids = EXCLUDED.number_of_kids,
			verification_status = EXCLUDED.verification_status,
			registered_at = EXCLUDED.registered_at,
			last_updated = EXCLUDED.last_updated
	`
	upsertChildQuery = `
		INSERT INTO registry_children (child_id, caregiver_id, caregiver_name, child_name, child_gender, child_date_of_birth, child_age, child_phone_number, child_education_level, child_school_name, child_class_level, child_profession, registered_at, last_updated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (child_id) DO UPDATE SET
			caregiver_id = EXCLUDED.caregiver_id,
			caregiver_name = EXCLUDED.caregiver_name,
			child_name = EXCLUDED.child_name,
			child_gender = EXCLUDED.child_gender,
			child_date_of_birth = EXCLUDED.child_date_of_birth,
			child_age = EXCLUDED.child_age,
			child_phone_number = EXCLUDED.child_phone_number,
			child_education_level = EXCLUDED.child_education_level,
			child_school_name = EXCLUDED.child_school_name,
			child_class_level = EXCLUDED.child_class_level,
			child_profession = EXCLUDED.child_profession,
			registered_at = EXCLUDED.registered_at,
			last_updated = EXCLUDED.last_updated
	`
	pruneChildrenQuery   = `DELETE FROM registry_children WHERE NOT (child_id = ANY($1))`
	pruneCaregiversQuery = `DELETE FROM registry_caregivers WHERE NOT (caregiver_id = ANY($1))`
)

// Open connects through the pgx driver and checks the connection.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

type Mirror struct {
	db      *sql.DB
	pending chan *entity.Dataset
}

func NewMirror(db *sql.DB) *Mirror {
	return &Mirror{db: db, pending: make(chan *entity.Dataset, 1)}
}

func (m *Mirror) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{createCaregiversTable, createChildrenTable} {
		if _, err := m.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create mirror tables: %w", err)
		}
	}
	return nil
}

// Sync makes the mirror tables match data in one transaction. Rows that are
// no longer in data are deleted.
func (m *Mirror) Sync(ctx context.Context, data *entity.Dataset) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror sync: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	caregiverIDs := make([]string, 0, len(data.Caregivers))
	for _, c := range data.Caregivers {
		if _, err = tx.ExecContext(ctx, upsertCaregiverQuery,
			c.ID, c.Name, c.Gender, nullDate(c.DateOfBirth), nullInt(c.Age), c.Profession,
			c.EducationLevel, c.ZonalLeader, c.Address, c.Phone, c.Bank, c.AccountNumber,
			nullInt(c.NumberOfKids), string(c.Status), nullTime(c.RegisteredAt), nullTime(c.UpdatedAt),
		); err != nil {
			return fmt.Errorf("mirror caregiver %s: %w", c.ID, err)
		}
		caregiverIDs = append(caregiverIDs, c.ID)
	}

	childIDs := make([]string, 0, len(data.Children))
	for _, ch := range data.Children {
		if _, err = tx.ExecContext(ctx, upsertChildQuery,
			ch.ID, ch.CaregiverID, ch.CaregiverName, ch.Name, ch.Gender, nullDate(ch.DateOfBirth),
			nullInt(ch.Age), ch.Phone, ch.EducationLevel, ch.SchoolName, ch.ClassLevel, ch.Profession,
			nullTime(ch.RegisteredAt), nullTime(ch.UpdatedAt),
		); err != nil {
			return fmt.Errorf("mirror child %s: %w", ch.ID, err)
		}
		childIDs = append(childIDs, ch.ID)
	}

	if _, err = tx.ExecContext(ctx, pruneChildrenQuery, pq.Array(childIDs)); err != nil {
		return fmt.Errorf("prune mirrored children: %w", err)
	}
	if _, err = tx.ExecContext(ctx, pruneCaregiversQuery, pq.Array(caregiverIDs)); err != nil {
		return fmt.Errorf("prune mirrored caregivers: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit mirror sync: %w", err)
	}
	return nil
}

// Hook returns a save hook that queues a snapshot of data for Run and
// returns at once. Only the latest queued snapshot is kept.
func (m *Mirror) Hook() func(context.Context, *entity.Dataset) {
	return func(_ context.Context, data *entity.Dataset) {
		snapshot := data.Clone()
		for {
			select {
			case m.pending <- snapshot:
				return
			default:
			}
			select {
			case <-m.pending:
			default:
			}
		}
	}
}

// Run syncs queued snapshots until ctx is done. Failures are logged and never
// reach the save that queued them.
func (m *Mirror) Run(ctx context.Context, logger *log.Logger, timeout time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-m.pending:
			m.syncLogged(ctx, data, logger, timeout)
		}
	}
}

// flush syncs the queued snapshot, if any.
func (m *Mirror) flush(ctx context.Context, logger *log.Logger, timeout time.Duration) bool {
	select {
	case data := <-m.pending:
		m.syncLogged(ctx, data, logger, timeout)
		return true
	default:
		return false
	}
}

func (m *Mirror) syncLogged(ctx context.Context, data *entity.Dataset, logger *log.Logger, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := m.Sync(ctx, data); err != nil {
		logger.Printf("postgres mirror: %v", err)
	}
}

func nullInt(n *int) interface{} {
	if n == nil {
		return nil
	}
	return int64(*n)
}

func nullDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
