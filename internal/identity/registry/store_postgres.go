package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"onboard/internal/identity/models"
	"onboard/internal/identity/normalize"
	"onboard/internal/identity/query"
	"onboard/internal/platform/postgres"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	txcontext "onboard/pkg/platform/tx"
)

// PostgresStore persists person records in PostgreSQL. Normalised copies of
// the comparable attributes are stored alongside the originals so lookups
// compare exactly what the matching engine compares.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const personColumns = `
	p.id, p.reference_number, p.first_name, p.middle_name, p.last_name,
	p.date_of_birth, p.national_insurance_number, p.email_address, p.gender,
	p.status, p.merged_into, p.has_active_alert, p.qts_date, p.eyts_date,
	p.created_at, p.updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.PersonRecord) error {
	if p == nil {
		return fmt.Errorf("person record is required")
	}
	q := txcontext.Use(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO persons (
			id, reference_number, first_name, middle_name, last_name, date_of_birth,
			national_insurance_number, email_address, gender,
			first_name_key, middle_name_key, last_name_key,
			national_insurance_number_key, email_address_key,
			status, merged_into, has_active_alert, qts_date, eyts_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`,
		uuid.UUID(p.ID),
		p.ReferenceNumber,
		p.FirstName,
		p.MiddleName,
		p.LastName,
		p.DateOfBirth.In(time.UTC),
		p.NationalInsuranceNumber,
		p.EmailAddress,
		string(p.Gender),
		normalize.Text(p.FirstName),
		normalize.Text(p.MiddleName),
		normalize.Text(p.LastName),
		normalize.NationalInsuranceNumber(p.NationalInsuranceNumber),
		normalize.Text(p.EmailAddress),
		string(p.Status),
		nullPersonID(p.MergedInto),
		p.HasActiveAlert,
		nullDate(p.QtsDate),
		nullDate(p.EytsDate),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert person: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert person: %w", err)
	}

	for _, e := range p.EmploymentRecords {
		_, err := q.ExecContext(ctx, `
			INSERT INTO employment_records (person_id, employer_reference, national_insurance_number, national_insurance_number_key, start_date)
			VALUES ($1, $2, $3, $4, $5)
		`,
			uuid.UUID(p.ID),
			e.EmployerReference,
			e.NationalInsuranceNumber,
			normalize.NationalInsuranceNumber(e.NationalInsuranceNumber),
			nullDate(&e.StartDate),
		)
		if err != nil {
			return fmt.Errorf("insert employment record: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, personID id.PersonID) (*models.PersonRecord, error) {
	rows, err := s.query(ctx, `SELECT `+personColumns+` FROM persons p WHERE p.id = $1`, uuid.UUID(personID))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0], nil
}

func (s *PostgresStore) NextReferenceNumber(ctx context.Context) (string, error) {
	var n int64
	err := txcontext.Use(ctx, s.db).QueryRowContext(ctx, `SELECT nextval('person_reference_numbers')`).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("allocate reference number: %w", err)
	}
	return formatReference(int(n)), nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) ([]*models.PersonRecord, error) {
	if !normalize.Supplied(email) {
		return nil, nil
	}
	return s.findActive(ctx, query.Eq(query.FieldEmailAddress, email))
}

func (s *PostgresStore) FindByNationalInsuranceNumber(ctx context.Context, nino string) ([]*models.PersonRecord, error) {
	if normalize.NationalInsuranceNumber(nino) == "" {
		return nil, nil
	}
	return s.findActive(ctx, query.Eq(query.FieldNationalInsuranceNumber, nino))
}

func (s *PostgresStore) FindByDemographics(ctx context.Context, filter query.Filter) ([]*models.PersonRecord, error) {
	if filter.IsEmpty() {
		return nil, nil
	}
	return s.findActive(ctx, filter)
}

func (s *PostgresStore) findActive(ctx context.Context, filter query.Filter) ([]*models.PersonRecord, error) {
	where, args := filter.SQL(1)
	stmt := `SELECT ` + personColumns + ` FROM persons p WHERE p.status = 'active' AND ` + where + ` ORDER BY p.registry_seq`
	return s.query(ctx, stmt, args...)
}

func (s *PostgresStore) query(ctx context.Context, stmt string, args ...any) ([]*models.PersonRecord, error) {
	q := txcontext.Use(ctx, s.db)
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query persons: %w", err)
	}
	defer rows.Close()

	var out []*models.PersonRecord
	byID := map[id.PersonID]*models.PersonRecord{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	// Release the connection before the follow-up query inside a transaction.
	_ = rows.Close()
	if len(out) == 0 {
		return nil, nil
	}
	if err := s.loadEmployment(ctx, q, byID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) loadEmployment(ctx context.Context, q txcontext.Querier, byID map[id.PersonID]*models.PersonRecord) error {
	ids := make([]string, 0, len(byID))
	for personID := range byID {
		ids = append(ids, personID.String())
	}
	rows, err := q.QueryContext(ctx, `
		SELECT person_id, employer_reference, national_insurance_number, start_date
		FROM employment_records
		WHERE person_id = ANY($1::uuid[])
		ORDER BY person_id, start_date NULLS FIRST, employer_reference
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query employment records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			personID uuid.UUID
			record   models.EmploymentRecord
			start    sql.NullTime
		)
		if err := rows.Scan(&personID, &record.EmployerReference, &record.NationalInsuranceNumber, &start); err != nil {
			return fmt.Errorf("scan employment record: %w", err)
		}
		if start.Valid {
			record.StartDate = civil.DateOf(start.Time)
		}
		if p, ok := byID[id.PersonID(personID)]; ok {
			p.EmploymentRecords = append(p.EmploymentRecords, record)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate employment records: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner) (*models.PersonRecord, error) {
	var (
		p          models.PersonRecord
		personID   uuid.UUID
		dob        time.Time
		gender     string
		status     string
		mergedInto uuid.NullUUID
		qts        sql.NullTime
		eyts       sql.NullTime
	)
	err := row.Scan(
		&personID, &p.ReferenceNumber, &p.FirstName, &p.MiddleName, &p.LastName,
		&dob, &p.NationalInsuranceNumber, &p.EmailAddress, &gender,
		&status, &mergedInto, &p.HasActiveAlert, &qts, &eyts,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan person: %w", err)
	}
	p.ID = id.PersonID(personID)
	p.DateOfBirth = civil.DateOf(dob)
	p.Gender = models.Gender(strings.TrimSpace(gender))
	p.Status = models.PersonStatus(status)
	if mergedInto.Valid {
		into := id.PersonID(mergedInto.UUID)
		p.MergedInto = &into
	}
	if qts.Valid {
		d := civil.DateOf(qts.Time)
		p.QtsDate = &d
	}
	if eyts.Valid {
		d := civil.DateOf(eyts.Time)
		p.EytsDate = &d
	}
	return &p, nil
}

func nullDate(d *civil.Date) sql.NullTime {
	if d == nil || *d == (civil.Date{}) {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.In(time.UTC), Valid: true}
}

func nullPersonID(p *id.PersonID) uuid.NullUUID {
	if p == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*p), Valid: true}
}
