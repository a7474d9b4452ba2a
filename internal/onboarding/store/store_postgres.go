package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/lib/pq"

	identity "onboard/internal/identity/models"
	"onboard/internal/onboarding/models"
	"onboard/internal/platform/postgres"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	txcontext "onboard/pkg/platform/tx"
)

// PostgresClaimStore persists claims in PostgreSQL. The match result is kept
// as JSONB so a resubmission can replay it verbatim.
type PostgresClaimStore struct {
	db *sql.DB
}

func NewPostgresClaimStore(db *sql.DB) *PostgresClaimStore {
	return &PostgresClaimStore{db: db}
}

const claimColumns = `
	id, client_id, request_id, first_name, middle_name, last_name, date_of_birth,
	national_insurance_number, email_address, gender, status, match_result,
	resolved_person_id, reference_number, held_for_further_checks, token,
	created_at, updated_at, completed_at`

func (s *PostgresClaimStore) Create(ctx context.Context, claim *models.Claim) error {
	matchResult, err := encodeMatchResult(claim.MatchResult)
	if err != nil {
		return err
	}
	_, err = txcontext.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO claims (`+claimColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`,
		uuid.UUID(claim.ID),
		claim.Key.ClientID.String(),
		claim.Key.RequestID.String(),
		claim.Identity.FirstName,
		claim.Identity.MiddleName,
		claim.Identity.LastName,
		claim.Identity.DateOfBirth.In(time.UTC),
		claim.Identity.NationalInsuranceNumber,
		claim.Identity.EmailAddress,
		string(claim.Identity.Gender),
		string(claim.Status),
		matchResult,
		nullPersonID(claim.ResolvedPersonID),
		claim.ReferenceNumber,
		claim.HeldForFurtherChecks,
		claim.Token,
		claim.CreatedAt,
		claim.UpdatedAt,
		nullTime(claim.CompletedAt),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert claim: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (s *PostgresClaimStore) FindByKey(ctx context.Context, key id.ClaimKey) (*models.Claim, error) {
	return s.findByKey(ctx, key, "")
}

// FindByKeyForUpdate must run inside a transaction carried by ctx; outside
// one the row lock is released as soon as the statement returns.
func (s *PostgresClaimStore) FindByKeyForUpdate(ctx context.Context, key id.ClaimKey) (*models.Claim, error) {
	return s.findByKey(ctx, key, " FOR UPDATE")
}

func (s *PostgresClaimStore) findByKey(ctx context.Context, key id.ClaimKey, lock string) (*models.Claim, error) {
	row := txcontext.Use(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE client_id = $1 AND request_id = $2`+lock,
		key.ClientID.String(), key.RequestID.String(),
	)
	return scanClaim(row)
}

func (s *PostgresClaimStore) Update(ctx context.Context, claim *models.Claim) error {
	matchResult, err := encodeMatchResult(claim.MatchResult)
	if err != nil {
		return err
	}
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		UPDATE claims SET
			status = $3,
			match_result = $4,
			resolved_person_id = $5,
			reference_number = $6,
			held_for_further_checks = $7,
			token = $8,
			updated_at = $9,
			completed_at = $10
		WHERE client_id = $1 AND request_id = $2
	`,
		claim.Key.ClientID.String(),
		claim.Key.RequestID.String(),
		string(claim.Status),
		matchResult,
		nullPersonID(claim.ResolvedPersonID),
		claim.ReferenceNumber,
		claim.HeldForFurtherChecks,
		claim.Token,
		claim.UpdatedAt,
		nullTime(claim.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanClaim(row *sql.Row) (*models.Claim, error) {
	var (
		c           models.Claim
		claimID     uuid.UUID
		clientID    string
		requestID   string
		dob         time.Time
		gender      string
		status      string
		matchResult []byte
		resolved    uuid.NullUUID
		completedAt sql.NullTime
	)
	err := row.Scan(
		&claimID, &clientID, &requestID,
		&c.Identity.FirstName, &c.Identity.MiddleName, &c.Identity.LastName, &dob,
		&c.Identity.NationalInsuranceNumber, &c.Identity.EmailAddress, &gender,
		&status, &matchResult, &resolved, &c.ReferenceNumber,
		&c.HeldForFurtherChecks, &c.Token,
		&c.CreatedAt, &c.UpdatedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan claim: %w", err)
	}
	c.ID = id.ClaimID(claimID)
	c.Key = id.ClaimKey{ClientID: id.ClientID(clientID), RequestID: id.RequestID(requestID)}
	c.Identity.DateOfBirth = civil.DateOf(dob)
	c.Identity.Gender = identity.Gender(gender)
	c.Status = models.ClaimStatus(status)
	if len(matchResult) > 0 {
		var r identity.MatchResult
		if err := json.Unmarshal(matchResult, &r); err != nil {
			return nil, fmt.Errorf("decode match result: %w", err)
		}
		c.MatchResult = &r
	}
	if resolved.Valid {
		p := id.PersonID(resolved.UUID)
		c.ResolvedPersonID = &p
	}
	if completedAt.Valid {
		t := completedAt.Time
		c.CompletedAt = &t
	}
	return &c, nil
}

func encodeMatchResult(r *identity.MatchResult) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode match result: %w", err)
	}
	return b, nil
}

// PostgresReviewTaskStore persists manual review tasks.
type PostgresReviewTaskStore struct {
	db *sql.DB
}

func NewPostgresReviewTaskStore(db *sql.DB) *PostgresReviewTaskStore {
	return &PostgresReviewTaskStore{db: db}
}

const taskColumns = `id, client_id, request_id, kind, status, person_ids, created_at, closed_at`

func (s *PostgresReviewTaskStore) Create(ctx context.Context, task *models.ReviewTask) error {
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO review_tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6::uuid[], $7, $8)
	`,
		uuid.UUID(task.ID),
		task.ClaimKey.ClientID.String(),
		task.ClaimKey.RequestID.String(),
		string(task.Kind),
		string(task.Status),
		pq.Array(personIDStrings(task.PersonIDs)),
		task.CreatedAt,
		nullTime(task.ClosedAt),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert review task: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert review task: %w", err)
	}
	return nil
}

func (s *PostgresReviewTaskStore) FindOpen(ctx context.Context, key id.ClaimKey, kind models.ReviewTaskKind) (*models.ReviewTask, error) {
	tasks, err := s.list(ctx, `
		SELECT `+taskColumns+` FROM review_tasks
		WHERE client_id = $1 AND request_id = $2 AND kind = $3 AND status = 'open'
	`, key.ClientID.String(), key.RequestID.String(), string(kind))
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return tasks[0], nil
}

func (s *PostgresReviewTaskStore) ListByClaim(ctx context.Context, key id.ClaimKey) ([]*models.ReviewTask, error) {
	return s.list(ctx, `
		SELECT `+taskColumns+` FROM review_tasks
		WHERE client_id = $1 AND request_id = $2
		ORDER BY created_at, id
	`, key.ClientID.String(), key.RequestID.String())
}

func (s *PostgresReviewTaskStore) ListOpen(ctx context.Context, kind models.ReviewTaskKind) ([]*models.ReviewTask, error) {
	return s.list(ctx, `
		SELECT `+taskColumns+` FROM review_tasks
		WHERE kind = $1 AND status = 'open'
		ORDER BY created_at, id
	`, string(kind))
}

func (s *PostgresReviewTaskStore) Close(ctx context.Context, taskID id.ReviewTaskID, closedAt time.Time) error {
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		UPDATE review_tasks SET status = 'closed', closed_at = $2
		WHERE id = $1 AND status = 'open'
	`, uuid.UUID(taskID), closedAt)
	if err != nil {
		return fmt.Errorf("close review task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close review task: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresReviewTaskStore) list(ctx context.Context, stmt string, args ...any) ([]*models.ReviewTask, error) {
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query review tasks: %w", err)
	}
	defer rows.Close()

	var out []*models.ReviewTask
	for rows.Next() {
		var (
			t         models.ReviewTask
			taskID    uuid.UUID
			clientID  string
			requestID string
			kind      string
			status    string
			personIDs []string
			closedAt  sql.NullTime
		)
		if err := rows.Scan(&taskID, &clientID, &requestID, &kind, &status,
			pq.Array(&personIDs), &t.CreatedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("scan review task: %w", err)
		}
		t.ID = id.ReviewTaskID(taskID)
		t.ClaimKey = id.ClaimKey{ClientID: id.ClientID(clientID), RequestID: id.RequestID(requestID)}
		t.Kind = models.ReviewTaskKind(kind)
		t.Status = models.ReviewTaskStatus(status)
		for _, raw := range personIDs {
			p, err := id.ParsePersonID(raw)
			if err != nil {
				return nil, fmt.Errorf("scan review task person id: %w", err)
			}
			t.PersonIDs = append(t.PersonIDs, p)
		}
		if closedAt.Valid {
			c := closedAt.Time
			t.ClosedAt = &c
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review tasks: %w", err)
	}
	return out, nil
}

func personIDStrings(ids []id.PersonID) []string {
	out := make([]string, len(ids))
	for i, p := range ids {
		out[i] = p.String()
	}
	return out
}

func nullPersonID(p *id.PersonID) uuid.NullUUID {
	if p == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*p), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
