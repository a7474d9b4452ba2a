//go:build integration

package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"onboard/internal/outbox"
	"onboard/pkg/platform/audit"
	auditpostgres "onboard/pkg/platform/audit/store/postgres"
	"onboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	audit    *auditpostgres.Store
	store    *outbox.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.audit = auditpostgres.New(s.postgres.DB)
	s.store = outbox.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "outbox"))
}

func (s *PostgresStoreSuite) append(personID string, action audit.AuditEvent, at time.Time) {
	err := s.audit.Append(context.Background(), audit.Event{
		Timestamp: at,
		Subject:   "teacher-portal/req-1",
		Action:    string(action),
		PersonID:  personID,
	})
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestProcessBatchMarksPublished() {
	ctx := context.Background()
	base := time.Now().UTC()
	s.append("p1", audit.EventPersonCreated, base)
	s.append("p1", audit.EventClaimCompleted, base.Add(time.Millisecond))
	s.append("p2", audit.EventPersonCreated, base.Add(2*time.Millisecond))

	var seen []outbox.Entry
	n, err := s.store.ProcessBatch(ctx, 2, func(_ context.Context, entries []outbox.Entry) error {
		seen = entries
		return nil
	})
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Require().Len(seen, 2)
	s.Equal("person", seen[0].AggregateType)
	s.Equal("p1", seen[0].AggregateID)
	s.Equal(string(audit.EventPersonCreated), seen[0].EventType)
	s.Equal(string(audit.EventClaimCompleted), seen[1].EventType)
	s.Contains(string(seen[0].Payload), `"category":"compliance"`)

	backlog, err := s.store.CountUnpublished(ctx)
	s.Require().NoError(err)
	s.Equal(1, backlog)
}

func (s *PostgresStoreSuite) TestFailedCallbackRollsBack() {
	ctx := context.Background()
	s.append("p1", audit.EventPersonCreated, time.Now().UTC())

	_, err := s.store.ProcessBatch(ctx, 10, func(context.Context, []outbox.Entry) error {
		return errors.New("broker down")
	})
	s.Require().Error(err)

	backlog, err := s.store.CountUnpublished(ctx)
	s.Require().NoError(err)
	s.Equal(1, backlog)
}

func (s *PostgresStoreSuite) TestEmptyOutbox() {
	called := false
	n, err := s.store.ProcessBatch(context.Background(), 10, func(context.Context, []outbox.Entry) error {
		called = true
		return nil
	})
	s.Require().NoError(err)
	s.Zero(n)
	s.False(called)
}
