//go:build integration

package store_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mandate/internal/mandate/models"
	"mandate/internal/mandate/store"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
	txcontext "mandate/pkg/platform/tx"
	"mandate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "mandates"))
}

func newMandate(ref string, status models.Status, created time.Time) models.Mandate {
	return models.Mandate{
		ID:              id.NewMandateID(),
		ReferenceNumber: ref,
		Status:          status,
		Submitter: models.SubmitterData{
			LastName:     "KOUASSI",
			FirstName:    "Jean",
			Function:     "Délégué",
			Email:        "jean.kouassi@example.ci",
			Constituency: "Abidjan Sud",
			Extra:        map[string]string{"district": "Treichville"},
		},
		CreatedAt: created.UTC().Truncate(time.Microsecond),
		UpdatedAt: created.UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestRoundTripPreservesOptionalFields() {
	m := newMandate("MDT-000001-AAAAAA", models.StatusPendingValidation, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, m))

	found, err := s.store.FindByReference(s.ctx, m.ReferenceNumber)
	s.Require().NoError(err)
	s.Equal(m, found)

	approver := id.NewStaffID()
	approvedAt := time.Now().UTC().Truncate(time.Microsecond)
	next := found.Clone()
	next.Status = models.StatusAdminApproved
	next.AdminApproverID = &approver
	next.AdminApprovedAt = &approvedAt
	next.UpdatedAt = approvedAt
	s.Require().NoError(s.store.UpdateIfStatus(s.ctx, next, models.StatusPendingValidation))

	reloaded, err := s.store.FindByID(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(next, reloaded)
}

func (s *PostgresStoreSuite) TestDuplicateReference() {
	s.Require().NoError(s.store.Create(s.ctx, newMandate("MDT-000001-AAAAAA", models.StatusPendingValidation, time.Now())))
	err := s.store.Create(s.ctx, newMandate("MDT-000001-AAAAAA", models.StatusPendingValidation, time.Now()))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestUpdateIfStatusMismatchAndMissing() {
	m := newMandate("MDT-000001-AAAAAA", models.StatusRejected, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, m))

	next := m.Clone()
	next.Status = models.StatusAdminApproved
	s.ErrorIs(s.store.UpdateIfStatus(s.ctx, next, models.StatusPendingValidation), sentinel.ErrInvalidState)

	ghost := newMandate("MDT-000002-AAAAAA", models.StatusPendingValidation, time.Now())
	s.ErrorIs(s.store.UpdateIfStatus(s.ctx, ghost, models.StatusPendingValidation), sentinel.ErrNotFound)
}

// Concurrent final approval and rejection of the same mandate: one write
// lands, every other writer sees ErrInvalidState.
func (s *PostgresStoreSuite) TestConcurrentConditionalWrites() {
	m := newMandate("MDT-000001-AAAAAA", models.StatusAdminApproved, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, m))

	const goroutines = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := m.Clone()
			if i%2 == 0 {
				next.Status = models.StatusSuperAdminApproved
			} else {
				next.Status = models.StatusRejected
			}
			err := s.store.UpdateIfStatus(s.ctx, next, models.StatusAdminApproved)
			if err == nil {
				successes.Add(1)
			} else if err == sentinel.ErrInvalidState {
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *PostgresStoreSuite) TestListAndCount() {
	base := time.Now().Add(-time.Hour)
	statuses := []models.Status{
		models.StatusPendingValidation,
		models.StatusAdminApproved,
		models.StatusPendingValidation,
		models.StatusRejected,
	}
	for i, st := range statuses {
		m := newMandate(fmt.Sprintf("MDT-00000%d-AAAAAA", i), st, base.Add(time.Duration(i)*time.Minute))
		if i == 3 {
			m.Submitter.LastName = "TRAORE"
		}
		s.Require().NoError(s.store.Create(s.ctx, m))
	}

	page, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Equal(4, page.Total)
	s.Equal("MDT-000003-AAAAAA", page.Items[0].ReferenceNumber)

	page, err = s.store.List(s.ctx, models.Filter{Statuses: []models.Status{models.StatusPendingValidation, models.StatusRejected}})
	s.Require().NoError(err)
	s.Equal(3, page.Total)

	page, err = s.store.List(s.ctx, models.Filter{Search: "traore"})
	s.Require().NoError(err)
	s.Equal(1, page.Total)

	page, err = s.store.List(s.ctx, models.Filter{Search: "100%"})
	s.Require().NoError(err)
	s.Equal(0, page.Total)

	counts, err := s.store.CountByStatus(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, counts[models.StatusPendingValidation])
	s.Equal(1, counts[models.StatusAdminApproved])
	s.Equal(0, counts[models.StatusSuperAdminApproved])
}

func (s *PostgresStoreSuite) TestWritesJoinContextTransaction() {
	runner := txcontext.NewSQLRunner(s.postgres.DB)
	m := newMandate("MDT-000001-AAAAAA", models.StatusPendingValidation, time.Now())

	err := runner.RunInTx(s.ctx, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, m); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	s.Require().Error(err)

	_, err = s.store.FindByID(s.ctx, m.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
