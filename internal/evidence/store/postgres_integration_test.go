//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	digest "nyaya/internal/evidence/hash"
	"nyaya/internal/evidence/service"
	"nyaya/pkg/platform/audit"
	"nyaya/pkg/platform/audit/publishers/compliance"
	auditpostgres "nyaya/pkg/platform/audit/store/postgres"
	"nyaya/pkg/testutil/containers"
)

var evidenceTables = []string{"ledger_anchors", "evidence_records", "evidence_halts", "audit_events"}

func postgresBackend(t *testing.T) *SQL {
	t.Helper()
	ctx := context.Background()
	pg := containers.GetManager().GetPostgres(t)
	if err := MigratePostgres(ctx, pg.DB); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := auditpostgres.New(pg.DB).Migrate(ctx); err != nil {
		t.Fatalf("migrate audit: %v", err)
	}
	if err := pg.TruncateTables(ctx, evidenceTables...); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewPostgres(pg.DB)
}

func TestPostgresConformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, &ConformanceSuite{newFunc: func(t *testing.T) Backend { return postgresBackend(t) }})
}

type PostgresTxSuite struct {
	suite.Suite
	ctx   context.Context
	store *SQL
	audit *auditpostgres.Store
}

func TestPostgresTxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresTxSuite))
}

func (s *PostgresTxSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = postgresBackend(s.T())
	s.audit = auditpostgres.New(s.store.DB())
}

func (s *PostgresTxSuite) TestConcurrentSealsFormOneChain() {
	engine, err := digest.New(digest.SHA256)
	s.Require().NoError(err)
	svc, err := service.New(s.store, engine,
		service.WithTx(s.store),
		service.WithAuditPublisher(compliance.New(s.audit)),
	)
	s.Require().NoError(err)

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Seal(s.ctx, "CASE-PG", fmt.Sprintf("item-%02d", i), "IO-7", strings.NewReader(fmt.Sprint(i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	report, err := svc.VerifyChain(s.ctx, "CASE-PG")
	s.Require().NoError(err)
	s.True(report.Valid)
	s.Equal(n, report.Length)

	events, err := s.audit.ListBySubject(s.ctx, "CASE-PG")
	s.Require().NoError(err)
	s.Len(events, n)
}

func (s *PostgresTxSuite) TestAuditRollsBackWithSeal() {
	boom := errors.New("abort")
	err := s.store.RunInTx(s.ctx, "CASE-RB", func(ctx context.Context) error {
		if err := s.audit.Append(ctx, audit.Event{Subject: "CASE-RB", Action: string(audit.EventEvidenceSealed)}); err != nil {
			return err
		}
		if err := s.store.CreateRecord(ctx, record("CASE-RB", "a.jpg", sealedAt)); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	events, err := s.audit.ListBySubject(s.ctx, "CASE-RB")
	s.Require().NoError(err)
	s.Empty(events)
	records, err := s.store.ListRecords(s.ctx, "CASE-RB")
	s.Require().NoError(err)
	s.Empty(records)
}
