package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang/mock/gomock"
	"github.com/hydrib/landregistry-backend/internal/archive"
	"github.com/stretchr/testify/suite"
	tcClickhouse "github.com/testcontainers/testcontainers-go/modules/clickhouse"
)

const (
	clickhouseImage = "clickhouse/clickhouse-server:25.11"
)

type RepositorySuite struct {
	suite.Suite
	ctx        context.Context
	cancel     context.CancelFunc
	container  *tcClickhouse.ClickHouseContainer
	dsn        string
	repo       *Repository
	metrics    *MockMetrics
	metricsCtl *gomock.Controller
	testCtx    context.Context
	testCancel context.CancelFunc
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)

	container, err := tcClickhouse.Run(s.ctx,
		clickhouseImage,
		tcClickhouse.WithUsername("default"),
		tcClickhouse.WithDatabase("default"),
	)
	s.Require().NoError(err)

	s.container = container

	dsn, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)
	s.dsn = dsn
}

func (s *RepositorySuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *RepositorySuite) SetupTest() {
	s.testCtx, s.testCancel = context.WithTimeout(context.Background(), time.Minute)
	s.metricsCtl = gomock.NewController(s.T())
	s.metrics = NewMockMetrics(s.metricsCtl)
	s.metrics.EXPECT().Observe(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	s.Require().NoError(applyMigrationsUp(s.dsn))

	repo, err := NewRepository(s.dsn, s.metrics)
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RepositorySuite) TearDownTest() {
	if s.testCancel != nil {
		s.testCancel()
	}
	s.Require().NoError(applyMigrationsDown(s.dsn))
	if s.metricsCtl != nil {
		s.metricsCtl.Finish()
	}
}

func newRow(sequence uint64, previous, hash byte, kind string) archive.Row {
	return archive.Row{
		Sequence:     sequence,
		PreviousHash: strings.Repeat(string(previous), 64),
		Hash:         strings.Repeat(string(hash), 64),
		Kind:         kind,
		Payload:      fmt.Sprintf(`{"fields":{"parcel_id":%d},"kind":%q}`, sequence, kind),
		CreatedAt:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(sequence) * time.Minute),
	}
}

func (s *RepositorySuite) TestMaxSequenceEmpty() {
	sequence, err := s.repo.MaxSequence(s.testCtx)
	s.Require().NoError(err)
	s.Zero(sequence)
}

func (s *RepositorySuite) TestInsertBlocksAndMaxSequence() {
	rows := []archive.Row{
		newRow(1, '0', 'a', "registration"),
		newRow(2, 'a', 'b', "sale_initiated"),
		newRow(3, 'b', 'c', "ownership_transfer"),
	}
	s.Require().NoError(s.repo.InsertBlocks(s.testCtx, rows))

	sequence, err := s.repo.MaxSequence(s.testCtx)
	s.Require().NoError(err)
	s.Equal(uint64(3), sequence)
}

func (s *RepositorySuite) TestInsertBlocksIdempotentOnResume() {
	rows := []archive.Row{
		newRow(1, '0', 'a', "registration"),
		newRow(2, 'a', 'b', "sale_initiated"),
	}
	s.Require().NoError(s.repo.InsertBlocks(s.testCtx, rows))

	// A resumed export re-inserts the same sequences; the replacing table
	// keeps one row per sequence.
	s.Require().NoError(s.repo.InsertBlocks(s.testCtx, rows))

	counts, err := s.repo.EventKindCounts(s.testCtx)
	s.Require().NoError(err)
	s.Equal(uint64(1), counts["registration"])
	s.Equal(uint64(1), counts["sale_initiated"])
}

func (s *RepositorySuite) TestInsertBlocksEmptyBatch() {
	s.Require().NoError(s.repo.InsertBlocks(s.testCtx, nil))
}

func (s *RepositorySuite) TestEventKindCounts() {
	rows := []archive.Row{
		newRow(1, '0', 'a', "registration"),
		newRow(2, 'a', 'b', "registration"),
		newRow(3, 'b', 'c', "document_upload"),
	}
	s.Require().NoError(s.repo.InsertBlocks(s.testCtx, rows))

	counts, err := s.repo.EventKindCounts(s.testCtx)
	s.Require().NoError(err)
	s.Equal(map[string]uint64{
		"registration":    2,
		"document_upload": 1,
	}, counts)
}

func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working dir: %w", err)
	}

	for {
		if _, statErr := os.Stat(filepath.Join(dir, "go.mod")); statErr == nil {
			return dir, nil
		}
		next := filepath.Dir(dir)
		if next == dir {
			return "", fmt.Errorf("go.mod not found from %s", dir)
		}
		dir = next
	}
}

func applyMigrationsUp(dsn string) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeMigrator(m)
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func applyMigrationsDown(dsn string) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeMigrator(m)
	}()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func newMigrator(dsn string) (*migrate.Migrate, error) {
	root, err := moduleRoot()
	if err != nil {
		return nil, err
	}

	sourceURL := fmt.Sprintf("file://%s", filepath.Join(root, "migrations", "clickhouse"))
	targetDSN := withMultiStatement(dsn)
	m, err := migrate.New(sourceURL, targetDSN)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, nil
}

func withMultiStatement(dsn string) string {
	if strings.Contains(dsn, "x-multi-statement=") {
		return dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + "x-multi-statement=true"
}

func closeMigrator(m *migrate.Migrate) error {
	if m == nil {
		return nil
	}
	sourceErr, dbErr := m.Close()
	if sourceErr != nil && dbErr != nil {
		return fmt.Errorf("close migrator: source: %v; database: %v", sourceErr, dbErr)
	}
	if sourceErr != nil {
		return fmt.Errorf("close migrator: source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migrator: database: %w", dbErr)
	}
	return nil
}
