package service

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dummymetrics "dummyapi/internal/dummy/metrics"
	"dummyapi/internal/dummy/models"
	"dummyapi/internal/dummy/store"
	dErrors "dummyapi/pkg/domain-errors"
	dummytest "dummyapi/pkg/testutil"
)

func ptr[T any](v T) *T { return &v }

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.DummyEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e models.DummyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// ServiceSuite exercises the record rules against the in-memory store.
type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	store     *store.InMemory
	metrics   *dummymetrics.Metrics
	publisher *recordingPublisher
	logs      *bytes.Buffer
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory()
	s.metrics = dummymetrics.New(prometheus.NewRegistry())
	s.publisher = &recordingPublisher{}
	s.logs = &bytes.Buffer{}
	s.service = New(s.store,
		WithLogger(slog.New(slog.NewJSONHandler(s.logs, nil))),
		WithMetrics(s.metrics),
		WithPublisher(s.publisher),
	)
}

func (s *ServiceSuite) create(name string, dni int64, email string) *models.Dummy {
	d := &models.Dummy{Name: name, NationalID: ptr(dni)}
	if email != "" {
		d.Email = ptr(email)
	}
	created, err := s.service.Create(s.ctx, d)
	s.Require().NoError(err)
	return created
}

func (s *ServiceSuite) count() int {
	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	return n
}

// =============================================================================
// Create
// =============================================================================

func (s *ServiceSuite) TestCreate_RoundTrip() {
	birth := models.Date{Year: 1990, Month: time.May, Day: 1}
	in := &models.Dummy{Name: "Ana", NationalID: ptr(int64(111)), Email: ptr("a@x.com"), Phone: ptr(int64(555)), BirthDate: &birth}

	created, err := s.service.Create(s.ctx, in)
	s.Require().NoError(err)
	s.Equal(models.DummyID(1), created.ID)

	found, err := s.service.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created, found)
	s.Equal([]string{models.EventDummyCreated}, s.publisher.types())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Created))
}

func (s *ServiceSuite) TestCreate_IgnoresSuppliedID() {
	created, err := s.service.Create(s.ctx, &models.Dummy{ID: 99, Name: "Ana", NationalID: ptr(int64(111))})
	s.Require().NoError(err)
	s.Equal(models.DummyID(1), created.ID)
}

// Invariant: national id is mandatory and below 100_000_000; rejection happens
// before any write.
func (s *ServiceSuite) TestCreate_NationalIDRules() {
	s.Run("missing national id", func() {
		_, err := s.service.Create(s.ctx, &models.Dummy{Name: "Ana"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		s.Equal("national id is required", err.Error())
	})

	s.Run("at the bound", func() {
		_, err := s.service.Create(s.ctx, &models.Dummy{Name: "Ana", NationalID: ptr(int64(100_000_000))})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		s.Equal("national id 100000000 too long", err.Error())
	})

	s.Equal(0, s.count())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rejected.WithLabelValues(dummymetrics.ReasonNationalIDTooLong)))

	s.Run("just below the bound", func() {
		_, err := s.service.Create(s.ctx, &models.Dummy{Name: "Ana", NationalID: ptr(int64(99_999_999))})
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestCreate_Uniqueness() {
	s.create("Ana", 111, "a@x.com")

	s.Run("same national id", func() {
		_, err := s.service.Create(s.ctx, &models.Dummy{Name: "Eve", NationalID: ptr(int64(111)), Email: ptr("e@x.com")})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("dummy with national id 111 already exists", err.Error())
	})

	s.Run("same email", func() {
		_, err := s.service.Create(s.ctx, &models.Dummy{Name: "Eve", NationalID: ptr(int64(222)), Email: ptr("a@x.com")})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("dummy with email a@x.com already exists", err.Error())
	})

	s.Run("national id is checked before email", func() {
		_, err := s.service.Create(s.ctx, &models.Dummy{Name: "Eve", NationalID: ptr(int64(111)), Email: ptr("a@x.com")})
		s.Require().Error(err)
		s.Contains(err.Error(), "national id 111")
	})

	s.Run("absent email never collides", func() {
		s.create("NoMail1", 301, "")
		s.create("NoMail2", 302, "")
	})

	s.Contains(s.logs.String(), "dummy create rejected")
}

func (s *ServiceSuite) TestCreate_CancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service.Create(ctx, &models.Dummy{Name: "Ana", NationalID: ptr(int64(111))})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	s.Equal(0, s.count())
}

// Invariant: concurrent creates with the same national id persist exactly one record.
func (s *ServiceSuite) TestCreate_ConcurrentDuplicates() {
	res := dummytest.RunConcurrent(10, func(int) error {
		_, err := s.service.Create(s.ctx, dummytest.NewDummy("Ana").WithNationalID(111).Build())
		return err
	})

	s.Equal(int32(1), res.Successes)
	s.Equal(int32(9), res.Conflicts)
	s.Zero(res.Errors)
	s.Equal(1, s.count())
}

// =============================================================================
// Reads
// =============================================================================

func (s *ServiceSuite) TestGetByID_NotFound() {
	_, err := s.service.GetByID(s.ctx, 9)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("dummy id 9 not found", err.Error())
}

func (s *ServiceSuite) TestGetByNationalID() {
	s.create("Ana", 111, "a@x.com")
	bob := s.create("Bob", 222, "b@x.com")

	found, err := s.service.GetByNationalID(s.ctx, 222)
	s.Require().NoError(err)
	s.Equal(bob, found)

	_, err = s.service.GetByNationalID(s.ctx, 333)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("dummy with national id 333 not found", err.Error())
}

func (s *ServiceSuite) TestList() {
	empty, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)

	s.create("Ana", 111, "")
	s.create("Bob", 222, "")

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

// =============================================================================
// Update & Delete
// =============================================================================

func (s *ServiceSuite) TestUpdate_ReplacesRecord() {
	ana := s.create("Ana", 111, "a@x.com")

	updated, err := s.service.Update(s.ctx, &models.Dummy{ID: ana.ID, Name: "Ana Maria", NationalID: ptr(int64(111))})
	s.Require().NoError(err)
	s.Equal(ana.ID, updated.ID)
	s.Nil(updated.Email)
	s.Equal(1, s.count())
	s.Equal([]string{models.EventDummyCreated, models.EventDummyUpdated}, s.publisher.types())
}

func (s *ServiceSuite) TestUpdate_SkipsCreateRules() {
	ana := s.create("Ana", 111, "")

	// The national id bound only applies on create.
	updated, err := s.service.Update(s.ctx, &models.Dummy{ID: ana.ID, Name: "Ana", NationalID: ptr(int64(123_456_789))})
	s.Require().NoError(err)
	s.Equal(int64(123_456_789), *updated.NationalID)

	// Unknown id is an upsert.
	inserted, err := s.service.Update(s.ctx, &models.Dummy{ID: 77, Name: "Ghost"})
	s.Require().NoError(err)
	s.NotEqual(models.DummyID(77), inserted.ID)
	s.Equal(2, s.count())
}

func (s *ServiceSuite) TestUpdate_StoreConstraintIsConflict() {
	s.create("Ana", 111, "a@x.com")
	bob := s.create("Bob", 222, "b@x.com")

	bob.Email = ptr("a@x.com")
	_, err := s.service.Update(s.ctx, bob)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal("dummy with email a@x.com already exists", err.Error())
}

func (s *ServiceSuite) TestDelete() {
	ana := s.create("Ana", 111, "")

	s.Require().NoError(s.service.Delete(s.ctx, ana.ID))

	_, err := s.service.GetByID(s.ctx, ana.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.Delete(s.ctx, ana.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("dummy id 1 does not exist", err.Error())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Deleted))
}

// =============================================================================
// FindByCriteria / FilterByCriteria
// =============================================================================

// Invariant: lookup by id returns the stored record and ignores the other input fields.
func (s *ServiceSuite) TestFindByCriteria_ByID() {
	ana := s.create("Ana", 111, "a@x.com")

	found, err := s.service.FindByCriteria(s.ctx, &models.Dummy{ID: ana.ID, Name: "ignored"})
	s.Require().NoError(err)
	s.Equal(ana, found)

	_, err = s.service.FindByCriteria(s.ctx, &models.Dummy{ID: 42})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("dummy id 42 does not exist", err.Error())
}

// Invariant: the name scan patches the matched id onto a copy of the input;
// the last match wins.
func (s *ServiceSuite) TestFindByCriteria_ByName() {
	s.create("Ana", 111, "a@x.com")
	s.create("Bob", 222, "")
	second := s.create("Ana", 333, "")

	criteria := &models.Dummy{Name: "Ana", Phone: ptr(int64(42))}
	found, err := s.service.FindByCriteria(s.ctx, criteria)
	s.Require().NoError(err)

	s.Equal(second.ID, found.ID)
	s.Equal(int64(42), *found.Phone, "input fields are kept")
	s.Nil(found.NationalID, "stored fields are not copied")
	s.True(criteria.ID.IsZero(), "input is not mutated")
}

func (s *ServiceSuite) TestFindByCriteria_NameNotFound() {
	_, err := s.service.FindByCriteria(s.ctx, &models.Dummy{Name: "Ana"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "empty store")

	s.create("Bob", 222, "")
	_, err = s.service.FindByCriteria(s.ctx, &models.Dummy{Name: "Ana"})
	s.Require().Error(err)
	s.Equal("dummy with name 'Ana' does not exist", err.Error())
}

func (s *ServiceSuite) TestFilterByCriteria() {
	ana := s.create("Ana", 111, "a@x.com")
	s.create("Bob", 222, "")
	ana2 := s.create("Ana", 333, "")

	s.Run("by id returns the full record", func() {
		out, err := s.service.FilterByCriteria(s.ctx, &models.Dummy{ID: ana.ID, Name: "ignored"})
		s.Require().NoError(err)
		s.Equal([]*models.Dummy{ana}, out)
	})

	s.Run("unknown id", func() {
		_, err := s.service.FilterByCriteria(s.ctx, &models.Dummy{ID: 99})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("no dummy with id 99", err.Error())
	})

	s.Run("by name returns every match", func() {
		out, err := s.service.FilterByCriteria(s.ctx, &models.Dummy{Name: "Ana"})
		s.Require().NoError(err)
		s.Equal([]*models.Dummy{ana, ana2}, out)
	})

	s.Run("no match", func() {
		_, err := s.service.FilterByCriteria(s.ctx, &models.Dummy{Name: "Zed"})
		s.Require().Error(err)
		s.Equal("no dummy with name 'Zed'", err.Error())
	})
}

func (s *ServiceSuite) TestFilterByCriteria_EmptyStore() {
	_, err := s.service.FilterByCriteria(s.ctx, &models.Dummy{Name: "Ana"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestNilInputs() {
	_, err := s.service.Create(s.ctx, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	_, err = s.service.Update(s.ctx, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	_, err = s.service.FindByCriteria(s.ctx, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	_, err = s.service.FilterByCriteria(s.ctx, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

// =============================================================================
// Scenario
// =============================================================================

func (s *ServiceSuite) TestAnaBobScenario() {
	ana := s.create("Ana", 111, "a@x.com")
	s.Require().Equal(models.DummyID(1), ana.ID)

	_, err := s.service.Create(s.ctx, &models.Dummy{Name: "Ana", NationalID: ptr(int64(111)), Email: ptr("b@x.com")})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), "national id 111")

	_, err = s.service.Create(s.ctx, &models.Dummy{Name: "Ana", NationalID: ptr(int64(222)), Email: ptr("a@x.com")})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), "email a@x.com")

	bob := s.create("Bob", 222, "b@x.com")
	s.Equal(models.DummyID(2), bob.ID)

	byDNI, err := s.service.GetByNationalID(s.ctx, 222)
	s.Require().NoError(err)
	s.Equal(bob, byDNI)

	filtered, err := s.service.FilterByCriteria(s.ctx, &models.Dummy{Name: "Ana"})
	s.Require().NoError(err)
	s.Equal([]*models.Dummy{ana}, filtered)

	s.Require().NoError(s.service.Delete(s.ctx, 1))
	_, err = s.service.GetByID(s.ctx, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestNewDefaults(t *testing.T) {
	svc := New(store.NewInMemory())
	require.NotNil(t, svc.tx)
	require.NotNil(t, svc.logger)
	require.NotNil(t, svc.tracer)

	_, err := svc.Create(context.Background(), &models.Dummy{Name: "Ana", NationalID: ptr(int64(1))})
	assert.NoError(t, err)
}
