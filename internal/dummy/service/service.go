package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	dummymetrics "dummyapi/internal/dummy/metrics"
	"dummyapi/internal/dummy/models"
	dErrors "dummyapi/pkg/domain-errors"
	"dummyapi/pkg/platform/privacy"
	"dummyapi/pkg/platform/sentinel"
	"dummyapi/pkg/platform/tracer"
	"dummyapi/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,EventPublisher

// Store is the persistence contract. Implementations return
// sentinel.ErrNotFound for unknown ids and a sentinel.UsedError when a write
// collides on a unique field.
type Store interface {
	FindByID(ctx context.Context, id models.DummyID) (*models.Dummy, error)
	FindAll(ctx context.Context) ([]*models.Dummy, error)
	Save(ctx context.Context, d *models.Dummy) (*models.Dummy, error)
	Delete(ctx context.Context, id models.DummyID) error
	Count(ctx context.Context) (int, error)
}

// EventPublisher receives lifecycle events after a mutation succeeded.
type EventPublisher interface {
	Publish(ctx context.Context, event models.DummyEvent) error
}

// Service holds the record rules: national id bound, uniqueness on create,
// and the lookup/filter semantics.
type Service struct {
	store     Store
	tx        StoreTx
	logger    *slog.Logger
	metrics   *dummymetrics.Metrics
	publisher EventPublisher
	tracer    tracer.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *dummymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithTx replaces the default process-local mutex with a store-backed
// transaction, e.g. a Postgres transaction the store joins via context.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = newInMemoryStoreTx()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.tracer == nil {
		s.tracer = tracer.NewNoop()
	}
	return s
}

// GetByID returns the stored record.
func (s *Service) GetByID(ctx context.Context, id models.DummyID) (_ *models.Dummy, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDummyGet, tracer.Int64(tracer.AttrDummyID, int64(id)))
	defer func() { span.End(err) }()
	defer s.observeLookup("get_by_id", time.Now())

	d, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, fmt.Sprintf("dummy id %d not found", id), "failed to load dummy")
	}
	return d, nil
}

// GetByNationalID scans all records; when several match, the last one wins.
func (s *Service) GetByNationalID(ctx context.Context, nationalID int64) (_ *models.Dummy, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDummyGetByDNI,
		tracer.String(tracer.AttrNationalID, privacy.HashNationalID(nationalID)))
	defer func() { span.End(err) }()
	defer s.observeLookup("get_by_national_id", time.Now())

	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "", "failed to list dummies")
	}

	var found *models.Dummy
	for _, d := range all {
		if d.HasNationalID(nationalID) {
			found = d
		}
	}
	if found == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("dummy with national id %d not found", nationalID))
	}
	return found, nil
}

// List returns every record, never nil.
func (s *Service) List(ctx context.Context) (_ []*models.Dummy, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDummyList)
	defer func() { span.End(err) }()
	defer s.observeLookup("list", time.Now())

	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "", "failed to list dummies")
	}
	if all == nil {
		all = []*models.Dummy{}
	}
	span.SetAttributes(tracer.Int64(tracer.AttrResultCount, int64(len(all))))
	return all, nil
}

// Create validates and persists a new record. The uniqueness checks and the
// insert share one transaction; the store's own constraints close any
// remaining race and surface as the same conflict.
func (s *Service) Create(ctx context.Context, d *models.Dummy) (_ *models.Dummy, err error) {
	if d == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "dummy is required")
	}
	attrs := []tracer.Attribute{}
	if d.NationalID != nil {
		attrs = append(attrs, tracer.String(tracer.AttrNationalID, privacy.HashNationalID(*d.NationalID)))
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanDummyCreate, attrs...)
	defer func() { span.End(err) }()

	var created *models.Dummy
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.checkCreatable(ctx, d); err != nil {
			return err
		}

		rec := d.Clone()
		rec.ID = 0
		saved, err := s.store.Save(ctx, rec)
		if err != nil {
			s.rejectOnConflict(err)
			return wrapStoreErr(err, "", "failed to save dummy")
		}
		created = saved
		return nil
	})
	if err != nil {
		s.logRejected(ctx, "create", err)
		return nil, passDomain(err, "failed to create dummy")
	}

	span.SetAttributes(tracer.Int64(tracer.AttrDummyID, int64(created.ID)))
	s.logger.InfoContext(ctx, "dummy created", s.logAttrs(ctx, created)...)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.publish(ctx, span, models.DummyCreated(created))
	return created, nil
}

// checkCreatable applies the create rules in order: national id present and
// in range, national id unused, email unused.
func (s *Service) checkCreatable(ctx context.Context, d *models.Dummy) error {
	if d.NationalID == nil {
		s.reject(dummymetrics.ReasonNationalIDMissing)
		return dErrors.New(dErrors.CodeInvalidArgument, "national id is required")
	}
	if *d.NationalID >= models.MaxNationalID {
		s.reject(dummymetrics.ReasonNationalIDTooLong)
		return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("national id %d too long", *d.NationalID))
	}

	all, err := s.store.FindAll(ctx)
	if err != nil {
		return wrapStoreErr(err, "", "failed to list dummies")
	}
	for _, existing := range all {
		if existing.HasNationalID(*d.NationalID) {
			s.reject(dummymetrics.ReasonDuplicateNationalID)
			return dErrors.New(dErrors.CodeConflict,
				conflictMessage(models.FieldNationalID, strconv.FormatInt(*d.NationalID, 10)))
		}
	}
	if d.Email != nil {
		for _, existing := range all {
			if existing.HasEmail(*d.Email) {
				s.reject(dummymetrics.ReasonDuplicateEmail)
				return dErrors.New(dErrors.CodeConflict, conflictMessage(models.FieldEmail, *d.Email))
			}
		}
	}
	return nil
}

// Update persists d as a whole replacement in a single write. An unknown or
// zero id inserts a new record. Only the store's unique constraints apply.
func (s *Service) Update(ctx context.Context, d *models.Dummy) (_ *models.Dummy, err error) {
	if d == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "dummy is required")
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanDummyUpdate, tracer.Int64(tracer.AttrDummyID, int64(d.ID)))
	defer func() { span.End(err) }()

	saved, err := s.store.Save(ctx, d.Clone())
	if err != nil {
		err = wrapStoreErr(err, "", "failed to update dummy")
		s.logRejected(ctx, "update", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "dummy updated", s.logAttrs(ctx, saved)...)
	if s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	s.publish(ctx, span, models.DummyUpdated(saved))
	return saved, nil
}

// Delete removes the record physically.
func (s *Service) Delete(ctx context.Context, id models.DummyID) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDummyDelete, tracer.Int64(tracer.AttrDummyID, int64(id)))
	defer func() { span.End(err) }()

	notFound := fmt.Sprintf("dummy id %d does not exist", id)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.FindByID(ctx, id); err != nil {
			return wrapStoreErr(err, notFound, "failed to load dummy")
		}
		return wrapStoreErr(s.store.Delete(ctx, id), notFound, "failed to delete dummy")
	})
	if err != nil {
		return passDomain(err, "failed to delete dummy")
	}

	s.logger.InfoContext(ctx, "dummy deleted",
		"dummy_id", int64(id),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	s.publish(ctx, span, models.DummyDeleted(id))
	return nil
}

// FindByCriteria looks a record up by id when one is given, returning the
// stored record. Otherwise it matches on name and returns a copy of the input
// carrying the id of the last matching record; the other input fields are
// left as supplied.
func (s *Service) FindByCriteria(ctx context.Context, criteria *models.Dummy) (_ *models.Dummy, err error) {
	if criteria == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "search criteria required")
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanDummyFind, tracer.Int64(tracer.AttrDummyID, int64(criteria.ID)))
	defer func() { span.End(err) }()
	defer s.observeLookup("find_by_criteria", time.Now())

	if !criteria.ID.IsZero() {
		d, err := s.store.FindByID(ctx, criteria.ID)
		if err != nil {
			return nil, wrapStoreErr(err, fmt.Sprintf("dummy id %d does not exist", criteria.ID), "failed to load dummy")
		}
		return d, nil
	}

	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "", "failed to list dummies")
	}

	var matchedID models.DummyID
	mismatches := 0
	for _, d := range all {
		if d.Name == criteria.Name {
			matchedID = d.ID
			continue
		}
		mismatches++
	}
	if mismatches == len(all) {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("dummy with name '%s' does not exist", criteria.Name))
	}

	result := criteria.Clone()
	result.ID = matchedID
	return result, nil
}

// FilterByCriteria returns full stored records: the single record with the
// given id, or every record whose name equals the given name.
func (s *Service) FilterByCriteria(ctx context.Context, criteria *models.Dummy) (_ []*models.Dummy, err error) {
	if criteria == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "search criteria required")
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanDummyFilter, tracer.Int64(tracer.AttrDummyID, int64(criteria.ID)))
	defer func() { span.End(err) }()
	defer s.observeLookup("filter_by_criteria", time.Now())

	if !criteria.ID.IsZero() {
		d, err := s.store.FindByID(ctx, criteria.ID)
		if err != nil {
			return nil, wrapStoreErr(err, fmt.Sprintf("no dummy with id %d", criteria.ID), "failed to load dummy")
		}
		return []*models.Dummy{d}, nil
	}

	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "", "failed to list dummies")
	}

	matches := make([]*models.Dummy, 0)
	for _, d := range all {
		if d.Name == criteria.Name {
			matches = append(matches, d)
		}
	}
	if len(matches) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no dummy with name '%s'", criteria.Name))
	}
	span.SetAttributes(tracer.Int64(tracer.AttrResultCount, int64(len(matches))))
	return matches, nil
}

func (s *Service) publish(ctx context.Context, span tracer.Span, event models.DummyEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The mutation is committed; a lost event is logged, not returned.
		s.logger.ErrorContext(ctx, "failed to publish dummy event",
			"event", event.Type,
			"dummy_id", int64(event.DummyID),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return
	}
	span.AddEvent(tracer.EventPublished, tracer.String("type", event.Type))
}

func (s *Service) logAttrs(ctx context.Context, d *models.Dummy) []any {
	attrs := []any{"dummy_id", int64(d.ID), "request_id", requestcontext.RequestID(ctx)}
	if d.NationalID != nil {
		attrs = append(attrs, "national_id_hash", privacy.HashNationalID(*d.NationalID))
	}
	if d.Email != nil {
		attrs = append(attrs, "email", privacy.MaskEmail(*d.Email))
	}
	return attrs
}

func (s *Service) logRejected(ctx context.Context, op string, err error) {
	s.logger.WarnContext(ctx, "dummy "+op+" rejected",
		"code", string(dErrors.CodeOf(err)),
		"reason", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(reason)
	}
}

func (s *Service) rejectOnConflict(err error) {
	var used *sentinel.UsedError
	if errors.As(err, &used) {
		switch used.Field {
		case models.FieldNationalID:
			s.reject(dummymetrics.ReasonDuplicateNationalID)
		case models.FieldEmail:
			s.reject(dummymetrics.ReasonDuplicateEmail)
		}
	}
}

func (s *Service) observeLookup(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveLookup(op, start)
	}
}
