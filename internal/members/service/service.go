package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Repository,Notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"members/internal/members/metrics"
	"members/internal/members/models"
	dErrors "members/pkg/domain-errors"
	"members/pkg/platform/sentinel"
	"members/pkg/requestcontext"
)

// Repository is the persistent member store. Implementations return
// sentinel.ErrNotFound for absent ids.
type Repository interface {
	List(ctx context.Context) ([]*models.Member, error)
	FindByID(ctx context.Context, id models.MemberID) (*models.Member, error)
	FindByRole(ctx context.Context, role models.Role) ([]*models.Member, error)
	Create(ctx context.Context, draft models.Draft) (*models.Member, error)
	Update(ctx context.Context, id models.MemberID, draft models.Draft) (*models.Member, error)
	Delete(ctx context.Context, id models.MemberID) (*models.Member, error)
}

// Notifier accepts change events for best-effort delivery.
type Notifier interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}

// Service is the single operation set the REST and GraphQL adapters call.
//
// Every committed mutation produces exactly one Publish call, made after the
// repository returns. The repository result alone decides what the caller
// gets back; publish errors are logged and counted.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	newID    func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithCorrelationIDGenerator overrides how fresh correlation ids are minted.
func WithCorrelationIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// New constructs a Service.
func New(repo Repository, notifier Notifier, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("member repository is required")
	}
	if notifier == nil {
		return nil, errors.New("change notifier is required")
	}
	s := &Service{repo: repo, notifier: notifier}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("members/service")
	}
	return s, nil
}

// List returns every member. Order is not guaranteed.
func (s *Service) List(ctx context.Context) ([]*models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "members.List")
	defer span.End()

	start := time.Now()
	list, err := s.repo.List(ctx)
	s.observeStore("list", start)
	if err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list members"))
	}
	return list, nil
}

// Get returns the member with id.
func (s *Service) Get(ctx context.Context, id models.MemberID) (*models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "members.Get", trace.WithAttributes(attribute.Int64("member.id", int64(id))))
	defer span.End()

	start := time.Now()
	m, err := s.repo.FindByID(ctx, id)
	s.observeStore("get", start)
	if err != nil {
		return nil, s.fail(span, translate(err, "failed to load member"))
	}
	return m, nil
}

// FilterByRole returns the members whose role set contains role.
func (s *Service) FilterByRole(ctx context.Context, role models.Role) ([]*models.Member, error) {
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown role "+string(role))
	}
	ctx, span := s.tracer.Start(ctx, "members.FilterByRole", trace.WithAttributes(attribute.String("member.role", string(role))))
	defer span.End()

	start := time.Now()
	list, err := s.repo.FindByRole(ctx, role)
	s.observeStore("filter_by_role", start)
	if err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to filter members by role"))
	}
	return list, nil
}

// Create validates draft, stores it under a fresh id, and announces the addition.
func (s *Service) Create(ctx context.Context, draft models.Draft) (*models.Member, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	correlationID := s.correlationID(ctx)
	ctx, span := s.tracer.Start(ctx, "members.Create")
	defer span.End()

	start := time.Now()
	created, err := s.repo.Create(ctx, draft)
	s.observeStore("create", start)
	if err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create member"))
	}
	span.SetAttributes(attribute.Int64("member.id", int64(created.ID)))

	s.logger.InfoContext(ctx, "member added",
		"member_id", created.ID,
		"section", created.Section,
		"correlation_id", correlationID,
	)
	s.incrementAdded()
	s.publish(ctx, models.OperationCreated, created.ID, correlationID)
	return created, nil
}

// Update replaces every field of member id with draft. The current record is
// read first only to report which fields changed; concurrent updates to the
// same id are last-writer-wins.
func (s *Service) Update(ctx context.Context, id models.MemberID, draft models.Draft) (*models.Member, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	correlationID := s.correlationID(ctx)
	ctx, span := s.tracer.Start(ctx, "members.Update", trace.WithAttributes(attribute.Int64("member.id", int64(id))))
	defer span.End()

	start := time.Now()
	before, err := s.repo.FindByID(ctx, id)
	s.observeStore("get", start)
	if err != nil {
		return nil, s.fail(span, translate(err, "failed to load member"))
	}

	start = time.Now()
	updated, err := s.repo.Update(ctx, id, draft)
	s.observeStore("update", start)
	if err != nil {
		return nil, s.fail(span, translate(err, "failed to update member"))
	}

	changed := changedFields(before, updated)
	s.logger.InfoContext(ctx, "member updated",
		"member_id", id,
		"changed_fields", changed,
		"correlation_id", correlationID,
	)
	if rolesChanged(changed) {
		s.incrementRoleChange()
	}
	s.publish(ctx, models.OperationUpdated, id, correlationID)
	return updated, nil
}

// Delete removes member id and returns the record as it was just before removal.
// The record is read first so an undecodable row fails before anything is written.
func (s *Service) Delete(ctx context.Context, id models.MemberID) (*models.Member, error) {
	correlationID := s.correlationID(ctx)
	ctx, span := s.tracer.Start(ctx, "members.Delete", trace.WithAttributes(attribute.Int64("member.id", int64(id))))
	defer span.End()

	start := time.Now()
	before, err := s.repo.FindByID(ctx, id)
	s.observeStore("get", start)
	if err != nil {
		return nil, s.fail(span, translate(err, "failed to load member"))
	}

	start = time.Now()
	deleted, err := s.repo.Delete(ctx, id)
	s.observeStore("delete", start)
	switch {
	case errors.Is(err, sentinel.ErrCorrupt):
		// The row is gone; report the record read above.
		s.logger.WarnContext(ctx, "deleted member could not be decoded",
			"member_id", id,
			"error", err,
		)
		deleted = before
	case err != nil:
		return nil, s.fail(span, translate(err, "failed to delete member"))
	}

	s.logger.InfoContext(ctx, "member deleted",
		"member_id", id,
		"correlation_id", correlationID,
	)
	s.publish(ctx, models.OperationDeleted, id, correlationID)
	return deleted, nil
}

func (s *Service) publish(ctx context.Context, kind models.OperationKind, id models.MemberID, correlationID string) {
	s.incrementMutation(kind)
	event := models.ChangeEvent{
		EntityID:      id,
		CorrelationID: correlationID,
		Kind:          kind,
		OccurredAt:    requestcontext.Now(ctx),
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish member change",
			"operation", kind.Key(),
			"member_id", id,
			"correlation_id", correlationID,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncrementPublishError()
		}
		trace.SpanFromContext(ctx).AddEvent("publish failed", trace.WithAttributes(attribute.String("error", err.Error())))
	}
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func translate(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "member not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) observeStore(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStore(op, start)
	}
}

func (s *Service) incrementAdded() {
	if s.metrics != nil {
		s.metrics.IncrementAdded()
	}
}

func (s *Service) incrementMutation(kind models.OperationKind) {
	if s.metrics != nil {
		s.metrics.IncrementMutation(kind.Key())
	}
}

func (s *Service) incrementRoleChange() {
	if s.metrics != nil {
		s.metrics.IncrementRoleChange()
	}
}
