package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"artemiz/internal/audit"
	"artemiz/internal/registration/metrics"
	"artemiz/internal/registration/models"
	"artemiz/internal/registration/store/session"
	id "artemiz/pkg/domain"
	dErrors "artemiz/pkg/domain-errors"
	"artemiz/pkg/platform/sentinel"
	"artemiz/pkg/requestcontext"
)

// SessionStore holds wizard sessions. Update must apply fn atomically.
type SessionStore interface {
	Create(ctx context.Context, w *models.Wizard) error
	Get(ctx context.Context, sessionID id.SessionID) (*models.Wizard, error)
	Update(ctx context.Context, sessionID id.SessionID, fn session.UpdateFunc) (*models.Wizard, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// Submitter is the submission boundary. It is called once per Submitting
// episode.
type Submitter interface {
	Submit(ctx context.Context, reg *models.Registration) error
}

type RegistrationLister interface {
	List(ctx context.Context) ([]*models.Registration, error)
}

// Notifier surfaces a transient notice to the visitor.
type Notifier interface {
	Notify(ctx context.Context, sessionID id.SessionID, notice models.Notice)
}

// Navigator performs the navigate-home effect after a successful submission.
type Navigator interface {
	NavigateHome(ctx context.Context, sessionID id.SessionID) error
}

const (
	defaultRedirectDelay = 3 * time.Second
	defaultSubmitTimeout = 10 * time.Second

	outcomeAttempts       = 3
	defaultOutcomeBackoff = 50 * time.Millisecond
)

// errSettled aborts a settle update for a wizard that already left Submitting.
var errSettled = errors.New("submission already settled")

// outcome is a boundary result whose write to the session store failed.
type outcome struct {
	registrationID id.RegistrationID
	err            error
}

// Service drives registration wizards: session lifecycle, the step state
// machine and the one boundary call per submission.
type Service struct {
	sessions      SessionStore
	submitter     Submitter
	registrations RegistrationLister
	validator     *models.Validator

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	notifier       Notifier
	navigator      Navigator
	scheduler      Scheduler
	tracer         trace.Tracer
	redirectDelay  time.Duration
	submitTimeout  time.Duration
	outcomeBackoff time.Duration

	mu        sync.Mutex
	closed    bool
	timers    map[id.SessionID]Timer
	unsettled map[id.SessionID]outcome
	inflight  sync.WaitGroup
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

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithNavigator(navigator Navigator) Option {
	return func(s *Service) {
		s.navigator = navigator
	}
}

// WithScheduler replaces time.AfterFunc, for tests.
func WithScheduler(scheduler Scheduler) Option {
	return func(s *Service) {
		s.scheduler = scheduler
	}
}

func WithRedirectDelay(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.redirectDelay = d
		}
	}
}

func WithSubmitTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.submitTimeout = d
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(sessions SessionStore, submitter Submitter, registrations RegistrationLister, validator *models.Validator, opts ...Option) *Service {
	s := &Service{
		sessions:       sessions,
		submitter:      submitter,
		registrations:  registrations,
		validator:      validator,
		logger:         slog.Default(),
		scheduler:      afterFunc,
		tracer:         otel.Tracer("artemiz/registration"),
		redirectDelay:  defaultRedirectDelay,
		submitTimeout:  defaultSubmitTimeout,
		outcomeBackoff: defaultOutcomeBackoff,
		timers:         make(map[id.SessionID]Timer),
		unsettled:      make(map[id.SessionID]outcome),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(s.logger)
	}
	if s.navigator == nil {
		s.navigator = NewSessionReaper(sessions)
	}
	return s
}

// RedirectDelay is how long a successful wizard lingers before navigate-home.
func (s *Service) RedirectDelay() time.Duration {
	return s.redirectDelay
}

// Start creates an empty wizard on step 1.
func (s *Service) Start(ctx context.Context) (*models.Wizard, error) {
	w := models.NewWizard(id.NewSessionID(), requestcontext.Now(ctx))
	if err := s.sessions.Create(ctx, w); err != nil {
		return nil, translateStoreError(err)
	}
	if s.metrics != nil {
		s.metrics.IncrementWizardsStarted()
	}
	s.logAudit(ctx, audit.EventWizardStarted, w.ID, w.Step, "")
	return w, nil
}

func (s *Service) Get(ctx context.Context, sessionID id.SessionID) (*models.Wizard, error) {
	s.settle(ctx, sessionID)
	w, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return w, nil
}

// UpdateAnswers applies a partial edit. Step and errors are untouched.
func (s *Service) UpdateAnswers(ctx context.Context, sessionID id.SessionID, patch models.Patch) (*models.Wizard, error) {
	if patch.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one answer is required")
	}
	now := requestcontext.Now(ctx)
	return s.mutate(ctx, sessionID, func(w *models.Wizard) error {
		return w.ApplyPatch(patch, now)
	})
}

// Toggle flips option in a multi-select field.
func (s *Service) Toggle(ctx context.Context, sessionID id.SessionID, field models.Field, option string) (*models.Wizard, error) {
	now := requestcontext.Now(ctx)
	return s.mutate(ctx, sessionID, func(w *models.Wizard) error {
		return w.Toggle(field, option, now)
	})
}

// Next validates the current step and advances. On a validation failure the
// wizard is returned together with a CodeValidation error.
func (s *Service) Next(ctx context.Context, sessionID id.SessionID) (*models.Wizard, error) {
	now := requestcontext.Now(ctx)
	w, err := s.mutate(ctx, sessionID, func(w *models.Wizard) error {
		return w.Next(s.validator, now)
	})
	switch {
	case err == nil:
		if s.metrics != nil {
			s.metrics.IncrementStepAdvanced(w.Step - 1)
		}
		s.logAudit(ctx, audit.EventStepAdvanced, w.ID, w.Step, "")
	case w != nil:
		if s.metrics != nil {
			s.metrics.IncrementStepRejected(w.Step)
		}
		s.logAudit(ctx, audit.EventStepRejected, w.ID, w.Step, "validation failed")
	}
	return w, err
}

func (s *Service) Previous(ctx context.Context, sessionID id.SessionID) (*models.Wizard, error) {
	now := requestcontext.Now(ctx)
	w, err := s.mutate(ctx, sessionID, func(w *models.Wizard) error {
		return w.Previous(now)
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventStepReturned, w.ID, w.Step, "")
	return w, nil
}

// Submit moves a valid step-5 wizard into Submitting, calls the boundary once
// and records the outcome. Only one caller wins the move into Submitting;
// the others get CodeConflict. The boundary call is detached from the
// caller's cancellation and bounded by the submit timeout. A boundary failure
// returns the wizard on step 5 along with a CodeUnavailable error.
func (s *Service) Submit(ctx context.Context, sessionID id.SessionID) (*models.Wizard, error) {
	ctx, span := s.tracer.Start(ctx, "registration.submit",
		trace.WithAttributes(attribute.String("session_id", sessionID.String())))
	defer span.End()

	now := requestcontext.Now(ctx)
	w, err := s.mutate(ctx, sessionID, func(w *models.Wizard) error {
		return w.BeginSubmit(s.validator, now)
	})
	if err != nil {
		if w != nil {
			if s.metrics != nil {
				s.metrics.IncrementSubmission(metrics.OutcomeRejected)
				s.metrics.IncrementStepRejected(w.Step)
			}
			s.logAudit(ctx, audit.EventStepRejected, w.ID, w.Step, "submit validation failed")
		}
		span.SetStatus(codes.Error, err.Error())
		return w, err
	}

	reg, err := models.NewRegistration(id.NewRegistrationID(), w)
	if err != nil {
		return nil, err
	}
	submitErr := s.callBoundary(ctx, reg)

	done, err := s.recordOutcome(context.WithoutCancel(ctx), sessionID, outcome{registrationID: reg.ID, err: submitErr})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.finishSubmit(ctx, done, submitErr); err != nil {
		span.RecordError(submitErr)
		span.SetStatus(codes.Error, "submission failed")
		return done, err
	}
	return done, nil
}

// finishSubmit runs the effects of a recorded boundary outcome. A failure
// comes back as a CodeUnavailable error.
func (s *Service) finishSubmit(ctx context.Context, done *models.Wizard, submitErr error) error {
	if submitErr != nil {
		if s.metrics != nil {
			s.metrics.IncrementSubmission(metrics.OutcomeFailure)
		}
		s.logAudit(ctx, audit.EventSubmissionFailed, done.ID, done.Step, submitErr.Error())
		s.notifier.Notify(ctx, done.ID, models.FailureNotice)
		return dErrors.Wrap(submitErr, dErrors.CodeUnavailable, "registration could not be submitted")
	}

	if s.metrics != nil {
		s.metrics.IncrementSubmission(metrics.OutcomeSuccess)
	}
	s.logAudit(ctx, audit.EventSubmitted, done.ID, done.Step, "")
	s.notifier.Notify(ctx, done.ID, models.SuccessNotice)
	s.scheduleNavigateHome(ctx, done.ID)
	return nil
}

// recordOutcome moves a Submitting wizard to its outcome, retrying store
// conflicts and outages a bounded number of times. When every attempt fails
// the outcome is kept in memory and applied by the next settle.
func (s *Service) recordOutcome(ctx context.Context, sessionID id.SessionID, o outcome) (*models.Wizard, error) {
	var (
		done *models.Wizard
		err  error
	)
	for attempt := range outcomeAttempts {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * s.outcomeBackoff)
		}
		done, err = s.mutate(ctx, sessionID, func(w *models.Wizard) error {
			return w.CompleteSubmit(o.err, requestcontext.Now(ctx))
		})
		if err == nil || !retryable(err) {
			break
		}
	}
	if err == nil {
		return done, nil
	}

	s.logger.ErrorContext(ctx, "failed to record submission outcome",
		"session_id", sessionID.String(),
		"registration_id", o.registrationID.String(),
		"boundary_error", o.err,
		"error", err,
	)
	if retryable(err) {
		s.mu.Lock()
		s.unsettled[sessionID] = o
		s.mu.Unlock()
	}
	return nil, err
}

// settle applies an outcome left behind by recordOutcome. It is a no-op for
// sessions with nothing pending and is safe to call concurrently: only the
// caller that moves the wizard out of Submitting runs the effects.
func (s *Service) settle(ctx context.Context, sessionID id.SessionID) {
	s.mu.Lock()
	o, ok := s.unsettled[sessionID]
	s.mu.Unlock()
	if !ok {
		return
	}

	done, err := s.sessions.Update(ctx, sessionID, func(w *models.Wizard) error {
		if w.Phase != models.PhaseSubmitting {
			return errSettled
		}
		return w.CompleteSubmit(o.err, requestcontext.Now(ctx))
	})
	if err != nil && retryable(translateStoreError(err)) {
		s.logger.WarnContext(ctx, "submission outcome still pending",
			"session_id", sessionID.String(),
			"error", err,
		)
		return
	}

	s.mu.Lock()
	delete(s.unsettled, sessionID)
	s.mu.Unlock()
	if err != nil {
		return
	}
	s.logger.InfoContext(ctx, "settled pending submission outcome",
		"session_id", sessionID.String(),
		"registration_id", o.registrationID.String(),
	)
	_ = s.finishSubmit(ctx, done, o.err)
}

func retryable(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeUnavailable) || dErrors.HasCode(err, dErrors.CodeConflict)
}

func (s *Service) callBoundary(ctx context.Context, reg *models.Registration) error {
	ctx, span := s.tracer.Start(ctx, "registration.boundary",
		trace.WithAttributes(attribute.String("registration_id", reg.ID.String())))
	defer span.End()

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.submitTimeout)
	defer cancel()

	start := time.Now()
	err := s.submitter.Submit(callCtx, reg)
	if s.metrics != nil {
		s.metrics.ObserveSubmitDuration(time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "registration submission failed",
			"session_id", reg.SessionID.String(),
			"registration_id", reg.ID.String(),
			"error", err,
		)
	}
	return err
}

// Abandon discards a wizard.
func (s *Service) Abandon(ctx context.Context, sessionID id.SessionID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return translateStoreError(err)
	}
	s.cancelNavigateHome(sessionID)
	s.mu.Lock()
	delete(s.unsettled, sessionID)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.IncrementWizardsAbandoned()
	}
	s.logAudit(ctx, audit.EventWizardAbandoned, sessionID, 0, "")
	return nil
}

// ListRegistrations returns completed registrations, newest first.
func (s *Service) ListRegistrations(ctx context.Context) ([]*models.Registration, error) {
	regs, err := s.registrations.List(ctx)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return regs, nil
}

// Close stops pending navigate-home timers and waits for running ones.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	for sessionID, t := range s.timers {
		t.Stop()
		delete(s.timers, sessionID)
	}
	s.mu.Unlock()
	s.inflight.Wait()
}

func (s *Service) scheduleNavigateHome(ctx context.Context, sessionID id.SessionID) {
	requestID := requestcontext.RequestID(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.timers[sessionID] = s.scheduler(s.redirectDelay, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.timers, sessionID)
		s.inflight.Add(1)
		s.mu.Unlock()
		defer s.inflight.Done()

		navCtx, cancel := context.WithTimeout(requestcontext.WithRequestID(context.Background(), requestID), s.submitTimeout)
		defer cancel()
		if err := s.navigator.NavigateHome(navCtx, sessionID); err != nil {
			s.logger.WarnContext(navCtx, "navigate home failed",
				"session_id", sessionID.String(),
				"error", err,
			)
			return
		}
		s.logAudit(navCtx, audit.EventNavigatedHome, sessionID, 0, "")
	})
}

func (s *Service) cancelNavigateHome(sessionID id.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

// mutate settles any pending submission outcome and then runs fn inside an
// atomic store update. A CodeValidation error from
// fn is persisted together with the field errors and returned alongside the
// wizard; any other error aborts the update.
func (s *Service) mutate(ctx context.Context, sessionID id.SessionID, fn func(w *models.Wizard) error) (*models.Wizard, error) {
	s.settle(ctx, sessionID)
	var opErr error
	w, err := s.sessions.Update(ctx, sessionID, func(w *models.Wizard) error {
		opErr = fn(w)
		if opErr != nil && !dErrors.HasCode(opErr, dErrors.CodeValidation) {
			return opErr
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return w, opErr
}

func (s *Service) logAudit(ctx context.Context, event audit.EventName, sessionID id.SessionID, step int, reason string) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"log_type", "audit",
		"session_id", sessionID.String(),
		"step", step,
		"reason", reason,
		"request_id", requestID,
	)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		SessionID: sessionID.String(),
		Action:    event,
		Step:      step,
		Reason:    reason,
		RequestID: requestID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", string(event), "error", err)
	}
}

// translateStoreError maps store sentinels to domain errors. Coded errors
// pass through.
func translateStoreError(err error) error {
	if _, ok := dErrors.From(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "registration session not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "registration session changed concurrently, retry")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "registration session is in the wrong state")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "registration storage unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "registration storage failed")
	}
}
