package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
)

// Refresh outcomes reported to port.RefreshMetrics.
const (
	RefreshRenewed     = "renewed"
	RefreshFailed      = "failed"
	RefreshNoSession   = "no_session"
	RefreshPersistFail = "persist_failed"
)

// CredentialInspector reads unverified claims from a bearer credential.
type CredentialInspector func(credential string) (domain.CredentialClaims, error)

// CredentialRefresher renews the bearer credential through the refresh cookie.
// Concurrent callers share a single renewal.
type CredentialRefresher struct {
	renewer  port.CredentialRenewer
	sessions *SessionStore
	inspect  CredentialInspector
	metrics  port.RefreshMetrics
	logger   *zap.Logger

	group singleflight.Group
}

var _ port.CredentialRefresher = (*CredentialRefresher)(nil)

// NewCredentialRefresher constructs a refresher bound to the session store.
func NewCredentialRefresher(renewer port.CredentialRenewer, sessions *SessionStore) *CredentialRefresher {
	return &CredentialRefresher{
		renewer:  renewer,
		sessions: sessions,
		logger:   zap.NewNop(),
	}
}

// WithLogger attaches a structured logger.
func (r *CredentialRefresher) WithLogger(logger *zap.Logger) *CredentialRefresher {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithMetrics records refresh outcomes.
func (r *CredentialRefresher) WithMetrics(metrics port.RefreshMetrics) *CredentialRefresher {
	r.metrics = metrics
	return r
}

// WithInspector enables expiry logging for renewed credentials.
func (r *CredentialRefresher) WithInspector(inspect CredentialInspector) *CredentialRefresher {
	r.inspect = inspect
	return r
}

// Refresh renews the credential and reports whether the session now holds a
// new one. A caller whose ctx ends early gets false while the shared renewal
// keeps running for the others.
func (r *CredentialRefresher) Refresh(ctx context.Context) bool {
	ch := r.group.DoChan("refresh", func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx)), nil
	})

	select {
	case res := <-ch:
		ok, _ := res.Val.(bool)
		return ok
	case <-ctx.Done():
		return false
	}
}

func (r *CredentialRefresher) refresh(ctx context.Context) bool {
	credential, err := r.renewer.RenewCredential(ctx)
	if err != nil {
		r.logger.Info("credential refresh failed", zap.Error(err))
		r.observe(RefreshFailed)
		return false
	}

	ok, err := r.sessions.UpdateCredential(ctx, credential)
	if err != nil {
		r.logger.Warn("failed to persist renewed credential", zap.Error(err))
		r.observe(RefreshPersistFail)
		return false
	}
	if !ok {
		r.logger.Debug("credential renewed after sign out, dropped")
		r.observe(RefreshNoSession)
		return false
	}

	fields := []zap.Field{zap.Int64("identity_id", r.sessions.IdentityID())}
	if r.inspect != nil {
		if claims, err := r.inspect(credential); err == nil && !claims.ExpiresAt.IsZero() {
			fields = append(fields, zap.Duration("expires_in", time.Until(claims.ExpiresAt).Round(time.Second)))
		}
	}
	r.logger.Info("credential renewed", fields...)
	r.observe(RefreshRenewed)
	return true
}

func (r *CredentialRefresher) observe(outcome string) {
	if r.metrics != nil {
		r.metrics.ObserveRefresh(outcome)
	}
}
