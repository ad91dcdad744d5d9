package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Key namespaces for the six session entries. One logical session record is
// six physical keys; this type is the only place that knows the scheme.
const (
	pointerSubjectPrefix = "session:pointer-subject:"
	pointerAccessPrefix  = "session:pointer-access:"
	pointerRefreshPrefix = "session:pointer-refresh:"
	subjectAccessPrefix  = "session:subject-access:"
	subjectPointerPrefix = "session:subject-pointer:"
	subjectIDTokenPrefix = "session:subject-idtoken:"
)

// Records owns the mappings that make up a session: three keyed by the
// pointer token and three keyed by the subject. Every operation is a single
// store round-trip; there is no cross-key transaction.
//
// Subject-keyed entries are last-write-wins across concurrent logins from
// different devices. A second login overwrites subject->access-token and
// subject->pointer while the first device's pointer entries stay intact.
type Records struct {
	store Store
	ttl   time.Duration
}

type RecordsOption func(*Records)

// WithEntryTTL overrides the store entry lifetime (primarily for testing).
func WithEntryTTL(ttl time.Duration) RecordsOption {
	return func(r *Records) {
		r.ttl = ttl
	}
}

func NewRecords(store Store, options ...RecordsOption) (*Records, error) {
	if store == nil {
		return nil, errors.New("[NewRecords] store is required")
	}

	r := &Records{
		store: store,
		ttl:   PointerValidity,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// WriteLogin populates a full session record. Writes happen in a fixed
// order: pointer-keyed entries first, subject-keyed entries last, so a
// concurrent bearer resolution for the new pointer always finds
// pointer->access-token before any subject-keyed entry becomes visible.
// A crash mid-sequence leaves a partial record; readers must treat missing
// entries as "not authenticated".
func (r *Records) WriteLogin(ctx context.Context, pointer, subject, accessToken, idToken, refreshToken string) error {
	if err := r.SetPointerSubject(ctx, pointer, subject); err != nil {
		return errors.Wrap(err, "[Records.WriteLogin] pointer->subject")
	}
	if err := r.SetPointerAccessToken(ctx, pointer, accessToken); err != nil {
		return errors.Wrap(err, "[Records.WriteLogin] pointer->access-token")
	}
	if err := r.SetPointerRefreshToken(ctx, pointer, refreshToken); err != nil {
		return errors.Wrap(err, "[Records.WriteLogin] pointer->refresh-token")
	}
	if err := r.SetSubjectAccessToken(ctx, subject, accessToken); err != nil {
		return errors.Wrap(err, "[Records.WriteLogin] subject->access-token")
	}
	if err := r.SetSubjectPointer(ctx, subject, pointer); err != nil {
		return errors.Wrap(err, "[Records.WriteLogin] subject->pointer")
	}
	if err := r.SetSubjectIDToken(ctx, subject, idToken); err != nil {
		return errors.Wrap(err, "[Records.WriteLogin] subject->id-token")
	}
	return nil
}

// OverwriteAccessTokens replaces both access-token entries after a refresh.
// The caller passes the pointer's remaining validity as the TTL, so refreshed
// entries still expire with the pointer instead of gaining a fresh window.
func (r *Records) OverwriteAccessTokens(ctx context.Context, pointer, subject, accessToken string, ttl time.Duration) error {
	if err := r.store.Set(ctx, subjectAccessPrefix+subject, accessToken, ttl); err != nil {
		return errors.Wrap(err, "[Records.OverwriteAccessTokens] subject->access-token")
	}
	if err := r.store.Set(ctx, pointerAccessPrefix+pointer, accessToken, ttl); err != nil {
		return errors.Wrap(err, "[Records.OverwriteAccessTokens] pointer->access-token")
	}
	return nil
}

func (r *Records) SetPointerSubject(ctx context.Context, pointer, subject string) error {
	return r.store.Set(ctx, pointerSubjectPrefix+pointer, subject, r.ttl)
}

func (r *Records) GetPointerSubject(ctx context.Context, pointer string) (string, error) {
	return r.store.Get(ctx, pointerSubjectPrefix+pointer)
}

func (r *Records) SetPointerAccessToken(ctx context.Context, pointer, accessToken string) error {
	return r.store.Set(ctx, pointerAccessPrefix+pointer, accessToken, r.ttl)
}

func (r *Records) GetPointerAccessToken(ctx context.Context, pointer string) (string, error) {
	return r.store.Get(ctx, pointerAccessPrefix+pointer)
}

func (r *Records) SetPointerRefreshToken(ctx context.Context, pointer, refreshToken string) error {
	return r.store.Set(ctx, pointerRefreshPrefix+pointer, refreshToken, r.ttl)
}

func (r *Records) GetPointerRefreshToken(ctx context.Context, pointer string) (string, error) {
	return r.store.Get(ctx, pointerRefreshPrefix+pointer)
}

func (r *Records) SetSubjectAccessToken(ctx context.Context, subject, accessToken string) error {
	return r.store.Set(ctx, subjectAccessPrefix+subject, accessToken, r.ttl)
}

func (r *Records) GetSubjectAccessToken(ctx context.Context, subject string) (string, error) {
	return r.store.Get(ctx, subjectAccessPrefix+subject)
}

func (r *Records) SetSubjectPointer(ctx context.Context, subject, pointer string) error {
	return r.store.Set(ctx, subjectPointerPrefix+subject, pointer, r.ttl)
}

func (r *Records) GetSubjectPointer(ctx context.Context, subject string) (string, error) {
	return r.store.Get(ctx, subjectPointerPrefix+subject)
}

func (r *Records) SetSubjectIDToken(ctx context.Context, subject, idToken string) error {
	return r.store.Set(ctx, subjectIDTokenPrefix+subject, idToken, r.ttl)
}

func (r *Records) GetSubjectIDToken(ctx context.Context, subject string) (string, error) {
	return r.store.Get(ctx, subjectIDTokenPrefix+subject)
}
