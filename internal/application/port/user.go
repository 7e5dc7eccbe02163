package port

import (
	"context"
	"time"
)

// SystemUserID is the actor recorded for background maintenance
const SystemUserID = "system"

// UserContext supplies the current actor and active organization
type UserContext interface {
	GetUserID(ctx context.Context) string
	GetActiveOrganizationID(ctx context.Context) string
}

type actorKey struct{}

type actor struct {
	userID         string
	organizationID string
}

// WithActor returns a context carrying the acting user and organization
func WithActor(ctx context.Context, userID, organizationID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor{userID: userID, organizationID: organizationID})
}

// ContextUserContext reads the actor stored by WithActor
type ContextUserContext struct{}

func (ContextUserContext) GetUserID(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(actor); ok {
		return a.userID
	}
	return ""
}

func (ContextUserContext) GetActiveOrganizationID(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(actor); ok {
		return a.organizationID
	}
	return ""
}

// Clock abstracts the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns wall-clock time in UTC
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })
