package context

import "context"

type contextKey string

const (
	requestIDKey contextKey = "observability_request_id"
	actorTypeKey contextKey = "observability_actor_type"
	actorIDKey   contextKey = "observability_actor_id"
	jobKey       contextKey = "observability_job"
	runIDKey     contextKey = "observability_run_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	if ctx == nil {
		return ctx
	}
	if actorType != "" {
		ctx = context.WithValue(ctx, actorTypeKey, actorType)
	}
	if actorID != "" {
		ctx = context.WithValue(ctx, actorIDKey, actorID)
	}
	return ctx
}

func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	actorType, _ := ctx.Value(actorTypeKey).(string)
	actorID, _ := ctx.Value(actorIDKey).(string)
	return actorType, actorID
}

// WithJobRun tags ctx with the scheduler job name and run id.
func WithJobRun(ctx context.Context, job, runID string) context.Context {
	if ctx == nil {
		return ctx
	}
	if job != "" {
		ctx = context.WithValue(ctx, jobKey, job)
	}
	if runID != "" {
		ctx = context.WithValue(ctx, runIDKey, runID)
	}
	return ctx
}

func JobRunFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	job, _ := ctx.Value(jobKey).(string)
	runID, _ := ctx.Value(runIDKey).(string)
	return job, runID
}
