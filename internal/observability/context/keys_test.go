package context

import (
	"context"
	"testing"
)

func TestJobRunRoundTrip(t *testing.T) {
	ctx := WithJobRun(context.Background(), "allocate_payments", "42")
	ctx = WithActor(ctx, "system", "scheduler")

	job, run := JobRunFromContext(ctx)
	if job != "allocate_payments" || run != "42" {
		t.Fatalf("unexpected job run %q %q", job, run)
	}
	actorType, actorID := ActorFromContext(ctx)
	if actorType != "system" || actorID != "scheduler" {
		t.Fatalf("unexpected actor %q %q", actorType, actorID)
	}
	if RequestIDFromContext(ctx) != "" {
		t.Fatalf("expected empty request id")
	}
}
