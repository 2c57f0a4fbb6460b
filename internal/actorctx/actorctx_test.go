package actorctx

import (
	"context"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	ctx := WithRequestID(WithUserID(context.Background(), "u-1"), "req-1")

	if id, ok := UserIDFrom(ctx); !ok || id != "u-1" {
		t.Fatalf("UserIDFrom = %q, %v", id, ok)
	}
	if got := RequestIDFrom(ctx); got != "req-1" {
		t.Fatalf("RequestIDFrom = %q", got)
	}
}

func TestEmptyUserIDIsAbsent(t *testing.T) {
	if _, ok := UserIDFrom(WithUserID(context.Background(), "")); ok {
		t.Fatal("empty user id must report absent")
	}
	if _, ok := UserIDFrom(context.Background()); ok {
		t.Fatal("missing user id must report absent")
	}
}
