package asyncx_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/fetchdrain/pkg/asyncx"
	"github.com/Abraxas-365/fetchdrain/pkg/errx"
)

func TestRun_AwaitTwice(t *testing.T) {
	fut := asyncx.Run(func() (string, error) { return "value", nil })

	for i := 0; i < 2; i++ {
		v, err := fut.Await()
		if err != nil || v != "value" {
			t.Fatalf("await %d: got (%q, %v)", i, v, err)
		}
	}
	if !fut.Settled() {
		t.Fatal("expected future to be settled after Await")
	}
}

func TestRunThen_SettledAfterResolution(t *testing.T) {
	hook := make(chan bool, 1)
	var fut *asyncx.Future[int]
	var mu sync.Mutex

	mu.Lock()
	fut = asyncx.RunThen(func() (int, error) { return 7, nil }, func() {
		mu.Lock()
		defer mu.Unlock()
		hook <- fut.Settled()
	})
	mu.Unlock()

	if settled := <-hook; !settled {
		t.Fatal("settled hook ran before the future resolved")
	}
}

func TestRun_PanicBecomesError(t *testing.T) {
	fut := asyncx.Run(func() (int, error) { panic("kaboom") })

	v, err := fut.Await()
	if v != 0 {
		t.Fatalf("expected zero value, got %d", v)
	}
	if !errx.HasCode(err, asyncx.ErrPanicked) {
		t.Fatalf("expected ErrPanicked, got %v", err)
	}
}

func TestAwaitCtx_Cancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	fut := asyncx.Run(func() (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fut.AwaitCtx(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSettle(t *testing.T) {
	boom := errors.New("boom")
	r := asyncx.Settle(asyncx.Run(func() (int, error) { return 0, boom }))
	if r.OK() || !errors.Is(r.Err, boom) {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestWithTimeout(t *testing.T) {
	v, err := asyncx.WithTimeout(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "in time", nil
	})
	if err != nil || v != "in time" {
		t.Fatalf("got (%q, %v)", v, err)
	}

	_, err = asyncx.WithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return "too late", nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWithTimeout_ZeroRunsInline(t *testing.T) {
	_, err := asyncx.WithTimeout(context.Background(), 0, func(ctx context.Context) (int, error) {
		if _, ok := ctx.Deadline(); ok {
			t.Error("did not expect a deadline")
		}
		return 0, nil
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
