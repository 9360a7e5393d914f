package savecoord

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
)

func TestTrySave_SecondCallWhileBusyIsRejected(t *testing.T) {
	c := New()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- c.TrySave(ctx, SectionTitleScope(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	require.True(t, c.Busy(SectionTitleScope()))

	var ran bool
	err := c.TrySave(ctx, SectionTitleScope(), func(context.Context) error {
		ran = true
		return nil
	})
	require.ErrorIs(t, err, common.ErrBusy)
	require.False(t, ran)

	close(release)
	require.NoError(t, <-done)
	require.False(t, c.Busy(SectionTitleScope()))
}

func TestTrySave_ReleasesOnFailure(t *testing.T) {
	c := New()
	boom := errors.New("boom")

	err := c.TrySave(context.Background(), LessonScope("s1"), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.False(t, c.Busy(LessonScope("s1")))

	require.NoError(t, c.TrySave(context.Background(), LessonScope("s1"), func(context.Context) error { return nil }))
}

func TestTrySave_IndependentScopesOverlap(t *testing.T) {
	c := New()
	ctx := context.Background()

	release := make(chan struct{})
	var wg sync.WaitGroup
	var inFlight, peak atomic.Int32

	for _, scope := range []Scope{SectionTitleScope(), LessonScope("a"), LessonScope("b")} {
		wg.Add(1)
		go func(scope Scope) {
			defer wg.Done()
			_ = c.TrySave(ctx, scope, func(context.Context) error {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				<-release
				inFlight.Add(-1)
				return nil
			})
		}(scope)
	}

	require.Eventually(t, func() bool { return peak.Load() == 3 }, timeout, tick)
	close(release)
	wg.Wait()
}

func TestTrySave_ManyContendersOnlyOneRuns(t *testing.T) {
	c := New()
	ctx := context.Background()

	release := make(chan struct{})
	var runs, busy atomic.Int32
	var wg sync.WaitGroup

	const n = 16
	ready := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ready
			err := c.TrySave(ctx, LessonScope("s"), func(context.Context) error {
				runs.Add(1)
				<-release
				return nil
			})
			if errors.Is(err, common.ErrBusy) {
				busy.Add(1)
			}
		}()
	}
	close(ready)

	require.Eventually(t, func() bool { return runs.Load()+busy.Load() == n }, timeout, tick)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, runs.Load())
	require.EqualValues(t, n-1, busy.Load())
}
