// Package savecoord admits at most one in-flight save per scope.
//
// A scope names a group of saves that must not overlap: all section-title
// saves of a course share one scope, lesson saves share one scope per parent
// section. A caller that finds its scope busy gets common.ErrBusy at once;
// nothing is queued or retried.
package savecoord

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
)

// Scope identifies a group of mutually exclusive saves.
type Scope string

// SectionTitleScope is shared by every section-title save of a course.
func SectionTitleScope() Scope {
	return "sections"
}

// LessonScope is shared by lesson saves under one section.
func LessonScope(sectionLocalID string) Scope {
	return Scope("lessons:" + sectionLocalID)
}

// Coordinator hands out one slot per scope.
type Coordinator struct {
	mu    sync.Mutex
	slots map[Scope]*semaphore.Weighted
}

func New() *Coordinator {
	return &Coordinator{slots: make(map[Scope]*semaphore.Weighted)}
}

func (c *Coordinator) slot(scope Scope) *semaphore.Weighted {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[scope]
	if !ok {
		s = semaphore.NewWeighted(1)
		c.slots[scope] = s
	}
	return s
}

// TrySave runs op if scope is free and returns its error, or returns
// common.ErrBusy without running op. The scope is released when op returns,
// whatever the outcome.
func (c *Coordinator) TrySave(ctx context.Context, scope Scope, op func(ctx context.Context) error) error {
	s := c.slot(scope)
	if !s.TryAcquire(1) {
		return common.ErrBusy
	}
	defer s.Release(1)

	return op(ctx)
}

// Busy reports whether a save currently holds scope.
func (c *Coordinator) Busy(scope Scope) bool {
	s := c.slot(scope)
	if !s.TryAcquire(1) {
		return true
	}
	s.Release(1)
	return false
}
