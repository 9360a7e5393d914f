// Package ordering computes the next sibling order number at save time.
//
// The value is max(sibling orderNo)+1, read fresh from the backend on every
// call. Two racing saves can compute the same number; the backend rejects
// the loser with an order conflict and nothing here retries.
package ordering

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
)

// SiblingLister is the slice of the backend client the assigner needs.
type SiblingLister interface {
	ListSections(ctx context.Context, courseID string) ([]models.RemoteSection, error)
	ListLessons(ctx context.Context, sectionID string) ([]models.RemoteLesson, error)
}

type Assigner struct {
	backend SiblingLister
}

func NewAssigner(backend SiblingLister) *Assigner {
	return &Assigner{backend: backend}
}

// NextSectionOrder returns the order number for a new section of courseID.
func (a *Assigner) NextSectionOrder(ctx context.Context, courseID string) (int, error) {
	sections, err := a.backend.ListSections(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("list sections: %w", err)
	}
	orders := make([]int, len(sections))
	for i, s := range sections {
		orders[i] = s.OrderNo
	}
	return Next(orders), nil
}

// NextLessonOrder returns the order number for a new lesson of sectionID.
func (a *Assigner) NextLessonOrder(ctx context.Context, sectionID string) (int, error) {
	lessons, err := a.backend.ListLessons(ctx, sectionID)
	if err != nil {
		return 0, fmt.Errorf("list lessons: %w", err)
	}
	orders := make([]int, len(lessons))
	for i, l := range lessons {
		orders[i] = l.OrderNo
	}
	return Next(orders), nil
}

// Next returns max(orders, 0)+1.
func Next(orders []int) int {
	highest := 0
	for _, o := range orders {
		if o > highest {
			highest = o
		}
	}
	return highest + 1
}
