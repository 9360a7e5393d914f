package models

// CourseState is the publication lifecycle of a course.
type CourseState string

const (
	CourseDraft     CourseState = "DRAFT"
	CoursePublished CourseState = "PUBLISHED"
	CourseArchived  CourseState = "ARCHIVED"
)

// ApprovalState is the moderation state of a course.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "PENDING"
	ApprovalApproved ApprovalState = "APPROVED"
	ApprovalRejected ApprovalState = "REJECTED"
)

// Course is the container whose curriculum is being edited. Only ID is
// needed by the curriculum engine; the rest is carried for display.
type Course struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Level       string
	State       CourseState
	Approval    ApprovalState
	CreatorID   string
}
