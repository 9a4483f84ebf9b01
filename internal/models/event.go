package models

import "time"

type EventType string

const (
	EventClass      EventType = "class"
	EventExam       EventType = "exam"
	EventSeminar    EventType = "seminar"
	EventEvaluation EventType = "evaluation"
	EventMeeting    EventType = "meeting"
	EventGeneral    EventType = "general"
)

func (t EventType) Valid() bool {
	switch t {
	case EventClass, EventExam, EventSeminar, EventEvaluation, EventMeeting, EventGeneral:
		return true
	}
	return false
}

type EventStatus string

const (
	StatusScheduled  EventStatus = "scheduled"
	StatusInProgress EventStatus = "in_progress"
	StatusCompleted  EventStatus = "completed"
	StatusCancelled  EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s EventStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition — переходы только вперёд; из терминальных состояний выхода нет.
func (s EventStatus) CanTransition(to EventStatus) bool {
	switch s {
	case StatusScheduled:
		return to == StatusInProgress || to == StatusCancelled
	case StatusInProgress:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

type Event struct {
	ID                int64       `db:"id" json:"id"`
	Title             string      `db:"title" json:"title"`
	Description       string      `db:"description" json:"description"`
	StartAt           time.Time   `db:"start_at" json:"start_at"`
	EndAt             *time.Time  `db:"end_at" json:"end_at,omitempty"`
	LocationID        *int64      `db:"location_id" json:"location_id,omitempty"`
	DisciplineID      *int64      `db:"discipline_id" json:"discipline_id,omitempty"`
	ClassID           *int64      `db:"class_id" json:"class_id,omitempty"`
	ResponsibleUserID *int64      `db:"responsible_user_id" json:"responsible_user_id,omitempty"`
	Type              EventType   `db:"type" json:"type"`
	Status            EventStatus `db:"status" json:"status"`
	Version           int64       `db:"version" json:"version"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}
