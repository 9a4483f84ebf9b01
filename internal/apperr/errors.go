// Package apperr описывает виды ошибок ядра: валидация, не найдено,
// конфликт расписания, сбой хранилища и конкурентное изменение.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError — отсутствует или некорректно обязательное поле.
type ValidationError struct {
	Field   string
	Message string
}

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NotFoundError — сущность с таким id не существует.
type NotFoundError struct {
	Entity string
	ID     int64
}

func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError — пересечение по времени с существующим событием в той же локации.
type ConflictError struct {
	EventID int64
}

func Conflict(eventID int64) error {
	return &ConflictError{EventID: eventID}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict with event %d", e.EventID)
}

// PersistenceError — сбой хранилища. Всегда пробрасывается наверх.
type PersistenceError struct {
	Op  string
	Err error
}

func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConcurrentModificationError — версия записи изменилась между чтением и записью.
type ConcurrentModificationError struct {
	Entity   string
	ID       int64
	Expected int64
}

func ConcurrentModification(entity string, id, expected int64) error {
	return &ConcurrentModificationError{Entity: entity, ID: id, Expected: expected}
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s %d was modified concurrently (expected version %d)", e.Entity, e.ID, e.Expected)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsPersistence(err error) bool {
	var e *PersistenceError
	return errors.As(err, &e)
}

func IsConcurrentModification(err error) bool {
	var e *ConcurrentModificationError
	return errors.As(err, &e)
}
