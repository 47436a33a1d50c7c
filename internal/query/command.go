// Package query defines the commands callers hand to repositories.
package query

import (
	"github.com/whiteknight/neoknight/internal/navigation"
	"github.com/whiteknight/neoknight/internal/specification"
)

// Paging selects a window of the result set. Page is emitted as SKIP, Size as LIMIT.
type Paging struct {
	Page int
	Size int
}

// Order sorts on a root entity property.
type Order struct {
	Property   string
	Descending bool
}

// Command is a filtered, optionally paged and ordered query for T.
type Command[T any] struct {
	Specification specification.Specification
	Paging        *Paging
	Order         *Order
	// Navigation defaults to the root entity only.
	Navigation *navigation.Strategy
}

// SingleRecordCommand looks up one T by its key property.
type SingleRecordCommand[T any] struct {
	Key        any
	Navigation *navigation.Strategy
}

// UpdateCommand upserts Entity. Include limits the written properties, Exclude
// removes properties from the written set. The key is always matched.
type UpdateCommand[T any] struct {
	Entity  *T
	Include []string
	Exclude []string
}

// Where is shorthand for an unpaged command.
func Where[T any](spec specification.Specification) Command[T] {
	return Command[T]{Specification: spec}
}

// Page sets the paging window.
func (c Command[T]) Page(page, size int) Command[T] {
	c.Paging = &Paging{Page: page, Size: size}
	return c
}

// OrderBy sets the ordering.
func (c Command[T]) OrderBy(property string, descending bool) Command[T] {
	c.Order = &Order{Property: property, Descending: descending}
	return c
}

// Navigate sets the navigation strategy.
func (c Command[T]) Navigate(s *navigation.Strategy) Command[T] {
	c.Navigation = s
	return c
}
