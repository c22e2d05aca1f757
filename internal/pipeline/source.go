package pipeline

import (
	"errors"
	"io"
)

// Source is a finite, single-pass stream. Next returns io.EOF once the
// stream is exhausted; any other error is a failure.
type Source[T any] interface {
	Next() (T, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc[T any] func() (T, error)

func (f SourceFunc[T]) Next() (T, error) { return f() }

// SliceSource streams the elements of a slice.
type SliceSource[T any] struct {
	items []T
	pos   int
}

// FromSlice returns a Source over items.
func FromSlice[T any](items []T) *SliceSource[T] {
	return &SliceSource[T]{items: items}
}

func (s *SliceSource[T]) Next() (T, error) {
	if s.pos >= len(s.items) {
		var zero T
		return zero, io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	return item, nil
}

// ForEach drains src, calling fn on every element.
func ForEach[T any](src Source[T], fn func(T) error) error {
	for {
		item, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// Collect drains src into a slice. On failure it returns the elements
// collected before the error along with the error.
func Collect[T any](src Source[T]) ([]T, error) {
	var items []T
	err := ForEach(src, func(item T) error {
		items = append(items, item)
		return nil
	})
	return items, err
}

// Count drains src and returns the number of elements.
func Count[T any](src Source[T]) (int, error) {
	n := 0
	err := ForEach(src, func(T) error {
		n++
		return nil
	})
	return n, err
}

// Close releases src if it holds resources, such as a parallel stage's
// workers or an open file.
func Close(src any) error {
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
