package util

// Stack is a LIFO of T. The zero value is empty and ready to use.
type Stack[T any] struct {
	items []T
}

func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes the top element. It returns the zero value on an empty stack.
func (s *Stack[T]) Pop() (item T) {
	if len(s.items) == 0 {
		return
	}
	idx := len(s.items) - 1
	item = s.items[idx]
	var zero T
	s.items[idx] = zero
	s.items = s.items[:idx]
	return
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}
