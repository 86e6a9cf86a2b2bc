// Package pool содержит типизированную обёртку над sync.Pool.
package pool

import "sync"

// Resettable — объект, который умеет возвращаться в исходное состояние.
type Resettable interface {
	Reset()
}

// Pool — типизированный пул объектов. Put вызывает Reset перед возвратом в пул.
type Pool[T Resettable] struct {
	p sync.Pool
}

// New создаёт пул с конструктором newFn.
func New[T Resettable](newFn func() T) *Pool[T] {
	return &Pool[T]{
		p: sync.Pool{New: func() any { return newFn() }},
	}
}

// Get возвращает объект из пула или создаёт новый.
func (p *Pool[T]) Get() T {
	return p.p.Get().(T)
}

// Put сбрасывает объект и возвращает его в пул.
func (p *Pool[T]) Put(v T) {
	v.Reset()
	p.p.Put(v)
}
