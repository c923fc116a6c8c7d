package hako

import (
	"reflect"
)

// Each1 iterates q, passing the first term as *A. Read-write terms point into
// column storage; read-only terms point to a copy, so writes through them are
// discarded; absent optional terms are nil. It returns ErrTermMismatch if the
// query's first term does not hold A.
//
// Example:
//
//	q, _ := w.Query(hako.Write[Position](types))
//	err := hako.Each1(q, func(e hako.Entity, p *Position) {
//	    p.X++
//	})
func Each1[A any](q *Query, fn func(e Entity, a *A)) error {
	if err := q.checkTerms(reflect.TypeFor[A]()); err != nil {
		return err
	}
	var sa A
	for row := range q.All() {
		fn(row.Entity(), termPtr(row, 0, &sa))
	}
	return nil
}

// Each2 is Each1 for queries whose first two terms hold A and B.
func Each2[A, B any](q *Query, fn func(e Entity, a *A, b *B)) error {
	if err := q.checkTerms(reflect.TypeFor[A](), reflect.TypeFor[B]()); err != nil {
		return err
	}
	var (
		sa A
		sb B
	)
	for row := range q.All() {
		fn(row.Entity(), termPtr(row, 0, &sa), termPtr(row, 1, &sb))
	}
	return nil
}

// Each3 is Each1 for queries whose first three terms hold A, B and C.
func Each3[A, B, C any](q *Query, fn func(e Entity, a *A, b *B, c *C)) error {
	if err := q.checkTerms(reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()); err != nil {
		return err
	}
	var (
		sa A
		sb B
		sc C
	)
	for row := range q.All() {
		fn(row.Entity(), termPtr(row, 0, &sa), termPtr(row, 1, &sb), termPtr(row, 2, &sc))
	}
	return nil
}
