package reconciler

// Wakeable is an external value a component can wait on. Then registers fn to
// run once the value settles either way; if it already settled fn runs now.
type Wakeable interface {
	Then(fn func())
}

type futureState uint8

const (
	futurePending futureState = iota
	futureResolved
	futureRejected
)

// Future is a single assignment value that components read with Use.
type Future[T any] struct {
	state   futureState
	value   T
	err     error
	waiters []func()
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{}
}

// Resolved returns an already settled future.
func Resolved[T any](v T) *Future[T] {
	return &Future[T]{state: futureResolved, value: v}
}

func (f *Future[T]) Resolve(v T) {
	if f.state != futurePending {
		return
	}
	f.state, f.value = futureResolved, v
	f.settle()
}

func (f *Future[T]) Reject(err error) {
	if f.state != futurePending {
		return
	}
	f.state, f.err = futureRejected, err
	f.settle()
}

func (f *Future[T]) settle() {
	waiters := f.waiters
	f.waiters = nil
	for _, fn := range waiters {
		fn()
	}
}

func (f *Future[T]) Then(fn func()) {
	if f.state != futurePending {
		fn()
		return
	}
	f.waiters = append(f.waiters, fn)
}

func (f *Future[T]) Settled() bool { return f.state != futurePending }

// Result returns the settled value, or the rejection error.
func (f *Future[T]) Result() (T, error) {
	return f.value, f.err
}
