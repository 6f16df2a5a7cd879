package bus

// Go runs work on its own goroutine and delivers the result to then on the loop.
// If the loop has already stopped the result is dropped.
func Go[T any](l *Loop, work func() T, then func(T)) {
	l.acquire()
	go func() {
		defer l.release(1)
		v := work()
		l.Post(func() { then(v) })
	}()
}
