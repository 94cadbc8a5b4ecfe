package inflight

// Option applies a configuration option to the Locker.
type Option func(*locker)

// WithMaxKeys bounds the number of keys held at once.
// If maxKeys <= 0 the locker is unbounded.
func WithMaxKeys(maxKeys int) Option {
	return func(l *locker) {
		l.maxKeys = maxKeys
	}
}
