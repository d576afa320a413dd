package source

import "github.com/okian/careerstandings/pkg/logger"

// Option configures a Walker.
type Option func(*Walker)

// WithConcurrency bounds how many files are read at once.
func WithConcurrency(n int) Option {
	return func(w *Walker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithLogger sets the walker logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Walker) {
		if l != nil {
			w.log = l
		}
	}
}
