package utils

import "github.com/sony/gobreaker"

// ExecuteWithBreaker runs fn through the breaker, keeping the caller's
// result type instead of gobreaker's interface{}.
func ExecuteWithBreaker[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return res.(T), nil
}
