// Package parallel provides small utilities for coordinating concurrent
// operations, such as fan-out producers feeding a shared buffer.
package parallel

import "sync"

// ErrorCollector collects the first error from a group of goroutines.
// It is safe for concurrent use by multiple goroutines.
//
// Usage:
//
//	var ec parallel.ErrorCollector
//	var wg sync.WaitGroup
//	wg.Add(2)
//	go func() {
//	    defer wg.Done()
//	    ec.SetError(publish1())
//	}()
//	go func() {
//	    defer wg.Done()
//	    ec.SetError(publish2())
//	}()
//	wg.Wait()
//	if err := ec.Err(); err != nil {
//	    return err
//	}
type ErrorCollector struct {
	once sync.Once
	err  error
}

// SetError records err if no error has been recorded yet. Nil errors are
// ignored. Safe for concurrent use.
func (c *ErrorCollector) SetError(err error) {
	if err != nil {
		c.once.Do(func() {
			c.err = err
		})
	}
}

// Err returns the first recorded error, or nil. Should typically be called
// after all goroutines using the collector have completed.
func (c *ErrorCollector) Err() error {
	return c.err
}

// Reset clears the collector for reuse.
// WARNING: not safe for concurrent use; only call once no goroutine holds
// a reference to the collector.
func (c *ErrorCollector) Reset() {
	c.once = sync.Once{}
	c.err = nil
}
