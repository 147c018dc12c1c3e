// Package backoff produces the wait durations used between attempts against
// a site that throttles repeated queries. Early waits are short and grow
// until they settle at a one minute ceiling.
package backoff

import "time"

// Ceiling is the delay returned once the ramp is exhausted.
const Ceiling = 60 * time.Second

var ramp = [...]time.Duration{
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	12 * time.Second,
	20 * time.Second,
	32 * time.Second,
	48 * time.Second,
}

// Delay returns the i-th delay of the sequence, counting from zero.
func Delay(i int) time.Duration {
	if i < 0 {
		i = 0
	}
	if i < len(ramp) {
		return ramp[i]
	}
	return Ceiling
}

// Sequence is a restartable cursor over Delay. The zero value starts at the
// first delay. It is not safe for concurrent use; give each retry loop its
// own.
type Sequence struct {
	i int
}

// Next returns the next delay. It never runs out.
func (s *Sequence) Next() time.Duration {
	d := Delay(s.i)
	if s.i < len(ramp) {
		s.i++
	}
	return d
}

// Reset rewinds the sequence to its first delay.
func (s *Sequence) Reset() {
	s.i = 0
}
