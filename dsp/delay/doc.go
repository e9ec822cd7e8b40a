// Package delay provides a fixed-capacity circular delay line.
//
// A [Line] keeps independent write and read cursors over a preallocated
// buffer. One [Line.Push] per audio sample advances the write cursor; any
// number of [Line.Pop] calls may follow to tap the history.
//
// Delay requests are interpreted modulo the capacity: asking for more than
// the capacity aliases to a shorter delay instead of failing. Callers that
// prefer a hard error use [Line.PopChecked].
package delay
