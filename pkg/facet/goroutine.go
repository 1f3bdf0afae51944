package facet

import "runtime"

// goroutineID returns an identifier for the current goroutine, parsed from
// the runtime stack header ("goroutine <id> ..."). It distinguishes
// same-goroutine re-entrancy from concurrent callers in the dynamic cache;
// nothing else may rely on it.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
