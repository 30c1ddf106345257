package arg

import (
	"github.com/bytedance/gopkg/lang/span"
)

var (
	spanCache       = span.NewSpanCache(1024 * 1024)
	spanCacheEnable = false
)

// SetSpanCache enables or disables arena allocation for decoded string
// arguments (STRING/VARSTRING/ALERT message payloads), mirroring
// protocol/thrift/binary.go's BinaryProtocol.SetSpanCache. Off by default;
// callers decoding many short-lived strings from the same buffer can enable
// it to cut per-call allocations.
func SetSpanCache(enable bool) {
	spanCacheEnable = enable
}

// copyString returns b decoded as a string, going through the span cache
// when enabled so repeated small string payloads share backing arenas
// instead of each allocating independently.
func copyString(b []byte) string {
	if spanCacheEnable {
		return string(spanCache.Copy(b))
	}
	return string(b)
}
