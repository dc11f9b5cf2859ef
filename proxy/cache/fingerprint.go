package cache

import (
	"strconv"

	"github.com/dgryski/go-farm"
)

// Fingerprint identifies one cached object by its origin coordinates.
// Comparison is byte-wise and case-sensitive; two spellings of the same
// host are distinct objects. The farmhash digest is computed once at
// construction and rejects most mismatches before any string compare.
type Fingerprint struct {
	Host string
	Path string
	Port int

	sum uint64
}

// NewFingerprint builds the key for an object served from host:port at
// the given path.
func NewFingerprint(host, path string, port int) Fingerprint {
	key := make([]byte, 0, len(host)+len(path)+8)
	key = append(key, host...)
	key = append(key, 0)
	key = append(key, path...)
	key = append(key, 0)
	key = strconv.AppendInt(key, int64(port), 10)

	return Fingerprint{Host: host, Path: path, Port: port, sum: farm.Fingerprint64(key)}
}

func (f Fingerprint) matches(g Fingerprint) bool {
	return f.sum == g.sum && f.Port == g.Port && f.Host == g.Host && f.Path == g.Path
}
