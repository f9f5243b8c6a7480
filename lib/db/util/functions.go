package util

// HashString returns the 64 bit FNV-1a hash of s mixed with seed.
// Used to derive stable numeric ids (e.g. raft replica ids) from names.
func HashString(s string, seed uint64) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)

	hash := uint64(offset64) ^ seed
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= prime64
	}
	return hash
}
