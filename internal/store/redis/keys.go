package redis

import "strconv"

const (
	// KeyPrefixSelection is the prefix for per-course-module selection sets.
	KeyPrefixSelection = "boa:selection:"
)

// SelectionKey returns the Redis key for a course module's selection set.
func SelectionKey(cmid int) string {
	return KeyPrefixSelection + strconv.Itoa(cmid)
}
