package cache

import "fmt"

// TimelineKey derives the composite cache key for a PR timeline.
// The derivation is pure and stable: the same inputs always produce the same
// key, and the same function is used on the read, write and invalidate paths.
func TimelineKey(owner, repo string, number int) string {
	return fmt.Sprintf("%s/%s/%d", owner, repo, number)
}
