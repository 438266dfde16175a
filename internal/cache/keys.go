package cache

import "fmt"

// GET /api/posts/published/{id}
// post:published:{id}
func PublishedPostKey(id int64) string {
	return fmt.Sprintf("post:published:%d", id)
}

// GET /api/posts/published
// post:published:list
func PublishedListKey() string {
	return "post:published:list"
}
