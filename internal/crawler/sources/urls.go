package sources

import (
	"fmt"
	"strings"
)

// PathPageURL appends the page number as a path segment: {base}/{page}/
func PathPageURL(base string, page int) string {
	return fmt.Sprintf("%s/%d/", strings.TrimRight(base, "/"), page)
}

// QueryPageURL appends the page number as a query parameter: {base}?page={page}
func QueryPageURL(base string, page int) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", base, sep, page)
}
