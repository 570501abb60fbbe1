package http

import (
	"time"

	xutil "GridCast/pkg/util"
)

// ParseTime accepts the timestamp formats the query API takes:
// RFC3339, RFC3339Nano, plain date, and unix seconds.
func ParseTime(s string) (time.Time, bool) { return xutil.ParseTime(s) }
