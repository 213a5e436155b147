package ports

import "time"

// Clock ...
type Clock interface {
	Now() time.Time
}
