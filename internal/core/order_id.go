package core

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// DefaultOrderIDPrefix is used when no ORDER_ID_PREFIX is configured.
const DefaultOrderIDPrefix = "JIPL"

// NewOrderID returns a human-readable order id of the form
// <prefix><S|P><YYMMDD><4 digits>, e.g. JIPLS2403150042.
// Uniqueness is enforced by the database; callers retry on collision.
func NewOrderID(prefix string, kind OrderKind, now time.Time) string {
	if prefix == "" {
		prefix = DefaultOrderIDPrefix
	}
	marker := "S"
	if kind == OrderKindPurchase {
		marker = "P"
	}
	return fmt.Sprintf("%s%s%s%04d", prefix, marker, now.Format("060102"), rand.IntN(10000))
}
