package purchase

import (
	"errors"

	"github.com/tigertix/tigertix/internal/domain"
)

var (
	ErrInvalidEventID = errors.New("id must be a positive integer")
	ErrEventNotFound  = errors.New("event not found")
	ErrSoldOut        = errors.New("event is sold out")
)

// Outcome names the terminal state a Purchase call ended in. Storage failures
// have no outcome and report an empty status.
func Outcome(err error) domain.PurchaseStatus {
	switch {
	case err == nil:
		return domain.PurchaseOK
	case errors.Is(err, ErrEventNotFound):
		return domain.PurchaseNotFound
	case errors.Is(err, ErrSoldOut):
		return domain.PurchaseSoldOut
	default:
		return ""
	}
}
