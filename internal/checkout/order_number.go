package checkout

import (
	"context"
	"crypto/rand"
	"fmt"

	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
)

const (
	orderNumberPrefix = "ORD-"
	orderNumberLength = 12
	orderNumberChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxOrderNumberAttempts = 5
)

type orderNumberChecker interface {
	OrderNumberExists(ctx context.Context, orderNumber string) (bool, error)
}

// generateOrderNumber produces "ORD-" plus 12 random uppercase characters,
// retrying on the unlikely collision with an existing order.
func generateOrderNumber(ctx context.Context, checker orderNumberChecker) (string, error) {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		candidate, err := randomOrderNumber()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}

		exists, err := checker.OrderNumberExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order number")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "exhausted order number attempts")
}

func randomOrderNumber() (string, error) {
	buf := make([]byte, orderNumberLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderNumberChars[int(b)%len(orderNumberChars)]
	}
	return orderNumberPrefix + string(buf), nil
}
