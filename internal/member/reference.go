package member

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const maxReferenceAttempts = 20

var ErrReferenceExhausted = errors.New("could not generate a unique member reference")

// ReferenceExistsFunc reports whether a member reference is already taken.
type ReferenceExistsFunc func(ctx context.Context, reference string) (bool, error)

// NewReference formats MBR-<year>-<5 random digits>.
func NewReference(at time.Time) string {
	return fmt.Sprintf("MBR-%d-%05d", at.Year(), 10000+rand.Intn(90000))
}

// GenerateReference draws references until exists reports one as free.
func GenerateReference(ctx context.Context, at time.Time, exists ReferenceExistsFunc) (string, error) {
	for i := 0; i < maxReferenceAttempts; i++ {
		ref := NewReference(at)
		taken, err := exists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !taken {
			return ref, nil
		}
	}
	return "", ErrReferenceExhausted
}
