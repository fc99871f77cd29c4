package member

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencePattern = regexp.MustCompile(`^MBR-\d{4}-\d{5}$`)

func TestNewReference(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		ref := NewReference(at)
		assert.Regexp(t, referencePattern, ref)
		assert.Contains(t, ref, "MBR-2026-")
	}
}

func TestGenerateReference_RetriesUntilFree(t *testing.T) {
	calls := 0
	exists := func(ctx context.Context, ref string) (bool, error) {
		calls++
		return calls < 3, nil
	}

	ref, err := GenerateReference(context.Background(), time.Now(), exists)
	require.NoError(t, err)
	assert.Regexp(t, referencePattern, ref)
	assert.Equal(t, 3, calls)
}

func TestGenerateReference_Exhausted(t *testing.T) {
	exists := func(ctx context.Context, ref string) (bool, error) { return true, nil }

	_, err := GenerateReference(context.Background(), time.Now(), exists)
	assert.ErrorIs(t, err, ErrReferenceExhausted)
}

func TestGenerateReference_LookupError(t *testing.T) {
	boom := errors.New("db down")
	exists := func(ctx context.Context, ref string) (bool, error) { return false, boom }

	_, err := GenerateReference(context.Background(), time.Now(), exists)
	assert.ErrorIs(t, err, boom)
}
