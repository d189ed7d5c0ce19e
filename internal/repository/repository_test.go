package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `MAX\_2\%`, escapeLike("MAX_2%"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "MAX23", escapeLike("MAX23"))
}

func TestIsDuplicate(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.True(t, isDuplicate(dup))
	assert.True(t, isDuplicate(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isDuplicate(&mysql.MySQLError{Number: 1644}))
	assert.False(t, isDuplicate(errors.New("1062")))
}

func TestAffectedOrNotFound(t *testing.T) {
	boom := errors.New("boom")
	assert.ErrorIs(t, affectedOrNotFound(0, nil), ErrNotFound)
	assert.NoError(t, affectedOrNotFound(1, nil))
	assert.ErrorIs(t, affectedOrNotFound(0, boom), boom)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "staff@example.org", normalizeEmail("  Staff@Example.ORG "))
}
