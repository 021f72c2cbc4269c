package repositories

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsNoRows(t *testing.T) {
	assert.True(t, isNoRows(pgx.ErrNoRows))
	assert.True(t, isNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, isNoRows(fmt.Errorf("connection refused")))
	assert.False(t, isNoRows(nil))
}
