package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cura-agent/roster-service/internal/domain"
)

func TestDecodeFeedSkipsGarbage(t *testing.T) {
	got := decodeFeed([]string{
		`{"level":"success","message":"Nurse added successfully","category":"nurse","at":"2026-01-02T03:04:05Z"}`,
		`not json`,
		`{"level":"error","message":"Failed to delete nurse: roster entry not found","category":"nurse","at":"2026-01-02T03:04:06Z"}`,
	})
	require.Len(t, got, 2)
	assert.Equal(t, domain.LevelSuccess, got[0].Level)
	assert.Equal(t, domain.CategoryNurse, got[1].Category)
}
