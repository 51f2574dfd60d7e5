package symbols

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/config"
	"github.com/wonny/equimeter/pkg/database"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%tata%", likePattern(" tata "))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
}

func TestRepository_Integration(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db.Pool)

	companies, err := repo.Search(ctx, "a", 10)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(companies), DefaultSearchLimit)

	empty, err := repo.Search(ctx, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = repo.Resolve(ctx, "No Such Company Ltd ###")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}
