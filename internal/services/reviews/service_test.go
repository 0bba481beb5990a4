package reviews

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/apperror"
	"orderflow/internal/database/dbtest"
	"orderflow/internal/database/models"
)

type recordingCache struct {
	ids []int64
}

func (r *recordingCache) Invalidate(_ context.Context, ids ...int64) {
	r.ids = append(r.ids, ids...)
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		sum, count int64
		want       string
	}{
		{0, 0, "0.00"},
		{5, 1, "5.00"},
		{14, 3, "4.67"},
		{7, 3, "2.33"},
		{9, 2, "4.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AverageRating(tt.sum, tt.count).StringFixed(2))
	}
}

func TestCreate_UpdatesAggregates(t *testing.T) {
	db := dbtest.Open(t)
	cache := &recordingCache{}
	svc := NewService(db, cache, zerolog.Nop())
	ctx := context.Background()
	item := dbtest.CreateMenuItem(t, db, "pizza", 1299)
	userID := int64(3)

	review, err := svc.Create(ctx, CreateReviewInput{MenuItemID: item.ID, Rating: 5}, &userID)
	require.NoError(t, err)
	require.NotZero(t, review.ID)
	assert.Equal(t, &userID, review.UserID)

	var reloaded models.MenuItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, int64(1), reloaded.TotalReviews)
	assert.True(t, reloaded.AverageRating.Equal(decimal.NewFromInt(5)), reloaded.AverageRating.String())

	comment := "  good  "
	_, err = svc.Create(ctx, CreateReviewInput{MenuItemID: item.ID, Rating: 4, Comment: &comment}, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateReviewInput{MenuItemID: item.ID, Rating: 5}, nil)
	require.NoError(t, err)

	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, int64(3), reloaded.TotalReviews)
	assert.Equal(t, "4.67", reloaded.AverageRating.StringFixed(2))
	assert.Equal(t, []int64{item.ID, item.ID, item.ID}, cache.ids)

	reviews, err := svc.ListByMenuItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	var comments int
	for _, r := range reviews {
		if r.Comment != nil {
			comments++
			assert.Equal(t, "good", *r.Comment)
		}
	}
	assert.Equal(t, 1, comments)
}

func TestCreate_Rejections(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil, zerolog.Nop())
	ctx := context.Background()
	item := dbtest.CreateMenuItem(t, db, "fries", 699)

	_, err := svc.Create(ctx, CreateReviewInput{MenuItemID: item.ID, Rating: 6}, nil)
	var verr *apperror.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Create(ctx, CreateReviewInput{MenuItemID: 404, Rating: 3}, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreate_ConcurrentReviewsKeepCountInStep(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil, zerolog.Nop())
	ctx := context.Background()
	item := dbtest.CreateMenuItem(t, db, "burger", 1099)

	ratings := []int32{5, 4, 3, 5, 2, 4, 1, 5}
	var wg sync.WaitGroup
	errs := make(chan error, len(ratings))
	for _, rating := range ratings {
		wg.Add(1)
		go func(rating int32) {
			defer wg.Done()
			_, err := svc.Create(ctx, CreateReviewInput{MenuItemID: item.ID, Rating: rating}, nil)
			errs <- err
		}(rating)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var stored int64
	require.NoError(t, db.Model(&models.Review{}).Where("menu_item_id = ?", item.ID).Count(&stored).Error)

	var reloaded models.MenuItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, int64(len(ratings)), stored)
	assert.Equal(t, stored, reloaded.TotalReviews)
	assert.Equal(t, "3.63", reloaded.AverageRating.StringFixed(2))
}
