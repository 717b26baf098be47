package core

import (
	"fmt"
	"math"

	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/logger"
	"gorm.io/gorm"
)

// DefaultRatingValue is used when a rating is submitted without a value.
const DefaultRatingValue = 3

// Rating bounds, inclusive.
const (
	MinRatingValue = 1
	MaxRatingValue = 10
)

// Aggregator records ratings and maintains each movie's average.
type Aggregator struct {
	db *gorm.DB
}

// NewAggregator creates an aggregator bound to the given database handle.
func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// RecordOutcome is the result of recording a rating. AverageUpdated is false
// when the rating was persisted but the subsequent recompute failed; the
// stored average is stale in that case and callers surface it as a partial
// success, not a failure.
type RecordOutcome struct {
	Rating         *database.Rating
	Average        float64
	AverageUpdated bool
}

// ValidateRatingValue rejects values outside [1,10].
func ValidateRatingValue(value int) error {
	if value < MinRatingValue || value > MaxRatingValue {
		return fmt.Errorf("rating must be between %d and %d", MinRatingValue, MaxRatingValue)
	}
	return nil
}

// Record persists a rating and recomputes the movie's average from the full
// set of its ratings. An error is returned only when the rating itself could
// not be saved; a recompute failure after the save is reported through
// RecordOutcome.AverageUpdated and logged, leaving the rating in place.
//
// Concurrent submissions to the same movie race on the recompute-then-write
// of the average; last writer wins, which is tolerated because the average is
// advisory.
func (a *Aggregator) Record(movieID uint, userID *uint, value int, comment string) (*RecordOutcome, error) {
	rating := &database.Rating{
		MovieID: movieID,
		UserID:  userID,
		Value:   value,
		Comment: comment,
	}
	if err := a.db.Create(rating).Error; err != nil {
		return nil, err
	}

	average, err := a.Recompute(movieID)
	if err != nil {
		logger.Error("Rating saved but average recompute failed", []logger.Field{
			logger.Uint("movie_id", movieID),
			logger.Uint("rating_id", rating.ID),
			logger.Err("error", err),
		})
		return &RecordOutcome{Rating: rating}, nil
	}

	return &RecordOutcome{Rating: rating, Average: average, AverageUpdated: true}, nil
}

// Recompute recalculates a movie's average rating as the arithmetic mean of
// every rating currently attached to it, rounded to 2 decimal places, and
// persists it on the movie row. The full scan avoids drift from incremental
// accumulation; ratings-per-movie is small enough that O(n) per write is fine.
func (a *Aggregator) Recompute(movieID uint) (float64, error) {
	var values []int
	if err := a.db.Model(&database.Rating{}).
		Where("movie_id = ?", movieID).
		Pluck("value", &values).Error; err != nil {
		return 0, err
	}

	if len(values) == 0 {
		// No ratings left: the average goes back to unset.
		if err := a.db.Model(&database.Movie{}).
			Where("id = ?", movieID).
			Update("average_rating", nil).Error; err != nil {
			return 0, err
		}
		return 0, nil
	}

	sum := 0
	for _, v := range values {
		sum += v
	}
	average := math.Round(float64(sum)/float64(len(values))*100) / 100

	if err := a.db.Model(&database.Movie{}).
		Where("id = ?", movieID).
		Update("average_rating", average).Error; err != nil {
		return 0, err
	}

	return average, nil
}
