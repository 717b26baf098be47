package core

import (
	"errors"

	"github.com/mantonx/cinelog/internal/database"
	"gorm.io/gorm"
)

// Resolver finds or creates entities by their natural key. It is bound to a
// *gorm.DB so a creation flow can run it inside its own transaction.
//
// The resolver does not validate its inputs; callers reject incomplete keys
// before invoking it.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a resolver bound to the given database handle.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// ResolveArtist returns the artist for the (firstName, lastName) natural key,
// creating it when absent. The second return value reports whether a row was
// created. Lookup is a case-sensitive exact match; an existing artist is
// returned unchanged, slug included.
//
// The composite unique index on the pair backs this up under concurrent
// ingestion: when a competing insert wins the race, the loser re-fetches and
// returns the surviving row.
func (r *Resolver) ResolveArtist(firstName, lastName string) (*database.Artist, bool, error) {
	var artist database.Artist
	err := r.db.Where("first_name = ? AND last_name = ?", firstName, lastName).First(&artist).Error
	if err == nil {
		return &artist, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	artist = database.Artist{FirstName: firstName, LastName: lastName}
	if createErr := r.db.Create(&artist).Error; createErr != nil {
		// Lost a concurrent insert race; the unique constraint kept the
		// natural key unique, so the winner's row must exist.
		var existing database.Artist
		if fetchErr := r.db.Where("first_name = ? AND last_name = ?", firstName, lastName).
			First(&existing).Error; fetchErr == nil {
			return &existing, false, nil
		}
		return nil, false, createErr
	}

	return &artist, true, nil
}

// ResolveGenre returns the genre with the exact name, creating it when absent.
func (r *Resolver) ResolveGenre(name string) (*database.Genre, bool, error) {
	var genre database.Genre
	err := r.db.Where("name = ?", name).First(&genre).Error
	if err == nil {
		return &genre, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	genre = database.Genre{Name: name}
	if createErr := r.db.Create(&genre).Error; createErr != nil {
		var existing database.Genre
		if fetchErr := r.db.Where("name = ?", name).First(&existing).Error; fetchErr == nil {
			return &existing, false, nil
		}
		return nil, false, createErr
	}

	return &genre, true, nil
}
