package database

import (
	"time"
)

// User is an account in the system. Accounts are never hard-deleted in the
// normal flow; staff and superuser flags are toggled administratively.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Name           string    `json:"name" gorm:"size:255;uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"size:255;not null"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	IsStaff        bool      `json:"is_staff" gorm:"default:false"`
	IsSuperuser    bool      `json:"is_superuser" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Artist can be an actor, a director, or both. The (first_name, last_name)
// pair is the natural key: the composite unique index is what makes
// find-or-create safe under concurrent ingestion.
type Artist struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	FirstName string  `json:"first_name" gorm:"size:45;not null;uniqueIndex:idx_artists_natural_key"`
	LastName  string  `json:"last_name" gorm:"size:45;not null;uniqueIndex:idx_artists_natural_key"`
	Slug      *string `json:"slug" gorm:"size:100;uniqueIndex"`
}

// Genre is deduplicated by exact name match.
type Genre struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"genre" gorm:"size:45;uniqueIndex;not null"`
}

// Movie is the catalog entry. Slug stays null until the creation flow has
// attached all associations, so a null slug marks a movie that is not yet
// fully created. AverageRating is derived from ratings and stays null until
// the first rating arrives.
type Movie struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"size:45;not null"`
	Year          int       `json:"year" gorm:"not null"`
	Overview      string    `json:"overview" gorm:"type:text"`
	AverageRating *float64  `json:"average_rating" gorm:"type:decimal(5,2)"`
	Slug          *string   `json:"slug" gorm:"size:100;uniqueIndex"`
	CreatedAt     time.Time `json:"created"`
	UpdatedAt     time.Time `json:"updated"`

	Genres    []Genre  `json:"genre,omitempty" gorm:"many2many:movie_genres;"`
	Directors []Artist `json:"director,omitempty" gorm:"many2many:movie_directors;"`
	Actors    []Artist `json:"actors,omitempty" gorm:"many2many:movie_actors;"`
}

// Rating belongs to exactly one movie (cascade-deleted with it) and at most
// one user (kept with a null user when the account goes away). Value defaults
// to 3 when a rating is submitted without one.
type Rating struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MovieID   uint      `json:"movie_id" gorm:"not null;index"`
	Movie     *Movie    `json:"-" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Value     int       `json:"rating" gorm:"not null;default:3;check:value >= 1 AND value <= 10"`
	Comment   string    `json:"comment" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
