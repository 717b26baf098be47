package core

import (
	"strings"

	"github.com/mantonx/cinelog/internal/database"
	"gorm.io/gorm"
)

// Ordering values accepted by the movie list. Anything else falls back to
// OrderByRating.
const (
	OrderByRating = "rating"
	OrderByTitle  = "title"
)

// ListOptions filters and orders the movie collection. Empty filters are
// skipped; both filters apply conjunctively when present.
type ListOptions struct {
	TitlePrefix string
	Genre       string
	OrderBy     string
}

// Catalog answers read queries over movies and artists. Every call hits the
// store directly; nothing is cached.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog creates a catalog bound to the given database handle.
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListMovies returns movies matching the options. Title matching is a
// case-insensitive prefix; genre matching is exact against any associated
// genre. Default order is average rating descending with unrated movies last
// (a null average sorts as lowest); "title" orders ascending by title text.
func (c *Catalog) ListMovies(opts ListOptions) ([]database.Movie, error) {
	q := c.db.Model(&database.Movie{}).Select("movies.*")

	if opts.TitlePrefix != "" {
		q = q.Where("lower(title) LIKE lower(?) ESCAPE '\\'", likeEscaper.Replace(opts.TitlePrefix)+"%")
	}

	if opts.Genre != "" {
		q = q.Joins("JOIN movie_genres ON movie_genres.movie_id = movies.id").
			Joins("JOIN genres ON genres.id = movie_genres.genre_id").
			Where("genres.name = ?", opts.Genre)
	}

	switch opts.OrderBy {
	case OrderByTitle:
		q = q.Order("title ASC")
	default:
		// "rating" and anything unrecognized. The IS NULL key keeps unrated
		// movies last on both SQLite and Postgres.
		q = q.Order("average_rating IS NULL, average_rating DESC")
	}

	var movies []database.Movie
	if err := q.Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

// GetMovieBySlug returns the fully associated movie for a slug.
func (c *Catalog) GetMovieBySlug(slug string) (*database.Movie, error) {
	var movie database.Movie
	err := c.db.Preload("Genres").Preload("Directors").Preload("Actors").
		Where("slug = ?", slug).First(&movie).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetArtistBySlug returns the artist for a slug.
func (c *Catalog) GetArtistBySlug(slug string) (*database.Artist, error) {
	var artist database.Artist
	if err := c.db.Where("slug = ?", slug).First(&artist).Error; err != nil {
		return nil, err
	}
	return &artist, nil
}

// MoviesDirectedBy returns movies the artist directed.
func (c *Catalog) MoviesDirectedBy(artistID uint) ([]database.Movie, error) {
	var movies []database.Movie
	err := c.db.Model(&database.Movie{}).Select("movies.*").
		Joins("JOIN movie_directors ON movie_directors.movie_id = movies.id").
		Where("movie_directors.artist_id = ?", artistID).
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// MoviesStarring returns movies the artist acted in.
func (c *Catalog) MoviesStarring(artistID uint) ([]database.Movie, error) {
	var movies []database.Movie
	err := c.db.Model(&database.Movie{}).Select("movies.*").
		Joins("JOIN movie_actors ON movie_actors.movie_id = movies.id").
		Where("movie_actors.artist_id = ?", artistID).
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// RatingsForMovie returns all ratings attached to a movie, rater included.
func (c *Catalog) RatingsForMovie(movieID uint) ([]database.Rating, error) {
	var ratings []database.Rating
	err := c.db.Preload("User").Where("movie_id = ?", movieID).Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
