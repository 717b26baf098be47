package moviemodule

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/cinelog/internal/auth"
	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/errors"
	"github.com/mantonx/cinelog/internal/modules/moviemodule/core"
	"gorm.io/gorm"
)

// Handler serves the catalog HTTP endpoints.
type Handler struct {
	db         *gorm.DB
	catalog    *core.Catalog
	aggregator *core.Aggregator
}

// NewHandler creates a catalog handler bound to the given database.
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		db:         db,
		catalog:    core.NewCatalog(db),
		aggregator: core.NewAggregator(db),
	}
}

type artistInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type genreInput struct {
	Name string `json:"genre"`
}

type createMovieRequest struct {
	Title     string        `json:"title" binding:"required,max=45"`
	Year      int           `json:"year" binding:"required"`
	Overview  string        `json:"overview"`
	Genres    []genreInput  `json:"genre"`
	Directors []artistInput `json:"director"`
	Actors    []artistInput `json:"actors"`
}

type addRatingRequest struct {
	Rating  *int   `json:"rating"`
	Comment string `json:"comment" binding:"max=255"`
}

// validateArtistInputs rejects artists with a missing name part before any
// database work happens; the resolver treats its inputs as already validated.
func validateArtistInputs(field string, inputs []artistInput) *errors.CinelogError {
	for _, in := range inputs {
		if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
			return errors.NewValidationError("first_name and last_name are both required", field)
		}
		if len(in.FirstName) > 45 || len(in.LastName) > 45 {
			return errors.NewValidationError("names are limited to 45 characters", field)
		}
	}
	return nil
}

func basicMovieJSON(m *database.Movie) gin.H {
	return gin.H{
		"id":             m.ID,
		"title":          m.Title,
		"year":           m.Year,
		"average_rating": m.AverageRating,
		"slug":           m.Slug,
	}
}

func basicArtistJSON(a *database.Artist) gin.H {
	return gin.H{
		"id":         a.ID,
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"slug":       a.Slug,
	}
}

func detailMovieJSON(m *database.Movie) gin.H {
	genres := make([]gin.H, 0, len(m.Genres))
	for i := range m.Genres {
		genres = append(genres, gin.H{"id": m.Genres[i].ID, "genre": m.Genres[i].Name})
	}
	directors := make([]gin.H, 0, len(m.Directors))
	for i := range m.Directors {
		directors = append(directors, basicArtistJSON(&m.Directors[i]))
	}
	actors := make([]gin.H, 0, len(m.Actors))
	for i := range m.Actors {
		actors = append(actors, basicArtistJSON(&m.Actors[i]))
	}

	return gin.H{
		"id":             m.ID,
		"title":          m.Title,
		"year":           m.Year,
		"overview":       m.Overview,
		"average_rating": m.AverageRating,
		"slug":           m.Slug,
		"genre":          genres,
		"director":       directors,
		"actors":         actors,
		"created":        m.CreatedAt,
		"updated":        m.UpdatedAt,
	}
}

func ratingJSON(r *database.Rating) gin.H {
	out := gin.H{
		"id":      r.ID,
		"rating":  r.Value,
		"comment": r.Comment,
		"created": r.CreatedAt,
	}
	if r.User != nil {
		out["user"] = gin.H{"id": r.User.ID, "name": r.User.Name}
	} else {
		out["user"] = nil
	}
	return out
}

// ListMovies handles GET /api/movies with optional title prefix, genre and
// ordering filters.
func (h *Handler) ListMovies(c *gin.Context) {
	opts := core.ListOptions{
		TitlePrefix: c.Query("title"),
		Genre:       c.Query("genre"),
		OrderBy:     c.Query("order_by"),
	}

	movies, err := h.catalog.ListMovies(opts)
	if err != nil {
		errors.HandleDatabaseError(c, "list movies", err)
		return
	}

	results := make([]gin.H, 0, len(movies))
	for i := range movies {
		results = append(results, basicMovieJSON(&movies[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

// CreateMovie handles POST /api/movies. The movie row, its resolved genres and
// artists, and finally its slug are written in one transaction, so a movie is
// never visible by slug before its associations exist.
func (h *Handler) CreateMovie(c *gin.Context) {
	var req createMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleValidationError(c, err.Error(), "body")
		return
	}
	if cerr := validateArtistInputs("director", req.Directors); cerr != nil {
		cerr.ToGinResponse(c)
		return
	}
	if cerr := validateArtistInputs("actors", req.Actors); cerr != nil {
		cerr.ToGinResponse(c)
		return
	}
	for _, g := range req.Genres {
		if strings.TrimSpace(g.Name) == "" {
			errors.HandleValidationError(c, "genre name must not be empty", "genre")
			return
		}
	}

	movie := &database.Movie{
		Title:    req.Title,
		Year:     req.Year,
		Overview: req.Overview,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		resolver := core.NewResolver(tx)

		if err := tx.Create(movie).Error; err != nil {
			return err
		}

		for _, g := range req.Genres {
			genre, _, err := resolver.ResolveGenre(g.Name)
			if err != nil {
				return err
			}
			if err := tx.Model(movie).Association("Genres").Append(genre); err != nil {
				return err
			}
		}
		if err := attachArtists(tx, resolver, movie, "Directors", req.Directors); err != nil {
			return err
		}
		if err := attachArtists(tx, resolver, movie, "Actors", req.Actors); err != nil {
			return err
		}

		// Slug last: its presence marks the movie as fully created.
		slug := core.MakeSlug(movie.Title, movie.ID)
		if err := tx.Model(movie).Update("slug", slug).Error; err != nil {
			return err
		}
		movie.Slug = &slug
		return nil
	})
	if err != nil {
		errors.HandleDatabaseError(c, "create movie", err)
		return
	}

	created, err := h.catalog.GetMovieBySlug(*movie.Slug)
	if err != nil {
		errors.HandleDatabaseError(c, "load created movie", err)
		return
	}

	c.JSON(http.StatusCreated, detailMovieJSON(created))
}

// attachArtists resolves each artist by natural key and appends it to the
// movie association, assigning a slug to artists created along the way.
func attachArtists(tx *gorm.DB, resolver *core.Resolver, movie *database.Movie, association string, inputs []artistInput) error {
	for _, in := range inputs {
		artist, created, err := resolver.ResolveArtist(in.FirstName, in.LastName)
		if err != nil {
			return err
		}
		if created {
			slug := core.MakeSlug(artist.FirstName+" "+artist.LastName, artist.ID)
			if err := tx.Model(artist).Update("slug", slug).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(movie).Association(association).Append(artist); err != nil {
			return err
		}
	}
	return nil
}

// GetMovie handles GET /api/movies/:slug.
func (h *Handler) GetMovie(c *gin.Context) {
	slug := c.Param("slug")

	movie, err := h.catalog.GetMovieBySlug(slug)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			errors.HandleNotFound(c, "movie", slug)
			return
		}
		errors.HandleDatabaseError(c, "get movie", err)
		return
	}

	ratings, err := h.catalog.RatingsForMovie(movie.ID)
	if err != nil {
		errors.HandleDatabaseError(c, "list ratings", err)
		return
	}

	response := detailMovieJSON(movie)
	ratingList := make([]gin.H, 0, len(ratings))
	for i := range ratings {
		ratingList = append(ratingList, ratingJSON(&ratings[i]))
	}
	response["Ratings"] = ratingList

	c.JSON(http.StatusOK, response)
}

// AddRating handles POST /api/movies/:slug/add_rating. A rating that saves
// but whose average recompute fails is still a success; the response carries
// average_updated=false so the caller knows the stored average is stale.
func (h *Handler) AddRating(c *gin.Context) {
	movieID, err := core.IDFromSlug(c.Param("slug"))
	if err != nil {
		errors.HandleNotFound(c, "movie", c.Param("slug"))
		return
	}

	var movie database.Movie
	if err := h.db.First(&movie, movieID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			errors.HandleNotFound(c, "movie", c.Param("slug"))
			return
		}
		errors.HandleDatabaseError(c, "get movie", err)
		return
	}

	// An empty body is a valid submission: the rating takes the default value.
	var req addRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		errors.HandleValidationError(c, err.Error(), "body")
		return
	}

	value := core.DefaultRatingValue
	if req.Rating != nil {
		value = *req.Rating
	}
	if err := core.ValidateRatingValue(value); err != nil {
		errors.HandleValidationError(c, err.Error(), "rating")
		return
	}

	var userID *uint
	user, authenticated := auth.UserFromContext(c)
	if authenticated {
		userID = &user.ID
	}

	outcome, err := h.aggregator.Record(movie.ID, userID, value, req.Comment)
	if err != nil {
		errors.HandleDatabaseError(c, "record rating", err)
		return
	}
	if authenticated {
		outcome.Rating.User = user
	}

	response := gin.H{
		"rating":          ratingJSON(outcome.Rating),
		"average_updated": outcome.AverageUpdated,
	}
	if outcome.AverageUpdated {
		response["average_rating"] = outcome.Average
	} else {
		response["warning"] = "rating was saved but the average could not be updated"
	}

	c.JSON(http.StatusOK, response)
}

// GetArtist handles GET /api/artist/:slug, returning the artist and their
// filmography split into directed and starred lists.
func (h *Handler) GetArtist(c *gin.Context) {
	slug := c.Param("slug")

	artist, err := h.catalog.GetArtistBySlug(slug)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			errors.HandleNotFound(c, "artist", slug)
			return
		}
		errors.HandleDatabaseError(c, "get artist", err)
		return
	}

	directed, err := h.catalog.MoviesDirectedBy(artist.ID)
	if err != nil {
		errors.HandleDatabaseError(c, "list directed movies", err)
		return
	}
	starred, err := h.catalog.MoviesStarring(artist.ID)
	if err != nil {
		errors.HandleDatabaseError(c, "list starred movies", err)
		return
	}

	response := basicArtistJSON(artist)
	directedList := make([]gin.H, 0, len(directed))
	for i := range directed {
		directedList = append(directedList, basicMovieJSON(&directed[i]))
	}
	starredList := make([]gin.H, 0, len(starred))
	for i := range starred {
		starredList = append(starredList, basicMovieJSON(&starred[i]))
	}
	response["Directed"] = directedList
	response["Starred"] = starredList

	c.JSON(http.StatusOK, response)
}

// CreateArtist handles POST /api/create-artist. Duplicate natural keys return
// the existing artist with 200 instead of failing.
func (h *Handler) CreateArtist(c *gin.Context) {
	var req artistInput
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleValidationError(c, err.Error(), "body")
		return
	}
	if cerr := validateArtistInputs("body", []artistInput{req}); cerr != nil {
		cerr.ToGinResponse(c)
		return
	}

	var artist *database.Artist
	var created bool
	err := h.db.Transaction(func(tx *gorm.DB) error {
		resolver := core.NewResolver(tx)
		var err error
		artist, created, err = resolver.ResolveArtist(req.FirstName, req.LastName)
		if err != nil {
			return err
		}
		if created {
			slug := core.MakeSlug(artist.FirstName+" "+artist.LastName, artist.ID)
			if err := tx.Model(artist).Update("slug", slug).Error; err != nil {
				return err
			}
			artist.Slug = &slug
		}
		return nil
	})
	if err != nil {
		errors.HandleDatabaseError(c, "create artist", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, basicArtistJSON(artist))
}
