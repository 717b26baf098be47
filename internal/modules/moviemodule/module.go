// Package moviemodule serves the movie catalog: movies, artists, genres,
// and the ratings submitted against movies.
package moviemodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/cinelog/internal/auth"
	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/modules/modulemanager"
	"github.com/mantonx/cinelog/internal/policy"
	"gorm.io/gorm"
)

// Module provides the catalog endpoints and owns the catalog tables.
type Module struct {
	db      *gorm.DB
	handler *Handler
}

func init() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return "cinelog.movies" }
func (m *Module) Name() string { return "Movie Catalog" }
func (m *Module) Core() bool   { return true }

// Migrate creates the catalog tables and their join tables.
func (m *Module) Migrate(db *gorm.DB) error {
	m.db = db
	return db.AutoMigrate(
		&database.Artist{},
		&database.Genre{},
		&database.Movie{},
		&database.Rating{},
	)
}

// Init wires the handler once the database is migrated.
func (m *Module) Init() error {
	if m.db == nil {
		return fmt.Errorf("movie module initialized before migration")
	}
	m.handler = NewHandler(m.db)
	return nil
}

// RegisterRoutes mounts the catalog API. Reads are public; writes are gated
// by capability.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(auth.Authenticate(auth.GetTokenManager(), m.db))

	api.GET("/movies", m.handler.ListMovies)
	api.POST("/movies",
		auth.RequireCapability(policy.CapCreateMovie), m.handler.CreateMovie)
	api.GET("/movies/:slug", m.handler.GetMovie)
	api.POST("/movies/:slug/add_rating",
		auth.RequireCapability(policy.CapSubmitRating), m.handler.AddRating)
	api.GET("/artist/:slug", m.handler.GetArtist)
	api.POST("/create-artist",
		auth.RequireCapability(policy.CapCreateArtist), m.handler.CreateArtist)
}
