// Package usermodule serves accounts: signup, token issuance, the caller's
// profile, and the caller's own ratings.
package usermodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/cinelog/internal/auth"
	"github.com/mantonx/cinelog/internal/config"
	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/modules/modulemanager"
	"github.com/mantonx/cinelog/internal/policy"
	"gorm.io/gorm"
)

// Module provides the account endpoints and owns the users table.
type Module struct {
	db      *gorm.DB
	handler *Handler
}

func init() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return "cinelog.users" }
func (m *Module) Name() string { return "User Accounts" }
func (m *Module) Core() bool   { return true }

// Migrate creates the users table.
func (m *Module) Migrate(db *gorm.DB) error {
	m.db = db
	return db.AutoMigrate(&database.User{})
}

// Init wires the handler against the global token manager.
func (m *Module) Init() error {
	if m.db == nil {
		return fmt.Errorf("user module initialized before migration")
	}
	m.handler = NewHandler(m.db, auth.GetTokenManager(), config.Get().Auth.BcryptCost)
	return nil
}

// RegisterRoutes mounts the account API. Signup and token issuance are
// public; everything else requires a valid token.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(auth.Authenticate(auth.GetTokenManager(), m.db))

	api.POST("/signup", m.handler.Signup)
	api.POST("/token", m.handler.Token)

	api.GET("/me", auth.RequireAuthenticated(), m.handler.Me)
	api.PATCH("/me", auth.RequireAuthenticated(), m.handler.UpdateMe)

	ratings := api.Group("/ratings", auth.RequireCapability(policy.CapManageOwnRatings))
	ratings.GET("", m.handler.ListRatings)
	ratings.GET("/:id", m.handler.GetRating)
	ratings.PATCH("/:id", m.handler.UpdateRating)
}
