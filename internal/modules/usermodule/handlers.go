package usermodule

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/cinelog/internal/auth"
	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/errors"
	"github.com/mantonx/cinelog/internal/modules/moviemodule/core"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Handler serves account and own-rating endpoints.
type Handler struct {
	db         *gorm.DB
	manager    *auth.TokenManager
	bcryptCost int
}

// NewHandler creates an account handler.
func NewHandler(db *gorm.DB, manager *auth.TokenManager, bcryptCost int) *Handler {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Handler{db: db, manager: manager, bcryptCost: bcryptCost}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=8"`
}

type tokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateMeRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

type updateRatingRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment" binding:"omitempty,max=255"`
}

func userJSON(u *database.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
	}
}

func ratingJSON(r *database.Rating) gin.H {
	out := gin.H{
		"id":      r.ID,
		"rating":  r.Value,
		"comment": r.Comment,
		"created": r.CreatedAt,
	}
	if r.Movie != nil {
		out["movie"] = gin.H{
			"id":    r.Movie.ID,
			"title": r.Movie.Title,
			"slug":  r.Movie.Slug,
		}
	}
	return out
}

// Signup handles POST /api/signup.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleValidationError(c, err.Error(), "body")
		return
	}

	// Duplicate checks up front for per-field messages; the unique indexes
	// still back this under concurrent signups.
	fields := map[string]string{}
	var count int64
	if err := h.db.Model(&database.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		errors.HandleDatabaseError(c, "check email", err)
		return
	}
	if count > 0 {
		fields["email"] = "a user with this email already exists"
	}
	if err := h.db.Model(&database.User{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		errors.HandleDatabaseError(c, "check name", err)
		return
	}
	if count > 0 {
		fields["name"] = "a user with this name already exists"
	}
	if len(fields) > 0 {
		errors.HandleFieldValidationError(c, "signup rejected", fields)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		errors.HandleInternalError(c, "failed to hash password", err)
		return
	}

	user := &database.User{
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: string(hashed),
		IsActive:       true,
	}
	if err := h.db.Create(user).Error; err != nil {
		errors.HandleDatabaseError(c, "create user", err)
		return
	}

	c.JSON(http.StatusCreated, userJSON(user))
}

// Token handles POST /api/token. Bad email and bad password produce the same
// response so the endpoint cannot be used to probe for accounts.
func (h *Handler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleValidationError(c, err.Error(), "body")
		return
	}

	var user database.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		errors.HandleUnauthorized(c, "invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		errors.HandleUnauthorized(c, "invalid email or password")
		return
	}
	if !user.IsActive {
		errors.HandleUnauthorized(c, "account is disabled")
		return
	}

	token, expiresAt, err := h.manager.GenerateToken(&user)
	if err != nil {
		errors.HandleInternalError(c, "failed to issue token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Me handles GET /api/me.
func (h *Handler) Me(c *gin.Context) {
	user, _ := auth.UserFromContext(c)
	c.JSON(http.StatusOK, userJSON(user))
}

// UpdateMe handles PATCH /api/me. Only the fields present in the body change.
func (h *Handler) UpdateMe(c *gin.Context) {
	user, _ := auth.UserFromContext(c)

	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleValidationError(c, err.Error(), "body")
		return
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), h.bcryptCost)
		if err != nil {
			errors.HandleInternalError(c, "failed to hash password", err)
			return
		}
		updates["hashed_password"] = string(hashed)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, userJSON(user))
		return
	}

	if err := h.db.Model(user).Updates(updates).Error; err != nil {
		errors.HandleDatabaseError(c, "update user", err)
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}

// ListRatings handles GET /api/ratings, scoped to the caller's own rows.
func (h *Handler) ListRatings(c *gin.Context) {
	user, _ := auth.UserFromContext(c)

	var ratings []database.Rating
	if err := h.db.Preload("Movie").
		Where("user_id = ?", user.ID).
		Order("id").
		Find(&ratings).Error; err != nil {
		errors.HandleDatabaseError(c, "list ratings", err)
		return
	}

	results := make([]gin.H, 0, len(ratings))
	for i := range ratings {
		results = append(results, ratingJSON(&ratings[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

// ownRating loads one of the caller's ratings. Another user's rating is
// indistinguishable from a missing one.
func (h *Handler) ownRating(c *gin.Context) (*database.Rating, bool) {
	user, _ := auth.UserFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		errors.HandleNotFound(c, "rating", c.Param("id"))
		return nil, false
	}

	var rating database.Rating
	err = h.db.Preload("Movie").
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&rating).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			errors.HandleNotFound(c, "rating", c.Param("id"))
		} else {
			errors.HandleDatabaseError(c, "get rating", err)
		}
		return nil, false
	}
	return &rating, true
}

// GetRating handles GET /api/ratings/:id.
func (h *Handler) GetRating(c *gin.Context) {
	rating, ok := h.ownRating(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ratingJSON(rating))
}

// UpdateRating handles PATCH /api/ratings/:id. Changing the value triggers a
// recompute of the movie's average.
func (h *Handler) UpdateRating(c *gin.Context) {
	rating, ok := h.ownRating(c)
	if !ok {
		return
	}

	var req updateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleValidationError(c, err.Error(), "body")
		return
	}

	valueChanged := false
	if req.Rating != nil {
		if err := core.ValidateRatingValue(*req.Rating); err != nil {
			errors.HandleValidationError(c, err.Error(), "rating")
			return
		}
		valueChanged = *req.Rating != rating.Value
		rating.Value = *req.Rating
	}
	if req.Comment != nil {
		rating.Comment = *req.Comment
	}

	if err := h.db.Omit(clause.Associations).Save(rating).Error; err != nil {
		errors.HandleDatabaseError(c, "update rating", err)
		return
	}

	averageUpdated := true
	if valueChanged {
		if _, err := core.NewAggregator(h.db).Recompute(rating.MovieID); err != nil {
			averageUpdated = false
		}
	}

	response := ratingJSON(rating)
	response["average_updated"] = averageUpdated
	c.JSON(http.StatusOK, response)
}
