package controllers

import (
	"context"
	"net/http"
	"strings"

	"cloud.google.com/go/auth/credentials/idtoken"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/repository"
	"github.com/vnkhanh/podcastr-backend/utils"
)

// ====== INPUT STRUCTS ======
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginInput struct {
	IDToken string `json:"id_token" binding:"required"`
}

// GoogleTokenValidator checks a Google ID token and returns its claims.
type GoogleTokenValidator func(ctx context.Context, idToken, audience string) (map[string]interface{}, error)

func validateGoogleToken(ctx context.Context, idToken, audience string) (map[string]interface{}, error) {
	payload, err := idtoken.Validate(ctx, idToken, audience)
	if err != nil {
		return nil, err
	}
	return payload.Claims, nil
}

type AuthController struct {
	users          repository.UserRepository
	googleClientID string
	validateGoogle GoogleTokenValidator
}

func NewAuthController(users repository.UserRepository, googleClientID string) *AuthController {
	return &AuthController{users: users, googleClientID: googleClientID, validateGoogle: validateGoogleToken}
}

func newExternalID() string {
	return "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"name":        user.Name,
		"external_id": user.ExternalID,
		"image_url":   user.ImageURL,
	}
}

func (ac *AuthController) issueToken(c *gin.Context, status int, user *models.User) {
	token, err := utils.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		log.WithError(err).Error("generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	c.JSON(status, gin.H{"token": token, "user": userPayload(user)})
}

// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := ac.users.GetByEmail(ctx, input.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not check email"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	user := &models.User{
		ID:         uuid.New(),
		Name:       input.Name,
		Email:      input.Email,
		Password:   string(hashed),
		ExternalID: newExternalID(),
		ImageURL:   input.ImageURL,
	}
	if err := ac.users.Create(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create user"})
		return
	}

	ac.issueToken(c, http.StatusCreated, user)
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.GetByEmail(c.Request.Context(), input.Email)
	if err != nil || user.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	ac.issueToken(c, http.StatusOK, user)
}

// POST /api/auth/logingoogle
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	var input GoogleLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Xác minh token với đúng GOOGLE_CLIENT_ID
	claims, err := ac.validateGoogle(c.Request.Context(), input.IDToken, ac.googleClientID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
		return
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google token has no email"})
		return
	}

	ctx := c.Request.Context()
	user, err := ac.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// Nếu chưa có -> tạo mới, password để trống vì login Google
		user = &models.User{
			ID:         uuid.New(),
			Email:      email,
			Name:       name,
			ExternalID: newExternalID(),
			ImageURL:   picture,
		}
		err = ac.users.Create(ctx, user)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load Google user"})
		return
	}

	ac.issueToken(c, http.StatusOK, user)
}
