package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-bistro-api/internal/auth"
	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/franciscosanchezn/gin-bistro-api/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	userService services.UserService
	jwtSecret   []byte
}

func NewAuthController(userService services.UserService, jwtSecret string) *AuthController {
	return &AuthController{
		userService: userService,
		jwtSecret:   []byte(jwtSecret),
	}
}

// Register godoc
// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body object{phone=string,password=string,first_name=string,last_name=string,email=string} true "Account"
// @Success 201 {object} models.User
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/v1/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Phone     string `json:"phone" binding:"required,max=20"`
		Password  string `json:"password" binding:"required,min=6"`
		FirstName string `json:"first_name" binding:"max=50"`
		LastName  string `json:"last_name" binding:"max=50"`
		Email     string `json:"email" binding:"omitempty,email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, models.ErrValidationFailed, err.Error())
		return
	}

	user := &models.User{
		Phone:     req.Phone,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      "user",
	}

	if err := user.HashPassword(); err != nil {
		log.WithError(err).Error("Password hashing failed")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "password hashing failed"))
		return
	}

	if err := ac.userService.CreateUser(user); err != nil {
		if errors.Is(err, services.ErrConflict) {
			c.JSON(http.StatusConflict, models.NewAPIError(models.ErrPhoneTaken, "phone number is already registered"))
			return
		}
		respondError(c, err, models.ErrNotFound)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Log in with phone and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body object{phone=string,password=string} true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Router /api/v1/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, models.ErrValidationFailed, err.Error())
		return
	}

	user, err := ac.userService.GetUserByPhone(req.Phone)
	if err != nil || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrInvalidCredentials, "invalid phone or password"))
		return
	}

	tokenString, err := auth.GenerateUserToken(ac.jwtSecret, user, time.Now())
	if err != nil {
		log.WithError(err).Error("Token generation failed")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "token generation failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": tokenString,
		"token_type":   "Bearer",
		"expires_in":   int64(auth.UserTokenTTL.Seconds()),
		"user": gin.H{
			"id":         user.ID,
			"phone":      user.Phone,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
		},
	})
}
