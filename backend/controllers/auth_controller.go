package controllers

import (
	"progresshub/backend/config"
	"progresshub/backend/services"
	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Users *services.UserService
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewAuthController(users *services.UserService, cfg *config.Config, log *utils.Logger) *AuthController {
	return &AuthController{Users: users, Cfg: cfg, Log: log}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"student@example.com"`
	Password string `json:"password" validate:"required" example:"secret123"`
	Name     string `json:"name" example:"Mona"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (ac *AuthController) sessionResponse(c *fiber.Ctx, id uint, email, name string) error {
	token, err := utils.GenerateToken(id, utils.TokenTypeSession, ac.Cfg.JWTTTL, ac.Cfg.JWTSecret)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    id,
			"email": email,
			"name":  name,
		},
	})
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body RegisterRequest true "Registration data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Email = services.NormalizeEmail(input.Email)
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	user, err := ac.Users.Register(c.UserContext(), input.Email, input.Password, input.Name)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return ac.sessionResponse(c, user.ID, user.Email, user.Name)
}

// Login godoc
// @Summary User login
// @Description Authenticates with email and password and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	user, err := ac.Users.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return ac.sessionResponse(c, user.ID, user.Email, user.Name)
}

// SeedDemo makes sure the demo account exists and hands back its credentials. A token is
// included only when the account was created by this call.
func (ac *AuthController) SeedDemo(c *fiber.Ctx) error {
	user, created, err := ac.Users.SeedDemo(c.UserContext())
	if err != nil {
		return respondError(c, ac.Log, err)
	}

	resp := fiber.Map{
		"ok":       true,
		"email":    services.DemoEmail,
		"password": services.DemoPassword,
	}
	if created {
		token, err := utils.GenerateToken(user.ID, utils.TokenTypeSession, ac.Cfg.JWTTTL, ac.Cfg.JWTSecret)
		if err != nil {
			return respondError(c, ac.Log, err)
		}
		resp["token"] = token
	}
	return c.JSON(resp)
}
