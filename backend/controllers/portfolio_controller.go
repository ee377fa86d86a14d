package controllers

import (
	"progresshub/backend/config"
	"progresshub/backend/middleware"
	"progresshub/backend/services"
	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type PortfolioController struct {
	Portfolio *services.PortfolioService
	Cfg       *config.Config
	Log       *utils.Logger
}

func NewPortfolioController(portfolio *services.PortfolioService, cfg *config.Config, log *utils.Logger) *PortfolioController {
	return &PortfolioController{Portfolio: portfolio, Cfg: cfg, Log: log}
}

// Export godoc
// @Summary Export portfolio
// @Description Profile, courses and projects of the caller
// @Tags portfolio
// @Produce json
// @Success 200 {object} models.Portfolio
// @Security ApiKeyAuth
// @Router /export [get]
func (pc *PortfolioController) Export(c *fiber.Ctx) error {
	portfolio, err := pc.Portfolio.Build(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(portfolio)
}

// ShareToken godoc
// @Summary Issue a share token
// @Description The token opens the public portfolio view and nothing else
// @Tags portfolio
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /portfolio/share-token [get]
func (pc *PortfolioController) ShareToken(c *fiber.Ctx) error {
	token, err := pc.Portfolio.ShareToken(middleware.UserID(c), pc.Cfg.JWTSecret, pc.Cfg.ShareTokenTTL)
	if err != nil {
		pc.Log.Error("share token failed", "error", err)
		return utils.InternalServerError(c, "Failed to generate token")
	}
	return c.JSON(fiber.Map{"token": token})
}

// PublicPortfolio godoc
// @Summary Public portfolio
// @Description Read-only portfolio view for the holder of a share token
// @Tags portfolio
// @Produce json
// @Param token query string true "Share token"
// @Success 200 {object} models.Portfolio
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /public/portfolio [get]
func (pc *PortfolioController) PublicPortfolio(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return utils.BadRequest(c, "token required")
	}

	portfolio, err := pc.Portfolio.PublicByToken(c.UserContext(), token, pc.Cfg.JWTSecret)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(portfolio)
}
