package controllers

import (
	"progresshub/backend/middleware"
	"progresshub/backend/services"
	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Progress *services.ProgressLogger
	Awards   *services.Awarder
	Log      *utils.Logger
}

func NewProgressController(progress *services.ProgressLogger, awards *services.Awarder, log *utils.Logger) *ProgressController {
	return &ProgressController{Progress: progress, Awards: awards, Log: log}
}

// GetProgress godoc
// @Summary Get progress log
// @Description Returns every lecture delta the caller logged, oldest first
// @Tags progress
// @Produce json
// @Success 200 {array} models.ProgressLogEntry
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	entries, err := pc.Progress.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(entries)
}

// GetProgressOverview godoc
// @Summary Get progress overview
// @Description Daily and monthly lecture totals plus completed course count
// @Tags progress
// @Produce json
// @Success 200 {object} models.ProgressOverview
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/overview [get]
func (pc *ProgressController) GetProgressOverview(c *fiber.Ctx) error {
	overview, err := pc.Progress.Overview(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(overview)
}

// GetAchievements godoc
// @Summary List achievements
// @Tags progress
// @Produce json
// @Success 200 {array} models.Achievement
// @Security ApiKeyAuth
// @Router /achievements [get]
func (pc *ProgressController) GetAchievements(c *fiber.Ctx) error {
	achievements, err := pc.Awards.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(achievements)
}
