package controllers

import (
	"progresshub/backend/middleware"
	"progresshub/backend/services"
	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type ProfileController struct {
	Profiles *services.ProfileService
	Uploads  *Uploads
	Log      *utils.Logger
}

func NewProfileController(profiles *services.ProfileService, uploads *Uploads, log *utils.Logger) *ProfileController {
	return &ProfileController{Profiles: profiles, Uploads: uploads, Log: log}
}

// GetProfile godoc
// @Summary Get student profile
// @Description Returns the caller's profile, or an empty object before the first save
// @Tags student
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /student [get]
func (pc *ProfileController) GetProfile(c *fiber.Ctx) error {
	profile, err := pc.Profiles.Get(c.UserContext(), middleware.UserID(c))
	if errors.Is(err, services.ErrNotFound) {
		return c.JSON(fiber.Map{})
	}
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(profile)
}

// SaveProfile godoc
// @Summary Create or update student profile
// @Description Multipart form. Mascot and avatar keep their stored values when omitted.
// @Tags student
// @Accept mpfd
// @Produce json
// @Param name formData string false "Display name"
// @Param age formData int false "Age"
// @Param mascot formData string false "Mascot"
// @Param group_code formData string false "Class group code"
// @Param avatar formData file false "Avatar image"
// @Success 200 {object} models.Profile
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /student [post]
func (pc *ProfileController) SaveProfile(c *fiber.Ctx) error {
	avatar, err := pc.Uploads.save(c, "avatar", true)
	if err != nil {
		return respondError(c, pc.Log, err)
	}

	input := services.ProfileInput{
		Name:      c.FormValue("name"),
		Age:       formInt(c, "age"),
		Bio:       c.FormValue("bio"),
		Github:    c.FormValue("github"),
		Facebook:  c.FormValue("facebook"),
		Linkedin:  c.FormValue("linkedin"),
		Mascot:    formString(c, "mascot"),
		GroupCode: deref(formString(c, "group_code")),
	}

	profile, err := pc.Profiles.Save(c.UserContext(), middleware.UserID(c), input, avatar)
	if err != nil {
		pc.Uploads.discard(avatar)
		return respondError(c, pc.Log, err)
	}
	return c.JSON(profile)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
