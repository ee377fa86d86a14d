package controllers

import (
	"progresshub/backend/middleware"
	"progresshub/backend/services"
	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type SubmissionsController struct {
	Submissions *services.SubmissionService
	Uploads     *Uploads
	Log         *utils.Logger
}

func NewSubmissionsController(submissions *services.SubmissionService, uploads *Uploads, log *utils.Logger) *SubmissionsController {
	return &SubmissionsController{Submissions: submissions, Uploads: uploads, Log: log}
}

type SubmissionForm struct {
	CourseID     uint   `form:"course_id" json:"course_id" validate:"required"`
	SessionIndex int    `form:"session_index" json:"session_index" validate:"min=1"`
	Note         string `form:"note" json:"note"`
}

// CreateSubmission godoc
// @Summary Hand in homework
// @Description Multipart form with the homework file for one session of the caller's course
// @Tags submissions
// @Accept mpfd
// @Produce json
// @Param course_id formData int true "Course ID"
// @Param session_index formData int true "Session number, starting at 1"
// @Param note formData string false "Note for the instructor"
// @Param file formData file true "Homework file"
// @Success 200 {object} models.SubmissionView
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /submissions [post]
func (sc *SubmissionsController) CreateSubmission(c *fiber.Ctx) error {
	var form SubmissionForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse form")
	}
	if errs := utils.ValidateStruct(form); errs != nil {
		return utils.ValidationError(c, errs)
	}

	ref, err := sc.Uploads.save(c, "file", false)
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	if ref == "" {
		return utils.BadRequest(c, "file required")
	}

	view, err := sc.Submissions.Create(c.UserContext(), middleware.UserID(c), services.SubmissionInput{
		CourseID:     form.CourseID,
		SessionIndex: form.SessionIndex,
		Note:         form.Note,
	}, ref)
	if err != nil {
		sc.Uploads.discard(ref)
		return respondError(c, sc.Log, err)
	}
	return c.JSON(view)
}

// GetSubmissions godoc
// @Summary List own submissions
// @Tags submissions
// @Produce json
// @Success 200 {array} models.SubmissionView
// @Security ApiKeyAuth
// @Router /submissions [get]
func (sc *SubmissionsController) GetSubmissions(c *fiber.Ctx) error {
	rows, err := sc.Submissions.ListMine(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	return c.JSON(rows)
}
