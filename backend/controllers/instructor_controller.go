package controllers

import (
	"progresshub/backend/middleware"
	"progresshub/backend/services"
	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// InstructorController serves the review side of submissions: the groups an instructor
// follows and the homework handed in by their students.
type InstructorController struct {
	Submissions *services.SubmissionService
	Log         *utils.Logger
}

func NewInstructorController(submissions *services.SubmissionService, log *utils.Logger) *InstructorController {
	return &InstructorController{Submissions: submissions, Log: log}
}

type GroupRequest struct {
	Code string `json:"code" validate:"required" example:"G3-WEB"`
}

func (ic *InstructorController) GetGroups(c *fiber.Ctx) error {
	groups, err := ic.Submissions.ListGroups(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, ic.Log, err)
	}
	return c.JSON(groups)
}

func (ic *InstructorController) AddGroup(c *fiber.Ctx) error {
	var req GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	req.Code = trimmed(req.Code)
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	group, err := ic.Submissions.AddGroup(c.UserContext(), middleware.UserID(c), req.Code)
	if err != nil {
		return respondError(c, ic.Log, err)
	}
	return c.JSON(group)
}

func (ic *InstructorController) RemoveGroup(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return utils.NotFound(c, "Not found")
	}
	if err := ic.Submissions.RemoveGroup(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, ic.Log, err)
	}
	return utils.Success(c)
}

// GetSubmissions returns homework from every student whose profile carries one of the
// caller's group codes.
func (ic *InstructorController) GetSubmissions(c *fiber.Ctx) error {
	rows, err := ic.Submissions.InstructorFeed(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, ic.Log, err)
	}
	return c.JSON(rows)
}
