package controllers

import (
	"encoding/json"

	"progresshub/backend/middleware"
	"progresshub/backend/services"
	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProjectsController struct {
	Projects *services.ProjectService
	Uploads  *Uploads
	Log      *utils.Logger
}

func NewProjectsController(projects *services.ProjectService, uploads *Uploads, log *utils.Logger) *ProjectsController {
	return &ProjectsController{Projects: projects, Uploads: uploads, Log: log}
}

// ReorderRequest lists project ids in their new display order.
type ReorderRequest struct {
	IDs []json.Number `json:"ids" swaggertype:"array,integer"`
}

func projectForm(c *fiber.Ctx) services.ProjectInput {
	in := services.ProjectInput{
		Title:       formString(c, "title"),
		Description: formString(c, "description"),
		Level:       formInt(c, "level"),
		CourseID:    formUint(c, "course_id"),
		CourseLevel: formInt(c, "course_level"),
	}
	if raw := formString(c, "tags"); raw != nil {
		in.Tags = services.ParseTags(*raw)
	}
	return in
}

// GetProjects godoc
// @Summary List projects
// @Description Ordered by sort_order, newest first within equal positions
// @Tags projects
// @Produce json
// @Success 200 {array} models.Project
// @Security ApiKeyAuth
// @Router /projects [get]
func (pc *ProjectsController) GetProjects(c *fiber.Ctx) error {
	projects, err := pc.Projects.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(projects)
}

// CreateProject godoc
// @Summary Create a project
// @Tags projects
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param tags formData string false "JSON array of tags"
// @Param image formData file false "Cover image"
// @Success 200 {object} models.Project
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /projects [post]
func (pc *ProjectsController) CreateProject(c *fiber.Ctx) error {
	input := projectForm(c)
	if input.Title == nil {
		return utils.ValidationError(c, map[string]string{"title": "is required"})
	}

	image, err := pc.Uploads.save(c, "image", true)
	if err != nil {
		return respondError(c, pc.Log, err)
	}

	project, err := pc.Projects.Create(c.UserContext(), middleware.UserID(c), input, image)
	if err != nil {
		pc.Uploads.discard(image)
		return respondError(c, pc.Log, err)
	}
	return c.JSON(project)
}

// UpdateProject godoc
// @Summary Update a project
// @Description Only provided, non-empty fields change. A new image replaces the old one.
// @Tags projects
// @Accept mpfd
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /projects/{id} [put]
func (pc *ProjectsController) UpdateProject(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return utils.NotFound(c, "Not found")
	}

	image, err := pc.Uploads.save(c, "image", true)
	if err != nil {
		return respondError(c, pc.Log, err)
	}

	project, err := pc.Projects.Update(c.UserContext(), middleware.UserID(c), id, projectForm(c), image)
	if err != nil {
		pc.Uploads.discard(image)
		return respondError(c, pc.Log, err)
	}
	return c.JSON(project)
}

// ReorderProjects godoc
// @Summary Reorder projects
// @Tags projects
// @Accept json
// @Produce json
// @Param input body ReorderRequest true "Project ids in display order"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /projects/reorder [post]
func (pc *ProjectsController) ReorderProjects(c *fiber.Ctx) error {
	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil || req.IDs == nil {
		return utils.BadRequest(c, "ids must be array")
	}

	ids := make([]uint, 0, len(req.IDs))
	for _, raw := range req.IDs {
		n := numberInt(&raw)
		if n == nil || *n <= 0 {
			continue
		}
		ids = append(ids, uint(*n))
	}

	if err := pc.Projects.Reorder(c.UserContext(), middleware.UserID(c), ids); err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c)
}

// DeleteProject godoc
// @Summary Delete a project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /projects/{id} [delete]
func (pc *ProjectsController) DeleteProject(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return utils.Success(c)
	}
	if err := pc.Projects.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c)
}
