package controllers

import (
	"encoding/json"

	"progresshub/backend/middleware"
	"progresshub/backend/services"
	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Courses *services.CourseService
	Log     *utils.Logger
}

func NewCoursesController(courses *services.CourseService, log *utils.Logger) *CoursesController {
	return &CoursesController{Courses: courses, Log: log}
}

// CourseRequest accepts numbers or numeric strings for the counters.
type CourseRequest struct {
	Title        *string      `json:"title" example:"Robotics"`
	TotalLevels  *json.Number `json:"total_levels" swaggertype:"integer" example:"6"`
	LecturesDone *json.Number `json:"lectures_done" swaggertype:"integer" example:"0"`
}

func (r CourseRequest) input() services.CourseInput {
	return services.CourseInput{
		Title:        r.Title,
		TotalLevels:  numberInt(r.TotalLevels),
		LecturesDone: numberInt(r.LecturesDone),
	}
}

// GetCourses godoc
// @Summary List courses
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Security ApiKeyAuth
// @Router /courses [get]
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	courses, err := cc.Courses.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(courses)
}

// GetCourse godoc
// @Summary Get one course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return utils.NotFound(c, "Not found")
	}
	course, err := cc.Courses.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(course)
}

// CreateCourse godoc
// @Summary Create a course
// @Description Level and progress are derived from total_levels and lectures_done
// @Tags courses
// @Accept json
// @Produce json
// @Param input body CourseRequest true "Course"
// @Success 200 {object} models.Course
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if req.Title == nil || *req.Title == "" {
		return utils.ValidationError(c, map[string]string{"title": "is required"})
	}

	course, err := cc.Courses.Create(c.UserContext(), middleware.UserID(c), req.input())
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Description Absent fields keep their stored values. Returns the course and any achievements earned by this update.
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body CourseRequest true "Changed fields"
// @Success 200 {object} services.CourseUpdateResult
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return utils.NotFound(c, "Not found")
	}
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	result, err := cc.Courses.Update(c.UserContext(), middleware.UserID(c), id, req.input())
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(result)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id} [delete]
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return utils.Success(c)
	}
	if err := cc.Courses.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Success(c)
}
