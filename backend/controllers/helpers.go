package controllers

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"progresshub/backend/services"
	"progresshub/backend/storage"
	"progresshub/backend/utils"
)

// Uploads saves multipart files into the file store and disposes of them when the
// request they belong to fails.
type Uploads struct {
	Files   storage.FileStore
	Cleaner *storage.Cleaner
}

// save stores the file under field, returning "" when the request carries none.
func (u *Uploads) save(c *fiber.Ctx, field string, imageOnly bool) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	if imageOnly {
		if err := storage.RequireImage(fh); err != nil {
			return "", err
		}
	}
	ref, err := u.Files.Save(fh)
	if err != nil {
		return "", errors.Wrapf(err, "save %s", field)
	}
	return ref, nil
}

func (u *Uploads) discard(ref string) {
	u.Cleaner.Schedule(ref)
}

func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func formString(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}

func formInt(c *fiber.Ctx, key string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(c.FormValue(key)))
	if err != nil {
		return nil
	}
	return &n
}

func formUint(c *fiber.Ctx, key string) *uint {
	n, err := strconv.ParseUint(strings.TrimSpace(c.FormValue(key)), 10, 64)
	if err != nil || n == 0 {
		return nil
	}
	id := uint(n)
	return &id
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// numberInt converts a JSON number (or numeric string) to an int, truncating fractions
// and saturating at the int range.
func numberInt(n *json.Number) *int {
	if n == nil {
		return nil
	}
	f, err := n.Float64()
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	var v int
	switch {
	case math.IsNaN(f):
		return nil
	case f >= math.MaxInt:
		v = math.MaxInt
	case f <= math.MinInt:
		v = math.MinInt
	default:
		v = int(f)
	}
	return &v
}

// respondError maps service errors onto HTTP replies; anything unrecognised is logged and hidden.
func respondError(c *fiber.Ctx, log *utils.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, "Not found")
	case errors.Is(err, services.ErrEmailTaken):
		return utils.BadRequest(c, "Email already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, services.ErrInvalidShareToken):
		return utils.Unauthorized(c, "invalid token")
	case errors.Is(err, services.ErrGroupExists):
		return utils.BadRequest(c, "Group already added")
	case errors.Is(err, storage.ErrNotImage):
		return utils.BadRequest(c, "Only image uploads are allowed")
	}
	log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return utils.InternalServerError(c, "Internal Server Error")
}
