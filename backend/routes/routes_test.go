package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progresshub/backend/config"
	"progresshub/backend/models"
	"progresshub/backend/services"
	"progresshub/backend/storage"
	"progresshub/backend/testutil"
	"progresshub/backend/utils"
)

type harness struct {
	app     *fiber.App
	cfg     *config.Config
	files   *storage.LocalStore
	cleaner *storage.Cleaner
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTTTL:        time.Hour,
		ShareTokenTTL: time.Hour,
		MaxUploadMB:   2,
	}
	log := testutil.Logger(t)

	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	cleaner := storage.NewCleaner(files, log)
	svc := services.New(testutil.DB(t), log, testutil.FixedClock{}, cleaner, nil)

	app := NewApp(cfg, log)
	SetupRoutes(app, Deps{Cfg: cfg, Log: log, Services: svc, Files: files, Cleaner: cleaner})
	return &harness{app: app, cfg: cfg, files: files, cleaner: cleaner}
}

type form struct {
	fields    map[string]string
	fileField string
	fileName  string
	content   []byte
}

func (f form) encode(t *testing.T) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range f.fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if f.fileField != "" {
		part, err := w.CreateFormFile(f.fileField, f.fileName)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func (h *harness) do(t *testing.T, req *http.Request, token string, out interface{}) int {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (h *harness) json(t *testing.T, method, path, token string, payload, out interface{}) int {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return h.do(t, req, token, out)
}

func (h *harness) multipart(t *testing.T, method, path, token string, f form, out interface{}) int {
	t.Helper()
	body, contentType := f.encode(t)
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	return h.do(t, req, token, out)
}

func (h *harness) register(t *testing.T, email string) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	status := h.json(t, "POST", "/api/auth/register", "", fiber.Map{"email": email, "password": "secret123"}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (h *harness) createCourse(t *testing.T, token string, payload fiber.Map) models.Course {
	t.Helper()
	var course models.Course
	require.Equal(t, http.StatusOK, h.json(t, "POST", "/api/courses", token, payload, &course))
	return course
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	var reg struct {
		Token string `json:"token"`
		User  struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
	}
	status := h.json(t, "POST", "/api/auth/register", "", fiber.Map{"email": " Mona@Example.com", "password": "pw", "name": "Mona"}, &reg)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "mona@example.com", reg.User.Email)
	assert.Equal(t, "Mona", reg.User.Name)

	var errResp utils.ErrorResponse
	status = h.json(t, "POST", "/api/auth/register", "", fiber.Map{"email": "mona@example.com", "password": "pw"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already registered", errResp.Message)

	status = h.json(t, "POST", "/api/auth/register", "", fiber.Map{"email": "nope", "password": "pw"}, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status = h.json(t, "POST", "/api/auth/login", "", fiber.Map{"email": "mona@example.com", "password": "wrong"}, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", errResp.Message)

	var login struct {
		Token string `json:"token"`
	}
	status = h.json(t, "POST", "/api/auth/login", "", fiber.Map{"email": "MONA@example.com", "password": "pw"}, &login)
	require.Equal(t, http.StatusOK, status)

	userID, typ, err := utils.ParseToken(login.Token, h.cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, userID)
	assert.Equal(t, utils.TokenTypeSession, typ)
}

func TestSeedDemo(t *testing.T) {
	h := newHarness(t)

	var first map[string]interface{}
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/auth/seed-demo", "", nil, &first))
	assert.Equal(t, services.DemoEmail, first["email"])
	assert.NotEmpty(t, first["token"])

	var second map[string]interface{}
	require.Equal(t, http.StatusOK, h.json(t, "POST", "/api/auth/seed-demo", "", nil, &second))
	assert.Equal(t, true, second["ok"])
	assert.NotContains(t, second, "token")
}

func TestProtectedRoutesNeedSessionToken(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@example.com")

	assert.Equal(t, http.StatusUnauthorized, h.json(t, "GET", "/api/courses", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, h.json(t, "GET", "/api/courses", "garbage", nil, nil))

	userID, _, err := utils.ParseToken(token, h.cfg.JWTSecret)
	require.NoError(t, err)
	share, err := utils.GenerateToken(userID, utils.TokenTypeShare, time.Hour, h.cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, h.json(t, "GET", "/api/courses", share, nil, nil))

	req := httptest.NewRequest("GET", "/api/courses", nil)
	req.Header.Set("Authorization", token)
	var courses []models.Course
	assert.Equal(t, http.StatusOK, h.do(t, req, "", &courses))
	assert.Empty(t, courses)
}

func TestCourseUpdateAwardsAndLogs(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@example.com")
	course := h.createCourse(t, token, fiber.Map{"title": "Robotics", "total_levels": 6, "lectures_done": 3})
	assert.Equal(t, 1, course.Level)
	assert.Equal(t, 13, course.Progress)

	var result struct {
		Course  models.Course                 `json:"course"`
		Awarded []services.AwardedAchievement `json:"awarded"`
	}
	path := "/api/courses/" + itoa(course.ID)
	require.Equal(t, http.StatusOK, h.json(t, "PUT", path, token, fiber.Map{"lectures_done": 9}, &result))
	assert.Equal(t, 9, result.Course.LecturesDone)
	assert.Equal(t, 3, result.Course.Level)
	assert.Equal(t, "Robotics", result.Course.Title)
	require.Len(t, result.Awarded, 2)
	assert.Equal(t, "course_"+itoa(course.ID)+"_level_2", result.Awarded[0].Key)
	assert.Equal(t, "course_"+itoa(course.ID)+"_level_3", result.Awarded[1].Key)

	require.Equal(t, http.StatusOK, h.json(t, "PUT", path, token, fiber.Map{"lectures_done": 9}, &result))
	assert.Empty(t, result.Awarded)

	require.Equal(t, http.StatusOK, h.json(t, "PUT", path, token, fiber.Map{"lectures_done": "24"}, &result))
	assert.Equal(t, 100, result.Course.Progress)
	keys := []string{}
	for _, a := range result.Awarded {
		keys = append(keys, a.Key)
	}
	assert.Contains(t, keys, "course_"+itoa(course.ID)+"_complete")

	var log []models.ProgressLogEntry
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/progress", token, nil, &log))
	require.Len(t, log, 2)
	assert.Equal(t, 6, log[0].Delta)
	assert.Equal(t, "2025-03-14", log[0].Date)
	assert.Equal(t, 15, log[1].Delta)

	var achievements []models.Achievement
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/achievements", token, nil, &achievements))
	assert.Len(t, achievements, 6)

	var overview models.ProgressOverview
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/progress/overview", token, nil, &overview))
	assert.Equal(t, 21, overview.TotalLectures)
	assert.EqualValues(t, 1, overview.CoursesCompleted)
}

func TestCoursesAreOwnerScoped(t *testing.T) {
	h := newHarness(t)
	owner := h.register(t, "a@example.com")
	other := h.register(t, "b@example.com")
	course := h.createCourse(t, owner, fiber.Map{"title": "Robotics"})
	path := "/api/courses/" + itoa(course.ID)

	assert.Equal(t, http.StatusNotFound, h.json(t, "GET", path, other, nil, nil))
	assert.Equal(t, http.StatusNotFound, h.json(t, "PUT", path, other, fiber.Map{"lectures_done": 4}, nil))
	assert.Equal(t, http.StatusOK, h.json(t, "DELETE", path, other, nil, nil))

	var got models.Course
	require.Equal(t, http.StatusOK, h.json(t, "GET", path, owner, nil, &got))
	assert.Equal(t, 0, got.LecturesDone)
	assert.Equal(t, models.DefaultTotalLevels, got.TotalLevels)

	assert.Equal(t, http.StatusUnprocessableEntity, h.json(t, "POST", "/api/courses", owner, fiber.Map{}, nil))

	require.Equal(t, http.StatusOK, h.json(t, "DELETE", path, owner, nil, nil))
	assert.Equal(t, http.StatusNotFound, h.json(t, "GET", path, owner, nil, nil))
	assert.Equal(t, http.StatusOK, h.json(t, "DELETE", path, owner, nil, nil))
}

func TestProfileUpload(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@example.com")

	var empty map[string]interface{}
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/student", token, nil, &empty))
	assert.Empty(t, empty)

	var profile models.Profile
	status := h.multipart(t, "POST", "/api/student", token, form{
		fields:    map[string]string{"name": "Mona", "age": "14", "mascot": "owl"},
		fileField: "avatar", fileName: "me.png", content: testutil.PNG,
	}, &profile)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "owl", profile.Mascot)
	require.NotNil(t, profile.Age)
	assert.Equal(t, 14, *profile.Age)
	oldAvatar := filepath.Join(h.files.Dir(), filepath.Base(profile.Avatar))
	_, err := os.Stat(oldAvatar)
	require.NoError(t, err)

	staticReq := httptest.NewRequest("GET", profile.Avatar, nil)
	assert.Equal(t, http.StatusOK, h.do(t, staticReq, "", nil))

	status = h.multipart(t, "POST", "/api/student", token, form{
		fields: map[string]string{"name": "Mona S."},
	}, &profile)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "owl", profile.Mascot)
	assert.Equal(t, "Mona S.", profile.Name)

	status = h.multipart(t, "POST", "/api/student", token, form{
		fields:    map[string]string{"name": "Mona S."},
		fileField: "avatar", fileName: "fake.png", content: []byte("plain text, not an image"),
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = h.multipart(t, "POST", "/api/student", token, form{
		fields:    map[string]string{"name": "Mona S."},
		fileField: "avatar", fileName: "new.png", content: testutil.PNG,
	}, &profile)
	require.Equal(t, http.StatusOK, status)
	h.cleaner.Wait()
	_, err = os.Stat(oldAvatar)
	assert.True(t, os.IsNotExist(err))
}

func TestProjectsLifecycle(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@example.com")

	var first models.Project
	status := h.multipart(t, "POST", "/api/projects", token, form{
		fields:    map[string]string{"title": "Robot arm", "tags": `[" servo ", "", "arduino"]`, "level": "2"},
		fileField: "image", fileName: "arm.png", content: testutil.PNG,
	}, &first)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, first.Tags)
	assert.Equal(t, `["servo","arduino"]`, *first.Tags)
	assert.Equal(t, 0, first.SortOrder)
	image := filepath.Join(h.files.Dir(), filepath.Base(first.Image))

	var second models.Project
	status = h.multipart(t, "POST", "/api/projects", token, form{fields: map[string]string{"title": "Website"}}, &second)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, second.SortOrder)

	assert.Equal(t, http.StatusUnprocessableEntity,
		h.multipart(t, "POST", "/api/projects", token, form{fields: map[string]string{"description": "no title"}}, nil))

	var updated models.Project
	status = h.multipart(t, "PUT", "/api/projects/"+itoa(first.ID), token, form{
		fields: map[string]string{"description": "Now with a gripper", "title": ""},
	}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Robot arm", updated.Title)
	assert.Equal(t, "Now with a gripper", updated.Description)
	assert.Equal(t, first.Image, updated.Image)

	assert.Equal(t, http.StatusBadRequest, h.json(t, "POST", "/api/projects/reorder", token, fiber.Map{"ids": "nope"}, nil))
	assert.Equal(t, http.StatusBadRequest, h.json(t, "POST", "/api/projects/reorder", token, fiber.Map{}, nil))
	require.Equal(t, http.StatusOK, h.json(t, "POST", "/api/projects/reorder", token, fiber.Map{"ids": []uint{second.ID, first.ID}}, nil))

	var list []models.Project
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/projects", token, nil, &list))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	require.Equal(t, http.StatusOK, h.json(t, "DELETE", "/api/projects/"+itoa(first.ID), token, nil, nil))
	h.cleaner.Wait()
	_, err := os.Stat(image)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, http.StatusOK, h.json(t, "DELETE", "/api/projects/"+itoa(first.ID), token, nil, nil))
}

func TestSharedPortfolio(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@example.com")
	h.createCourse(t, token, fiber.Map{"title": "Robotics"})

	var exported models.Portfolio
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/export", token, nil, &exported))
	assert.Len(t, exported.Courses, 1)
	assert.Empty(t, exported.Projects)

	var share struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/portfolio/share-token", token, nil, &share))

	var public models.Portfolio
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/public/portfolio?token="+share.Token, "", nil, &public))
	require.Len(t, public.Courses, 1)
	assert.Equal(t, "Robotics", public.Courses[0].Title)

	assert.Equal(t, http.StatusBadRequest, h.json(t, "GET", "/api/public/portfolio", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, h.json(t, "GET", "/api/public/portfolio?token="+token, "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, h.json(t, "GET", "/api/public/portfolio?token=garbage", "", nil, nil))
}

func TestSubmissionsReachInstructor(t *testing.T) {
	h := newHarness(t)
	student := h.register(t, "s@example.com")
	instructor := h.register(t, "i@example.com")

	require.Equal(t, http.StatusOK, h.multipart(t, "POST", "/api/student", student, form{
		fields: map[string]string{"name": "Sam", "group_code": "G1"},
	}, nil))
	course := h.createCourse(t, student, fiber.Map{"title": "Web"})

	homework := form{
		fields:    map[string]string{"course_id": itoa(course.ID), "session_index": "1", "note": "done"},
		fileField: "file", fileName: "hw.pdf", content: []byte("%PDF-1.4"),
	}
	var created models.SubmissionView
	require.Equal(t, http.StatusOK, h.multipart(t, "POST", "/api/submissions", student, homework, &created))
	assert.Equal(t, "G1", created.GroupCode)
	assert.Equal(t, "Web", created.CourseTitle)

	noFile := form{fields: homework.fields}
	assert.Equal(t, http.StatusBadRequest, h.multipart(t, "POST", "/api/submissions", student, noFile, nil))

	badSession := form{
		fields:    map[string]string{"course_id": itoa(course.ID), "session_index": "0"},
		fileField: "file", fileName: "hw.pdf", content: []byte("x"),
	}
	assert.Equal(t, http.StatusUnprocessableEntity, h.multipart(t, "POST", "/api/submissions", student, badSession, nil))
	assert.Equal(t, http.StatusNotFound, h.multipart(t, "POST", "/api/submissions", instructor, homework, nil))

	var mine []models.SubmissionView
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/submissions", student, nil, &mine))
	require.Len(t, mine, 1)

	var group models.InstructorGroup
	require.Equal(t, http.StatusOK, h.json(t, "POST", "/api/instructor/groups", instructor, fiber.Map{"code": " G1 "}, &group))
	assert.Equal(t, "G1", group.Code)
	assert.Equal(t, http.StatusBadRequest, h.json(t, "POST", "/api/instructor/groups", instructor, fiber.Map{"code": "G1"}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, h.json(t, "POST", "/api/instructor/groups", instructor, fiber.Map{"code": "  "}, nil))

	var groups []models.GroupSummary
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/instructor/groups", instructor, nil, &groups))
	require.Len(t, groups, 1)
	assert.EqualValues(t, 1, groups[0].StudentCount)
	assert.EqualValues(t, 1, groups[0].SubmissionCount)

	var feed []models.SubmissionView
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/instructor/submissions", instructor, nil, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, "Web", feed[0].CourseTitle)

	var empty []models.SubmissionView
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/instructor/submissions", student, nil, &empty))
	assert.Empty(t, empty)

	groupPath := "/api/instructor/groups/" + itoa(group.ID)
	assert.Equal(t, http.StatusNotFound, h.json(t, "DELETE", groupPath, student, nil, nil))
	assert.Equal(t, http.StatusOK, h.json(t, "DELETE", groupPath, instructor, nil, nil))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestCourseUpdateSaturatesHugeNumbers(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@example.com")
	course := h.createCourse(t, token, fiber.Map{"title": "Robotics", "total_levels": 6, "lectures_done": 24})
	path := "/api/courses/" + itoa(course.ID)

	var result struct {
		Course models.Course `json:"course"`
	}
	require.Equal(t, http.StatusOK, h.json(t, "PUT", path, token, json.RawMessage(`{"lectures_done": 1e30}`), &result))
	assert.Equal(t, 24, result.Course.LecturesDone)
	assert.Equal(t, 100, result.Course.Progress)

	var log []models.ProgressLogEntry
	require.Equal(t, http.StatusOK, h.json(t, "GET", "/api/progress", token, nil, &log))
	assert.Empty(t, log)

	require.Equal(t, http.StatusOK, h.json(t, "PUT", path, token, json.RawMessage(`{"total_levels": 3000000000000000000}`), &result))
	assert.Equal(t, models.MaxTotalLevels, result.Course.TotalLevels)
	assert.Equal(t, 24, result.Course.LecturesDone)
	assert.GreaterOrEqual(t, result.Course.Level, 1)
}

func TestUploadsServedSafely(t *testing.T) {
	h := newHarness(t)
	student := h.register(t, "s@example.com")
	course := h.createCourse(t, student, fiber.Map{"title": "Web"})

	var created models.SubmissionView
	require.Equal(t, http.StatusOK, h.multipart(t, "POST", "/api/submissions", student, form{
		fields:    map[string]string{"course_id": itoa(course.ID), "session_index": "1"},
		fileField: "file", fileName: "page.html", content: []byte("<script>alert(1)</script>"),
	}, &created))

	resp, err := h.app.Test(httptest.NewRequest("GET", created.FilePath, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	var profile models.Profile
	require.Equal(t, http.StatusOK, h.multipart(t, "POST", "/api/student", student, form{
		fields:    map[string]string{"name": "Sam"},
		fileField: "avatar", fileName: "me.png", content: testutil.PNG,
	}, &profile))

	resp, err = h.app.Test(httptest.NewRequest("GET", profile.Avatar, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Empty(t, resp.Header.Get("Content-Disposition"))
}
