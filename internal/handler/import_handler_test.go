package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nptel-tracker-api/internal/dto"
	"github.com/noah-isme/nptel-tracker-api/internal/models"
)

func buildUploadRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer test-token")
	return req
}

func TestImportHandlerBulk(t *testing.T) {
	app, db := setupApp(t)

	csv := "rollNumber,name,branch,year,courseId,courseName\n" +
		"21CS001,Asha,CS,3,noc25-cs52,Compiler Design\n" +
		"21CS002,Bala,CS,3,noc25-cs52,Compiler Design\n"
	req := buildUploadRequest(t, "/api/students/bulk", "students.csv", []byte(csv))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary dto.ImportSummaryResponse
	decodeBody(t, resp, &summary)
	require.Equal(t, 2, summary.Successful)
	require.Equal(t, 0, summary.Failed)

	var count int64
	require.NoError(t, db.Model(&models.Student{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestImportHandlerUpdateWeekScore(t *testing.T) {
	app, db := setupApp(t)
	seedHandlerStudents(t, db)

	csv := "rollNumber,week,score\n21CS001,Week 3,70\n"
	req := buildUploadRequest(t, "/api/students/updateweekscore", "cs52.csv", []byte(csv))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary dto.ImportSummaryResponse
	decodeBody(t, resp, &summary)
	require.Equal(t, "noc25-cs52", summary.CourseID)
	require.Equal(t, 1, summary.Successful)

	var count int64
	require.NoError(t, db.Model(&models.WeeklyResult{}).Where("week = ?", "Week 3").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestImportHandlerRequiresFile(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("POST", "/api/students/bulk", nil)
	req.Header.Set("Authorization", "Bearer test-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestImportHandlerRejectsBadWeekScoreFileName(t *testing.T) {
	app, _ := setupApp(t)

	csv := "rollNumber,week,score\n21CS001,Week 1,70\n"
	req := buildUploadRequest(t, "/api/students/updateweekscore", "52.csv", []byte(csv))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestImportHandlerRecentImports(t *testing.T) {
	app, _ := setupApp(t)

	csv := "rollNumber,name\n21CS001,Asha\n21CS002,\n"
	resp, err := app.Test(buildUploadRequest(t, "/api/students/bulk", "students.csv", []byte(csv)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest("GET", "/api/students/imports", nil)
	req.Header.Set("Authorization", "Bearer test-token")

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var jobs []models.ImportJob
	decodeBody(t, resp, &jobs)
	require.Len(t, jobs, 1)
	require.Equal(t, models.ImportKindStudents, jobs[0].Kind)
	require.Equal(t, "students.csv", jobs[0].FileName)
	require.Equal(t, 1, jobs[0].Successful)
	require.Equal(t, 1, jobs[0].Failed)
}

func TestImportHandlerRecentImportsRequiresAuth(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/students/imports", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestImportHandlerGuardsWriteRoutesOnly(t *testing.T) {
	app, db := setupApp(t)
	seedHandlerStudents(t, db)

	// Missing token on a write route.
	csv := "rollNumber,name\n21CS009,Chitra\n"
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "students.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/students/bulk", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// The read routes under the same prefix stay public.
	resp, err = app.Test(httptest.NewRequest("GET", "/api/students", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
