//go:build integration

package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/api"
	"github.com/sahilchouksey/career-guidance-api/config"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"gorm.io/gorm"
)

const (
	adminEmail     = "admin@careers.test"
	adminPassword  = "admin-pass-1"
	instituteEmail = "registrar@unitech.test"
)

// setupMySQL starts a MySQL container and a bootstrapped store on it
func setupMySQL(t *testing.T) (*database.Store, func()) {
	ctx := context.Background()

	container, err := mysql.Run(ctx,
		"mysql:8.0.36",
		mysql.WithDatabase("career_guidance"),
		mysql.WithUsername("career"),
		mysql.WithPassword("secret"),
	)
	if err != nil {
		t.Fatalf("Failed to start MySQL container: %v", err)
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	target := &config.DatabaseTarget{
		Driver:   config.DriverMySQL,
		Host:     host,
		Port:     port.Port(),
		User:     "career",
		Password: "secret",
		Name:     "career_guidance",
		Source:   "testcontainers",
	}

	store := database.NewStore(target, database.Options{
		Pool:       database.PoolConfig{MaxOpenConns: 5, MaxIdleConns: 2, ConnMaxLifetime: time.Hour},
		Retries:    10,
		RetryDelay: time.Second,
		Seeds: &database.SeedConfig{
			AdminEmail:        adminEmail,
			AdminPassword:     adminPassword,
			InstituteEmail:    instituteEmail,
			InstitutePassword: "registrar-pass",
			SampleCatalog:     true,
		},
	})
	require.NoError(t, store.Start(ctx))
	require.True(t, store.Ready())

	cleanup := func() {
		store.Close()
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}
	return store, cleanup
}

type client struct {
	t   *testing.T
	app *fiber.App
}

func (c client) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	out := map[string]interface{}{}
	require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func accessToken(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data: %v", body)
	token, _ := data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestCareerGuidanceAgainstMySQL(t *testing.T) {
	store, cleanup := setupMySQL(t)
	defer cleanup()

	ctx := context.Background()
	db := store.DB()

	app := api.NewAPIServer(":0").GetEngine()
	SetupRoutes(app, Dependencies{Config: testConfig(), Store: store})
	c := client{t: t, app: app}

	t.Run("bootstrap creates every table once", func(t *testing.T) {
		report := store.Report()
		require.NotNil(t, report)
		assert.ElementsMatch(t, model.TableNames(), report.Created)
		assert.Contains(t, report.Seeded, "admin_user")
		assert.Contains(t, report.Seeded, "sample_catalog")

		again, err := database.Bootstrap(ctx, db, &database.SeedConfig{
			AdminEmail:        adminEmail,
			AdminPassword:     adminPassword,
			InstituteEmail:    instituteEmail,
			InstitutePassword: "registrar-pass",
			SampleCatalog:     true,
		})
		require.NoError(t, err)
		assert.Empty(t, again.Created)
		assert.Empty(t, again.Seeded)
		assert.Len(t, again.Existing, len(model.TableNames()))
	})

	t.Run("health reports full schema", func(t *testing.T) {
		status, body := c.do("GET", "/api/health", "", nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "OK", body["status"])
		assert.Equal(t, "connected", body["database"])

		tables := body["tables"].(map[string]interface{})
		assert.EqualValues(t, len(model.TableNames()), tables["expected"])
		assert.EqualValues(t, len(model.TableNames()), tables["present"])
	})

	var studentToken string
	t.Run("duplicate email is rejected", func(t *testing.T) {
		payload := fiber.Map{"name": "Asha Rao", "email": "asha@student.test", "password": "secret12"}

		status, body := c.do("POST", "/api/auth/register", "", payload)
		require.Equal(t, fiber.StatusCreated, status, body)
		studentToken = accessToken(t, body)

		status, body = c.do("POST", "/api/auth/register", "", payload)
		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, "User with this email already exists", body["error"].(map[string]interface{})["message"])

		status, _ = c.do("POST", "/api/auth/register", "", fiber.Map{
			"name": "Eve", "email": "eve@student.test", "password": "secret12", "role": "admin",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	var course model.Course
	require.NoError(t, db.Preload("Faculty").Where("code = ?", "CS101").First(&course).Error)

	t.Run("duplicate application without period is rejected", func(t *testing.T) {
		require.NotEmpty(t, studentToken)
		payload := fiber.Map{"course_id": course.ID, "preferred_major": "Systems"}

		status, body := c.do("POST", "/api/applications/apply", studentToken, payload)
		require.Equal(t, fiber.StatusCreated, status, body)

		status, _ = c.do("POST", "/api/applications/apply", studentToken, payload)
		assert.Equal(t, fiber.StatusConflict, status)

		var count int64
		db.Model(&model.Application{}).Where("course_id = ?", course.ID).Count(&count)
		assert.EqualValues(t, 1, count)

		var summary model.StudentInstituteApplication
		require.NoError(t, db.Where("institute_id = ?", course.Faculty.InstituteID).First(&summary).Error)
		assert.Equal(t, 1, summary.ApplicationCount)

		status, _ = c.do("POST", "/api/applications/apply", studentToken, fiber.Map{"course_id": 999999})
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("duplicate application within a period is rejected", func(t *testing.T) {
		require.NotEmpty(t, studentToken)
		today := time.Now().UTC().Truncate(24 * time.Hour)
		period := model.AdmissionPeriod{
			InstituteID: course.Faculty.InstituteID,
			Name:        "Autumn intake",
			StartDate:   today.AddDate(0, 0, -1),
			EndDate:     today.AddDate(0, 1, 0),
			Status:      model.PeriodActive,
		}
		require.NoError(t, db.Create(&period).Error)

		payload := fiber.Map{"course_id": course.ID, "admission_period_id": period.ID}
		status, body := c.do("POST", "/api/applications/apply", studentToken, payload)
		require.Equal(t, fiber.StatusCreated, status, body)

		status, _ = c.do("POST", "/api/applications/apply", studentToken, payload)
		assert.Equal(t, fiber.StatusConflict, status)

		var count int64
		db.Model(&model.Application{}).
			Where("course_id = ? AND admission_period_id = ?", course.ID, period.ID).
			Count(&count)
		assert.EqualValues(t, 1, count)

		require.NoError(t, db.First(&period, period.ID).Error)
		assert.Equal(t, 1, period.TotalApplications)

		// the unique index backs the count check
		var existing model.Application
		require.NoError(t, db.Where("admission_period_id = ?", period.ID).First(&existing).Error)
		existing.ID = 0
		assert.ErrorIs(t, db.Create(&existing).Error, gorm.ErrDuplicatedKey)
	})

	t.Run("orders", func(t *testing.T) {
		order := fiber.Map{"order_id": "ORD-1001", "customer_name": "Lena", "product": "Sourdough"}

		status, body := c.do("POST", "/api/orders", "", order)
		require.Equal(t, fiber.StatusCreated, status, body)
		data := body["data"].(map[string]interface{})
		assert.EqualValues(t, 1, data["quantity"])
		assert.Equal(t, model.OrderStatusPending, data["status"])

		status, body = c.do("POST", "/api/orders", "", order)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Order ID already exists", body["error"].(map[string]interface{})["message"])

		status, _ = c.do("PUT", "/api/orders/ORD-1001", "", fiber.Map{"status": "Baking"})
		assert.Equal(t, fiber.StatusOK, status)
		status, _ = c.do("PUT", "/api/orders/ORD-1001", "", fiber.Map{"status": "Baking"})
		assert.Equal(t, fiber.StatusOK, status, "unchanged row still matches")

		status, _ = c.do("PUT", "/api/orders/NOPE", "", fiber.Map{"status": "Baking"})
		assert.Equal(t, fiber.StatusNotFound, status)

		status, _ = c.do("DELETE", "/api/orders/ORD-1001", "", nil)
		assert.Equal(t, fiber.StatusOK, status)
		status, _ = c.do("DELETE", "/api/orders/ORD-1001", "", nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("deleting an institute cascades", func(t *testing.T) {
		status, body := c.do("POST", "/api/auth/login", "", fiber.Map{"email": adminEmail, "password": adminPassword})
		require.Equal(t, fiber.StatusOK, status, body)
		adminToken := accessToken(t, body)

		instituteID := course.Faculty.InstituteID
		status, body = c.do("DELETE", fmt.Sprintf("/api/admin/institutes/%d", instituteID), adminToken, nil)
		require.Equal(t, fiber.StatusOK, status, body)

		var faculties, courses, applications, owners int64
		db.Model(&model.Faculty{}).Where("institute_id = ?", instituteID).Count(&faculties)
		db.Model(&model.Course{}).Where("id = ?", course.ID).Count(&courses)
		db.Model(&model.Application{}).Where("institute_id = ?", instituteID).Count(&applications)
		db.Model(&model.User{}).Where("email = ?", instituteEmail).Count(&owners)
		assert.Zero(t, faculties)
		assert.Zero(t, courses)
		assert.Zero(t, applications)
		assert.Zero(t, owners)

		// audit rows are written after the response
		assert.Eventually(t, func() bool {
			var audits int64
			db.Model(&model.AdminAuditLog{}).Where("action = ?", "institute_delete").Count(&audits)
			return audits == 1
		}, 5*time.Second, 100*time.Millisecond)

		status, _ = c.do("DELETE", fmt.Sprintf("/api/admin/institutes/%d", instituteID), adminToken, nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})
}
