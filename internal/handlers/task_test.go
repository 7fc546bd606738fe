package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/repository"
	"github.com/taskforge/task-assignment-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// envelope mirrors the response shape with raw data for per-test decoding
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(&models.User{}, &models.Task{})
	suite.Require().NoError(err)

	assignments := services.NewAssignmentService(suite.db)
	taskService := services.NewTaskService(repository.NewTaskRepository(suite.db), assignments)
	userService := services.NewUserService(repository.NewUserRepository(suite.db), assignments)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	suite.router = gin.New()
	RegisterRoutes(suite.router, NewTaskHandler(taskService), NewUserHandler(userService))
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) request(method, target string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var env envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func (suite *TaskHandlerTestSuite) createTestUser(name, email string) *models.User {
	user := &models.User{Name: name, Email: email}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(name, assignedUser string, completed bool) *models.Task {
	body := map[string]interface{}{
		"name":         name,
		"deadline":     time.Now().Add(24 * time.Hour).UnixMilli(),
		"completed":    completed,
		"assignedUser": assignedUser,
	}
	w, env := suite.request("POST", "/api/tasks", body)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var task models.Task
	suite.Require().NoError(json.Unmarshal(env.Data, &task))
	return &task
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	w, env := suite.request("POST", "/api/tasks", map[string]interface{}{
		"name":        "Write report",
		"description": "quarterly numbers",
		"deadline":    time.Now().Add(24 * time.Hour).UnixMilli(),
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	assert.Equal(suite.T(), "created", env.Message)

	var task models.Task
	suite.Require().NoError(json.Unmarshal(env.Data, &task))
	assert.NotEmpty(suite.T(), task.ID)
	assert.Equal(suite.T(), "Write report", task.Name)
	assert.Equal(suite.T(), models.UnassignedName, task.AssignedUserName)
	assert.False(suite.T(), task.Completed)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MissingFields() {
	w, env := suite.request("POST", "/api/tasks", map[string]interface{}{
		"name": "No deadline",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "name and deadline are required", env.Message)
	assert.Equal(suite.T(), "null", string(env.Data))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownAssignee() {
	w, env := suite.request("POST", "/api/tasks", map[string]interface{}{
		"name":         "Orphan",
		"deadline":     time.Now().Add(24 * time.Hour).UnixMilli(),
		"assignedUser": "00000000-0000-0000-0000-000000000000",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "assignedUser does not exist", env.Message)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_AssignedAppearsPending() {
	user := suite.createTestUser("Alice", "alice@example.com")
	task := suite.createTestTask("Assigned", user.ID, false)

	assert.Equal(suite.T(), "Alice", task.AssignedUserName)

	var reloaded models.User
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(suite.T(), models.StringList{task.ID}, reloaded.PendingTasks)
}

func (suite *TaskHandlerTestSuite) TestListTasks_FilterAndLimit() {
	suite.createTestTask("One", "", false)
	suite.createTestTask("Two", "", false)
	suite.createTestTask("Three", "", true)

	where := url.QueryEscape(`{"completed":false}`)
	w, env := suite.request("GET", "/api/tasks?where="+where+"&limit=1", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "OK", env.Message)

	var tasks []models.Task
	suite.Require().NoError(json.Unmarshal(env.Data, &tasks))
	assert.Len(suite.T(), tasks, 1)
	assert.False(suite.T(), tasks[0].Completed)
}

func (suite *TaskHandlerTestSuite) TestListTasks_CountIgnoresPagination() {
	suite.createTestTask("One", "", true)
	suite.createTestTask("Two", "", true)
	suite.createTestTask("Three", "", false)

	where := url.QueryEscape(`{"completed":true}`)
	w, env := suite.request("GET", "/api/tasks?where="+where+"&count=true&limit=1&skip=5", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "2", string(env.Data))
}

func (suite *TaskHandlerTestSuite) TestListTasks_MalformedWhere() {
	w, _ := suite.request("GET", "/api/tasks?where="+url.QueryEscape(`{"completed"`), nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	task := suite.createTestTask("Readable", "", false)

	w, env := suite.request("GET", "/api/tasks/"+task.ID, nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var fetched models.Task
	suite.Require().NoError(json.Unmarshal(env.Data, &fetched))
	assert.Equal(suite.T(), task.ID, fetched.ID)
}

func (suite *TaskHandlerTestSuite) TestGetTask_Projection() {
	task := suite.createTestTask("Projected", "", false)

	sel := url.QueryEscape(`["id","name"]`)
	w, env := suite.request("GET", fmt.Sprintf("/api/tasks/%s?select=%s", task.ID, sel), nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var fetched models.Task
	suite.Require().NoError(json.Unmarshal(env.Data, &fetched))
	assert.Equal(suite.T(), "Projected", fetched.Name)
	assert.Empty(suite.T(), fetched.Description)
	assert.True(suite.T(), fetched.Deadline.IsZero())
}

func (suite *TaskHandlerTestSuite) TestGetTask_MalformedID() {
	w, env := suite.request("GET", "/api/tasks/not-a-uuid", nil)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "task not found", env.Message)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	w, _ := suite.request("GET", "/api/tasks/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ReassignMovesPending() {
	alice := suite.createTestUser("Alice", "alice@example.com")
	bob := suite.createTestUser("Bob", "bob@example.com")
	task := suite.createTestTask("Handover", alice.ID, false)

	w, env := suite.request("PUT", "/api/tasks/"+task.ID, map[string]interface{}{
		"name":         "Handover",
		"deadline":     time.Now().Add(24 * time.Hour).UnixMilli(),
		"assignedUser": bob.ID,
	})

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "updated", env.Message)

	var updated models.Task
	suite.Require().NoError(json.Unmarshal(env.Data, &updated))
	assert.Equal(suite.T(), "Bob", updated.AssignedUserName)

	var fromUser, toUser models.User
	suite.Require().NoError(suite.db.First(&fromUser, "id = ?", alice.ID).Error)
	suite.Require().NoError(suite.db.First(&toUser, "id = ?", bob.ID).Error)
	assert.Empty(suite.T(), fromUser.PendingTasks)
	assert.Equal(suite.T(), models.StringList{task.ID}, toUser.PendingTasks)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NotFound() {
	w, _ := suite.request("PUT", "/api/tasks/00000000-0000-0000-0000-000000000000", map[string]interface{}{
		"name":     "Ghost",
		"deadline": time.Now().UnixMilli(),
	})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	user := suite.createTestUser("Alice", "alice@example.com")
	task := suite.createTestTask("Removable", user.ID, false)

	w, env := suite.request("DELETE", "/api/tasks/"+task.ID, nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "deleted", env.Message)
	assert.Equal(suite.T(), "null", string(env.Data))

	var reloaded models.User
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Empty(suite.T(), reloaded.PendingTasks)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_NotFound() {
	w, _ := suite.request("DELETE", "/api/tasks/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestHealth() {
	w, env := suite.request("GET", "/api/health", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "OK", env.Message)
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
