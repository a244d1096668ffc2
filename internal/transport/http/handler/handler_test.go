package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vortexkeep/internal/app"
	"vortexkeep/internal/model"
	"vortexkeep/internal/transport/http/middleware"
)

const testSecret = "handler-test-secret"

type fakeUserStore struct {
	users  []*model.User
	nextID uint
}

func (s *fakeUserStore) Create(user *model.User) error {
	if s.nextID == 0 {
		s.nextID = 1
	}
	user.ID = s.nextID
	s.nextID++
	copied := *user
	s.users = append(s.users, &copied)
	return nil
}

func (s *fakeUserStore) GetByUsername(username string) (*model.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByID(id uint) (*model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeTaskStore struct {
	tasks  []*model.Task
	nextID uint
	clock  time.Time
}

func (s *fakeTaskStore) Create(task *model.Task) error {
	if s.nextID == 0 {
		s.nextID = 1
		s.clock = time.Unix(1_000_000, 0)
	}
	task.ID = s.nextID
	s.nextID++
	s.clock = s.clock.Add(time.Second)
	task.CreatedAt = s.clock
	copied := *task
	s.tasks = append(s.tasks, &copied)
	return nil
}

func (s *fakeTaskStore) ListByUserID(userID uint) ([]model.Task, error) {
	var out []model.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *fakeTaskStore) GetByIDAndUserID(taskID, userID uint) (*model.Task, error) {
	for _, t := range s.tasks {
		if t.ID == taskID && t.UserID == userID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeTaskStore) Update(taskID, userID uint, patch model.TaskPatch) (int64, error) {
	for _, t := range s.tasks {
		if t.ID == taskID && t.UserID == userID {
			if patch.Title != nil {
				t.Title = *patch.Title
			}
			if patch.Description != nil {
				t.Description = *patch.Description
			}
			if patch.Completed != nil {
				t.Completed = *patch.Completed
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (s *fakeTaskStore) Delete(taskID, userID uint) (int64, error) {
	for i, t := range s.tasks {
		if t.ID == taskID && t.UserID == userID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// newTestRouter wires real services and real tokens over in-memory stores,
// with the same route table the server registers.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	authService := app.NewAuthService(&fakeUserStore{}, testSecret, time.Hour)
	taskService := app.NewTaskService(&fakeTaskStore{}, nil, nil)

	authHandler := NewAuthHandler(authService)
	taskHandler := NewTaskHandler(taskService)

	router := gin.New()
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)

	authRequired := middleware.AuthJWT(testSecret)

	taskGroup := api.Group("/tasks")
	taskGroup.Use(authRequired)
	taskGroup.GET("", taskHandler.List)
	taskGroup.POST("", taskHandler.Create)
	taskGroup.PUT("/:id", taskHandler.Update)
	taskGroup.DELETE("/:id", taskHandler.Delete)

	protectedGroup := api.Group("/protected")
	protectedGroup.Use(authRequired)
	protectedGroup.GET("/profile", authHandler.Profile)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %s: %v", rec.Body.String(), err)
	}
}

func signupAndLogin(t *testing.T, router *gin.Engine, username, email, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed with %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &body)
	if body.Token == "" {
		t.Fatalf("signup returned no token: %s", rec.Body.String())
	}
	return body.Token
}
