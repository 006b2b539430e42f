package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/models"
)

// stubUserRepo serves a fixed set of users.
type stubUserRepo struct {
	users map[string]*models.User
}

func (s *stubUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error { return nil }

func (s *stubUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return false, nil
}

func testUser(role models.UserRole) *models.User {
	return &models.User{
		ID:    uuid.NewString(),
		Name:  "Alex Chen",
		Email: "alex@example.com",
		Role:  role,
	}
}

func authRequest(t *testing.T, m *JWTAuthMiddleware, user *models.User) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if user != nil {
		token, err := m.IssueToken(user)
		if err != nil {
			t.Fatalf("IssueToken failed: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	}
	return req
}

func protectedRouter(m *JWTAuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{m.AuthMiddleware()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	router.GET("/protected", chain...)
	return router
}

func TestJWTAuthMiddleware(t *testing.T) {
	user := testUser(models.RoleStudent)
	repo := &stubUserRepo{users: map[string]*models.User{user.ID: user}}
	m := NewJWTAuthMiddleware("test-secret", false, repo)

	t.Run("valid session", func(t *testing.T) {
		w := httptest.NewRecorder()
		protectedRouter(m).ServeHTTP(w, authRequest(t, m, user))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		protectedRouter(m).ServeHTTP(w, authRequest(t, m, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "not.a.token"})
		w := httptest.NewRecorder()
		protectedRouter(m).ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewJWTAuthMiddleware("other-secret", false, repo)
		w := httptest.NewRecorder()
		protectedRouter(m).ServeHTTP(w, authRequest(t, other, user))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("deleted user rejected", func(t *testing.T) {
		ghost := testUser(models.RoleStudent)
		w := httptest.NewRecorder()
		protectedRouter(m).ServeHTTP(w, authRequest(t, m, ghost))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for deleted user, got %d", w.Code)
		}
	})
}

func TestRequireRoleMiddleware(t *testing.T) {
	student := testUser(models.RoleStudent)
	instructor := testUser(models.RoleInstructor)
	admin := testUser(models.RoleAdmin)
	repo := &stubUserRepo{users: map[string]*models.User{
		student.ID:    student,
		instructor.ID: instructor,
		admin.ID:      admin,
	}}
	m := NewJWTAuthMiddleware("test-secret", false, repo)
	router := protectedRouter(m, m.RequireRoleMiddleware(models.RoleInstructor))

	tests := []struct {
		name string
		user *models.User
		want int
	}{
		{"student denied", student, http.StatusForbidden},
		{"instructor allowed", instructor, http.StatusOK},
		{"admin passes any gate", admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, authRequest(t, m, tt.user))
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
