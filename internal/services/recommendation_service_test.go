package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
)

// fakeAIClient returns a canned response or error.
type fakeAIClient struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeAIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeAIClient) Model() string { return "fake-model" }

func seedCatalog(repo *fakeRepository, category string, n int) []*models.Course {
	courses := make([]*models.Course, 0, n)
	for i := 0; i < n; i++ {
		c := &models.Course{
			ID:          uuid.NewString(),
			Title:       fmt.Sprintf("%s course %d", category, i+1),
			Description: "A course long enough to look real in listings",
			Instructor:  "Pat Doe",
			Category:    category,
			Duration:    10,
			Level:       models.LevelBeginner,
			AuthorID:    uuid.NewString(),
		}
		_ = repo.Course().Create(context.Background(), nil, c)
		courses = append(courses, c)
	}
	return courses
}

func enroll(repo *fakeRepository, userID string, courses ...*models.Course) {
	for _, c := range courses {
		_ = repo.Enrollment().Create(context.Background(), nil, &models.Enrollment{
			UserID: userID, CourseID: c.ID,
		})
	}
}

func TestRecommendationService_AIPath(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("keeps model ranking, drops enrolled and unknown ids", func(t *testing.T) {
		repo := newFakeRepository()
		actor := studentIdentity()

		programming := seedCatalog(repo, "Programming", 4)
		enrolled := seedCatalog(repo, "Programming", 1)
		enroll(repo, actor.ID, enrolled[0])

		ai := &fakeAIClient{response: fmt.Sprintf(
			"```json\n[%q, %q, %q, %q]\n```",
			programming[2].ID, enrolled[0].ID, "not-a-known-id", programming[0].ID,
		)}
		svc := NewRecommendationService(repo, nil, logger, ai)

		result, err := svc.Recommend(ctx, actor)
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if result.Source != models.SourceAI {
			t.Fatalf("expected ai source, got %s", result.Source)
		}
		if len(result.Recommendations) != 2 {
			t.Fatalf("expected 2 usable recommendations, got %d", len(result.Recommendations))
		}
		if result.Recommendations[0].ID != programming[2].ID || result.Recommendations[1].ID != programming[0].ID {
			t.Fatalf("model ranking not preserved")
		}

		if len(repo.recLogs) != 1 || repo.recLogs[0].Source != models.SourceAI {
			t.Fatalf("expected one ai recommendation log, got %+v", repo.recLogs)
		}
	})

	t.Run("prompt names the user's categories", func(t *testing.T) {
		repo := newFakeRepository()
		actor := studentIdentity()

		enrolled := seedCatalog(repo, "Art", 1)
		seedCatalog(repo, "Programming", 2)
		enroll(repo, actor.ID, enrolled[0])

		ai := &fakeAIClient{response: "[]"}
		svc := NewRecommendationService(repo, nil, logger, ai)

		if _, err := svc.Recommend(ctx, actor); err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(ai.prompts) != 1 {
			t.Fatalf("expected one model call, got %d", len(ai.prompts))
		}
		prompt := ai.prompts[0]
		if !strings.Contains(prompt, "interests in: Art") {
			t.Fatalf("prompt missing interest categories: %q", prompt)
		}
	})

	t.Run("caps at five", func(t *testing.T) {
		repo := newFakeRepository()
		actor := studentIdentity()

		catalog := seedCatalog(repo, "Programming", 8)
		ids := "["
		for i, c := range catalog {
			if i > 0 {
				ids += ", "
			}
			ids += fmt.Sprintf("%q", c.ID)
		}
		ids += "]"

		svc := NewRecommendationService(repo, nil, logger, &fakeAIClient{response: ids})

		result, err := svc.Recommend(ctx, actor)
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(result.Recommendations) != 5 {
			t.Fatalf("expected 5 recommendations, got %d", len(result.Recommendations))
		}
	})
}

func TestRecommendationService_Fallback(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("nil client uses most frequent category", func(t *testing.T) {
		repo := newFakeRepository()
		actor := studentIdentity()

		programming := seedCatalog(repo, "Programming", 6)
		art := seedCatalog(repo, "Art", 2)
		enroll(repo, actor.ID, programming[0], programming[1], art[0])

		svc := NewRecommendationService(repo, nil, logger, nil)

		result, err := svc.Recommend(ctx, actor)
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if result.Source != models.SourceFallback {
			t.Fatalf("expected fallback source, got %s", result.Source)
		}
		if len(result.Recommendations) == 0 || len(result.Recommendations) > 5 {
			t.Fatalf("unexpected recommendation count %d", len(result.Recommendations))
		}
		for _, c := range result.Recommendations {
			if c.Category != "Programming" {
				t.Fatalf("fallback must stick to the top category, got %s", c.Category)
			}
			if c.ID == programming[0].ID || c.ID == programming[1].ID {
				t.Fatalf("fallback must exclude enrolled courses")
			}
		}

		if len(repo.recLogs) != 1 || repo.recLogs[0].Source != models.SourceFallback {
			t.Fatalf("expected one fallback recommendation log, got %+v", repo.recLogs)
		}
	})

	t.Run("model error degrades", func(t *testing.T) {
		repo := newFakeRepository()
		actor := studentIdentity()
		seedCatalog(repo, "Programming", 3)

		svc := NewRecommendationService(repo, nil, logger, &fakeAIClient{err: errors.New("quota exhausted")})

		result, err := svc.Recommend(ctx, actor)
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if result.Source != models.SourceFallback {
			t.Fatalf("expected fallback after model error, got %s", result.Source)
		}
	})

	t.Run("unparseable output degrades", func(t *testing.T) {
		repo := newFakeRepository()
		actor := studentIdentity()
		seedCatalog(repo, "Programming", 3)

		svc := NewRecommendationService(repo, nil, logger, &fakeAIClient{response: "I recommend studying harder."})

		result, err := svc.Recommend(ctx, actor)
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if result.Source != models.SourceFallback {
			t.Fatalf("expected fallback for unparseable output, got %s", result.Source)
		}
	})

	t.Run("no history recommends from whole catalog", func(t *testing.T) {
		repo := newFakeRepository()
		seedCatalog(repo, "Programming", 3)
		seedCatalog(repo, "Art", 3)

		svc := NewRecommendationService(repo, nil, logger, nil)

		result, err := svc.Recommend(ctx, studentIdentity())
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(result.Recommendations) != 5 {
			t.Fatalf("expected 5 recommendations, got %d", len(result.Recommendations))
		}
	})

	t.Run("empty catalog yields empty result", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewRecommendationService(repo, nil, logger, nil)

		result, err := svc.Recommend(ctx, studentIdentity())
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(result.Recommendations) != 0 {
			t.Fatalf("expected empty recommendations, got %d", len(result.Recommendations))
		}
	})
}

// unorderedCourseRepo reverses GetByIDs results to mimic a store that does
// not honor the requested id order.
type unorderedCourseRepo struct {
	repositories.CourseRepository
}

func (u *unorderedCourseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Course, error) {
	courses, err := u.CourseRepository.GetByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(courses)-1; i < j; i, j = i+1, j-1 {
		courses[i], courses[j] = courses[j], courses[i]
	}
	return courses, nil
}

type unorderedRepo struct {
	*fakeRepository
}

func (r *unorderedRepo) Course() repositories.CourseRepository {
	return &unorderedCourseRepo{r.fakeRepository.Course()}
}

func TestRecommendationService_TieBreakIgnoresStoreOrder(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	fake := newFakeRepository()
	actor := studentIdentity()

	art := seedCatalog(fake, "Art", 4)
	programming := seedCatalog(fake, "Programming", 4)
	enroll(fake, actor.ID, art[0], art[1], programming[0], programming[1])

	// Two Art and two Programming enrollments tie on count. The enrollment
	// list is newest-first, so Programming is seen first and must win even
	// when the course lookup hands back rows in a different order.
	svc := NewRecommendationService(&unorderedRepo{fake}, nil, logger, nil)

	result, err := svc.Recommend(ctx, actor)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(result.Recommendations) == 0 {
		t.Fatalf("expected fallback recommendations")
	}
	for _, c := range result.Recommendations {
		if c.Category != "Programming" {
			t.Fatalf("tie-break must follow enrollment order, got %s", c.Category)
		}
	}
}

func TestMostFrequentCategory(t *testing.T) {
	courses := []*models.Course{
		{Category: "Art"},
		{Category: "Programming"},
		{Category: "Programming"},
		{Category: "Art"},
	}
	// Tie resolved by first appearance.
	if got := mostFrequentCategory(courses); got != "Art" {
		t.Fatalf("expected Art, got %s", got)
	}
	if got := mostFrequentCategory(nil); got != "" {
		t.Fatalf("expected empty category for no history, got %s", got)
	}
}
