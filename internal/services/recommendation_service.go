package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/genai"
	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
)

const maxRecommendations = 5

type recommendationService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	ai     genai.Client
}

// NewRecommendationService creates the recommendation service. A nil ai
// client is valid and routes every request to the heuristic fallback.
func NewRecommendationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, ai genai.Client) RecommendationService {
	return &recommendationService{
		repo:   repo,
		db:     db,
		logger: logger,
		ai:     ai,
	}
}

// Recommend ranks candidate courses for the user. The AI path asks the
// model to pick from the not-yet-enrolled catalog; any failure along that
// path degrades to the category-frequency heuristic instead of surfacing
// an error.
func (s *recommendationService) Recommend(ctx context.Context, actor *Identity) (*RecommendationResponse, error) {
	enrollments, err := s.repo.Enrollment().ListByUser(ctx, nil, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	enrolledIDs := make([]string, 0, len(enrollments))
	enrolledSet := make(map[string]bool, len(enrollments))
	for _, e := range enrollments {
		enrolledIDs = append(enrolledIDs, e.CourseID)
		enrolledSet[e.CourseID] = true
	}

	enrolledCourses, err := s.repo.Course().GetByIDs(ctx, nil, enrolledIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrolled courses: %w", err)
	}
	// GetByIDs does not preserve input order; the category heuristics and
	// the prompt depend on enrollment order.
	enrolledCourses = orderCoursesByIDs(enrolledCourses, enrolledIDs)

	candidates, err := s.repo.Course().ListExcluding(ctx, nil, enrolledIDs, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate courses: %w", err)
	}
	if len(candidates) == 0 {
		s.logOutcome(ctx, actor.ID, models.SourceFallback, nil, "empty candidate catalog")
		return &RecommendationResponse{Recommendations: []*models.Course{}, Source: models.SourceFallback}, nil
	}

	if s.ai == nil {
		return s.fallback(ctx, actor, enrolledCourses, enrolledIDs, "ai client not configured")
	}

	prompt := buildPrompt(enrolledCourses, candidates)

	text, err := s.ai.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Warn("AI recommendation failed", "user_id", actor.ID, "error", err)
		return s.fallback(ctx, actor, enrolledCourses, enrolledIDs, "model call failed")
	}

	ids, err := genai.ExtractIDArray(text)
	if err != nil {
		s.logger.Warn("AI response unparseable", "user_id", actor.ID, "error", err)
		return s.fallback(ctx, actor, enrolledCourses, enrolledIDs, "unparseable model output")
	}

	// The model answers with ids; keep its ranking but drop hallucinated
	// ids and anything the user is already enrolled in.
	candidatesByID := make(map[string]*models.Course, len(candidates))
	for _, c := range candidates {
		candidatesByID[c.ID] = c
	}

	recommended := make([]*models.Course, 0, maxRecommendations)
	seen := make(map[string]bool, maxRecommendations)
	for _, id := range ids {
		if len(recommended) == maxRecommendations {
			break
		}
		if seen[id] || enrolledSet[id] {
			continue
		}
		course, ok := candidatesByID[id]
		if !ok {
			continue
		}
		seen[id] = true
		recommended = append(recommended, course)
	}

	if len(recommended) == 0 {
		return s.fallback(ctx, actor, enrolledCourses, enrolledIDs, "model returned no usable ids")
	}

	if err := s.decorate(ctx, recommended); err != nil {
		return nil, err
	}

	s.logOutcome(ctx, actor.ID, models.SourceAI, recommended, "")
	return &RecommendationResponse{Recommendations: recommended, Source: models.SourceAI}, nil
}

// fallback recommends from the user's most frequent enrolled category, or
// from the whole catalog when there is no enrollment history.
func (s *recommendationService) fallback(ctx context.Context, actor *Identity, enrolledCourses []*models.Course, enrolledIDs []string, reason string) (*RecommendationResponse, error) {
	s.logger.Info("Using fallback recommendations", "user_id", actor.ID, "reason", reason)

	var recommended []*models.Course
	var err error

	if topCategory := mostFrequentCategory(enrolledCourses); topCategory != "" {
		recommended, err = s.repo.Course().ListByCategory(ctx, nil, topCategory, enrolledIDs, maxRecommendations)
	} else {
		recommended, err = s.repo.Course().ListExcluding(ctx, nil, enrolledIDs, maxRecommendations)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list fallback courses: %w", err)
	}

	if err := s.decorate(ctx, recommended); err != nil {
		return nil, err
	}

	s.logOutcome(ctx, actor.ID, models.SourceFallback, recommended, reason)
	return &RecommendationResponse{Recommendations: recommended, Source: models.SourceFallback}, nil
}

func (s *recommendationService) decorate(ctx context.Context, courses []*models.Course) error {
	if len(courses) == 0 {
		return nil
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	lessonCounts, err := s.repo.Course().LessonCounts(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("failed to count lessons: %w", err)
	}
	enrollmentCounts, err := s.repo.Course().EnrollmentCounts(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("failed to count enrollments: %w", err)
	}

	for _, c := range courses {
		c.Count = &models.CourseCount{
			Lessons:     lessonCounts[c.ID],
			Enrollments: enrollmentCounts[c.ID],
		}
	}
	return nil
}

// logOutcome persists which path served the request. Failures here only log.
func (s *recommendationService) logOutcome(ctx context.Context, userID string, source models.RecommendationSource, courses []*models.Course, reason string) {
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	detail := map[string]interface{}{"course_ids": ids}
	if s.ai != nil {
		detail["model"] = s.ai.Model()
	}
	if reason != "" {
		detail["reason"] = reason
	}

	payload, err := json.Marshal(detail)
	if err != nil {
		s.logger.Error("Failed to marshal recommendation detail", "error", err)
		return
	}

	entry := &models.RecommendationLog{
		UserID: userID,
		Source: source,
		Detail: payload,
	}
	if err := s.repo.RecommendationLog().Create(ctx, nil, entry); err != nil {
		s.logger.Error("Failed to persist recommendation log", "user_id", userID, "error", err)
	}

	s.logger.Info("Recommendations served",
		"user_id", userID,
		"source", source,
		"count", len(ids),
	)
}

// buildPrompt renders the single-turn ranking prompt: the user's interest
// categories followed by the candidate catalog.
func buildPrompt(enrolledCourses, candidates []*models.Course) string {
	interests := "general learning"
	if categories := distinctCategories(enrolledCourses); len(categories) > 0 {
		interests = strings.Join(categories, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the user's interests in: %s, recommend 5 courses from the following list. ", interests)
	b.WriteString(`Return only the course IDs in a JSON array format like ["id1", "id2", "id3", "id4", "id5"]:`)
	b.WriteString("\n\n")

	for _, c := range candidates {
		fmt.Fprintf(&b, "ID: %s, Title: %s, Category: %s, Level: %s, Description: %s\n",
			c.ID, c.Title, c.Category, c.Level, c.Description)
	}
	return b.String()
}

// orderCoursesByIDs arranges courses to follow the given id sequence.
// Ids without a matching course are skipped.
func orderCoursesByIDs(courses []*models.Course, ids []string) []*models.Course {
	byID := make(map[string]*models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	ordered := make([]*models.Course, 0, len(courses))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

// distinctCategories returns the categories of the given courses, ordered by
// first appearance.
func distinctCategories(courses []*models.Course) []string {
	var categories []string
	seen := make(map[string]bool, len(courses))
	for _, c := range courses {
		if !seen[c.Category] {
			seen[c.Category] = true
			categories = append(categories, c.Category)
		}
	}
	return categories
}

// mostFrequentCategory returns the category that appears most often, ties
// going to the earliest-seen one. Empty when courses is empty.
func mostFrequentCategory(courses []*models.Course) string {
	counts := make(map[string]int, len(courses))
	var best string
	bestCount := 0
	for _, c := range courses {
		counts[c.Category]++
		if counts[c.Category] > bestCount {
			bestCount = counts[c.Category]
			best = c.Category
		}
	}
	return best
}
