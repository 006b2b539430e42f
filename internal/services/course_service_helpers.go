package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/learnhub/course-service/internal/models"
)

// validateID rejects ids that are not well-formed UUIDs before they reach
// the database.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// decorateCourses attaches lesson counts, enrollment counts and the author
// projection to each course. Counters and authors are fetched in batches so
// list decoration stays at a fixed number of queries.
func (s *courseService) decorateCourses(ctx context.Context, courses []*models.Course, includeAuthorEmail bool) error {
	if len(courses) == 0 {
		return nil
	}

	ids := make([]string, 0, len(courses))
	authorIDs := make([]string, 0, len(courses))
	seenAuthors := make(map[string]bool, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
		if !seenAuthors[c.AuthorID] {
			seenAuthors[c.AuthorID] = true
			authorIDs = append(authorIDs, c.AuthorID)
		}
	}

	lessonCounts, err := s.repo.Course().LessonCounts(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("failed to count lessons: %w", err)
	}

	enrollmentCounts, err := s.repo.Course().EnrollmentCounts(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("failed to count enrollments: %w", err)
	}

	authors, err := s.repo.User().GetByIDs(ctx, nil, authorIDs)
	if err != nil {
		return fmt.Errorf("failed to get authors: %w", err)
	}
	authorsByID := make(map[string]*models.User, len(authors))
	for _, a := range authors {
		authorsByID[a.ID] = a
	}

	for _, c := range courses {
		c.Count = &models.CourseCount{
			Lessons:     lessonCounts[c.ID],
			Enrollments: enrollmentCounts[c.ID],
		}
		if author, ok := authorsByID[c.AuthorID]; ok {
			ref := &models.AuthorRef{ID: author.ID, Name: author.Name}
			if includeAuthorEmail {
				ref.Email = author.Email
			}
			c.Author = ref
		}
	}

	return nil
}
