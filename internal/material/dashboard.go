package material

import (
	"context"
	"fmt"
	"sort"

	"github.com/p-n-ai/materialbank/internal/classify"
)

const dashboardListSize = 5

// TeacherDashboard summarizes a teacher's published materials.
type TeacherDashboard struct {
	MaterialCount  int        `json:"materialCount"`
	TotalViews     int        `json:"totalViews"`
	TotalLikes     int        `json:"totalLikes"`
	ForksReceived  int        `json:"forksReceived"`
	TopMaterials   []Material `json:"topMaterials"`
	RecentComments []Comment  `json:"recentComments"`
}

// StudentDashboard lists materials suited to a student's school level.
type StudentDashboard struct {
	SchoolLevel classify.SchoolLevel `json:"schoolLevel"`
	Recommended []Material           `json:"recommended"`
	Newest      []Material           `json:"newest"`
}

// BuildTeacherDashboard aggregates statistics over the author's materials.
func BuildTeacherDashboard(ctx context.Context, store Store, authorID string) (TeacherDashboard, error) {
	own, err := store.List(ctx, Filter{AuthorID: authorID, Sort: SortPopular})
	if err != nil {
		return TeacherDashboard{}, fmt.Errorf("listing own materials: %w", err)
	}

	d := TeacherDashboard{
		MaterialCount:  len(own),
		TopMaterials:   Paginate(own, 0, dashboardListSize),
		RecentComments: []Comment{},
	}
	ids := make(map[string]bool, len(own))
	for _, m := range own {
		ids[m.ID] = true
		d.TotalViews += m.Views
		d.TotalLikes += m.Likes

		comments, err := store.Comments(ctx, m.ID)
		if err != nil {
			return TeacherDashboard{}, fmt.Errorf("listing comments for %s: %w", m.ID, err)
		}
		d.RecentComments = append(d.RecentComments, comments...)
	}

	all, err := store.List(ctx, Filter{})
	if err != nil {
		return TeacherDashboard{}, fmt.Errorf("listing materials: %w", err)
	}
	for _, m := range all {
		if m.ForkedFrom != "" && ids[m.ForkedFrom] && m.AuthorID != authorID {
			d.ForksReceived++
		}
	}

	sort.SliceStable(d.RecentComments, func(i, j int) bool {
		return d.RecentComments[i].CreatedAt.After(d.RecentComments[j].CreatedAt)
	})
	if len(d.RecentComments) > dashboardListSize {
		d.RecentComments = d.RecentComments[:dashboardListSize]
	}
	return d, nil
}

// BuildStudentDashboard recommends the most viewed materials for the school
// level derived from grade, plus the newest materials overall.
func BuildStudentDashboard(ctx context.Context, store Store, grade string) (StudentDashboard, error) {
	level := classify.SchoolLevelOf(grade)

	recommended, err := store.List(ctx, Filter{SchoolLevel: level, Sort: SortPopular, Limit: dashboardListSize})
	if err != nil {
		return StudentDashboard{}, fmt.Errorf("listing recommended materials: %w", err)
	}
	newest, err := store.List(ctx, Filter{Sort: SortNewest, Limit: dashboardListSize})
	if err != nil {
		return StudentDashboard{}, fmt.Errorf("listing newest materials: %w", err)
	}

	return StudentDashboard{
		SchoolLevel: level,
		Recommended: recommended,
		Newest:      newest,
	}, nil
}
