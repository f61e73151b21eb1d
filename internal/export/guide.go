package export

import (
	"fmt"
	"io"

	"github.com/p-n-ai/materialbank/internal/material"
)

// Sheet names of the lesson guide workbook.
const (
	SheetGuideOverview   = "概要"
	SheetGuidePlan       = "授業展開"
	SheetGuideBoard      = "板書計画"
	SheetGuideStrategies = "指導の工夫"
	SheetGuideEvaluation = "評価計画"
)

// LessonGuide writes g as an .xlsx workbook to w.
func LessonGuide(w io.Writer, g material.LessonGuide) error {
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	steps := []func(*workbook, material.LessonGuide) error{
		guideOverview, guidePlan, guideBoard, guideStrategies, guideEvaluation,
	}
	for _, step := range steps {
		if err := step(wb, g); err != nil {
			wb.f.Close()
			return err
		}
	}
	return wb.write(w)
}

func guideOverview(wb *workbook, g material.LessonGuide) error {
	s := SheetGuideOverview
	if err := wb.sheet(s, 18, 80); err != nil {
		return err
	}
	if err := wb.header(s, "項目", "内容"); err != nil {
		return err
	}
	fields := []struct {
		label string
		value any
	}{
		{"単元名", g.UnitTitle},
		{"本時", g.LessonTitle},
		{"時数", fmt.Sprintf("%s（全%d時間）", g.LessonNumber, g.TotalLessons)},
		{"単元の目標", g.UnitGoals},
		{"発問の工夫", g.QuestioningTechniques},
		{"宿題", g.Homework},
		{"次時の予告", g.NextLessonPreview},
		{"振り返り", g.ReflectionNotes},
	}
	for _, f := range fields {
		if err := wb.field(s, f.label, f.value); err != nil {
			return err
		}
	}

	wb.blank(s)
	if err := wb.header(s, "観点", "目標", "評価規準"); err != nil {
		return err
	}
	for _, goal := range g.LessonGoals {
		if err := wb.row(s, string(goal.CompetencyArea), goal.Goal, join(goal.Indicators)); err != nil {
			return err
		}
	}
	return nil
}

func guidePlan(wb *workbook, g material.LessonGuide) error {
	s := SheetGuidePlan
	if err := wb.sheet(s, 10, 8, 40, 40, 40, 30, 30); err != nil {
		return err
	}
	if err := wb.header(s, "段階", "時間（分）", "学習活動", "教師の働きかけ", "生徒の活動", "準備物", "評価"); err != nil {
		return err
	}
	for _, p := range g.LessonPlan.Phases {
		activities := make([]string, 0, len(p.Activities))
		for _, a := range p.Activities {
			activities = append(activities, fmt.Sprintf("%s（%d分）", a.Description, a.Duration))
		}
		if err := wb.row(s, p.Name, p.Duration, join(activities), join(p.TeacherActions),
			join(p.StudentActions), join(p.Materials), join(p.EvaluationPoints)); err != nil {
			return err
		}
	}
	if err := wb.row(s, "合計", g.LessonPlan.TotalDuration); err != nil {
		return err
	}

	wb.blank(s)
	if err := wb.header(s, "主な発問", "予想される反応"); err != nil {
		return err
	}
	for _, q := range g.LessonPlan.KeyQuestions {
		if err := wb.row(s, q, join(g.LessonPlan.AnticipatedResponses[q])); err != nil {
			return err
		}
	}
	return nil
}

func guideBoard(wb *workbook, g material.LessonGuide) error {
	s := SheetGuideBoard
	if err := wb.sheet(s, 10, 24, 60); err != nil {
		return err
	}
	if err := wb.header(s, "位置", "見出し", "内容"); err != nil {
		return err
	}
	for _, sec := range g.BoardPlan.Layout {
		if err := wb.row(s, string(sec.Position), sec.Title, join(sec.Content)); err != nil {
			return err
		}
	}
	wb.blank(s)
	if err := wb.field(s, "重要事項", g.BoardPlan.KeyPoints); err != nil {
		return err
	}
	return wb.field(s, "掲示物", g.BoardPlan.VisualAids)
}

func guideStrategies(wb *workbook, g material.LessonGuide) error {
	s := SheetGuideStrategies
	if err := wb.sheet(s, 24, 36, 48, 36); err != nil {
		return err
	}
	if err := wb.header(s, "方略", "ねらい", "具体的な手立て", "期待される成果"); err != nil {
		return err
	}
	for _, ts := range g.TeachingStrategies {
		if err := wb.row(s, ts.Strategy, ts.Purpose, ts.Implementation, ts.ExpectedOutcome); err != nil {
			return err
		}
	}
	return nil
}

func guideEvaluation(wb *workbook, g material.LessonGuide) error {
	s := SheetGuideEvaluation
	if err := wb.sheet(s, 14, 30, 40, 40); err != nil {
		return err
	}
	if err := wb.header(s, "時期", "方法", "規準", "フィードバック"); err != nil {
		return err
	}
	for _, fa := range g.EvaluationPlan.FormativeAssessment {
		if err := wb.row(s, fa.Timing, fa.Method, fa.Criteria, fa.Feedback); err != nil {
			return err
		}
	}
	if sa := g.EvaluationPlan.SummativeAssessment; sa != nil {
		wb.blank(s)
		if err := wb.header(s, "総括的評価", "方法", "規準", "ルーブリック"); err != nil {
			return err
		}
		if err := wb.row(s, "", sa.Method, sa.Criteria, sa.Rubric); err != nil {
			return err
		}
	}
	wb.blank(s)
	if err := wb.field(s, "自己評価", g.EvaluationPlan.SelfAssessment); err != nil {
		return err
	}
	return wb.field(s, "相互評価", g.EvaluationPlan.PeerAssessment)
}
