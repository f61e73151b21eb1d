package agent

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/materialbank/internal/ai"
	"github.com/p-n-ai/materialbank/internal/classify"
	"github.com/p-n-ai/materialbank/internal/curriculum"
	"github.com/p-n-ai/materialbank/internal/generator"
	"github.com/p-n-ai/materialbank/internal/material"
)

var schoolLevelLabels = map[classify.SchoolLevel]string{
	classify.Elementary:   "小学校",
	classify.JuniorHigh:   "中学校",
	classify.HighSchool:   "高等学校",
	classify.SpecialNeeds: "特別支援学校",
}

// EducationalContext is everything the assistant knows about a material.
type EducationalContext struct {
	SchoolLevel        classify.SchoolLevel  `json:"schoolLevel"`
	Subject            classify.Subject      `json:"subject"`
	Standards          []curriculum.Standard `json:"standards"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Grade              string                `json:"grade"`
	Difficulty         int                   `json:"difficulty"`
	LessonFlow         []string              `json:"lessonFlow"`
	TeachingPoints     []string              `json:"teachingPoints"`
	EvaluationMethods  []string              `json:"evaluationMethods"`
	PreparationItems   []string              `json:"preparationItems"`
	LearningObjectives []string              `json:"learningObjectives"`
	TeachingMethods    []string              `json:"teachingMethods"`
}

// BuildContext assembles the educational context for m. Details and guide
// stored on the material are preferred; missing ones are generated.
func BuildContext(gen *generator.Generator, m material.Material) EducationalContext {
	level, subject := gen.Classify(m)

	details := m.Details
	if details == nil {
		d := gen.MaterialDetails(m)
		details = &d
	}
	guide := m.Guide
	if guide == nil {
		g := gen.LessonGuide(m, details)
		guide = &g
	}

	ec := EducationalContext{
		SchoolLevel:        level,
		Subject:            subject,
		Standards:          gen.Standards(m),
		Title:              m.Title,
		Description:        m.Description,
		Grade:              m.Grade,
		Difficulty:         m.Difficulty,
		LessonFlow:         []string{},
		TeachingPoints:     append([]string{}, m.TeachingPoints...),
		EvaluationMethods:  []string{},
		PreparationItems:   []string{},
		LearningObjectives: append([]string{}, details.LearningObjectives...),
		TeachingMethods:    []string{},
	}
	for _, p := range guide.LessonPlan.Phases {
		ec.LessonFlow = append(ec.LessonFlow, p.Name)
	}
	for _, e := range details.EvaluationMethods {
		ec.EvaluationMethods = append(ec.EvaluationMethods, e.Method)
	}
	for _, p := range details.PreparationItems {
		ec.PreparationItems = append(ec.PreparationItems, p.Name)
	}
	for _, s := range guide.TeachingStrategies {
		ec.TeachingMethods = append(ec.TeachingMethods, s.Strategy)
	}
	return ec
}

// Insights summarizes the context for display next to a reply.
func (ec EducationalContext) Insights() EducationalInsights {
	objective := fmt.Sprintf("「%s」の内容を理解する", ec.Title)
	if len(ec.LearningObjectives) > 0 {
		objective = ec.LearningObjectives[0]
	}
	methods := ec.TeachingMethods
	if len(methods) > 3 {
		methods = methods[:3]
	}
	return EducationalInsights{
		LearningObjective: objective,
		Difficulty:        ec.Difficulty,
		TeachingMethods:   append([]string{}, methods...),
	}
}

// Metadata flattens the context into template variables.
func (ec EducationalContext) Metadata(a Assistant, subjectLabel, question string) map[string]string {
	insights := ec.Insights()
	standard := "関連する学習内容"
	if len(ec.Standards) > 0 {
		standard = ec.Standards[0].Title
	}
	point := insights.LearningObjective
	if len(ec.TeachingPoints) > 0 {
		point = ec.TeachingPoints[0]
	}
	evaluation := "行動観察"
	if len(ec.EvaluationMethods) > 0 {
		evaluation = ec.EvaluationMethods[0]
	}
	preparation := ec.PreparationItems
	if len(preparation) > 3 {
		preparation = preparation[:3]
	}

	return map[string]string{
		ai.MetaAssistant:     a.Name,
		ai.MetaTitle:         ec.Title,
		ai.MetaSubject:       subjectLabel,
		ai.MetaGrade:         ec.Grade,
		ai.MetaSchoolLevel:   schoolLevelLabels[ec.SchoolLevel],
		ai.MetaStandard:      standard,
		ai.MetaObjective:     insights.LearningObjective,
		ai.MetaLessonFlow:    strings.Join(ec.LessonFlow, "→"),
		ai.MetaTeachingPoint: point,
		ai.MetaEvaluation:    evaluation,
		ai.MetaPreparation:   strings.Join(preparation, "、"),
		ai.MetaQuestion:      question,
	}
}

// SystemPrompt renders the context as instructions for a model backend.
func (ec EducationalContext) SystemPrompt(a Assistant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "あなたは%sです。%s\n\n", a.Name, a.Description)
	fmt.Fprintf(&b, "教材: %s\n", ec.Title)
	if ec.Description != "" {
		fmt.Fprintf(&b, "概要: %s\n", ec.Description)
	}
	fmt.Fprintf(&b, "対象: %s（%s）\n", ec.Grade, schoolLevelLabels[ec.SchoolLevel])
	for _, s := range ec.Standards {
		fmt.Fprintf(&b, "学習指導要領: %s %s\n", s.Code, s.Title)
	}
	writeList(&b, "授業の流れ", ec.LessonFlow, "→")
	writeList(&b, "指導のポイント", ec.TeachingPoints, "、")
	writeList(&b, "学習目標", ec.LearningObjectives, "、")
	writeList(&b, "評価方法", ec.EvaluationMethods, "、")
	writeList(&b, "準備物", ec.PreparationItems, "、")
	writeList(&b, "指導方法", ec.TeachingMethods, "、")
	b.WriteString("\n教師の質問に、教材の内容に即して具体的に答えてください。")
	return b.String()
}

func writeList(b *strings.Builder, label string, items []string, sep string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(items, sep))
}
