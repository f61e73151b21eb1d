package material

// Clone returns a deep copy of m, including its details and guide.
func (m Material) Clone() Material {
	m.Tags = cloneStrings(m.Tags)
	m.TeachingPoints = cloneStrings(m.TeachingPoints)
	if m.Details != nil {
		d := m.Details.Clone()
		m.Details = &d
	}
	if m.Guide != nil {
		g := m.Guide.Clone()
		m.Guide = &g
	}
	return m
}

// Clone returns a deep copy of d.
func (d MaterialDetails) Clone() MaterialDetails {
	d.LearningObjectives = cloneStrings(d.LearningObjectives)
	d.Prerequisites = cloneStrings(d.Prerequisites)
	d.PreparationItems = cloneSlice(d.PreparationItems)
	d.RequiredEquipment = cloneStrings(d.RequiredEquipment)
	d.SafetyNotes = cloneStrings(d.SafetyNotes)
	d.CurriculumAlignment = cloneSlice(d.CurriculumAlignment)
	d.RelatedUnits = cloneStrings(d.RelatedUnits)
	d.CrossCurricularLinks = cloneStrings(d.CrossCurricularLinks)
	if d.AssessmentCriteria != nil {
		criteria := make([]AssessmentCriterion, len(d.AssessmentCriteria))
		for i, c := range d.AssessmentCriteria {
			c.Indicators = cloneStrings(c.Indicators)
			criteria[i] = c
		}
		d.AssessmentCriteria = criteria
	}
	if d.EvaluationMethods != nil {
		methods := make([]EvaluationMethod, len(d.EvaluationMethods))
		for i, m := range d.EvaluationMethods {
			m.Tools = cloneStrings(m.Tools)
			methods[i] = m
		}
		d.EvaluationMethods = methods
	}
	d.DifferentiationStrategies = cloneStrings(d.DifferentiationStrategies)
	d.SpecialNeedsSupports = cloneStrings(d.SpecialNeedsSupports)
	d.ExtensionActivities = cloneStrings(d.ExtensionActivities)
	d.ICTIntegration.Devices = cloneStrings(d.ICTIntegration.Devices)
	d.ICTIntegration.Software = cloneStrings(d.ICTIntegration.Software)
	d.DigitalResources = cloneSlice(d.DigitalResources)
	return d
}

// Clone returns a deep copy of g.
func (g LessonGuide) Clone() LessonGuide {
	g.UnitGoals = cloneStrings(g.UnitGoals)
	if g.LessonGoals != nil {
		goals := make([]LessonGoal, len(g.LessonGoals))
		for i, goal := range g.LessonGoals {
			goal.Indicators = cloneStrings(goal.Indicators)
			goals[i] = goal
		}
		g.LessonGoals = goals
	}

	if g.LessonPlan.Phases != nil {
		phases := make([]LessonPhase, len(g.LessonPlan.Phases))
		for i, p := range g.LessonPlan.Phases {
			if p.Activities != nil {
				activities := make([]Activity, len(p.Activities))
				for j, a := range p.Activities {
					a.Instructions = cloneStrings(a.Instructions)
					activities[j] = a
				}
				p.Activities = activities
			}
			p.TeacherActions = cloneStrings(p.TeacherActions)
			p.StudentActions = cloneStrings(p.StudentActions)
			p.Materials = cloneStrings(p.Materials)
			p.EvaluationPoints = cloneStrings(p.EvaluationPoints)
			phases[i] = p
		}
		g.LessonPlan.Phases = phases
	}
	g.LessonPlan.KeyQuestions = cloneStrings(g.LessonPlan.KeyQuestions)
	if g.LessonPlan.AnticipatedResponses != nil {
		responses := make(map[string][]string, len(g.LessonPlan.AnticipatedResponses))
		for q, answers := range g.LessonPlan.AnticipatedResponses {
			responses[q] = cloneStrings(answers)
		}
		g.LessonPlan.AnticipatedResponses = responses
	}

	if g.BoardPlan.Layout != nil {
		layout := make([]BoardSection, len(g.BoardPlan.Layout))
		for i, s := range g.BoardPlan.Layout {
			s.Content = cloneStrings(s.Content)
			layout[i] = s
		}
		g.BoardPlan.Layout = layout
	}
	g.BoardPlan.KeyPoints = cloneStrings(g.BoardPlan.KeyPoints)
	g.BoardPlan.VisualAids = cloneStrings(g.BoardPlan.VisualAids)

	g.TeachingStrategies = cloneSlice(g.TeachingStrategies)
	g.QuestioningTechniques = cloneStrings(g.QuestioningTechniques)
	g.EvaluationPlan.FormativeAssessment = cloneSlice(g.EvaluationPlan.FormativeAssessment)
	if g.EvaluationPlan.SummativeAssessment != nil {
		s := *g.EvaluationPlan.SummativeAssessment
		g.EvaluationPlan.SummativeAssessment = &s
	}
	g.EvaluationPlan.SelfAssessment = cloneStrings(g.EvaluationPlan.SelfAssessment)
	g.EvaluationPlan.PeerAssessment = cloneStrings(g.EvaluationPlan.PeerAssessment)
	return g
}

// cloneSlice copies a slice of flat values, preserving nil.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func cloneStrings(s []string) []string {
	return cloneSlice(s)
}
