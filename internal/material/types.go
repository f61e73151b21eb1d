// Package material holds the material bank's domain types and their storage.
package material

import (
	"time"
)

// Material is a teacher-authored lesson unit.
type Material struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Subject        string           `json:"subject"`
	Grade          string           `json:"grade"`
	Duration       int              `json:"duration"` // minutes
	Difficulty     int              `json:"difficulty"`
	AuthorID       string           `json:"authorId"`
	VideoURL       string           `json:"videoUrl,omitempty"`
	PDFURL         string           `json:"pdfUrl,omitempty"`
	Tags           []string         `json:"tags"`
	TeachingPoints []string         `json:"teachingPoints"`
	Views          int              `json:"views"`
	Likes          int              `json:"likes"`
	ForkedFrom     string           `json:"forkedFrom,omitempty"`
	Details        *MaterialDetails `json:"details,omitempty"`
	Guide          *LessonGuide     `json:"guide,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Comment is a user comment on a material.
type Comment struct {
	ID         string    `json:"id"`
	MaterialID string    `json:"materialId"`
	AuthorID   string    `json:"authorId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CompetencyArea is one of the three assessment dimensions.
type CompetencyArea string

const (
	KnowledgeSkills    CompetencyArea = "知識・技能"
	ThinkingExpression CompetencyArea = "思考・判断・表現"
	AttitudeToLearning CompetencyArea = "学びに向かう力・人間性"
)

// CompetencyAreas lists the areas in their fixed order.
var CompetencyAreas = []CompetencyArea{KnowledgeSkills, ThinkingExpression, AttitudeToLearning}

// PreparationCategory classifies a preparation item.
type PreparationCategory string

const (
	CategoryMaterial  PreparationCategory = "material"
	CategoryEquipment PreparationCategory = "equipment"
	CategoryHandout   PreparationCategory = "handout"
	CategoryDigital   PreparationCategory = "digital"
)

// PreparationItem is something the teacher prepares before the lesson.
type PreparationItem struct {
	Category PreparationCategory `json:"category"`
	Name     string              `json:"name"`
	Quantity string              `json:"quantity,omitempty"`
	Optional bool                `json:"optional"`
}

// CurriculumAlignment links a material to a curriculum standard.
type CurriculumAlignment struct {
	Code           string         `json:"code"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	CompetencyArea CompetencyArea `json:"competencyArea"`
}

// AssessmentCriterion describes what is assessed for one competency area.
type AssessmentCriterion struct {
	CompetencyArea CompetencyArea `json:"competencyArea"`
	Criterion      string         `json:"criterion"`
	Indicators     []string       `json:"indicators"`
}

// EvaluationMethod describes how and when students are evaluated.
type EvaluationMethod struct {
	Method string   `json:"method"`
	Timing string   `json:"timing"`
	Target string   `json:"target"`
	Tools  []string `json:"tools"`
}

// ICTIntegration describes the use of devices and software in the lesson.
type ICTIntegration struct {
	Devices     []string `json:"devices"`
	Software    []string `json:"software"`
	Purpose     string   `json:"purpose"`
	StudentRole string   `json:"studentRole"`
	TeacherRole string   `json:"teacherRole"`
}

// DigitalResourceType is the kind of a digital resource.
type DigitalResourceType string

const (
	ResourceVideo      DigitalResourceType = "video"
	ResourceSimulation DigitalResourceType = "simulation"
	ResourceQuiz       DigitalResourceType = "quiz"
	ResourceDocument   DigitalResourceType = "document"
	ResourceWebsite    DigitalResourceType = "website"
)

// DigitalResource is an online or digital resource used in the lesson.
type DigitalResource struct {
	Type        DigitalResourceType `json:"type"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Usage       string              `json:"usage"`
	URL         string              `json:"url,omitempty"`
}

// MaterialDetails is the elaborated pedagogical metadata for a material.
// Every slice field is non-nil so that it serializes as [] rather than null.
type MaterialDetails struct {
	LearningObjectives        []string              `json:"learningObjectives"`
	Prerequisites             []string              `json:"prerequisites"`
	TargetStudents            string                `json:"targetStudents"`
	PreparationItems          []PreparationItem     `json:"preparationItems"`
	RequiredEquipment         []string              `json:"requiredEquipment"`
	SafetyNotes               []string              `json:"safetyNotes"`
	CurriculumAlignment       []CurriculumAlignment `json:"curriculumAlignment"`
	RelatedUnits              []string              `json:"relatedUnits"`
	CrossCurricularLinks      []string              `json:"crossCurricularLinks"`
	AssessmentCriteria        []AssessmentCriterion `json:"assessmentCriteria"`
	EvaluationMethods         []EvaluationMethod    `json:"evaluationMethods"`
	DifferentiationStrategies []string              `json:"differentiationStrategies"`
	SpecialNeedsSupports      []string              `json:"specialNeedsSupports"`
	ExtensionActivities       []string              `json:"extensionActivities"`
	ICTIntegration            ICTIntegration        `json:"ictIntegration"`
	DigitalResources          []DigitalResource     `json:"digitalResources"`
}

// ActivityType is the grouping used for an activity.
type ActivityType string

const (
	ActivityIndividual ActivityType = "individual"
	ActivityPair       ActivityType = "pair"
	ActivityGroup      ActivityType = "group"
	ActivityWholeClass ActivityType = "whole-class"
)

// Activity is one timed activity inside a lesson phase.
type Activity struct {
	Type         ActivityType `json:"type"`
	Description  string       `json:"description"`
	Duration     int          `json:"duration"`
	Instructions []string     `json:"instructions"`
}

// LessonPhase is one of the introduction, development and conclusion phases.
type LessonPhase struct {
	Name             string     `json:"name"`
	Duration         int        `json:"duration"`
	Description      string     `json:"description"`
	Activities       []Activity `json:"activities"`
	TeacherActions   []string   `json:"teacherActions"`
	StudentActions   []string   `json:"studentActions"`
	Materials        []string   `json:"materials"`
	EvaluationPoints []string   `json:"evaluationPoints"`
	ICTUsage         string     `json:"ictUsage,omitempty"`
}

// LessonPlan is the timed sequence of phases.
type LessonPlan struct {
	Phases               []LessonPhase       `json:"phases"`
	TotalDuration        int                 `json:"totalDuration"`
	KeyQuestions         []string            `json:"keyQuestions"`
	AnticipatedResponses map[string][]string `json:"anticipatedResponses"`
}

// LessonGoal is a goal for one competency area.
type LessonGoal struct {
	CompetencyArea CompetencyArea `json:"competencyArea"`
	Goal           string         `json:"goal"`
	Indicators     []string       `json:"indicators"`
}

// BoardPosition is a fixed region of the blackboard.
type BoardPosition string

const (
	BoardLeft   BoardPosition = "left"
	BoardCenter BoardPosition = "center"
	BoardRight  BoardPosition = "right"
)

// BoardSection is the content written in one board region.
type BoardSection struct {
	Position BoardPosition `json:"position"`
	Title    string        `json:"title"`
	Content  []string      `json:"content"`
}

// BoardPlan is the blackboard layout for the lesson.
type BoardPlan struct {
	Layout     []BoardSection `json:"layout"`
	KeyPoints  []string       `json:"keyPoints"`
	VisualAids []string       `json:"visualAids"`
}

// TeachingStrategy is a named strategy and how it is carried out.
type TeachingStrategy struct {
	Strategy        string `json:"strategy"`
	Purpose         string `json:"purpose"`
	Implementation  string `json:"implementation"`
	ExpectedOutcome string `json:"expectedOutcome"`
}

// FormativeAssessment is an in-lesson check.
type FormativeAssessment struct {
	Timing   string `json:"timing"`
	Method   string `json:"method"`
	Criteria string `json:"criteria"`
	Feedback string `json:"feedback"`
}

// SummativeAssessment is the end-of-lesson evaluation.
type SummativeAssessment struct {
	Method   string `json:"method"`
	Criteria string `json:"criteria"`
	Rubric   string `json:"rubric"`
}

// EvaluationPlan groups all assessment in the lesson.
type EvaluationPlan struct {
	FormativeAssessment []FormativeAssessment `json:"formativeAssessment"`
	SummativeAssessment *SummativeAssessment  `json:"summativeAssessment,omitempty"`
	SelfAssessment      []string              `json:"selfAssessment"`
	PeerAssessment      []string              `json:"peerAssessment"`
}

// LessonGuide is the full lesson-plan document derived from a material.
type LessonGuide struct {
	UnitTitle             string             `json:"unitTitle"`
	LessonTitle           string             `json:"lessonTitle"`
	LessonNumber          string             `json:"lessonNumber"`
	TotalLessons          int                `json:"totalLessons"`
	UnitGoals             []string           `json:"unitGoals"`
	LessonGoals           []LessonGoal       `json:"lessonGoals"`
	LessonPlan            LessonPlan         `json:"lessonPlan"`
	BoardPlan             BoardPlan          `json:"boardPlan"`
	TeachingStrategies    []TeachingStrategy `json:"teachingStrategies"`
	QuestioningTechniques []string           `json:"questioningTechniques"`
	EvaluationPlan        EvaluationPlan     `json:"evaluationPlan"`
	Homework              string             `json:"homework,omitempty"`
	NextLessonPreview     string             `json:"nextLessonPreview,omitempty"`
	ReflectionNotes       string             `json:"reflectionNotes,omitempty"`
}
