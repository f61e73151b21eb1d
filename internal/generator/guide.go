package generator

import (
	"fmt"

	"github.com/p-n-ai/materialbank/internal/material"
)

// Phase names of the canonical three-part lesson.
const (
	PhaseIntroduction = "導入"
	PhaseDevelopment  = "展開"
	PhaseConclusion   = "まとめ"
)

const (
	minutesPerLesson   = 45
	boardExcerptLength = 100
)

// activityTemplate describes an activity as a percentage of its phase.
type activityTemplate struct {
	kind         material.ActivityType
	description  string
	percent      int
	instructions []string
}

// phaseTemplate is the fixed template for one lesson phase.
type phaseTemplate struct {
	name             string
	description      string
	activities       []activityTemplate
	teacherActions   []string
	studentActions   []string
	materials        []string
	evaluationPoints []string
	ictUsage         string
}

var phaseTemplates = []phaseTemplate{
	{
		name:        PhaseIntroduction,
		description: "前時の学習を振り返り、本時のめあてを確認する",
		activities: []activityTemplate{
			{material.ActivityWholeClass, "前時の復習", 50, []string{"前時のノートを見返す", "キーワードを発表する"}},
			{material.ActivityWholeClass, "めあての確認", 50, []string{"本時の課題を読む", "めあてをノートに書く"}},
		},
		teacherActions:   []string{"前時の内容を問いかける", "本時のめあてを板書する"},
		studentActions:   []string{"前時の学習を思い出して発言する", "めあてをノートに書く"},
		materials:        []string{"教科書"},
		evaluationPoints: []string{"前時の内容を想起できているか"},
		ictUsage:         "電子黒板で前時のまとめを提示する",
	},
	{
		name:        PhaseDevelopment,
		description: "課題に取り組み、考えを共有しながら理解を深める",
		activities: []activityTemplate{
			{material.ActivityIndividual, "個人で課題に取り組む", 40, []string{"自分の考えをワークシートに書く", "根拠を明確にする"}},
			{material.ActivityGroup, "グループで考えを共有する", 40, []string{"順番に考えを説明する", "共通点と相違点を整理する"}},
			{material.ActivityWholeClass, "全体での発表と検討", 20, []string{"グループの考えを発表する", "他の考えと比較する"}},
		},
		teacherActions:   []string{"机間指導で個別に支援する", "多様な考えを取り上げて比較させる"},
		studentActions:   []string{"課題に個人で取り組む", "グループで意見を交流する", "全体で発表する"},
		materials:        []string{"教科書", "ワークシート"},
		evaluationPoints: []string{"根拠を示して考えを説明しているか", "他者の考えを取り入れているか"},
		ictUsage:         "タブレット端末で考えを共有する",
	},
	{
		name:        PhaseConclusion,
		description: "本時の学習をまとめ、振り返りを行う",
		activities: []activityTemplate{
			{material.ActivityIndividual, "振り返りの記入", 60, []string{"わかったことを書く", "疑問に思ったことを書く"}},
			{material.ActivityWholeClass, "まとめと次時の予告", 40, []string{"本時のまとめを確認する"}},
		},
		teacherActions:   []string{"本時のまとめを板書する", "次時の学習内容を予告する"},
		studentActions:   []string{"まとめをノートに写す", "振り返りを書く"},
		materials:        []string{"ワークシート"},
		evaluationPoints: []string{"本時の学習内容を自分の言葉でまとめているか"},
	},
}

// PhaseDurations splits a lesson of total minutes into introduction (15%),
// development (70%) and conclusion. Each share is floored and the
// conclusion takes the remainder, so the three always sum to total.
func PhaseDurations(total int) (intro, development, conclusion int) {
	if total < 0 {
		total = 0
	}
	intro = total * 15 / 100
	development = total * 70 / 100
	conclusion = total - intro - development
	return intro, development, conclusion
}

// TotalLessons is the number of 45-minute lessons needed for duration,
// never fewer than one.
func TotalLessons(duration int) int {
	n := (duration + minutesPerLesson - 1) / minutesPerLesson
	return max(n, 1)
}

// LessonGuide builds the lesson guide for m. Non-optional preparation items
// and differentiation strategies from details are folded in when details is
// non-nil. It never fails and every list in the result is non-nil.
func (g *Generator) LessonGuide(m material.Material, details *material.MaterialDetails) material.LessonGuide {
	intro, development, conclusion := PhaseDurations(m.Duration)
	durations := []int{intro, development, conclusion}

	var prepared []string
	var differentiation []string
	if details != nil {
		for _, item := range details.PreparationItems {
			if !item.Optional {
				prepared = append(prepared, item.Name)
			}
		}
		differentiation = details.DifferentiationStrategies
	}

	phases := make([]material.LessonPhase, len(phaseTemplates))
	for i, tmpl := range phaseTemplates {
		phases[i] = buildPhase(tmpl, durations[i], prepared)
	}

	keyQuestions := []string{
		fmt.Sprintf("「%s」で大切な考え方は何だろうか", m.Title),
		"どのように考えれば課題を解決できるだろうか",
		"学んだことを他の場面でどのように生かせるだろうか",
	}

	return material.LessonGuide{
		UnitTitle:    fmt.Sprintf("%s「%s」", m.Subject, m.Title),
		LessonTitle:  m.Title,
		LessonNumber: "第1時",
		TotalLessons: TotalLessons(m.Duration),
		UnitGoals: []string{
			fmt.Sprintf("「%s」について理解し、基礎的な知識・技能を身につける", m.Title),
			"学んだことを活用して考え、判断し、表現する力を養う",
			"学習に主体的に取り組み、学びを生活に生かそうとする態度を育てる",
		},
		LessonGoals: g.lessonGoals(m),
		LessonPlan: material.LessonPlan{
			Phases:        phases,
			TotalDuration: m.Duration,
			KeyQuestions:  keyQuestions,
			AnticipatedResponses: map[string][]string{
				keyQuestions[0]: {"基本的な用語や性質を理解すること", "具体例を使って考えること"},
				keyQuestions[1]: {"既習事項と結びつけて考える", "図や表に整理して考える"},
				keyQuestions[2]: {"日常生活の問題に当てはめる", "他教科の学習に生かす"},
			},
		},
		BoardPlan:             boardPlan(m),
		TeachingStrategies:    teachingStrategies(differentiation),
		QuestioningTechniques: []string{
			"発問の意図を明確にし、考える時間を確保する",
			"「なぜそう考えたのか」と根拠を問い返す",
			"複数の考えを比較させる発問を行う",
			"つまずいている生徒には選択肢を示して考えを引き出す",
		},
		EvaluationPlan: material.EvaluationPlan{
			FormativeAssessment: []material.FormativeAssessment{
				{Timing: PhaseIntroduction, Method: "発言・挙手の観察", Criteria: "前時の内容を想起できている", Feedback: "想起できない生徒にはノートを見返すよう促す"},
				{Timing: PhaseDevelopment, Method: "机間指導による観察", Criteria: "根拠を示して考えを書いている", Feedback: "ヒントカードを用いて個別に支援する"},
				{Timing: PhaseConclusion, Method: "振り返りシートの記述", Criteria: "本時の学習を自分の言葉でまとめている", Feedback: "次時の冒頭で記述を取り上げて価値づける"},
			},
			SummativeAssessment: &material.SummativeAssessment{
				Method:   "単元末テストとワークシートの総合評価",
				Criteria: "単元の目標に照らして知識・技能、思考・判断・表現を評価する",
				Rubric:   "A：十分満足できる（根拠を明確にして応用的な課題を解決できる）／B：おおむね満足できる（基本的な課題を解決できる）／C：努力を要する（支援があれば基本的な課題に取り組める）",
			},
			SelfAssessment: []string{"めあてを達成できたか", "自分の考えを表現できたか", "友だちの考えから学んだことはあるか"},
			PeerAssessment: []string{"友だちの説明はわかりやすかったか", "友だちの考えのよいところはどこか"},
		},
		Homework:          fmt.Sprintf("本時の%sの学習内容を復習し、教科書の練習問題に取り組む", m.Subject),
		NextLessonPreview: fmt.Sprintf("次時は、本時の%sの学習を生かして発展的な課題に取り組む", m.Subject),
	}
}

func buildPhase(tmpl phaseTemplate, duration int, prepared []string) material.LessonPhase {
	activities := make([]material.Activity, len(tmpl.activities))
	for i, a := range tmpl.activities {
		activities[i] = material.Activity{
			Type:         a.kind,
			Description:  a.description,
			Duration:     duration * a.percent / 100,
			Instructions: append([]string{}, a.instructions...),
		}
	}
	return material.LessonPhase{
		Name:             tmpl.name,
		Duration:         duration,
		Description:      tmpl.description,
		Activities:       activities,
		TeacherActions:   append([]string{}, tmpl.teacherActions...),
		StudentActions:   append([]string{}, tmpl.studentActions...),
		Materials:        unionStrings(tmpl.materials, prepared...),
		EvaluationPoints: append([]string{}, tmpl.evaluationPoints...),
		ICTUsage:         tmpl.ictUsage,
	}
}

func (g *Generator) lessonGoals(m material.Material) []material.LessonGoal {
	goals := []material.LessonGoal{
		{
			CompetencyArea: material.KnowledgeSkills,
			Goal:           fmt.Sprintf("「%s」に関する基礎的な知識を理解し、技能を身につける", m.Title),
			Indicators:     []string{"用語を正しく使うことができる", "基本的な問題を解くことができる"},
		},
		{
			CompetencyArea: material.ThinkingExpression,
			Goal:           "学習した内容を活用して考え、自分の言葉で表現する",
			Indicators:     []string{"根拠を示して説明できる", "他者の考えと比較できる"},
		},
		{
			CompetencyArea: material.AttitudeToLearning,
			Goal:           "課題に粘り強く取り組み、学びを振り返ろうとする",
			Indicators:     []string{"主体的に課題に取り組んでいる", "振り返りを次の学習に生かそうとしている"},
		},
	}

	if standards := g.Standards(m); len(standards) > 0 {
		first := standards[0]
		goals[0].Goal = fmt.Sprintf("%sについて理解し、必要な技能を身につける", first.Title)
		goals[0].Indicators = append([]string{}, first.Skills...)
	}
	return goals
}

func boardPlan(m material.Material) material.BoardPlan {
	excerpt := truncateRunes(m.Description, boardExcerptLength)
	return material.BoardPlan{
		Layout: []material.BoardSection{
			{Position: material.BoardLeft, Title: "めあて", Content: []string{fmt.Sprintf("「%s」について考えよう", m.Title), excerpt}},
			{Position: material.BoardCenter, Title: "考え方・話し合い", Content: []string{"個人の考え", "グループの考え", "全体での比較"}},
			{Position: material.BoardRight, Title: "まとめ", Content: []string{fmt.Sprintf("%sのポイント", m.Title), "振り返り"}},
		},
		KeyPoints:  []string{"めあてとまとめを対応させる", "生徒の考えを構造的に整理する"},
		VisualAids: []string{"提示用スライド", "拡大図"},
	}
}

func teachingStrategies(differentiation []string) []material.TeachingStrategy {
	strategies := []material.TeachingStrategy{
		{
			Strategy:        "問題解決型の学習",
			Purpose:         "主体的に課題に取り組む力を育てる",
			Implementation:  "導入で問いを提示し、生徒自身に解決の見通しを立てさせる",
			ExpectedOutcome: "課題解決の過程を自分で説明できるようになる",
		},
		{
			Strategy:        "協働的な学び",
			Purpose:         "多様な考えに触れ、理解を深める",
			Implementation:  "展開でグループ活動を取り入れ、考えを交流させる",
			ExpectedOutcome: "他者の考えを取り入れて自分の考えを更新できる",
		},
		{
			Strategy:        "振り返りの充実",
			Purpose:         "学習の成果と課題を自覚させる",
			Implementation:  "まとめで振り返りシートを記入させる",
			ExpectedOutcome: "次の学習への見通しをもてるようになる",
		},
	}
	for _, d := range differentiation {
		strategies = append(strategies, material.TeachingStrategy{
			Strategy:        d,
			Purpose:         "一人一人の学習状況に応じた支援を行う",
			Implementation:  "学習状況を見取りながら必要に応じて実施する",
			ExpectedOutcome: "すべての生徒が本時の目標に近づく",
		})
	}
	return strategies
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
