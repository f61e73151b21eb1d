package generator

import (
	"fmt"

	"github.com/p-n-ai/materialbank/internal/classify"
	"github.com/p-n-ai/materialbank/internal/material"
)

// subjectExtras are merged into the baseline details for a subject.
type subjectExtras struct {
	preparationItems     []material.PreparationItem
	requiredEquipment    []string
	safetyNotes          []string
	crossCurricularLinks []string
	extensionActivities  []string
	digitalResources     []material.DigitalResource
}

var baselinePreparationItems = []material.PreparationItem{
	{Category: material.CategoryMaterial, Name: "教科書", Quantity: "人数分"},
	{Category: material.CategoryHandout, Name: "ワークシート", Quantity: "人数分"},
	{Category: material.CategoryDigital, Name: "提示用スライド", Quantity: "1式"},
}

var extrasBySubject = map[classify.Subject]subjectExtras{
	classify.Math: {
		preparationItems: []material.PreparationItem{
			{Category: material.CategoryEquipment, Name: "定規・コンパス", Quantity: "人数分"},
			{Category: material.CategoryDigital, Name: "関数グラフソフト", Optional: true},
		},
		requiredEquipment:    []string{"黒板用定規"},
		crossCurricularLinks: []string{"理科（データの処理）"},
		extensionActivities:  []string{"発展問題に挑戦し、解法を説明する"},
		digitalResources: []material.DigitalResource{
			{Type: material.ResourceSimulation, Name: "GeoGebra", Description: "図形や関数を動的に操作できるツール", Usage: "展開で関数や図形の変化を観察する", URL: "https://www.geogebra.org/"},
		},
	},
	classify.Science: {
		preparationItems: []material.PreparationItem{
			{Category: material.CategoryEquipment, Name: "実験器具セット", Quantity: "班数分"},
			{Category: material.CategoryMaterial, Name: "実験ノート", Quantity: "人数分"},
			{Category: material.CategoryEquipment, Name: "保護メガネ", Quantity: "人数分"},
		},
		requiredEquipment: []string{"実験台", "保護メガネ"},
		safetyNotes: []string{
			"実験中は必ず保護メガネを着用する",
			"薬品や火気の取り扱いは教師の指示に従う",
			"実験後は器具を片付け、手を洗う",
		},
		crossCurricularLinks: []string{"数学（グラフの読み取り）"},
		extensionActivities:  []string{"条件を変えた追加実験を計画する"},
		digitalResources: []material.DigitalResource{
			{Type: material.ResourceSimulation, Name: "PhET シミュレーション", Description: "理科の現象を仮想実験できる教材", Usage: "実験の前後で現象を確認する", URL: "https://phet.colorado.edu/ja/"},
		},
	},
	classify.English: {
		preparationItems: []material.PreparationItem{
			{Category: material.CategoryDigital, Name: "音声教材", Quantity: "1式"},
			{Category: material.CategoryHandout, Name: "単語カード", Quantity: "人数分"},
		},
		requiredEquipment:    []string{"スピーカー"},
		crossCurricularLinks: []string{"国語（言葉の働き）"},
		extensionActivities:  []string{"学んだ表現を使って短いスピーチを作る"},
		digitalResources: []material.DigitalResource{
			{Type: material.ResourceVideo, Name: "英語リスニング動画", Description: "ネイティブスピーカーによる会話動画", Usage: "導入で場面を提示する"},
		},
	},
	classify.Japanese: {
		preparationItems: []material.PreparationItem{
			{Category: material.CategoryMaterial, Name: "国語辞典", Quantity: "人数分"},
		},
		crossCurricularLinks: []string{"社会（資料の読み取り）"},
		extensionActivities:  []string{"学習した表現技法を使って短い文章を書く"},
	},
	classify.Social: {
		preparationItems: []material.PreparationItem{
			{Category: material.CategoryMaterial, Name: "地図帳", Quantity: "人数分"},
			{Category: material.CategoryHandout, Name: "資料プリント", Quantity: "人数分"},
		},
		crossCurricularLinks: []string{"国語（資料の要約）"},
		extensionActivities:  []string{"地域の事例を調べて発表する"},
		digitalResources: []material.DigitalResource{
			{Type: material.ResourceWebsite, Name: "地理院地図", Description: "国土地理院のウェブ地図", Usage: "地形や土地利用を確認する", URL: "https://maps.gsi.go.jp/"},
		},
	},
}

// MaterialDetails builds the details document for m. It never fails and
// every list in the result is non-nil.
func (g *Generator) MaterialDetails(m material.Material) material.MaterialDetails {
	_, subject := g.Classify(m)
	extras := extrasBySubject[subject]
	standards := g.Standards(m)

	alignment := make([]material.CurriculumAlignment, 0, len(standards))
	relatedUnits := []string{}
	for _, s := range standards {
		// Alignments are always tagged 知識・技能, whatever the standard covers.
		alignment = append(alignment, material.CurriculumAlignment{
			Code:           s.Code,
			Title:          s.Title,
			Description:    s.Description,
			CompetencyArea: material.KnowledgeSkills,
		})
		relatedUnits = unionStrings(relatedUnits, s.KnowledgeAreas...)
	}

	return material.MaterialDetails{
		LearningObjectives: []string{
			fmt.Sprintf("「%s」の基本的な概念や用語を理解する", m.Title),
			"学習した知識を活用して課題を解決する",
			"自分の考えを言葉や図で表現し、他者と共有する",
		},
		Prerequisites: []string{
			"前学年までの基礎的な学習内容",
			fmt.Sprintf("%sの基本的な用語の理解", m.Subject),
		},
		TargetStudents:   fmt.Sprintf("%sの生徒", m.Grade),
		PreparationItems: unionBy(baselinePreparationItems, extras.preparationItems, preparationName),
		RequiredEquipment: unionStrings(
			[]string{"プロジェクター", "スクリーン"},
			extras.requiredEquipment...,
		),
		SafetyNotes: unionStrings(
			[]string{"机間の通路を確保し、移動時は周囲に注意する"},
			extras.safetyNotes...,
		),
		CurriculumAlignment: alignment,
		RelatedUnits:        relatedUnits,
		CrossCurricularLinks: unionStrings(
			[]string{"総合的な学習の時間"},
			extras.crossCurricularLinks...,
		),
		AssessmentCriteria: []material.AssessmentCriterion{
			{
				CompetencyArea: material.KnowledgeSkills,
				Criterion:      fmt.Sprintf("「%s」に関する基本的な知識を理解し、技能を身につけている", m.Title),
				Indicators:     []string{"用語の意味を正しく説明できる", "基本的な問題を正確に解くことができる"},
			},
			{
				CompetencyArea: material.ThinkingExpression,
				Criterion:      "学習した内容を活用して考え、その過程を表現している",
				Indicators:     []string{"根拠を示して自分の考えを説明できる", "他者の考えと比較して考えを深めている"},
			},
			{
				CompetencyArea: material.AttitudeToLearning,
				Criterion:      "粘り強く課題に取り組み、学習を調整しようとしている",
				Indicators:     []string{"課題に主体的に取り組んでいる", "振り返りで次の学習への見通しを書いている"},
			},
		},
		EvaluationMethods: []material.EvaluationMethod{
			{Method: "行動観察", Timing: "授業中", Target: "全員", Tools: []string{"座席表", "チェックリスト"}},
			{Method: "ワークシートの記述分析", Timing: "授業後", Target: "全員", Tools: []string{"ワークシート", "ルーブリック"}},
			{Method: "小テスト", Timing: "次時の冒頭", Target: "全員", Tools: []string{"小テスト"}},
		},
		DifferentiationStrategies: []string{
			"つまずきのある生徒へのヒントカードの用意",
			"早く終えた生徒への発展課題の提示",
		},
		SpecialNeedsSupports: []string{
			"視覚的な手がかりを用いて説明する",
			"指示を短く区切って伝える",
			"活動の見通しを板書で示す",
		},
		ExtensionActivities: unionStrings(
			[]string{"学んだ内容を日常生活の場面に当てはめて考える"},
			extras.extensionActivities...,
		),
		ICTIntegration: material.ICTIntegration{
			Devices:     []string{"タブレット端末", "電子黒板"},
			Software:    []string{"授業支援アプリ", "プレゼンテーションソフト"},
			Purpose:     "考えの共有と可視化",
			StudentRole: "自分の考えを端末で提出し、他者の考えを閲覧する",
			TeacherRole: "提出された考えを整理して全体に提示する",
		},
		DigitalResources: unionBy(
			[]material.DigitalResource{
				{Type: material.ResourceVideo, Name: "NHK for School", Description: "学習内容に関連する教育番組", Usage: "導入で興味関心を高める", URL: "https://www.nhk.or.jp/school/"},
				{Type: material.ResourceQuiz, Name: "確認クイズ", Description: "本時の内容を確認する小テスト", Usage: "まとめで理解度を確認する"},
			},
			extras.digitalResources,
			func(r material.DigitalResource) string { return r.Name },
		),
	}
}

func preparationName(p material.PreparationItem) string {
	return p.Name
}
