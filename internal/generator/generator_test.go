package generator_test

import (
	"reflect"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/p-n-ai/materialbank/internal/classify"
	"github.com/p-n-ai/materialbank/internal/curriculum"
	"github.com/p-n-ai/materialbank/internal/generator"
	"github.com/p-n-ai/materialbank/internal/material"
)

func newGenerator(t *testing.T) (*generator.Generator, *curriculum.Loader) {
	t.Helper()
	loader, err := curriculum.NewLoader()
	if err != nil {
		t.Fatalf("curriculum.NewLoader() error = %v", err)
	}
	return generator.New(loader, nil), loader
}

func TestPhaseDurations_PartitionTotal(t *testing.T) {
	for d := 1; d <= 600; d++ {
		intro, dev, concl := generator.PhaseDurations(d)
		if intro+dev+concl != d {
			t.Fatalf("PhaseDurations(%d) = %d+%d+%d, want sum %d", d, intro, dev, concl, d)
		}
		if intro != d*15/100 || dev != d*70/100 {
			t.Fatalf("PhaseDurations(%d) = %d, %d; want floored 15%% and 70%%", d, intro, dev)
		}
	}
}

func TestPhaseDurations_Examples(t *testing.T) {
	tests := []struct {
		total                   int
		intro, dev, conclusion int
	}{
		{45, 6, 31, 8},
		{50, 7, 35, 8},
		{30, 4, 21, 5},
		{100, 15, 70, 15},
		{1, 0, 0, 1},
		{0, 0, 0, 0},
	}
	for _, tt := range tests {
		intro, dev, concl := generator.PhaseDurations(tt.total)
		if intro != tt.intro || dev != tt.dev || concl != tt.conclusion {
			t.Errorf("PhaseDurations(%d) = %d/%d/%d, want %d/%d/%d",
				tt.total, intro, dev, concl, tt.intro, tt.dev, tt.conclusion)
		}
	}
}

func TestTotalLessons(t *testing.T) {
	tests := []struct {
		duration int
		want     int
	}{
		{45, 1},
		{46, 2},
		{90, 2},
		{91, 3},
		{1, 1},
		{0, 1},
	}
	for _, tt := range tests {
		if got := generator.TotalLessons(tt.duration); got != tt.want {
			t.Errorf("TotalLessons(%d) = %d, want %d", tt.duration, got, tt.want)
		}
	}
}

func TestLessonGuide_HighSchoolMathScenario(t *testing.T) {
	g, _ := newGenerator(t)
	m := material.Material{Title: "二次関数", Subject: "数学", Grade: "高校1年生", Duration: 45, Difficulty: 3}

	guide := g.LessonGuide(m, nil)

	phases := guide.LessonPlan.Phases
	if len(phases) != 3 {
		t.Fatalf("phases = %d, want 3", len(phases))
	}
	wantNames := []string{"導入", "展開", "まとめ"}
	wantDurations := []int{6, 31, 8}
	sum := 0
	for i, p := range phases {
		if p.Name != wantNames[i] {
			t.Errorf("phase[%d].Name = %q, want %q", i, p.Name, wantNames[i])
		}
		if p.Duration != wantDurations[i] {
			t.Errorf("phase[%d].Duration = %d, want %d", i, p.Duration, wantDurations[i])
		}
		sum += p.Duration
	}
	if sum != 45 || guide.LessonPlan.TotalDuration != 45 {
		t.Errorf("phase sum = %d, total = %d, want 45", sum, guide.LessonPlan.TotalDuration)
	}
	if guide.TotalLessons != 1 {
		t.Errorf("TotalLessons = %d, want 1", guide.TotalLessons)
	}
	if guide.LessonNumber != "第1時" {
		t.Errorf("LessonNumber = %q, want 第1時", guide.LessonNumber)
	}
}

func TestLessonGuide_ActivitySplitsAreFloored(t *testing.T) {
	g, _ := newGenerator(t)
	guide := g.LessonGuide(material.Material{Title: "t", Subject: "数学", Grade: "中学1年生", Duration: 45}, nil)

	// 展開 is 31 minutes split 40/40/20: 12 + 12 + 6 leaves one minute unassigned.
	dev := guide.LessonPlan.Phases[1]
	var got []int
	total := 0
	for _, a := range dev.Activities {
		got = append(got, a.Duration)
		total += a.Duration
	}
	if !slices.Equal(got, []int{12, 12, 6}) {
		t.Errorf("development activities = %v, want [12 12 6]", got)
	}
	if total != 30 {
		t.Errorf("activity total = %d, want 30 (floored, not reconciled to 31)", total)
	}
}

func TestLessonGuide_LessonGoals(t *testing.T) {
	g, loader := newGenerator(t)

	t.Run("with standard", func(t *testing.T) {
		m := material.Material{Title: "比例", Subject: "数学", Grade: "中学1年生", Duration: 50}
		first := loader.Standards(classify.JuniorHigh, classify.Math)[0]

		goals := g.LessonGuide(m, nil).LessonGoals
		if len(goals) != 3 {
			t.Fatalf("LessonGoals = %d, want 3", len(goals))
		}
		for i, area := range material.CompetencyAreas {
			if goals[i].CompetencyArea != area {
				t.Errorf("goal[%d] area = %s, want %s", i, goals[i].CompetencyArea, area)
			}
		}
		if !strings.Contains(goals[0].Goal, first.Title) {
			t.Errorf("knowledge goal = %q, want it to mention %q", goals[0].Goal, first.Title)
		}
		if !slices.Equal(goals[0].Indicators, first.Skills) {
			t.Errorf("knowledge indicators = %v, want %v", goals[0].Indicators, first.Skills)
		}
	})

	t.Run("without standard", func(t *testing.T) {
		m := material.Material{Title: "彫刻", Subject: "美術", Grade: "小学6年生", Duration: 45}
		goals := g.LessonGuide(m, nil).LessonGoals
		if !strings.Contains(goals[0].Goal, "彫刻") {
			t.Errorf("knowledge goal = %q, want generic goal mentioning the title", goals[0].Goal)
		}
	})
}

func TestLessonGuide_DetailsMerge(t *testing.T) {
	g, _ := newGenerator(t)
	m := material.Material{Title: "電流", Subject: "理科", Grade: "中学2年生", Duration: 50}
	details := &material.MaterialDetails{
		PreparationItems: []material.PreparationItem{
			{Category: material.CategoryEquipment, Name: "電流計"},
			{Category: material.CategoryMaterial, Name: "教科書"},
			{Category: material.CategoryDigital, Name: "動画", Optional: true},
		},
		DifferentiationStrategies: []string{"ヒントカード", "発展課題"},
	}

	guide := g.LessonGuide(m, details)

	for _, p := range guide.LessonPlan.Phases {
		if !slices.Contains(p.Materials, "電流計") {
			t.Errorf("phase %s materials = %v, want 電流計", p.Name, p.Materials)
		}
		if slices.Contains(p.Materials, "動画") {
			t.Errorf("phase %s should not include optional items", p.Name)
		}
		count := 0
		for _, name := range p.Materials {
			if name == "教科書" {
				count++
			}
		}
		if count > 1 {
			t.Errorf("phase %s lists 教科書 %d times", p.Name, count)
		}
	}

	if len(guide.TeachingStrategies) != 5 {
		t.Fatalf("TeachingStrategies = %d, want 3 baseline + 2", len(guide.TeachingStrategies))
	}
	if guide.TeachingStrategies[3].Strategy != "ヒントカード" || guide.TeachingStrategies[4].Strategy != "発展課題" {
		t.Errorf("extra strategies = %q, %q", guide.TeachingStrategies[3].Strategy, guide.TeachingStrategies[4].Strategy)
	}
}

func TestLessonGuide_BoardPlan(t *testing.T) {
	g, _ := newGenerator(t)
	desc := strings.Repeat("あ", 150)
	guide := g.LessonGuide(material.Material{Title: "天気", Subject: "理科", Grade: "小学5年生", Duration: 45, Description: desc}, nil)

	layout := guide.BoardPlan.Layout
	if len(layout) != 3 {
		t.Fatalf("board sections = %d, want 3", len(layout))
	}
	positions := []material.BoardPosition{material.BoardLeft, material.BoardCenter, material.BoardRight}
	for i, s := range layout {
		if s.Position != positions[i] {
			t.Errorf("section[%d] position = %s, want %s", i, s.Position, positions[i])
		}
	}
	excerpt := layout[0].Content[1]
	if utf8.RuneCountInString(excerpt) != 100 {
		t.Errorf("excerpt = %d runes, want 100", utf8.RuneCountInString(excerpt))
	}
	if !strings.Contains(layout[0].Content[0], "天気") {
		t.Errorf("left section = %v, want the title", layout[0].Content)
	}
}

func TestLessonGuide_EvaluationAndBoilerplate(t *testing.T) {
	g, _ := newGenerator(t)
	guide := g.LessonGuide(material.Material{Title: "t", Subject: "社会", Grade: "中学2年生", Duration: 100}, nil)

	if len(guide.EvaluationPlan.FormativeAssessment) != 3 {
		t.Errorf("formative entries = %d, want 3", len(guide.EvaluationPlan.FormativeAssessment))
	}
	s := guide.EvaluationPlan.SummativeAssessment
	if s == nil {
		t.Fatal("SummativeAssessment should be set")
	}
	for _, tier := range []string{"A：", "B：", "C："} {
		if !strings.Contains(s.Rubric, tier) {
			t.Errorf("rubric missing tier %q", tier)
		}
	}
	if !strings.Contains(guide.Homework, "社会") || !strings.Contains(guide.NextLessonPreview, "社会") {
		t.Error("homework and preview should mention the subject")
	}
	if guide.TotalLessons != 3 {
		t.Errorf("TotalLessons = %d, want 3", guide.TotalLessons)
	}
}

func TestMaterialDetails_ScienceScenario(t *testing.T) {
	g, _ := newGenerator(t)
	details := g.MaterialDetails(material.Material{Title: "化学変化", Subject: "理科", Grade: "中学3年生", Duration: 50})

	var names []string
	for _, p := range details.PreparationItems {
		names = append(names, p.Name)
	}
	for _, want := range []string{"教科書", "ワークシート", "提示用スライド", "実験器具セット", "実験ノート"} {
		if !slices.Contains(names, want) {
			t.Errorf("preparation items %v missing %q", names, want)
		}
	}
	if len(details.SafetyNotes) < 2 {
		t.Errorf("science should add safety notes, got %v", details.SafetyNotes)
	}
}

func TestMaterialDetails_BaselineOnly(t *testing.T) {
	g, _ := newGenerator(t)
	details := g.MaterialDetails(material.Material{Title: "合唱", Subject: "音楽", Grade: "中学1年生", Duration: 50})

	if len(details.PreparationItems) != 3 {
		t.Errorf("preparation items = %d, want the 3 baseline items", len(details.PreparationItems))
	}
	if len(details.CurriculumAlignment) != 0 {
		t.Errorf("alignment = %v, want none for a subject without standards", details.CurriculumAlignment)
	}
}

func TestMaterialDetails_MergeDedupesByName(t *testing.T) {
	g, _ := newGenerator(t)
	details := g.MaterialDetails(material.Material{Title: "実験", Subject: "理科", Grade: "中学1年生", Duration: 50})

	seen := map[string]bool{}
	for _, p := range details.PreparationItems {
		if seen[p.Name] {
			t.Errorf("duplicate preparation item %q", p.Name)
		}
		seen[p.Name] = true
	}
	equipment := map[string]bool{}
	for _, e := range details.RequiredEquipment {
		if equipment[e] {
			t.Errorf("duplicate equipment %q", e)
		}
		equipment[e] = true
	}
}

// Alignments are tagged 知識・技能 even when the standard is about something
// else. This pins current behavior.
func TestMaterialDetails_AlignmentAlwaysKnowledgeSkills(t *testing.T) {
	g, _ := newGenerator(t)
	details := g.MaterialDetails(material.Material{Title: "たし算", Subject: "算数", Grade: "小学1年生", Duration: 45})

	var codes []string
	for _, a := range details.CurriculumAlignment {
		codes = append(codes, a.Code)
		if a.CompetencyArea != material.KnowledgeSkills {
			t.Errorf("alignment %s area = %s, want 知識・技能", a.Code, a.CompetencyArea)
		}
	}
	if !slices.Equal(codes, []string{"A-1", "B-1"}) {
		t.Errorf("alignment codes = %v, want [A-1 B-1]", codes)
	}
}

func TestGenerators_SequencesNeverNil(t *testing.T) {
	g, _ := newGenerator(t)
	materials := []material.Material{
		{Title: "二次関数", Subject: "数学", Grade: "高校1年生", Duration: 45},
		{Title: "化学変化", Subject: "理科", Grade: "中学3年生", Duration: 50},
		{Title: "?", Subject: "ロボット", Grade: "大学", Duration: 1},
		{},
	}
	for _, m := range materials {
		details := g.MaterialDetails(m)
		assertNoNil(t, "MaterialDetails", reflect.ValueOf(details))
		assertNoNil(t, "LessonGuide", reflect.ValueOf(g.LessonGuide(m, nil)))
		assertNoNil(t, "LessonGuide+details", reflect.ValueOf(g.LessonGuide(m, &details)))
	}
}

func TestGenerators_Deterministic(t *testing.T) {
	g, _ := newGenerator(t)
	m := material.Material{Title: "一次関数", Subject: "数学", Grade: "中学2年生", Duration: 50, Description: "傾きと切片"}

	d1, d2 := g.MaterialDetails(m), g.MaterialDetails(m)
	if !reflect.DeepEqual(d1, d2) {
		t.Error("MaterialDetails should be deterministic")
	}
	if !reflect.DeepEqual(g.LessonGuide(m, &d1), g.LessonGuide(m, &d2)) {
		t.Error("LessonGuide should be deterministic")
	}
}

func TestGenerators_ResultsDoNotShareState(t *testing.T) {
	g, _ := newGenerator(t)
	m := material.Material{Title: "t", Subject: "理科", Grade: "中学1年生", Duration: 50}

	first := g.MaterialDetails(m)
	first.PreparationItems[0].Name = "changed"
	first.LearningObjectives[0] = "changed"

	second := g.MaterialDetails(m)
	if second.PreparationItems[0].Name == "changed" || second.LearningObjectives[0] == "changed" {
		t.Error("mutating one result should not leak into the next")
	}
}

func TestGenerator_NilStandardsSource(t *testing.T) {
	g := generator.New(nil, nil)
	details := g.MaterialDetails(material.Material{Title: "t", Subject: "数学", Grade: "小学1年生", Duration: 45})
	if details.CurriculumAlignment == nil || len(details.CurriculumAlignment) != 0 {
		t.Errorf("alignment = %v, want empty non-nil", details.CurriculumAlignment)
	}
}

// assertNoNil fails if any slice or map reachable from v is nil.
func assertNoNil(t *testing.T, path string, v reflect.Value) {
	t.Helper()
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			t.Errorf("%s is nil", path)
			return
		}
		for i := 0; i < v.Len(); i++ {
			assertNoNil(t, path+"[]", v.Index(i))
		}
	case reflect.Map:
		if v.IsNil() {
			t.Errorf("%s is nil", path)
			return
		}
		iter := v.MapRange()
		for iter.Next() {
			assertNoNil(t, path+"{}", iter.Value())
		}
	case reflect.Pointer:
		if !v.IsNil() {
			assertNoNil(t, path, v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			assertNoNil(t, path+"."+v.Type().Field(i).Name, v.Field(i))
		}
	}
}
