package export

import (
	"io"

	"github.com/p-n-ai/materialbank/internal/material"
)

// Sheet names of the material details workbook.
const (
	SheetDetailsOverview    = "教材概要"
	SheetDetailsPreparation = "準備物"
	SheetDetailsCurriculum  = "学習指導要領"
	SheetDetailsEvaluation  = "評価"
	SheetDetailsResources   = "ICT・デジタル教材"
)

// MaterialDetails writes d as an .xlsx workbook to w.
func MaterialDetails(w io.Writer, d material.MaterialDetails) error {
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	steps := []func(*workbook, material.MaterialDetails) error{
		detailsOverview, detailsPreparation, detailsCurriculum, detailsEvaluation, detailsResources,
	}
	for _, step := range steps {
		if err := step(wb, d); err != nil {
			wb.f.Close()
			return err
		}
	}
	return wb.write(w)
}

func detailsOverview(wb *workbook, d material.MaterialDetails) error {
	s := SheetDetailsOverview
	if err := wb.sheet(s, 20, 80); err != nil {
		return err
	}
	if err := wb.header(s, "項目", "内容"); err != nil {
		return err
	}
	fields := []struct {
		label string
		value any
	}{
		{"学習目標", d.LearningObjectives},
		{"前提知識", d.Prerequisites},
		{"対象", d.TargetStudents},
		{"関連単元", d.RelatedUnits},
		{"教科横断", d.CrossCurricularLinks},
		{"個に応じた指導", d.DifferentiationStrategies},
		{"特別な支援", d.SpecialNeedsSupports},
		{"発展的な学習", d.ExtensionActivities},
	}
	for _, f := range fields {
		if err := wb.field(s, f.label, f.value); err != nil {
			return err
		}
	}
	return nil
}

func detailsPreparation(wb *workbook, d material.MaterialDetails) error {
	s := SheetDetailsPreparation
	if err := wb.sheet(s, 14, 30, 10, 8); err != nil {
		return err
	}
	if err := wb.header(s, "区分", "名称", "数量", "任意"); err != nil {
		return err
	}
	for _, p := range d.PreparationItems {
		optional := ""
		if p.Optional {
			optional = "○"
		}
		if err := wb.row(s, string(p.Category), p.Name, p.Quantity, optional); err != nil {
			return err
		}
	}
	wb.blank(s)
	if err := wb.field(s, "必要な機材", d.RequiredEquipment); err != nil {
		return err
	}
	return wb.field(s, "安全上の注意", d.SafetyNotes)
}

func detailsCurriculum(wb *workbook, d material.MaterialDetails) error {
	s := SheetDetailsCurriculum
	if err := wb.sheet(s, 10, 24, 60, 20); err != nil {
		return err
	}
	if err := wb.header(s, "コード", "内容", "説明", "観点"); err != nil {
		return err
	}
	for _, c := range d.CurriculumAlignment {
		if err := wb.row(s, c.Code, c.Title, c.Description, string(c.CompetencyArea)); err != nil {
			return err
		}
	}
	return nil
}

func detailsEvaluation(wb *workbook, d material.MaterialDetails) error {
	s := SheetDetailsEvaluation
	if err := wb.sheet(s, 24, 40, 40); err != nil {
		return err
	}
	if err := wb.header(s, "観点", "規準", "指標"); err != nil {
		return err
	}
	for _, c := range d.AssessmentCriteria {
		if err := wb.row(s, string(c.CompetencyArea), c.Criterion, join(c.Indicators)); err != nil {
			return err
		}
	}
	wb.blank(s)
	if err := wb.header(s, "方法", "時期", "対象", "用具"); err != nil {
		return err
	}
	for _, e := range d.EvaluationMethods {
		if err := wb.row(s, e.Method, e.Timing, e.Target, join(e.Tools)); err != nil {
			return err
		}
	}
	return nil
}

func detailsResources(wb *workbook, d material.MaterialDetails) error {
	s := SheetDetailsResources
	if err := wb.sheet(s, 14, 30, 40, 30, 30); err != nil {
		return err
	}
	ict := d.ICTIntegration
	if err := wb.header(s, "ICT活用", "内容"); err != nil {
		return err
	}
	for _, f := range []struct {
		label string
		value any
	}{
		{"機器", ict.Devices},
		{"ソフトウェア", ict.Software},
		{"目的", ict.Purpose},
		{"生徒の役割", ict.StudentRole},
		{"教師の役割", ict.TeacherRole},
	} {
		if err := wb.field(s, f.label, f.value); err != nil {
			return err
		}
	}

	wb.blank(s)
	if err := wb.header(s, "種類", "名称", "説明", "使い方", "URL"); err != nil {
		return err
	}
	for _, r := range d.DigitalResources {
		if err := wb.row(s, string(r.Type), r.Name, r.Description, r.Usage, r.URL); err != nil {
			return err
		}
	}
	return nil
}
