package ai

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// Metadata keys understood by TemplateProvider.
const (
	MetaAssistant     = "assistant"
	MetaTitle         = "title"
	MetaSubject       = "subject"
	MetaGrade         = "grade"
	MetaSchoolLevel   = "school_level"
	MetaStandard      = "standard"
	MetaObjective     = "objective"
	MetaLessonFlow    = "lesson_flow"
	MetaTeachingPoint = "teaching_point"
	MetaEvaluation    = "evaluation"
	MetaPreparation   = "preparation"
	MetaQuestion      = "question"
)

const templateModel = "template-v1"

// DefaultTemplates are the canned educational responses. Placeholders of the
// form {key} are replaced with request metadata.
var DefaultTemplates = []string{
	"{assistant}です。「{title}」についてのご質問ですね。\n\n" +
		"この教材は{grade}（{school_level}）向けの{subject}の内容で、学習指導要領の「{standard}」に対応しています。" +
		"まずは「{objective}」を目標に、{lesson_flow}の流れで進めると効果的です。",
	"「{question}」というご質問にお答えします。\n\n" +
		"「{title}」では、特に「{teaching_point}」を意識して指導するとよいでしょう。" +
		"評価は「{evaluation}」を中心に行い、生徒のつまずきを早めに見取ることが大切です。",
	"{assistant}からの提案です。\n\n" +
		"{subject}の「{title}」を扱う際は、事前に「{preparation}」を準備しておきましょう。" +
		"授業は{lesson_flow}の順に構成し、各段階で生徒の考えを引き出す発問を取り入れてください。",
	"「{title}」の指導のポイントを整理します。\n\n" +
		"1. 目標：{objective}\n2. 重点：{teaching_point}\n3. 評価：{evaluation}\n\n" +
		"{school_level}段階の生徒には、具体例から抽象化へと段階的に進めることをおすすめします。",
	"{grade}の生徒にとって「{title}」は、「{standard}」の力を伸ばす大切な学習です。\n\n" +
		"{assistant}としては、グループでの対話を取り入れ、「{teaching_point}」について互いの考えを比較させる活動をおすすめします。",
}

// TemplateProvider composes responses from fixed templates instead of
// calling a model. Which template is used is decided by Picker.
type TemplateProvider struct {
	Templates []string
	// Picker returns an index in [0, n). Defaults to a uniform random pick.
	Picker func(n int) int
}

// NewTemplateProvider creates a provider over DefaultTemplates with a
// uniform random picker.
func NewTemplateProvider() *TemplateProvider {
	return &TemplateProvider{Templates: DefaultTemplates, Picker: rand.IntN}
}

func (p *TemplateProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return CompletionResponse{}, err
	}
	if len(p.Templates) == 0 {
		return CompletionResponse{}, fmt.Errorf("no response templates configured")
	}

	pick := p.Picker
	if pick == nil {
		pick = rand.IntN
	}
	idx := pick(len(p.Templates))
	if idx < 0 || idx >= len(p.Templates) {
		return CompletionResponse{}, fmt.Errorf("template index %d out of range", idx)
	}

	content := Interpolate(p.Templates[idx], req.Metadata)
	input := 0
	for _, m := range req.Messages {
		input += utf8.RuneCountInString(m.Content)
	}
	return CompletionResponse{
		Content:      content,
		Model:        templateModel,
		InputTokens:  input,
		OutputTokens: utf8.RuneCountInString(content),
	}, nil
}

func (p *TemplateProvider) HealthCheck(context.Context) error {
	if len(p.Templates) == 0 {
		return fmt.Errorf("no response templates configured")
	}
	return nil
}

// Interpolate replaces {key} placeholders with values from meta. Unknown
// placeholders are left as-is.
func Interpolate(tmpl string, meta map[string]string) string {
	if len(meta) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(meta)*2)
	for k, v := range meta {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
