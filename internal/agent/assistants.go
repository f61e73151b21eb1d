package agent

import (
	"slices"

	"github.com/p-n-ai/materialbank/internal/classify"
)

// Assistant is a chat persona with declared subject expertise.
type Assistant struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Expertise   []classify.Subject `json:"expertise"`
}

// GeneralAssistant answers when no specialist matches.
var GeneralAssistant = Assistant{
	ID:          "general",
	Name:        "総合学習アシスタント",
	Description: "教科を問わず授業づくりを支援します",
	Expertise:   []classify.Subject{},
}

// Assistants lists the specialist personas in matching order.
var Assistants = []Assistant{
	{
		ID:          "math",
		Name:        "数学アシスタント",
		Description: "算数・数学の教材研究と指導法を支援します",
		Expertise:   []classify.Subject{classify.Math},
	},
	{
		ID:          "science",
		Name:        "理科アシスタント",
		Description: "観察・実験を中心とした理科の授業を支援します",
		Expertise:   []classify.Subject{classify.Science},
	},
	{
		ID:          "language",
		Name:        "言語アシスタント",
		Description: "国語・英語の言語活動を支援します",
		Expertise:   []classify.Subject{classify.Japanese, classify.English},
	},
	{
		ID:          "social",
		Name:        "社会科アシスタント",
		Description: "社会科・道徳の資料活用や話し合い活動を支援します",
		Expertise:   []classify.Subject{classify.Social, classify.Moral},
	},
	{
		ID:          "tech",
		Name:        "情報・技術アシスタント",
		Description: "情報活用能力やものづくりの学習を支援します",
		Expertise:   []classify.Subject{classify.Information, classify.Technology},
	},
}

// SelectAssistant returns the first assistant whose expertise includes
// subject, or GeneralAssistant.
func SelectAssistant(subject classify.Subject) Assistant {
	for _, a := range Assistants {
		if slices.Contains(a.Expertise, subject) {
			return a
		}
	}
	return GeneralAssistant
}
