package curriculum

import "github.com/p-n-ai/materialbank/internal/classify"

// Standard is one curriculum standard descriptor for a school level and subject.
type Standard struct {
	Code           string   `yaml:"code" json:"code"`
	Title          string   `yaml:"title" json:"title"`
	Description    string   `yaml:"description" json:"description"`
	Skills         []string `yaml:"skills" json:"skills"`
	KnowledgeAreas []string `yaml:"knowledge_areas" json:"knowledgeAreas"`
}

// standardsFile is the on-disk layout of a standards YAML file.
type standardsFile struct {
	Version   int                                                   `yaml:"version"`
	Standards map[classify.SchoolLevel]map[classify.Subject][]Standard `yaml:"standards"`
}
