package llm

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	MinTrashTalk     = 1
	MaxTrashTalk     = 10
	DefaultTrashTalk = 5
	DefaultCharacter = "a sarcastic league commissioner"
)

//go:embed prompts.yaml
var promptsYAML []byte

type promptTable struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
	Levels []struct {
		Max      int    `yaml:"max"`
		Guidance string `yaml:"guidance"`
	} `yaml:"levels"`
}

var loadPrompts = sync.OnceValues(func() (promptTable, error) {
	var table promptTable
	if err := yaml.Unmarshal(promptsYAML, &table); err != nil {
		return promptTable{}, fmt.Errorf("parsing prompts: %w", err)
	}
	return table, nil
})

// Persona is the character the recap is written as.
type Persona struct {
	Character string
	TrashTalk int
}

// Normalized fills a blank character and clamps trash talk into 1..10.
func (p Persona) Normalized() Persona {
	p.Character = strings.TrimSpace(p.Character)
	if p.Character == "" {
		p.Character = DefaultCharacter
	}
	p.TrashTalk = min(max(p.TrashTalk, MinTrashTalk), MaxTrashTalk)
	return p
}

// BuildPrompt returns the system and user messages for a recap of summary.
func BuildPrompt(persona Persona, week int, summary string) (system, user string, err error) {
	table, err := loadPrompts()
	if err != nil {
		return "", "", err
	}

	persona = persona.Normalized()
	guidance := ""
	for _, level := range table.Levels {
		if persona.TrashTalk <= level.Max {
			guidance = level.Guidance
			break
		}
	}

	r := strings.NewReplacer(
		"{character}", persona.Character,
		"{level}", strconv.Itoa(persona.TrashTalk),
		"{guidance}", strings.TrimSpace(guidance),
		"{week}", strconv.Itoa(week),
		"{summary}", summary,
	)
	return strings.TrimSpace(r.Replace(table.System)), strings.TrimSpace(r.Replace(table.User)), nil
}
