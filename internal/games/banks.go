package games

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed banks.yaml
var banksYAML []byte

// Banks is the fixed quiz and puzzle content.
type Banks struct {
	Questions []Question `yaml:"questions"`
	Puzzles   []Puzzle   `yaml:"puzzles"`
}

// ParseBanks decodes and checks bank content. Every question's answer must be
// one of its options.
func ParseBanks(raw []byte) (Banks, error) {
	var b Banks
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return Banks{}, fmt.Errorf("games: parse banks: %w", err)
	}
	for i, q := range b.Questions {
		if q.Prompt == "" || len(q.Options) == 0 {
			return Banks{}, fmt.Errorf("games: question %d: prompt and options are required", i)
		}
		if !slices.Contains(q.Options, q.Answer) {
			return Banks{}, fmt.Errorf("games: question %d: answer %q is not an option", i, q.Answer)
		}
	}
	for i, p := range b.Puzzles {
		if p.Clue == "" || p.Answer == "" {
			return Banks{}, fmt.Errorf("games: puzzle %d: emoji and answer are required", i)
		}
	}
	return b, nil
}

var defaultBanks = func() Banks {
	b, err := ParseBanks(banksYAML)
	if err != nil {
		panic(err)
	}
	return b
}()

// DefaultBanks returns a copy of the embedded banks.
func DefaultBanks() Banks {
	return Banks{
		Questions: slices.Clone(defaultBanks.Questions),
		Puzzles:   slices.Clone(defaultBanks.Puzzles),
	}
}
