package faq

import (
	_ "embed"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

//go:embed corpus.yaml
var defaultCorpus []byte

// Entry is one question/answer pair of the corpus.
type Entry struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

type corpusFile struct {
	Entries []Entry `yaml:"entries"`
}

// DefaultCorpus returns the corpus shipped with the binary.
func DefaultCorpus() ([]Entry, error) {
	return ParseCorpus(defaultCorpus)
}

// LoadCorpus reads a corpus file. An empty path means the embedded corpus.
func LoadCorpus(path string) ([]Entry, error) {
	if path == "" {
		return DefaultCorpus()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faq corpus %s: %w", path, err)
	}
	return ParseCorpus(data)
}

func ParseCorpus(data []byte) ([]Entry, error) {
	var file corpusFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse faq corpus: %w", err)
	}
	for i, e := range file.Entries {
		if e.Question == "" || e.Answer == "" {
			return nil, fmt.Errorf("parse faq corpus: entry %d has an empty question or answer", i)
		}
	}
	return file.Entries, nil
}
