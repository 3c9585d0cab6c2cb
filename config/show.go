package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/robmorgan/playhead/axis"
	"github.com/robmorgan/playhead/interval"
	"gopkg.in/yaml.v3"
)

// ShowCue is one cue definition from a show file: an interval on the
// show axis plus the payload the renderer needs.
type ShowCue struct {
	Key       string  `yaml:"key"`
	Low       float64 `yaml:"low"`
	High      float64 `yaml:"high"`
	LowOpen   bool    `yaml:"low_open"`
	HighOpen  bool    `yaml:"high_open"`
	Text      string  `yaml:"text"`
	Color     string  `yaml:"color"`
	Fixture   string  `yaml:"fixture"`
	Intensity float64 `yaml:"intensity"`
}

// ShowVector is the initial playhead motion of a show.
type ShowVector struct {
	Position     float64 `yaml:"position"`
	Velocity     float64 `yaml:"velocity"`
	Acceleration float64 `yaml:"acceleration"`
}

// Show is a full show definition.
type Show struct {
	Name   string     `yaml:"name"`
	Vector ShowVector `yaml:"vector"`
	Cues   []ShowCue  `yaml:"cues"`
}

// LoadShow reads and parses a YAML show file. Cues without a key get a
// generated one.
func LoadShow(path string) (*Show, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading show file %s: %w", path, err)
	}
	var show Show
	if err := yaml.Unmarshal(data, &show); err != nil {
		return nil, fmt.Errorf("parsing show file %s: %w", path, err)
	}
	for i := range show.Cues {
		if show.Cues[i].Key == "" {
			show.Cues[i].Key = uuid.NewString()
		}
	}
	return &show, nil
}

// Batch converts the show's cues into an axis update batch.
func (s *Show) Batch() ([]axis.Op[string, ShowCue], error) {
	ops := make([]axis.Op[string, ShowCue], 0, len(s.Cues))
	for _, c := range s.Cues {
		itv, err := interval.New(c.Low, c.High, !c.LowOpen, !c.HighOpen)
		if err != nil {
			return nil, fmt.Errorf("cue %q: %w", c.Key, err)
		}
		ops = append(ops, axis.Op[string, ShowCue]{Key: c.Key, Interval: itv, Data: c})
	}
	return ops, nil
}
