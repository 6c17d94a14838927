// Package catalog loads the looper configuration: which instrument groups
// exist, which samples each of them offers and where those samples live.
package catalog

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"tjweldon/looper/src/timing"
)

type Config struct {
	LogLevel string `yaml:"log_level"`

	Audio  AudioConfig  `yaml:"audio"`
	Assets AssetsConfig `yaml:"assets"`
	Groups []Group      `yaml:"groups"`

	// Samples maps a sample identifier to its asset location
	Samples map[string]string `yaml:"samples"`
}

type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`

	// Buffer is how much audio the output device holds
	Buffer   time.Duration `yaml:"buffer"`
	LeadTime time.Duration `yaml:"lead_time"`
	Ramp     time.Duration `yaml:"ramp"`
	// MasterVolume is in beep's log2 units, 0 leaves the mix untouched
	MasterVolume float64 `yaml:"master_volume"`
	// Backend is one of "speaker", "oto" or "headless"
	Backend string `yaml:"backend"`
}

type AssetsConfig struct {
	Root    string    `yaml:"root"`
	BaseURL string    `yaml:"base_url"`
	GCS     GCSConfig `yaml:"gcs"`
}

type GCSConfig struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Group is one instrument layer and the samples it can play. The first
// option is selected when the session starts.
type Group struct {
	ID      string   `yaml:"id"`
	Label   string   `yaml:"label"`
	Options []string `yaml:"options"`
}

// Default is the drums, bass and piano set the looper ships with
func Default() *Config {
	cfg := &Config{
		Groups: []Group{
			{ID: "drums", Label: "Drums", Options: []string{"Drums 1", "Drums 2"}},
			{ID: "bass", Label: "Bass", Options: []string{"Bass 1", "Bass 2"}},
			{ID: "piano", Label: "Piano", Options: []string{"Piano 1", "Piano 2"}},
		},
		Samples: map[string]string{
			"Drums 1": "drums-1.mp3", "Drums 2": "drums-2.mp3",
			"Bass 1": "bass-1.mp3", "Bass 2": "bass-2.mp3",
			"Piano 1": "piano-1.mp3", "Piano 2": "piano-2.mp3",
		},
	}
	cfg.setDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	if len(config.Groups) == 0 && len(config.Samples) == 0 {
		def := Default()
		config.Groups, config.Samples = def.Groups, def.Samples
	}
	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "normal"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.Buffer == 0 {
		c.Audio.Buffer = 100 * time.Millisecond
	}
	if c.Audio.LeadTime == 0 {
		c.Audio.LeadTime = timing.LeadTime
	}
	if c.Audio.Ramp == 0 {
		c.Audio.Ramp = timing.RampConstant
	}
	if c.Audio.Backend == "" {
		c.Audio.Backend = "speaker"
	}
	if c.Assets.Root == "" {
		c.Assets.Root = "samples"
	}
	for i, g := range c.Groups {
		if g.Label == "" {
			c.Groups[i].Label = g.ID
		}
	}
}

// Validate checks that the catalog resolves completely. A partial catalog
// is an error, never a partially playable session.
func (c *Config) Validate() error {
	if len(c.Groups) == 0 {
		return errors.New("catalog has no groups")
	}
	if c.Audio.SampleRate <= 0 {
		return errors.Errorf("invalid sample rate %d", c.Audio.SampleRate)
	}
	if c.Audio.LeadTime < 0 || c.Audio.Ramp < 0 {
		return errors.New("lead time and ramp must not be negative")
	}
	switch c.Audio.Backend {
	case "speaker", "oto", "headless":
	default:
		return errors.Errorf("unknown audio backend %q", c.Audio.Backend)
	}

	seen := map[string]bool{}
	for _, g := range c.Groups {
		if g.ID == "" {
			return errors.New("group without id")
		}
		if seen[g.ID] {
			return errors.Errorf("duplicate group %q", g.ID)
		}
		seen[g.ID] = true

		if len(g.Options) == 0 {
			return errors.Errorf("group %q offers no samples", g.ID)
		}
		for _, o := range g.Options {
			if loc, ok := c.Samples[o]; !ok || loc == "" {
				return errors.Errorf("group %q: sample %q has no location", g.ID, o)
			}
		}
	}
	return nil
}

// SampleIDs lists every sample offered by some group, each once, in group
// order
func (c *Config) SampleIDs() []string {
	var ids []string
	seen := map[string]bool{}
	for _, g := range c.Groups {
		for _, o := range g.Options {
			if !seen[o] {
				seen[o] = true
				ids = append(ids, o)
			}
		}
	}
	return ids
}

// Group returns the group with the given id
func (c *Config) Group(id string) (Group, bool) {
	for _, g := range c.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

func (g Group) String() string {
	return fmt.Sprintf("%s %v", g.Label, g.Options)
}
