package animation

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/clips.yaml
var builtinClips []byte

// BuiltinClips returns the clips shipped with the binary.
func BuiltinClips() ([]Clip, error) {
	return parseClips(builtinClips)
}

// LoadClipsFile reads a clip table from a YAML file on disk.
func LoadClipsFile(path string) ([]Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip file: %w", err)
	}
	return parseClips(data)
}

func parseClips(data []byte) ([]Clip, error) {
	var raw clipFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse clip YAML: %w", err)
	}
	for i, c := range raw.Clips {
		if c.Trigger == "" {
			return nil, fmt.Errorf("%w: clip %d has no trigger", ErrInvalidClip, i)
		}
		if c.Duration <= 0 || c.Hold < 0 {
			return nil, fmt.Errorf("%w: clip %q has bad timing", ErrInvalidClip, c.Trigger)
		}
		if c.Name == "" {
			raw.Clips[i].Name = c.Trigger
		}
	}
	return raw.Clips, nil
}
