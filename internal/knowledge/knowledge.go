// Package knowledge holds the static probe and pattern tables consulted
// during context assembly. Content is authored as embedded YAML, one
// document per mode, and loaded once at startup.
package knowledge

import (
	"embed"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gupta362/project-forge/internal/domain"
)

//go:embed mode1.yaml mode2.yaml
var kbFS embed.FS

type modeTable struct {
	Core     string            `yaml:"core"`
	Probes   map[string]string `yaml:"probes"`
	Patterns map[string]string `yaml:"patterns"`
}

// Base is the loaded knowledge base for both modes. Lookups are pure maps
// from stable string keys to static prose fragments. A miss returns empty
// content and is logged: the routing model may supply a hallucinated key,
// so the system degrades instead of failing the turn.
type Base struct {
	modes map[domain.Mode]modeTable
	log   *zap.Logger
}

// Load parses the embedded tables. It fails only on malformed YAML, which
// is a build defect, not a runtime condition.
func Load(log *zap.Logger) (*Base, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Base{modes: make(map[domain.Mode]modeTable), log: log}

	files := map[domain.Mode]string{
		domain.ModeDiscovery: "mode1.yaml",
		domain.ModeEvaluate:  "mode2.yaml",
	}
	for mode, name := range files {
		raw, err := kbFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read knowledge base %s: %w", name, err)
		}
		var table modeTable
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("parse knowledge base %s: %w", name, err)
		}
		b.modes[mode] = table
	}
	return b, nil
}

// CoreInstructions returns the always-injected behavioral rules for a mode.
func (b *Base) CoreInstructions(mode domain.Mode) string {
	return b.modes[mode].Core
}

// LookupProbe returns the probe text for a name, searching all modes.
func (b *Base) LookupProbe(name string) string {
	if name == "" {
		return ""
	}
	for _, table := range b.modes {
		if text, ok := table.Probes[name]; ok {
			return text
		}
	}
	b.log.Warn("probe lookup miss", zap.String("probe", name))
	return ""
}

// LookupPatterns concatenates the pattern texts for the given names,
// skipping (and logging) unknown ones.
func (b *Base) LookupPatterns(names []string) string {
	var parts []string
	for _, name := range names {
		found := false
		for _, table := range b.modes {
			if text, ok := table.Patterns[name]; ok {
				parts = append(parts, text)
				found = true
				break
			}
		}
		if !found {
			b.log.Warn("pattern lookup miss", zap.String("pattern", name))
		}
	}
	return strings.Join(parts, "\n\n")
}

// ProbeNames lists the known probe keys for a mode, for prompt hints.
func (b *Base) ProbeNames(mode domain.Mode) []string {
	table := b.modes[mode]
	names := make([]string, 0, len(table.Probes))
	for name := range table.Probes {
		names = append(names, name)
	}
	return names
}
