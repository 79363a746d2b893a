package engine

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"questline/internal/models"
	"questline/internal/session"
)

// wireReply is the YAML shape the narrator model answers in. Absent fields
// stay nil and mean "no change".
type wireReply struct {
	Content          string   `yaml:"content"`
	Error            string   `yaml:"error,omitempty"`
	NewEnergy        *int     `yaml:"new_energy,omitempty"`
	NewBalance       *int     `yaml:"new_balance,omitempty"`
	Stage            *int     `yaml:"stage,omitempty"`
	ProgressPercent  *float64 `yaml:"progress_percent,omitempty"`
	MissionText      *string  `yaml:"mission_text,omitempty"`
	MissionCompleted bool     `yaml:"mission_completed,omitempty"`
	CompletedStage   *int     `yaml:"completed_stage,omitempty"`
	Suggestions      []string `yaml:"suggestions,omitempty"`
}

const wireErrInsufficientEnergy = "insufficient_energy"

// parseReply strips an optional markdown fence and decodes the YAML body.
func parseReply(raw string) (*models.TurnReply, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```yaml")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")

	var wire wireReply
	if err := yaml.Unmarshal([]byte(clean), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse reply YAML: %v\nOutput was: %s", err, clean)
	}
	if wire.Error == wireErrInsufficientEnergy {
		return nil, session.ErrInsufficientEnergy
	}
	if wire.Content == "" {
		return nil, fmt.Errorf("reply has no content\nOutput was: %s", clean)
	}

	return &models.TurnReply{
		Content:          wire.Content,
		NewEnergy:        wire.NewEnergy,
		NewBalance:       wire.NewBalance,
		Stage:            wire.Stage,
		ProgressPercent:  wire.ProgressPercent,
		MissionText:      wire.MissionText,
		MissionCompleted: wire.MissionCompleted,
		CompletedStage:   wire.CompletedStage,
		Suggestions:      wire.Suggestions,
	}, nil
}
