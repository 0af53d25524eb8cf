package models

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSaveDir is where battle records go when no directory is configured.
const DefaultSaveDir = ".saves"

// BattleRecord is the persisted summary of a battle.
type BattleRecord struct {
	Teams  [2]Team  `yaml:"teams"`
	Winner string   `yaml:"winner,omitempty"` // owner name, empty if abandoned
	Log    []string `yaml:"log"`
}

type teamsFile struct {
	Teams  [2]Team `yaml:"teams"`
	Winner string  `yaml:"winner,omitempty"`
}

type logFile struct {
	Lines []string `yaml:"lines"`
}

// Save writes the record under dir/name.
func (r *BattleRecord) Save(dir, name string) error {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		return err
	}

	teamsData, err := yaml.Marshal(teamsFile{Teams: r.Teams, Winner: r.Winner})
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(path, "teams.yaml"), teamsData, 0644); err != nil {
		return err
	}

	logData, err := yaml.Marshal(logFile{Lines: r.Log})
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(path, "log.yaml"), logData, 0644); err != nil {
		return err
	}

	return nil
}

// LoadRecord reads a record written by Save.
func LoadRecord(dir, name string) (*BattleRecord, error) {
	path := filepath.Join(dir, name)

	teamsData, err := os.ReadFile(filepath.Join(path, "teams.yaml"))
	if err != nil {
		return nil, err
	}
	var teams teamsFile
	if err := yaml.Unmarshal(teamsData, &teams); err != nil {
		return nil, fmt.Errorf("parse teams.yaml: %w", err)
	}

	logData, err := os.ReadFile(filepath.Join(path, "log.yaml"))
	if err != nil {
		return nil, err
	}
	var lines logFile
	if err := yaml.Unmarshal(logData, &lines); err != nil {
		return nil, fmt.Errorf("parse log.yaml: %w", err)
	}

	return &BattleRecord{
		Teams:  teams.Teams,
		Winner: teams.Winner,
		Log:    lines.Lines,
	}, nil
}

// ListRecords returns the names of saved battles in dir.
func ListRecords(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			// teams.yaml marks a complete record
			if _, err := os.Stat(filepath.Join(dir, entry.Name(), "teams.yaml")); err == nil {
				names = append(names, entry.Name())
			}
		}
	}
	return names, nil
}

// TeamSetup is a hand-written team file: heroes by roster id with allocated
// attributes.
type TeamSetup struct {
	Owner  string `yaml:"owner"`
	Heroes []struct {
		ID         string       `yaml:"id"`
		Attributes AttributeSet `yaml:"attributes"`
	} `yaml:"heroes"`
}

// LoadTeams reads a YAML file holding two team setups and builds the teams at
// full health.
func LoadTeams(path string) ([2]Team, error) {
	var out [2]Team
	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	var setups []TeamSetup
	if err := yaml.Unmarshal(data, &setups); err != nil {
		return out, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(setups) != 2 {
		return out, fmt.Errorf("%s: expected 2 teams, got %d", path, len(setups))
	}
	for i, s := range setups {
		team := Team{Owner: s.Owner}
		for _, h := range s.Heroes {
			profile, ok := Hero(h.ID)
			if !ok {
				return out, fmt.Errorf("%s: unknown hero %q", s.Owner, h.ID)
			}
			c, err := NewCombatant(profile, h.Attributes)
			if err != nil {
				return out, fmt.Errorf("%s: %w", s.Owner, err)
			}
			team.Members = append(team.Members, c)
		}
		if err := team.Validate(); err != nil {
			return out, err
		}
		out[i] = team
	}
	return out, nil
}
