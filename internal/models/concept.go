package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Concept is a catalogue entry describing what a learner should be able to explain.
type Concept struct {
	ID        uint           `gorm:"primaryKey"`
	Slug      string         `gorm:"size:160;uniqueIndex"`
	Name      string         `gorm:"size:255;not null"`
	Category  string         `gorm:"size:64;index"`
	GoalsRaw  datatypes.JSON `gorm:"column:learning_goals;type:json"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Goals     []string       `gorm:"-"`
}

// BeforeSave serialises the ordered learning goals.
func (c *Concept) BeforeSave(tx *gorm.DB) error {
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	payload, err := json.Marshal(cleanGoals(c.Goals))
	if err != nil {
		return err
	}
	c.GoalsRaw = datatypes.JSON(payload)
	return nil
}

// AfterFind hydrates learning goals after loading from DB.
func (c *Concept) AfterFind(tx *gorm.DB) error {
	c.Goals = []string{}
	if len(c.GoalsRaw) == 0 {
		return nil
	}
	var goals []string
	if err := json.Unmarshal(c.GoalsRaw, &goals); err != nil {
		return err
	}
	c.Goals = cleanGoals(goals)
	return nil
}

func cleanGoals(goals []string) []string {
	cleaned := make([]string, 0, len(goals))
	for _, goal := range goals {
		trimmed := strings.TrimSpace(goal)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return cleaned
}
