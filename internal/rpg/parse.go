// Package rpg implements the role-playing engine: each block may mutate the
// character sheet, then either ends the game or asks the player what to do.
package rpg

import (
	"strings"

	"github.com/flexigpt/turnblock-go/internal/blockparse"
	"github.com/flexigpt/turnblock-go/spec"
)

const (
	DefaultTitle    = "RPG"
	DefaultQuestion = "What do you do?"
)

var initKeys = map[string]bool{
	"title":        true,
	"inventory":    true,
	"stats":        true,
	"traits":       true,
	"achievements": true,
}

var turnKeys = map[string]bool{
	"question":     true,
	"options":      true,
	"allow_custom": true,
	"end":          true,
	"end_title":    true,
	"end_message":  true,
	"stats_delta":  true,
	"set_stats":    true,
}

func isInitKey(k string) bool { return initKeys[k] }

// isTurnKey ends a set_stats section.
func isTurnKey(k string) bool {
	return turnKeys[k] || strings.HasPrefix(k, "add_") || strings.HasPrefix(k, "remove_")
}

// ParseInit reads an rpginit block, either a JSON object or key/list lines.
func ParseInit(text string) spec.RPGInit {
	var cfg spec.RPGInit
	if obj, ok := blockparse.DecodeObject(text); ok {
		cfg.Title, _ = obj.String("title")
		cfg.Inventory = obj.Strings("inventory")
		cfg.Stats = obj.Stats("stats")
		cfg.Traits = obj.Strings("traits")
		cfg.Achievements = obj.Strings("achievements")
	} else {
		b := blockparse.Parse(text)
		cfg.Title = b.Scalar("title")
		cfg.Inventory = listOf(b, "inventory")
		cfg.Traits = listOf(b, "traits")
		cfg.Achievements = listOf(b, "achievements")
		cfg.Stats = spec.Stats{}
		if i := b.Index("stats"); i >= 0 {
			entries, _ := b.Section(i, isInitKey)
			cfg.Stats = blockparse.StatsOf(entries)
		}
	}
	if strings.TrimSpace(cfg.Title) == "" {
		cfg.Title = DefaultTitle
	}
	return cfg
}

// ParseTurn reads an rpg block. It never fails.
func ParseTurn(text string) spec.RPGTurn {
	b := blockparse.Parse(text)

	t := spec.RPGTurn{
		Question:    b.Scalar("question"),
		Options:     listOf(b, "options"),
		AllowCustom: parseBool(b.Scalar("allow_custom")),
	}
	if t.Question == "" {
		t.Question = b.FirstLoose()
	}
	if t.Question == "" {
		t.Question = DefaultQuestion
	}

	m := &t.Mutations
	if d := b.Scalar("stats_delta"); d != "" {
		m.StatsDelta = blockparse.ParseDelta(d)
	}
	if i := b.Index("set_stats"); i >= 0 {
		entries, _ := b.Section(i, isTurnKey)
		if len(entries) > 0 {
			m.SetStats = blockparse.StatsOf(entries)
		}
	}
	m.AddInventory, _ = b.List("add_inventory")
	m.RemoveInventory, _ = b.List("remove_inventory")
	m.AddTraits, _ = b.List("add_traits")
	m.RemoveTraits, _ = b.List("remove_traits")
	m.AddAchievements, _ = b.List("add_achievements")

	if b.Has("end") {
		m.End = spec.OutcomeLose
		if strings.EqualFold(strings.TrimSpace(b.Scalar("end")), string(spec.OutcomeWin)) {
			m.End = spec.OutcomeWin
		}
		m.EndTitle = b.Scalar("end_title")
		m.EndMessage = b.Scalar("end_message")
	}
	return t
}

func listOf(b blockparse.Block, key string) []string {
	if items, ok := b.List(key); ok {
		return items
	}
	return []string{}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}
