package rpg

import (
	"fmt"
	"slices"
	"strings"

	"github.com/flexigpt/turnblock-go/spec"
)

// Apply runs the directives of m against s in a fixed order: stat deltas,
// stat overwrites, inventory, traits, achievements. Adding a present item or
// removing an absent one is a no-op. It reports whether s changed.
//
// Apply does not handle End; see EndScreenFor.
func Apply(s *spec.RPGState, m spec.Mutations) bool {
	changed := false

	for _, d := range m.StatsDelta {
		if !d.Value.IsNumber() {
			continue
		}
		cur, _ := s.Stats.Get(d.Name)
		s.Stats.Set(d.Name, cur.Add(d.Value))
		changed = true
	}
	for _, st := range m.SetStats {
		s.Stats.Set(st.Name, st.Value)
		changed = true
	}

	changed = addAll(&s.Inventory, m.AddInventory) || changed
	changed = removeAll(&s.Inventory, m.RemoveInventory) || changed
	changed = addAll(&s.Traits, m.AddTraits) || changed
	changed = removeAll(&s.Traits, m.RemoveTraits) || changed
	changed = addAll(&s.Achievements, m.AddAchievements) || changed
	return changed
}

func addAll(list *[]string, items []string) bool {
	changed := false
	for _, it := range items {
		if !slices.Contains(*list, it) {
			*list = append(*list, it)
			changed = true
		}
	}
	return changed
}

// removeAll drops the first occurrence of each item.
func removeAll(list *[]string, items []string) bool {
	changed := false
	for _, it := range items {
		if i := slices.Index(*list, it); i >= 0 {
			*list = slices.Delete(*list, i, i+1)
			changed = true
		}
	}
	return changed
}

// EndScreenFor builds the end screen of a terminal block, filling in the
// default title and message of the outcome.
func EndScreenFor(m spec.Mutations) spec.EndScreen {
	e := spec.EndScreen{Outcome: m.End, Title: m.EndTitle, Message: m.EndMessage}
	if e.Outcome != spec.OutcomeWin {
		e.Outcome = spec.OutcomeLose
	}
	win := e.Outcome == spec.OutcomeWin
	if e.Title == "" {
		e.Title = "Defeat 💀"
		if win {
			e.Title = "Victory! 🏆"
		}
	}
	if e.Message == "" {
		e.Message = "Your journey ends here."
		if win {
			e.Message = "You achieved your goal."
		}
	}
	return e
}

// Reset starts a new game: the title is kept, the sheet is emptied, and
// achievements survive when keepAchievements is set.
func Reset(s *spec.RPGState, keepAchievements bool) {
	ach := []string{}
	if keepAchievements {
		ach = slices.Clone(s.Achievements)
		if ach == nil {
			ach = []string{}
		}
	}
	title := s.Title
	if title == "" {
		title = DefaultTitle
	}
	*s = spec.RPGState{
		Title:        title,
		Inventory:    []string{},
		Stats:        spec.Stats{},
		Traits:       []string{},
		Achievements: ach,
	}
}

// FromInit is the starting sheet described by an rpginit block.
func FromInit(cfg spec.RPGInit) spec.RPGState {
	s := spec.RPGState{
		Title:        cfg.Title,
		Inventory:    slices.Clone(cfg.Inventory),
		Stats:        cfg.Stats.Clone(),
		Traits:       slices.Clone(cfg.Traits),
		Achievements: slices.Clone(cfg.Achievements),
	}
	return s.Clone()
}

var itemDecorations = map[string]string{
	"torch":  "🕯️ Torch",
	"rope":   "🧵 Rope",
	"potion": "🧪 Potion",
	"sword":  "🗡️ Sword",
	"shield": "🛡️ Shield",
	"key":    "🗝️ Key",
	"map":    "🗺️ Map",
}

// DecorateItem is the display label of an inventory item.
func DecorateItem(name string) string {
	nm := strings.TrimSpace(name)
	if d, ok := itemDecorations[strings.ToLower(nm)]; ok {
		return d
	}
	return "🎒 " + nm
}

// Summary is the header line under the title.
func Summary(s spec.RPGState) string {
	return fmt.Sprintf("Stats: %d · Inventory: %d", len(s.Stats), len(s.Inventory))
}
