package models

import "time"

// Reaction is one active reaction flag. The unique key
// (site_id, post_slug, reaction_key, actor_token) makes each row a boolean
// toggle per actor, not a counter.
type Reaction struct {
	ID          uint64
	SiteID      int64
	PostSlug    string
	ReactionKey string
	ActorToken  string
	CreatedAt   time.Time
}

// ReactionPreset is one entry of the fixed reaction vocabulary.
type ReactionPreset struct {
	Key   string `json:"key"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// ReactionPresets is the full vocabulary. Declaration order is the tie-break
// order for snapshot sorting, so entries must not be reordered casually.
var ReactionPresets = []ReactionPreset{
	{Key: "like", Icon: "👍", Label: "Like"},
	{Key: "love", Icon: "❤️", Label: "Love"},
	{Key: "fire", Icon: "🔥", Label: "Fire"},
	{Key: "clap", Icon: "👏", Label: "Clap"},
	{Key: "laugh", Icon: "😂", Label: "Laugh"},
	{Key: "wow", Icon: "😮", Label: "Wow"},
	{Key: "rocket", Icon: "🚀", Label: "Rocket"},
	{Key: "idea", Icon: "💡", Label: "Idea"},
	{Key: "star", Icon: "⭐", Label: "Star"},
	{Key: "party", Icon: "🎉", Label: "Party"},
	{Key: "eyes", Icon: "👀", Label: "Eyes"},
	{Key: "lion", Icon: "🦁", Label: "Lion"},
	{Key: "dragon", Icon: "🐉", Label: "Dragon"},
	{Key: "coffee", Icon: "☕", Label: "Coffee"},
}

var presetIndex = buildPresetIndex()

func buildPresetIndex() map[string]int {
	idx := make(map[string]int, len(ReactionPresets))
	for i, p := range ReactionPresets {
		idx[p.Key] = i
	}
	return idx
}

// IsValidReactionKey reports whether key belongs to the preset vocabulary.
func IsValidReactionKey(key string) bool {
	_, ok := presetIndex[key]
	return ok
}

// PresetOrder returns the declaration index of a key, or -1 for unknown keys.
func PresetOrder(key string) int {
	if i, ok := presetIndex[key]; ok {
		return i
	}
	return -1
}

// PresetByKey returns the preset for a key; ok is false for unknown keys.
func PresetByKey(key string) (ReactionPreset, bool) {
	if i, ok := presetIndex[key]; ok {
		return ReactionPresets[i], true
	}
	return ReactionPreset{}, false
}

// ReactionItem is one vocabulary entry with its aggregate state for a post.
type ReactionItem struct {
	Key      string `json:"key"`
	Icon     string `json:"icon"`
	Label    string `json:"label"`
	Count    int64  `json:"count"`
	Selected bool   `json:"selected"`
}

// ReactionSnapshot is the per-post aggregate view for one actor.
type ReactionSnapshot struct {
	Items        []ReactionItem `json:"items"`
	Total        int64          `json:"total"`
	SelectedKeys []string       `json:"selected_keys"`
}
