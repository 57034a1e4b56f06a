package models

import "time"

// Resource types a view counter row can be keyed by.
const (
	ResourceTypePost = "post"
	ResourceTypeHome = "home"
)

// NormalizeResourceType maps any input onto exactly "post" or "home";
// ok is false for anything else.
func NormalizeResourceType(resourceType string) (string, bool) {
	switch resourceType {
	case ResourceTypePost:
		return ResourceTypePost, true
	case ResourceTypeHome:
		return ResourceTypeHome, true
	default:
		return "", false
	}
}

// PageView is a monotonic per-resource counter row.
// Primary key (site_id, resource_type, resource_key).
type PageView struct {
	SiteID       int64
	ResourceType string
	ResourceKey  string
	ViewCount    int64
	UpdatedAt    time.Time
}
