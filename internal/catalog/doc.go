// Package catalog builds the ordered list of notification sounds offered to the user.
// It merges a synthetic "system default" entry with the entries reported by a platform
// Enumerator, skipping entries that cannot be resolved, dropping duplicate ids and
// capping the enumerated part of the list.
package catalog
