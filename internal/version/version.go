// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.4.0"

// Milestones:
// 0.4.0 - Redis-backed navigation store, debounced background regeneration
// 0.3.0 - Camera flight into the Level 1 star, level screen, --fly
// 0.2.0 - LOD tiers, dust lanes near the core, orbit controls
// 0.1.0 - Initial release: terminal galaxy renderer, --summary and --snapshot-path
