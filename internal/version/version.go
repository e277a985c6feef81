// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Postgres star store, Prometheus metrics, scripted tour
// 0.2.0 - Sky tiles (plain and gzip), HTTP tile fetching, search bar
// 0.1.0 - Initial release: 3D star cloud, orbit camera, fly-to, quality tiers
