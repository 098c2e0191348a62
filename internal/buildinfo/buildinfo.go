// Package buildinfo carries the version stamped in with -ldflags, e.g.
//
//	-X voronoi/internal/buildinfo.Version=v1.2.0
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the version, falling back to the commit, for window titles.
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		return Commit
	default:
		return "dev"
	}
}

// String returns all stamped fields for the startup log.
func String() string {
	return Short() + " commit=" + Commit + " date=" + Date
}
