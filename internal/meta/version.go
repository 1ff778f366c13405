package meta

import (
	"fmt"
	"runtime"
	"strings"
)

// Info describes the build context info for a tsquery binary.
//
// It encapsulates a bunch of information that's included at build time
// by the Go linker. See the vars below for more information
//
type Info struct {
	Version   string
	Build     string
	Branch    string
	BuildTime string
	Platform  string
	GoVersion string
	GoTag     string
}

// These will be filled in using the linker -X flag
var (
	// Version as an arbitrary string
	Version = "dev"

	// Build is the Git sha from when we are building
	Build string

	// Branch is the Git branch that we are building from
	Branch string

	// BuildTimeUTC is the build time in UTC (year/month/day hour:min:sec)
	BuildTimeUTC string

	// Go Tag is the Go build tags. See the following references for more info.
	//
	// * https://golang.org/pkg/go/build/#hdr-Build_Constraints
	//
	GoTag string

	platform = fmt.Sprintf("%s %s", runtime.GOOS, runtime.GOARCH)
)

// GetInfo returns an Info struct populated with the build information.
func GetInfo() Info {
	return Info{
		GoVersion: runtime.Version(),
		Version:   Version,
		Build:     Build,
		Branch:    Branch,
		BuildTime: BuildTimeUTC,
		GoTag:     GoTag,
		Platform:  platform,
	}
}

// String renders the info one field per line, skipping unset fields.
func (i Info) String() string {
	var b strings.Builder

	fields := []struct{ name, value string }{
		{"Version", i.Version},
		{"Build", i.Build},
		{"Branch", i.Branch},
		{"Built", i.BuildTime},
		{"Platform", i.Platform},
		{"Go", i.GoVersion},
		{"Tags", i.GoTag},
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}

		fmt.Fprintf(&b, "%-9s %s\n", f.name+":", f.value)
	}

	return b.String()
}
