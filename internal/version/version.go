// Package version holds the tool version.
package version

import "github.com/Masterminds/semver/v3"

// raw is overridden at link time with -ldflags "-X .../version.raw=x.y.z".
var raw = "0.3.0"

// Current returns the running tool version.
func Current() *semver.Version {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return semver.MustParse("0.0.0-dev")
	}
	return v
}

// String returns the version without a leading "v".
func String() string {
	return Current().String()
}
