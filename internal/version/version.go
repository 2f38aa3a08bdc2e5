// Package version holds the single version string stamped into builds.
package version

const Version = "0.1.0"
