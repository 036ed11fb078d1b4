package version

// Version is overridden at build time with -ldflags "-X predsim/internal/version.Version=...".
var Version = "0.6.0-dev"
