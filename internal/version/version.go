package version

// Version is the server release version, overridable at build time
// with -ldflags "-X vidgrab/internal/version.Version=...".
var Version = "0.1.0"
