package constant

// runtime.GOOS values with platform-specific handling in check and open.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)
