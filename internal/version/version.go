package version

// set at build time with -ldflags "-X github.com/Layr-Labs/txguard/internal/version.Version=..."
var (
	Version = "unknown"
	Commit  = "unknown"
)

func GetVersion() string {
	return Version
}

func GetCommit() string {
	return Commit
}
