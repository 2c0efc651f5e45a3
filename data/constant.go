package data

const (
	DatePatternCompact = "20060102"
	DateTimePattern    = "2006-01-02 15:04:05"

	RunModeDev     = "dev"
	RunModeTest    = "test"
	RunModeRelease = "release"

	DefaultPort      = 8080
	DefaultDataDir   = "./test"
	DefaultRedisAddr = "localhost:6379"

	RequestIdHeader = "X-Request-Id"
)
