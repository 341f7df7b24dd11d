package version

var (
	Version = "0.1.0-alpha"

	// git hash should be filled by:
	// 	go build -ldflags="-X github.com/tboxgraph/tbox/version.GitHash=xxxx"

	GitHash   = "dev snapshot"
	BuildDate string
)
