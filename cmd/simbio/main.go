package main

import "github.com/blacktop/simbio/cmd/simbio/cmd"

var (
	version   = ""
	buildtime = ""
)

func main() {
	cmd.AppVersion = version
	cmd.AppBuildTime = buildtime
	cmd.Execute()
}
