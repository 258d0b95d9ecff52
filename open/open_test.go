package open

import (
	"runtime"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamcap/streamcap/constant"
)

func TestCommand(t *testing.T) {
	Convey("Given a playlist path", t, func() {
		path := "/tmp/playlist.m3u8"

		Convey("A named player should receive the path as its last argument", func() {
			cmd, ok := command(path, "mpv")
			if !ok {
				So(runtime.GOOS, ShouldNotBeIn, []string{constant.Linux, constant.Darwin, constant.Windows, constant.Android})
				return
			}
			So(cmd.Args[len(cmd.Args)-1], ShouldEqual, path)
			So(cmd.Args, ShouldContain, "mpv")
		})

		Convey("The default handler should also receive the path last", func() {
			cmd, ok := command(path, "")
			if !ok {
				return
			}
			So(cmd.Args[len(cmd.Args)-1], ShouldEqual, path)
			So(cmd.Args, ShouldNotContain, "mpv")
		})
	})
}
