package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevision(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		info *debug.BuildInfo
		want string
		ok   bool
	}{
		"no build info": {
			want: "unknown",
		},
		"no vcs settings": {
			info: &debug.BuildInfo{},
			ok:   true,
			want: "unknown",
		},
		"clean": {
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "false"},
			}},
			ok:   true,
			want: "0123456789ab",
		},
		"dirty": {
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.modified", Value: "true"},
			}},
			ok:   true,
			want: "abc123-dirty",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := revision(func() (*debug.BuildInfo, bool) { return tc.info, tc.ok })
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	got := String("tproll")

	assert.True(t, strings.HasPrefix(got, "tproll devel (rev "), got)
	assert.True(t, strings.HasSuffix(got, runtime.GOOS+"/"+runtime.GOARCH+")"), got)
}
