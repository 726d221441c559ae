package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "1.2.0", CommitHash: "abc1234", BuildTime: "2026-08-26"}
	assert.Equal(t, "twinegen 1.2.0 (commit abc1234, built 2026-08-26)", info.String())
}
