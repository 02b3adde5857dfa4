package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/scry-insights/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAt(t *testing.T) {
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	got, err := parseAt("", now)
	require.NoError(t, err)
	assert.Equal(t, now.UTC(), got)

	got, err = parseAt("2026-01-02T03:04:05Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), got)

	_, err = parseAt("yesterday", now)
	assert.Error(t, err)
}

func TestSplitUsers(t *testing.T) {
	assert.Nil(t, splitUsers(""))
	assert.Equal(t, []string{"a", "b"}, splitUsers(" a, ,b,"))
}

type closeRecorder struct {
	strings.Builder
	closeErr error
	closed   bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.closeErr
}

func exportFixture() *service.GlobalInsights {
	return &service.GlobalInsights{
		PassID:      "pass-1",
		GeneratedAt: time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
		Sessions:    2,
	}
}

func TestWriteAndClose(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		out := &closeRecorder{}
		require.NoError(t, writeAndClose(out, exportFixture(), nil))
		assert.True(t, out.closed)
		assert.True(t, strings.HasPrefix(out.String(), "section,key,metric,value\n"))
	})

	t.Run("close error is returned", func(t *testing.T) {
		diskFull := errors.New("no space left on device")
		out := &closeRecorder{closeErr: diskFull}
		err := writeAndClose(out, exportFixture(), nil)
		assert.ErrorIs(t, err, diskFull)
		assert.Contains(t, err.Error(), "failed to close output file")
	})
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insights.csv")
	require.NoError(t, writeFile(path, exportFixture(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "summary")

	err = writeFile(filepath.Join(t.TempDir(), "missing", "insights.csv"), exportFixture(), nil)
	assert.ErrorContains(t, err, "failed to create output file")
}
