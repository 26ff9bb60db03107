package useragent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaIPad    = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	uaWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaAndroid = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Mobile Safari/537.36"
	uaTabA    = "Mozilla/5.0 (Linux; Android 11; SM-T510) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.45 Safari/537.36"
	uaGoogle  = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser("", zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestParser_DeviceType(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		ua   string
		want *string
	}{
		{"iphone", uaIPhone, strPtr(DeviceMobile)},
		{"ipad", uaIPad, strPtr(DeviceTablet)},
		{"windows chrome", uaWindows, strPtr(DeviceDesktop)},
		{"android phone", uaAndroid, strPtr(DeviceMobile)},
		{"android tablet", uaTabA, strPtr(DeviceTablet)},
		{"googlebot", uaGoogle, nil},
		{"empty", "", nil},
		{"garbage", "definitely not a browser", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := p.Parse(tt.ua)
			require.NotNil(t, info)
			assert.Equal(t, tt.want, info.DeviceType)
		})
	}
}

func TestParser_Browser(t *testing.T) {
	p := newTestParser(t)

	info := p.Parse(uaWindows)
	require.NotNil(t, info.Browser)
	assert.Equal(t, "Chrome", *info.Browser)
	require.NotNil(t, info.OS)
	assert.Equal(t, "Windows", *info.OS)

	info = p.Parse("")
	assert.Nil(t, info.Browser)
	assert.Nil(t, info.OS)
}

func TestNewParser_MissingFileFallsBack(t *testing.T) {
	p, err := NewParser(filepath.Join(t.TempDir(), "missing.yaml"), zap.NewNop())
	require.NoError(t, err)

	info := p.Parse(uaIPhone)
	assert.Equal(t, strPtr(DeviceMobile), info.DeviceType)
}

func TestNewParser_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regexes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user_agent_parsers: [::"), 0o600))

	_, err := NewParser(path, zap.NewNop())
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
