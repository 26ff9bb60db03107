package useragent

import (
	"fmt"
	"os"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// Parser wraps the uap-go parser with a coarse device classification.
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo is the classification of a single User-Agent string.
// Fields are nil when the value could not be determined.
type DeviceInfo struct {
	DeviceType *string
	Browser    *string
	OS         *string
}

var (
	botIndicators = []string{
		"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider",
		"yandexbot", "facebookexternalhit", "twitterbot", "linkedinbot",
		"bot", "crawler", "spider", "scraper", "curl", "wget",
	}
	mobileDevices = []string{"iphone", "ipod", "android", "blackberry", "windows phone", "mobile", "phone"}
	tabletDevices = []string{"ipad", "tablet", "kindle", "nexus 7", "nexus 9", "sm-t"}
	mobileOS      = []string{"ios", "android", "windows phone", "blackberry os", "firefox os", "sailfish"}
	desktopOS     = []string{"windows", "mac os x", "macos", "linux", "ubuntu", "fedora", "chrome os", "freebsd", "openbsd", "netbsd"}
)

// NewParser creates a parser from a uap-core regexes.yaml file. When the file
// is not configured or missing, the definitions bundled with uap-go are used.
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	if regexFilePath == "" {
		log.Info("using bundled User-Agent definitions")
		return &Parser{parser: uaparser.NewFromSaved(), log: log}, nil
	}

	if _, err := os.Stat(regexFilePath); os.IsNotExist(err) {
		log.Warn("regexes file not found, using bundled User-Agent definitions",
			zap.String("regexes_file", regexFilePath))
		return &Parser{parser: uaparser.NewFromSaved(), log: log}, nil
	}

	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file: %w", err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))

	return &Parser{parser: parser, log: log}, nil
}

// Parse classifies a User-Agent string. It never panics; anything it
// cannot classify is left nil.
func (p *Parser) Parse(userAgent string) (info *DeviceInfo) {
	info = &DeviceInfo{}
	if strings.TrimSpace(userAgent) == "" {
		return info
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("User-Agent parser panicked", zap.Any("panic", r), zap.String("user_agent", userAgent))
			info = &DeviceInfo{}
		}
	}()

	client := p.parser.Parse(userAgent)

	if client.UserAgent != nil {
		info.Browser = known(client.UserAgent.Family)
	}
	if client.Os != nil {
		info.OS = known(client.Os.Family)
	}
	info.DeviceType = known(determineDeviceType(client, userAgent))

	p.log.Debug("parsed User-Agent",
		zap.String("user_agent", userAgent),
		zap.Stringp("device_type", info.DeviceType),
		zap.Stringp("browser", info.Browser),
	)

	return info
}

func determineDeviceType(client *uaparser.Client, userAgent string) string {
	var uaFamily, osFamily, deviceFamily string
	if client.UserAgent != nil {
		uaFamily = client.UserAgent.Family
	}
	if client.Os != nil {
		osFamily = client.Os.Family
	}
	if client.Device != nil {
		deviceFamily = client.Device.Family
	}

	// Bots are not counted as any device class.
	if deviceFamily == "Spider" || containsAny(uaFamily, botIndicators) || containsAny(userAgent, botIndicators) {
		return ""
	}

	if deviceFamily != "" && deviceFamily != "Other" {
		if containsAny(deviceFamily, tabletDevices) {
			return DeviceTablet
		}
		if containsAny(deviceFamily, mobileDevices) {
			return DeviceMobile
		}
	}

	if containsAny(osFamily, mobileOS) {
		if isTabletOS(osFamily, userAgent) {
			return DeviceTablet
		}
		return DeviceMobile
	}

	if containsAny(osFamily, desktopOS) {
		return DeviceDesktop
	}

	return ""
}

// isTabletOS separates tablets from phones running the same mobile OS.
func isTabletOS(osFamily, userAgent string) bool {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(strings.ToLower(osFamily), "ios"):
		return strings.Contains(ua, "ipad")
	case strings.Contains(strings.ToLower(osFamily), "android"):
		// Android tablets omit the "Mobile" token.
		return !strings.Contains(ua, "mobile")
	}
	return false
}

func containsAny(s string, needles []string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func known(s string) *string {
	if s == "" || s == "Other" {
		return nil
	}
	return &s
}
