package links

import (
	"fmt"
	"sort"
	"strings"

	"campusevents/internal/config"
)

// Platform selects which store and web links apply
type Platform string

const (
	IOS     Platform = "ios"
	Android Platform = "android"
)

// ParsePlatform accepts "ios" or "android" in any case
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case IOS:
		return IOS, nil
	case Android:
		return Android, nil
	}
	return "", fmt.Errorf("unknown platform %q (want ios or android)", s)
}

// Checker reports whether a URL can be handled on this device.
// An error means the check itself failed.
type Checker func(url string) (bool, error)

// Resolution is the outcome of resolving an app link
type Resolution struct {
	URL      string
	Store    bool // URL is the app store link
	Fallback bool // the check failed and URL is the fallback link
}

// StoreLink returns the store link for platform
func StoreLink(link config.AppLink, p Platform) string {
	if p == IOS {
		return link.IOS
	}
	return link.Android
}

// WebLink returns the general web link, or the platform specific one when
// no general link is configured
func WebLink(link config.AppLink, p Platform) string {
	if link.Web != "" {
		return link.Web
	}
	if p == IOS {
		return link.WebIOS
	}
	return link.WebAndroid
}

// Resolve picks the URL to open for link.
//
// The store link wins when canOpen accepts it, otherwise the web link is used.
// If canOpen fails, the browser link is used when present, else the web link.
// A nil canOpen accepts every store link.
func Resolve(link config.AppLink, p Platform, canOpen Checker) Resolution {
	store := StoreLink(link, p)
	web := WebLink(link, p)

	if store == "" {
		return Resolution{URL: web}
	}
	if canOpen == nil {
		return Resolution{URL: store, Store: true}
	}

	ok, err := canOpen(store)
	if err != nil {
		if link.Browser != "" {
			return Resolution{URL: link.Browser, Fallback: true}
		}
		return Resolution{URL: web, Fallback: true}
	}
	if ok {
		return Resolution{URL: store, Store: true}
	}
	return Resolution{URL: web}
}

// Names returns the configured service names in sorted order
func Names(table map[string]config.AppLink) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
