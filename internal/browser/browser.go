// Package browser imports the portal session cookie from installed web
// browsers.
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"

	"github.com/diogo/hrdesk/internal/config"
	"github.com/diogo/hrdesk/internal/models"
)

// SupportedBrowser represents a supported browser type
type SupportedBrowser string

const (
	BrowserAuto     SupportedBrowser = "auto"
	BrowserChrome   SupportedBrowser = "chrome"
	BrowserChromium SupportedBrowser = "chromium"
	BrowserFirefox  SupportedBrowser = "firefox"
	BrowserEdge     SupportedBrowser = "edge"
	BrowserOpera    SupportedBrowser = "opera"
)

// AllSupportedBrowsers returns a list of all supported browsers
func AllSupportedBrowsers() []SupportedBrowser {
	return []SupportedBrowser{
		BrowserChrome,
		BrowserChromium,
		BrowserFirefox,
		BrowserEdge,
		BrowserOpera,
	}
}

// String returns the string representation of the browser
func (b SupportedBrowser) String() string {
	return string(b)
}

// ParseBrowser parses a browser string into a SupportedBrowser
func ParseBrowser(s string) (SupportedBrowser, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return BrowserAuto, nil
	case "chrome", "google-chrome":
		return BrowserChrome, nil
	case "chromium":
		return BrowserChromium, nil
	case "firefox", "mozilla", "mozilla-firefox":
		return BrowserFirefox, nil
	case "edge", "microsoft-edge", "msedge":
		return BrowserEdge, nil
	case "opera":
		return BrowserOpera, nil
	default:
		return "", fmt.Errorf("unsupported browser: %s. Supported: chrome, chromium, firefox, edge, opera", s)
	}
}

// ExtractResult contains the result of a session import
type ExtractResult struct {
	Session     *config.Session
	BrowserName string
}

// ExtractSession finds the portal's session cookie for host
func ExtractSession(ctx context.Context, browser SupportedBrowser, host string) (*ExtractResult, error) {
	if host == "" {
		return nil, fmt.Errorf("portal host is empty")
	}
	if browser == BrowserAuto {
		return extractFromAllBrowsers(ctx, host)
	}
	return extractFromBrowser(ctx, browser, host)
}

// extractFromAllBrowsers tries every supported browser in turn
func extractFromAllBrowsers(ctx context.Context, host string) (*ExtractResult, error) {
	browsers := []SupportedBrowser{
		BrowserChrome,
		BrowserFirefox,
		BrowserEdge,
		BrowserChromium,
		BrowserOpera,
	}

	var lastErr error
	for _, browser := range browsers {
		result, err := extractFromBrowser(ctx, browser, host)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("could not find a portal session in any browser: %w", lastErr)
	}
	return nil, fmt.Errorf("could not find a portal session in any supported browser")
}

// extractFromBrowser tries each profile of one browser
func extractFromBrowser(ctx context.Context, browser SupportedBrowser, host string) (*ExtractResult, error) {
	stores := kooky.FindAllCookieStores(ctx)

	var matchingStores []kooky.CookieStore
	for _, store := range stores {
		if matchesBrowser(store.Browser(), browser) {
			matchingStores = append(matchingStores, store)
		} else {
			_ = store.Close()
		}
	}
	defer func() {
		for _, store := range matchingStores {
			_ = store.Close()
		}
	}()

	if len(matchingStores) == 0 {
		return nil, fmt.Errorf("browser %s not found or no cookie store available", browser)
	}

	var lastErr error
	for _, store := range matchingStores {
		result, err := extractSessionFromStore(ctx, store, host)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// matchesBrowser checks if a browser name matches the target browser
func matchesBrowser(browserName string, target SupportedBrowser) bool {
	browserName = strings.ToLower(browserName)

	switch target {
	case BrowserChrome:
		return strings.Contains(browserName, "chrome") && !strings.Contains(browserName, "chromium")
	case BrowserChromium:
		return strings.Contains(browserName, "chromium")
	case BrowserFirefox:
		return strings.Contains(browserName, "firefox")
	case BrowserEdge:
		return strings.Contains(browserName, "edge")
	case BrowserOpera:
		return strings.Contains(browserName, "opera")
	default:
		return false
	}
}

// extractSessionFromStore reads the session cookie for host from one store
func extractSessionFromStore(ctx context.Context, store kooky.CookieStore, host string) (*ExtractResult, error) {
	cookies := store.TraverseCookies(
		kooky.Valid,
		kooky.Name(models.SessionCookieName),
		kooky.DomainContains(host),
	).OnlyCookies()

	var value string
	best := -1
	for cookie := range cookies {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if rank := domainRank(cookie.Domain, host); rank > best && cookie.Value != "" {
			value = cookie.Value
			best = rank
		}
	}

	displayName := store.Browser()
	if profile := store.Profile(); profile != "" {
		displayName = fmt.Sprintf("%s (profile: %s)", displayName, profile)
	}

	if value == "" {
		return nil, fmt.Errorf("cookie %s for %s not found in %s. Please log into the portal in that browser first", models.SessionCookieName, host, displayName)
	}

	return &ExtractResult{
		Session:     config.NewSession(value, host),
		BrowserName: displayName,
	}, nil
}

// domainRank scores how closely a cookie domain matches host: an exact
// match beats a leading-dot domain, which beats a substring match.
func domainRank(domain, host string) int {
	domain = strings.ToLower(domain)
	host = strings.ToLower(host)

	switch {
	case domain == host:
		return 2
	case strings.TrimPrefix(domain, ".") == host:
		return 1
	case strings.Contains(domain, host):
		return 0
	default:
		return -1
	}
}

// ListAvailableBrowsers returns a list of browsers that have cookie stores
func ListAvailableBrowsers() []string {
	stores := kooky.FindAllCookieStores(context.Background())
	var browsers []string

	seen := make(map[string]bool)
	for _, store := range stores {
		name := store.Browser()
		if !seen[name] {
			browsers = append(browsers, name)
			seen[name] = true
		}
		_ = store.Close()
	}

	return browsers
}
