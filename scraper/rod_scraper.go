package scraper

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"airbnb-cleaner/config"
	"airbnb-cleaner/parser"
)

const (
	defaultDataDir = "/tmp/air-data"
	renderDelay    = 3 * time.Second
	stableTimeout  = 10 * time.Second
)

// RodScraper implements the Scraper interface using rod (headless browser).
// It reuses the login stored in the browser profile directory.
type RodScraper struct {
	browser *rod.Browser
	cfg     config.ScraperConfig
	logger  *zap.Logger
}

// NewRodScraper launches a browser on the profile in BOT_DATA_DIR
func NewRodScraper(cfg config.ScraperConfig, logger *zap.Logger) (*RodScraper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Mounted as a volume so the hosting session survives restarts
	userDataDir := os.Getenv("BOT_DATA_DIR")
	if userDataDir == "" {
		userDataDir = defaultDataDir
	}
	if err := os.MkdirAll(userDataDir, 0755); err != nil {
		logger.Warn("failed to create bot data directory", zap.String("dir", userDataDir), zap.Error(err))
		userDataDir = ""
	}

	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(true).
		Leakless(false).
		UserDataDir(userDataDir).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("disable-sync").
		Set("disable-translate").
		Set("mute-audio").
		Set("no-zygote").
		Set("memory-pressure-off").
		Set("disable-features", "TranslateUI,BlinkGenPropertyTrees")

	if bin := findChrome(); bin != "" {
		l = l.Bin(bin)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w\n\nNote: On Linux, you may need to install Chromium dependencies:\n  apt-get update && apt-get install -y chromium chromium-sandbox", err)
	}

	browser, err := connectBrowser(browserURL, l.Kill)
	if err != nil {
		return nil, err
	}

	return &RodScraper{browser: browser, cfg: cfg, logger: logger}, nil
}

// connectBrowser attaches to a launched browser and calls kill when it cannot
func connectBrowser(controlURL string, kill func()) (*rod.Browser, error) {
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return browser, nil
}

// findChrome returns the first system Chrome or Chromium binary, or "" to let rod download one
func findChrome() string {
	paths := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}
	if username := os.Getenv("USERNAME"); username != "" {
		paths = append(paths, `C:\Users\`+username+`\AppData\Local\Google\Chrome\Application\chrome.exe`)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Close closes the browser
func (rs *RodScraper) Close() error {
	if rs.browser != nil {
		return rs.browser.Close()
	}
	return nil
}

// CheckSession opens the hosting dashboard and reports ErrNotLoggedIn when it redirects to login
func (rs *RodScraper) CheckSession(ctx context.Context) error {
	page, err := rs.open(ctx, rs.cfg.HostingURL)
	if err != nil {
		return err
	}
	defer page.Close()

	info, err := page.Info()
	if err != nil {
		return fmt.Errorf("failed to read page info: %w", err)
	}
	if !isLoggedIn(info.URL) {
		return fmt.Errorf("%w: landed on %s", ErrNotLoggedIn, info.URL)
	}
	return nil
}

// ReservationBlocks implements the Scraper interface
func (rs *RodScraper) ReservationBlocks(ctx context.Context) ([]string, error) {
	if err := rs.CheckSession(ctx); err != nil {
		return nil, err
	}

	page, err := rs.open(ctx, rs.cfg.ReservationsURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	var texts []string
	for _, selector := range rs.cfg.BlockSelectors {
		elements, err := page.Elements(selector)
		if err != nil {
			rs.logger.Debug("selector failed", zap.String("selector", selector), zap.Error(err))
			continue
		}
		for _, el := range elements {
			text, err := el.Text()
			if err != nil {
				continue
			}
			texts = append(texts, text)
		}
	}

	blocks := parser.UniqueBlocks(texts, rs.cfg.MinBlockLength)
	rs.logger.Info("scraped reservation cards", zap.Int("elements", len(texts)), zap.Int("blocks", len(blocks)))
	return blocks, nil
}

// ListingRows implements the Scraper interface
func (rs *RodScraper) ListingRows(ctx context.Context) ([]string, error) {
	if err := rs.CheckSession(ctx); err != nil {
		return nil, err
	}

	page, err := rs.open(ctx, rs.cfg.ListingsURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML: %w", err)
	}

	rows, err := parser.NewParser(rs.cfg.BlockSelectors, rs.cfg.MinBlockLength).ExtractListingRows(html)
	if err != nil {
		return nil, err
	}
	rs.logger.Info("scraped listing rows", zap.Int("rows", len(rows)))
	return rows, nil
}

// open navigates a new page to url and waits for the JavaScript to settle
func (rs *RodScraper) open(ctx context.Context, url string) (*rod.Page, error) {
	page, err := rs.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := page.Navigate(url); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := page.WaitLoad(); err != nil {
		rs.logger.Warn("page did not finish loading", zap.String("url", url), zap.Error(err))
	}

	select {
	case <-ctx.Done():
		page.Close()
		return nil, ctx.Err()
	case <-time.After(renderDelay):
	}

	if err := page.Timeout(stableTimeout).WaitStable(500 * time.Millisecond); err != nil {
		rs.logger.Warn("page did not stabilize within timeout, continuing anyway", zap.String("url", url), zap.Error(err))
	}

	return page, nil
}
