package browser

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Config holds the navigation knobs for the chromedp adapter. The
// selectors describe the target site's company search flow and are
// configuration, not code, so a site layout change is a config edit.
type Config struct {
	// SearchURLTemplate is a printf template receiving the URL-escaped
	// company name, e.g. "https://www.linkedin.com/search/results/companies/?keywords=%s".
	SearchURLTemplate string `yaml:"search_url_template" mapstructure:"search_url_template"`
	// CompanyLinkSelector locates the first company result link.
	CompanyLinkSelector string `yaml:"company_link_selector" mapstructure:"company_link_selector"`
	// AboutLinkSelector locates the About tab on the company page.
	AboutLinkSelector string `yaml:"about_link_selector" mapstructure:"about_link_selector"`
	// AboutSectionSelector locates the About free-text block.
	AboutSectionSelector string `yaml:"about_section_selector" mapstructure:"about_section_selector"`
	// TimeoutSecs bounds one whole navigate-and-extract sequence.
	TimeoutSecs int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Headless    bool `yaml:"headless" mapstructure:"headless"`
}

// DefaultConfig returns the selectors for the default target site.
func DefaultConfig() Config {
	return Config{
		SearchURLTemplate:    "https://www.linkedin.com/search/results/companies/?keywords=%s",
		CompanyLinkSelector:  `a[href*="/company/"]`,
		AboutLinkSelector:    `a[href*="/about/"]`,
		AboutSectionSelector: `section.org-about-module, section[class*="about"]`,
		TimeoutSecs:          60,
		Headless:             true,
	}
}

// Chromedp implements Navigator with a headless Chrome session.
// One session is reused across calls; the pipeline is strictly
// sequential so no locking is needed.
type Chromedp struct {
	cfg        Config
	allocCtx   context.Context
	browserCtx context.Context
	cancel     []context.CancelFunc
}

// NewChromedp starts a browser session. Requires Chrome/Chromium on the host.
func NewChromedp(ctx context.Context, cfg Config) (*Chromedp, error) {
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = DefaultConfig().TimeoutSecs
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
		)...,
	)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	return &Chromedp{
		cfg:        cfg,
		allocCtx:   allocCtx,
		browserCtx: browserCtx,
		cancel:     []context.CancelFunc{cancelBrowser, cancelAlloc},
	}, nil
}

// Close tears down the browser session.
func (c *Chromedp) Close() {
	for _, cancel := range c.cancel {
		cancel()
	}
}

// CompanyAboutText searches for the company, opens its first result's
// About page, and returns the section text. A rendered bot challenge
// surfaces as ErrBotChallenge so the caller can pause for a human.
func (c *Chromedp) CompanyAboutText(ctx context.Context, companyName string) (string, error) {
	runCtx, cancel := context.WithTimeout(c.browserCtx, time.Duration(c.cfg.TimeoutSecs)*time.Second)
	defer cancel()

	// Stop early if the pipeline was cancelled.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	searchURL := fmt.Sprintf(c.cfg.SearchURLTemplate, url.QueryEscape(companyName))
	zap.L().Debug("browser: navigating", zap.String("company", companyName), zap.String("url", searchURL))

	var pageText, aboutText string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(searchURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.Text("body", &pageText, chromedp.ByQuery),
	)
	if err != nil {
		return "", eris.Wrapf(err, "browser: search %s", companyName)
	}
	if IsChallengeText(pageText) {
		return "", ErrBotChallenge
	}

	err = chromedp.Run(runCtx,
		chromedp.Click(c.cfg.CompanyLinkSelector, chromedp.NodeVisible),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(c.cfg.AboutLinkSelector, chromedp.NodeVisible),
		chromedp.Sleep(2*time.Second),
		chromedp.Text(c.cfg.AboutSectionSelector, &aboutText, chromedp.ByQuery),
	)
	if err != nil {
		return "", eris.Wrapf(err, "browser: open about page %s", companyName)
	}
	if IsChallengeText(aboutText) {
		return "", ErrBotChallenge
	}

	return aboutText, nil
}
