package market

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"priceintel/internal/domain/pricing"
)

const (
	ebaySearchBase = "https://www.ebay.com/sch/i.html"
	maxListings    = 30
)

// ScraperConfig controls the headless-browser eBay scraper.
type ScraperConfig struct {
	Headless    bool
	ExecPath    string
	NavTimeout  time.Duration
	RatePerMin  int
	MaxListings int
}

// DefaultScraperConfig returns conservative scraping defaults.
func DefaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		Headless:    true,
		NavTimeout:  30 * time.Second,
		RatePerMin:  12,
		MaxListings: maxListings,
	}
}

// Scraper fetches eBay sold-listings pricing through a headless browser.
// eBay renders search results with JavaScript, so a plain HTTP GET is not
// enough.
type Scraper struct {
	cfg     ScraperConfig
	limiter *rate.Limiter
}

// NewScraper builds a scraper with a fetch rate limiter.
func NewScraper(cfg ScraperConfig) *Scraper {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 30 * time.Second
	}
	if cfg.RatePerMin <= 0 {
		cfg.RatePerMin = 12
	}
	if cfg.MaxListings <= 0 {
		cfg.MaxListings = maxListings
	}
	return &Scraper{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMin)), 1),
	}
}

// SearchURL builds the eBay sold+completed listings search URL for a term.
func SearchURL(term string) string {
	q := url.Values{}
	q.Set("_nkw", term)
	q.Set("_sacat", "0")
	q.Set("LH_Sold", "1")
	q.Set("LH_Complete", "1")
	q.Set("_sop", "12")
	q.Set("_ipg", "60")
	return ebaySearchBase + "?" + q.Encode()
}

// extractListingsJS pulls title, price text and sold status out of eBay
// result cards. Price parsing happens Go-side.
const extractListingsJS = `
(() => {
	const items = Array.from(document.querySelectorAll('.s-card'));
	return items.map(item => {
		const titleElem = item.querySelector('.s-card__title .su-styled-text');
		const title = titleElem ? titleElem.textContent.trim() : '';
		if (!title || title.toLowerCase().includes('shop on ebay')) {
			return null;
		}
		const priceElem = item.querySelector('.s-card__price');
		const priceText = priceElem ? priceElem.textContent.trim() : '';
		const condElem = item.querySelector('.s-card__subtitle .su-styled-text');
		const soldElem = item.querySelector('.s-card__caption .su-styled-text');
		const soldText = soldElem ? soldElem.textContent : '';
		return {
			title: title,
			priceText: priceText,
			condition: condElem ? condElem.textContent.trim() : 'Unknown',
			sold: soldText.includes('Sold') || soldText.includes('Vendido'),
		};
	}).filter(item => item !== null);
})()
`

type rawListing struct {
	Title     string `json:"title"`
	PriceText string `json:"priceText"`
	Condition string `json:"condition"`
	Sold      bool   `json:"sold"`
}

// Fetch scrapes sold listings for the term and aggregates them into a
// snapshot. An empty result set is not an error: it yields a zero-sample
// snapshot the rule engine can still reason about.
func (s *Scraper) Fetch(ctx context.Context, term string) (*pricing.MarketSnapshot, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	searchURL := SearchURL(term)
	log.Info().Str("term", term).Str("url", searchURL).Msg("Scraping eBay sold listings")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if s.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	navCtx, cancelNav := context.WithTimeout(browserCtx, s.cfg.NavTimeout)
	defer cancelNav()

	var raw []rawListing
	err := chromedp.Run(navCtx,
		chromedp.Navigate(searchURL),
		chromedp.Sleep(3*time.Second), // let result cards render
		chromedp.Evaluate(extractListingsJS, &raw),
	)
	if err != nil {
		return nil, fmt.Errorf("scrape %q: %w", term, err)
	}

	listings := s.toListings(raw)
	snapshot := Aggregate(listings, time.Now().UTC())

	log.Info().Str("term", term).Int("listings", snapshot.SampleSize).
		Int("sold", snapshot.SoldListings).Msg("eBay scrape complete")
	return snapshot, nil
}

func (s *Scraper) toListings(raw []rawListing) []Listing {
	listings := make([]Listing, 0, len(raw))
	for _, r := range raw {
		price, ok := ParsePrice(r.PriceText)
		if !ok {
			continue
		}
		listings = append(listings, Listing{
			Title:     r.Title,
			Price:     price,
			Condition: r.Condition,
			Sold:      r.Sold,
		})
		if len(listings) >= s.cfg.MaxListings {
			break
		}
	}
	return listings
}
