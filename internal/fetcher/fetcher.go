package fetcher

import "context"

// PageFetcher retrieves the raw textual content of a published tariff page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}
