package bootstrap

import (
	"net/http"

	"github.com/7pairs/twingo2/internal/config"
	"github.com/7pairs/twingo2/internal/provider"
)

// initializeProvider builds the Twitter client. The HTTP client timeout is
// the ceiling for every provider call; per-request deadlines can only
// shorten it.
func initializeProvider(cfg *config.Config) provider.Client {
	return provider.NewTwitter(provider.TwitterConfig{
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		HTTPClient: &http.Client{
			Timeout: cfg.ProviderTimeout,
		},
	})
}
