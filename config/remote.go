package config

import (
	"fmt"
	"net/url"

	"github.com/kilianp07/procsched/auth"
)

// RemoteConfig points the CLI at a running server instead of the local
// database.
type RemoteConfig struct {
	URL  string    `json:"url"`
	Auth auth.Conf `json:"auth"`
}

// Validate checks the URL when one is set.
func (c RemoteConfig) Validate() error {
	if c.URL == "" {
		return nil
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url %q", c.URL)
	}
	return nil
}
