package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/procsched/app"
	"github.com/kilianp07/procsched/config"
)

var remoteOpts struct {
	server string
	token  string
}

// addRemoteFlags lets a command talk to a running server.
func addRemoteFlags(c *cobra.Command) {
	c.Flags().StringVar(&remoteOpts.server, "server", "", "base URL of a procsched server (overrides remote.url)")
	c.Flags().StringVar(&remoteOpts.token, "token", "", "bearer token for --server")
}

func remoteConfig() config.RemoteConfig {
	r := cfg.Remote
	if remoteOpts.server != "" {
		r.URL = remoteOpts.server
	}
	if remoteOpts.token != "" {
		r.Auth.Token = remoteOpts.token
		r.Auth.TokenURL = ""
	}
	return r
}

func newLocalService(ctx context.Context) (*app.Service, error) {
	return app.New(ctx, cfg)
}
