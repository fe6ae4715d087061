package main

import (
	"fmt"

	"jeevan/pkg/types"

	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.QueryTimeoutSec == 0 {
		c.QueryTimeoutSec = 5
	}

	if c.DispatchBuffer == 0 {
		c.DispatchBuffer = 64
	}

	if c.ListenChannel == "" {
		c.ListenChannel = "profile_verified"
	}

	return c, nil
}
