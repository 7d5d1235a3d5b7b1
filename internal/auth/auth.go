// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package auth resolves registry credentials from the environment or a
// credentials file and exposes them as an authn.Authenticator holding a
// pre-resolved AuthConfig.
package auth

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/go-containerregistry/pkg/authn"
)

// hostCreds is one entry of a REGISTRY_AUTH_FILE JSON document: a map from
// registry host to {username, password}.
type hostCreds struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticator hands back the AuthConfig resolved for a single registry
// host.
type Authenticator struct {
	Config *authn.AuthConfig
}

// Authorization implements authn.Authenticator.
func (a *Authenticator) Authorization() (*authn.AuthConfig, error) {
	return a.Config, nil
}

// Resolve determines credentials for host: REGISTRY_USER and
// REGISTRY_PASSWORD apply to any single registry (a convenience for the
// common single-registry case); REGISTRY_AUTH_FILE, when set, names a JSON
// map of host to credentials and takes precedence for hosts it lists.
func Resolve(host string) (authn.Authenticator, error) {
	if path := os.Getenv("REGISTRY_AUTH_FILE"); path != "" {
		creds, err := loadAuthFile(path)
		if err != nil {
			return nil, err
		}
		if c, ok := creds[host]; ok {
			return &Authenticator{Config: &authn.AuthConfig{
				Username: c.Username,
				Password: c.Password,
			}}, nil
		}
	}

	user := os.Getenv("REGISTRY_USER")
	pass := os.Getenv("REGISTRY_PASSWORD")
	if user != "" || pass != "" {
		return &Authenticator{Config: &authn.AuthConfig{
			Username: user,
			Password: pass,
		}}, nil
	}

	return authn.Anonymous, nil
}

func loadAuthFile(path string) (map[string]hostCreds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var creds map[string]hostCreds
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return creds, nil
}
