// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package registry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
)

// Bounded exponential backoff for transport errors and HTTP 5xx, terminal
// on everything else (401 is handled by the authenticator, not here; other
// 4xx are terminal).
const (
	retryAttempts = 3
	retryBase     = 500 * time.Millisecond
	retryFactor   = 2
)

// withRetry runs fn up to retryAttempts times, backing off exponentially
// between attempts, stopping early on a terminal (non-5xx, non-transport)
// error or when ctx is done.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBase
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= retryFactor
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
	}
	return err
}

func isRetryable(err error) bool {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return terr.StatusCode >= http.StatusInternalServerError
	}
	// Network-level errors (DNS failure, connection reset, timeout),
	// recognised by their Timeout method, are treated as transient; any
	// other error is terminal.
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
