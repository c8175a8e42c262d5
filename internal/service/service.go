// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package service

import "context"

// Service is the minimal interface every long-lived component implements
type Service interface {
	// Name returns the name of the service
	Name() string
}

// Initializer is implemented by services that need a setup step before Run
type Initializer interface {
	Service
	Init() error
}

// Runner is implemented by services that run in the background.
// Run is expected to block until ctx is cancelled or the service fails.
type Runner interface {
	Service
	Run(ctx context.Context) error
}

// Shutdowner is implemented by services that need cleanup after Run returns
type Shutdowner interface {
	Service
	Shutdown() error
}
