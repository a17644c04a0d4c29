// SPDX-License-Identifier: AGPL-3.0-only

// Package logging constructs the service-wide zap logger.
package logging

import (
	"go.uber.org/zap"
)

// New returns a sugared logger: JSON in production, console when debug.
func New(debug bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
