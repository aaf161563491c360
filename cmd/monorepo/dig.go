package main

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/rios0rios0/monorepo/internal"
)

// injectAppContext builds the container and resolves the AppInternal holding every controller.
func injectAppContext() (*internal.AppInternal, error) {
	container := dig.New()
	if err := internal.RegisterProviders(container); err != nil {
		return nil, err
	}

	var appInternal *internal.AppInternal
	if err := container.Invoke(func(ai *internal.AppInternal) {
		appInternal = ai
	}); err != nil {
		return nil, fmt.Errorf("failed to build the application: %w", err)
	}
	return appInternal, nil
}
