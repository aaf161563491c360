package internal

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/rios0rios0/monorepo/internal/domain/commands"
	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/infrastructure/controllers"
	"github.com/rios0rios0/monorepo/internal/infrastructure/repositories"
)

// layer registers the providers of one architectural layer.
type layer struct {
	name     string
	register func(*dig.Container) error
}

// RegisterProviders registers all internal providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// bottom-up: infrastructure repos -> domain entities -> domain commands -> controllers
	layers := []layer{
		{name: "repositories", register: repositories.RegisterProviders},
		{name: "entities", register: entities.RegisterProviders},
		{name: "commands", register: commands.RegisterProviders},
		{name: "controllers", register: controllers.RegisterProviders},
	}
	for _, l := range layers {
		if err := l.register(container); err != nil {
			return fmt.Errorf("failed to register %s: %w", l.name, err)
		}
	}

	return container.Provide(NewAppInternal)
}
