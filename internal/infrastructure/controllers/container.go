package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	providers := []any{
		NewOperationControllers,
		NewListController,
		NewStatusController,
		NewReleaseController,
		NewPublishController,
		NewControllers,
	}
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}
	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	operationControllers []*OperationController,
	listController *ListController,
	statusController *StatusController,
	releaseController *ReleaseController,
	publishController *PublishController,
) *[]entities.Controller {
	controllers := make([]entities.Controller, 0, len(operationControllers)+4) //nolint:mnd // fixed verbs
	for _, c := range operationControllers {
		controllers = append(controllers, c)
	}
	controllers = append(controllers, listController, statusController, releaseController, publishController)
	return &controllers
}
