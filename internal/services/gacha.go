package services

import (
	"math/rand"

	"github.com/mroth/weightedrand/v2"
)

type ServiceGacha[T any] struct {
	chooser *weightedrand.Chooser[T, int]
}

func NewServiceGacha[T any](choices []weightedrand.Choice[T, int]) (*ServiceGacha[T], error) {
	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, err
	}

	return &ServiceGacha[T]{chooser}, nil
}

// NewUniformGacha gives every entry the same weight. The daily feature and
// the weekly draw are deliberately not weighted by votes.
func NewUniformGacha[T any](items []T) (*ServiceGacha[T], error) {
	choices := make([]weightedrand.Choice[T, int], 0, len(items))
	for _, item := range items {
		choices = append(choices, weightedrand.NewChoice(item, 1))
	}

	return NewServiceGacha(choices)
}

func (service *ServiceGacha[T]) Pick() T {
	return service.chooser.Pick()
}

func (service *ServiceGacha[T]) PickSource(source *rand.Rand) T {
	return service.chooser.PickSource(source)
}
