// Package exercises binds exercise reads and writes to a signed-in user.
package exercises

import (
	"context"
	"errors"

	"fitlog/common"
)

var (
	ErrUnauthenticated     = errors.New("User must be authenticated to add exercises")
	ErrUnauthenticatedList = errors.New("User must be authenticated to list exercises")
)

// Repository is the exercise store the hooks write through.
type Repository interface {
	AddExercise(ctx context.Context, userId string, payload common.ExercisePayload) error
	ListExercises(ctx context.Context, userId string) ([]common.Exercise, error)
}

type AddExerciseFunc func(ctx context.Context, name string) error

type ListExercisesFunc func(ctx context.Context) ([]common.Exercise, error)

// UseAddExercise returns a function that adds an exercise named name for userId.
// With an empty userId the function fails with ErrUnauthenticated and never
// reaches repo. Repository errors are returned as-is.
func UseAddExercise(repo Repository, userId string) AddExerciseFunc {
	return func(ctx context.Context, name string) error {
		if userId == "" {
			return ErrUnauthenticated
		}
		return repo.AddExercise(ctx, userId, common.ExercisePayload{Name: name})
	}
}

// UseExercises returns a function that lists the exercises of userId.
func UseExercises(repo Repository, userId string) ListExercisesFunc {
	return func(ctx context.Context) ([]common.Exercise, error) {
		if userId == "" {
			return nil, ErrUnauthenticatedList
		}
		return repo.ListExercises(ctx, userId)
	}
}
