package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestValuesFromContext(t *testing.T) {
	t.Run("Populated", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
		ctx = context.WithValue(ctx, EndpointKey, "CodeHandler.Redirect")

		assert.Equal(t, "req-42", RequestIDFromContext(ctx))
		assert.Equal(t, "CodeHandler.Redirect", EndpointFromContext(ctx))
	})

	t.Run("Missing", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, "", RequestIDFromContext(ctx))
		assert.Equal(t, "", EndpointFromContext(ctx))
	})

	t.Run("WrongType", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), RequestIDKey, 42)
		assert.Equal(t, "", RequestIDFromContext(ctx))
	})
}
