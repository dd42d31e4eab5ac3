package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	err := Newf("station %q rejected", "abc").
		Category(CategoryNotFound).
		Context("station_id", "abc").
		Component("birdweather").
		Build()

	assert.Equal(t, `station "abc" rejected`, err.Error())
	assert.Equal(t, string(CategoryNotFound), err.GetCategory())
	assert.Equal(t, "birdweather", err.Component)
	assert.Equal(t, "abc", err.GetContext()["station_id"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestErrorBuilder_Defaults(t *testing.T) {
	err := Newf("boom").Build()
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Nil(t, err.GetContext())
}

func TestEnhancedError_UnwrapChain(t *testing.T) {
	inner := NewStd("inner failure")
	err := Newf("outer: %w", inner).
		Category(CategoryNetwork).
		Build()

	assert.True(t, Is(err, inner))
	assert.Equal(t, "outer: inner failure", err.Error())
}

func TestGetContext_ReturnsCopy(t *testing.T) {
	err := Newf("boom").Context("key", "original").Build()

	ctx := err.GetContext()
	ctx["key"] = "mutated"

	assert.Equal(t, "original", err.GetContext()["key"])
}

func TestIsCategory(t *testing.T) {
	netErr := Newf("conn refused").Category(CategoryNetwork).Build()
	cfgErr := Newf("bad token").Category(CategoryConfiguration).Build()

	assert.True(t, IsCategory(netErr, CategoryNetwork))
	assert.False(t, IsCategory(netErr, CategoryTimeout))
	assert.False(t, IsCategory(NewStd("plain"), CategoryNetwork))

	assert.True(t, IsRetryable(netErr))
	assert.False(t, IsRetryable(cfgErr))

	timeoutErr := Newf("deadline").Category(CategoryTimeout).Build()
	assert.True(t, IsRetryable(timeoutErr))
}

func TestIsNotFound(t *testing.T) {
	err := Newf("no station").Category(CategoryNotFound).Build()
	require.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(NewStd("other")))
}

func TestIsCategory_WrappedEnhancedError(t *testing.T) {
	inner := Newf("inner").Category(CategoryTimeout).Build()
	wrapped := Newf("retry wait: %w", inner).Category(CategoryTimeout).Build()

	assert.True(t, IsCategory(wrapped, CategoryTimeout))
}
