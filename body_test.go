package httpcore

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesBodyIsCloneable(t *testing.T) {
	b := NewBytesBody([]byte("hello"))
	assert.True(t, b.Cloneable())
	assert.EqualValues(t, 5, b.Len())

	first, ok := clone(b)
	require.True(t, ok)
	data, err := io.ReadAll(first.Reader())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	second, ok := clone(b)
	require.True(t, ok)
	data2, err := io.ReadAll(second.Reader())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data2))
}

func TestStreamBodyIsNotCloneable(t *testing.T) {
	b := NewStreamBody(bytes.NewBufferString("hello"), 5)
	assert.False(t, b.Cloneable())
	_, ok := clone(b)
	assert.False(t, ok)
}

func TestEmptyBodyAlwaysCloneable(t *testing.T) {
	_, ok := clone(EmptyBody)
	assert.True(t, ok)
	assert.EqualValues(t, 0, EmptyBody.Len())
}
