package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTo(t *testing.T) {
	n := 42
	p := To(n)
	require.NotNil(t, p)
	assert.Equal(t, n, *p)

	*p = 7
	assert.Equal(t, 42, n, "pointee is a copy")

	s := To("doi")
	assert.Equal(t, "doi", *s)
}
