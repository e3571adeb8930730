package manufactory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sghaida/manufactory/manufactory"
	"github.com/sghaida/manufactory/typeindex"
)

// TestAnnotated_TypeIdentity verifies each tag yields its own type index.
func TestAnnotated_TypeIdentity(t *testing.T) {
	t.Parallel()

	one := typeindex.Of[manufactory.Annotated[annotation1, InterfaceAB]]()
	two := typeindex.Of[manufactory.Annotated[annotation2, InterfaceAB]]()
	plain := typeindex.Of[InterfaceAB]()

	assert.NotEqual(t, one, two)
	assert.NotEqual(t, one, plain)
	assert.NotEqual(t, two, plain)
}

// TestOptional verifies presence tracking and defaults.
func TestOptional(t *testing.T) {
	t.Parallel()

	var empty manufactory.Optional[*MetricSink]
	v, ok := empty.Get()
	assert.False(t, ok)
	assert.Nil(t, v)

	fallback := &MetricSink{name: "fallback"}
	assert.Same(t, fallback, empty.OrElse(fallback))

	sink := &MetricSink{name: "sink"}
	some := manufactory.Some(sink)
	v, ok = some.Get()
	assert.True(t, ok)
	assert.Same(t, sink, v)
	assert.Same(t, sink, some.OrElse(fallback))
}
