package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	a := Key("model-a", "jag såg dem")
	assert.Len(t, a, 40)
	assert.Equal(t, a, Key("model-a", "jag såg dem"))
	assert.NotEqual(t, a, Key("model-b", "jag såg dem"))
	assert.NotEqual(t, a, Key("model-a", "jag såg de"))
}
