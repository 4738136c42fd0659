package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewETag_QuotedWireFormat(t *testing.T) {
	tag := NewETag("group-1", 1700000000123)
	assert.Equal(t, `"group-1-1700000000123"`, tag.String())
}

func TestETag_Matches(t *testing.T) {
	tag := NewETag("group-1", 42)

	assert.True(t, tag.Matches(`"group-1-42"`))
	assert.False(t, tag.Matches(`"group-1-43"`))
	assert.False(t, tag.Matches("group-1-42"))
	assert.False(t, tag.Matches(""))
}

func TestNewETag_ChangesWithMarker(t *testing.T) {
	before := NewETag("group-1", 100)
	after := NewETag("group-1", 101)
	assert.NotEqual(t, before, after)
}
