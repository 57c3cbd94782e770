package reserr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := Errorf(NotFound, "resource 0x%08x", 0x7f010000)
	wrapped := errors.Wrap(errors.Wrap(err, "get-value"), "cli")

	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, NotFound))
	assert.False(t, Is(wrapped, MalformedTable))
	assert.Contains(t, wrapped.Error(), "not-found: resource 0x7f010000")
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.False(t, Is(nil, NotFound))
}

func TestSoftKinds(t *testing.T) {
	tests := []struct {
		kind Kind
		soft bool
	}{
		{NotFound, true},
		{Unresolvable, true},
		{TypeMismatch, true},
		{CircularReference, false},
		{InvalidHandle, false},
		{MalformedTable, false},
	}
	for _, v := range tests {
		if v.kind.Soft() != v.soft {
			t.Fatalf("Failed: %v - soft:%v", v.kind, v.kind.Soft())
		}
	}
}
