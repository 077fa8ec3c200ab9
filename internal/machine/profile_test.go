package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindAndEqual(t *testing.T) {
	list := []Profile{{ID: "a", Name: "A"}, {ID: "b", Name: "B", Limits: &Limits{XMax: 10}}}

	p, ok := Find(list, "b")
	assert.True(t, ok)
	assert.Equal(t, "B", p.Name)
	_, ok = Find(list, "")
	assert.False(t, ok)
	_, ok = Find(nil, "a")
	assert.False(t, ok)

	assert.True(t, Equal(list[1], Profile{ID: "b", Name: "B", Limits: &Limits{XMax: 10}}))
	assert.False(t, Equal(list[1], Profile{ID: "b", Name: "B"}))
	assert.False(t, Equal(list[0], list[1]))
}

func TestEnsure(t *testing.T) {
	assert.NotNil(t, Ensure(nil))
	assert.Empty(t, Ensure(nil))
	assert.Len(t, Ensure([]Profile{{ID: "x"}}), 1)
}
