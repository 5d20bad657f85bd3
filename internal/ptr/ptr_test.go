package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type status string

func TestTo(t *testing.T) {
	v := 3
	p := To(v)
	v = 4
	assert.Equal(t, 3, *p)
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "fallback", Deref[string](nil, "fallback"))
	assert.Equal(t, "set", Deref(To("set"), "fallback"))
}

func TestString(t *testing.T) {
	assert.Equal(t, "", String[status](nil))
	assert.Equal(t, "done", String(To(status("done"))))
}
