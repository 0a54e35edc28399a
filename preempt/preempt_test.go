package preempt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoluntaryDefaultsToNoop(t *testing.T) {
	defer Set(noop)
	assert.NotPanics(t, Voluntary)
}

func TestSetInstallsHook(t *testing.T) {
	defer Set(noop)
	called := false
	Set(func() { called = true })
	Voluntary()
	assert.True(t, called)
}

func TestSetRejectsNil(t *testing.T) {
	assert.Panics(t, func() { Set(nil) })
}
