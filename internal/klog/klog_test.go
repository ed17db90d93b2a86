package klog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalDefaultsToNonNil(t *testing.T) {
	assert.NotNil(t, Global())
}

func TestSetGlobalSwapsLogger(t *testing.T) {
	orig := Global()
	defer SetGlobal(orig)

	SetGlobal(nil)
	assert.Nil(t, Global())

	SetGlobal(orig)
	assert.Equal(t, orig, Global())
}
