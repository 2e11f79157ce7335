package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	assert.True(t, validateName("Alice"))
	assert.False(t, validateName(""))
	assert.False(t, validateName(strings.Repeat("a", 21)))
}

func TestValidateUsername(t *testing.T) {
	assert.True(t, validateUsername("alice_99"))
	assert.False(t, validateUsername("Alice"))
	assert.False(t, validateUsername("alice smith"))
	assert.False(t, validateUsername(""))
	assert.False(t, validateUsername(strings.Repeat("a", 21)))
}

func TestValidateBio(t *testing.T) {
	assert.True(t, validateBio(""))
	assert.True(t, validateBio("just here to chat"))
	assert.False(t, validateBio(strings.Repeat("b", 51)))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, validatePassword("hunter2hunter2"))
	assert.False(t, validatePassword("short1"))
	assert.False(t, validatePassword("nodigitshere"))
}
