package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "career-guidance:institutes:list:version", Key("institutes", "list", "version"))
	assert.Equal(t, "career-guidance:login:lock:10.0.0.1", Key("login", "lock", "10.0.0.1"))
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisCache("http://localhost:6379")
	assert.Error(t, err)
}
