package database

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("expected connection, got %v", err)
	}
	defer client.Close()

	if _, err := NewRedisClient("not a url"); err == nil {
		t.Error("expected parse error for invalid URL")
	}
}
