package util

import (
	"github.com/lithammer/shortuuid/v4"
)

// GenUUID generates a short unique identifier for externally visible resources.
func GenUUID() string {
	return shortuuid.New()
}
