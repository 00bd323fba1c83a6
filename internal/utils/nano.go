package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

var (
	NanoidSize = 21

	// lowercase only so ids are safe in object keys and temp file names
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

func NanoIDSize(size int) string {
	if size == 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}
