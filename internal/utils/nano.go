package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// Every row this service mints (matches, notifications, seeded profiles)
// gets a 32-character alphanumeric NanoID. Profile and user rows created
// upstream arrive with their own IDs and keep them.
const idSize = 32

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func NanoID() string {
	return gonanoid.MustGenerate(idAlphabet, idSize)
}
