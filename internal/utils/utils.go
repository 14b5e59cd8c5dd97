package utils

import "math/rand"

const alphaNums = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomAlphaNum returns a random lowercase alphanumeric string of length n.
func RandomAlphaNum(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphaNums[rand.Intn(len(alphaNums))]
	}
	return string(b)
}
