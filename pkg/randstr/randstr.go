package randstr

import "crypto/rand"

type Generator struct {
	dictionary []byte
}

func New(dictionary []byte) *Generator {
	return &Generator{dictionary: dictionary}
}

// GenerateRandomString returns a cryptographically random string of
// length n built from the generator's dictionary.
func (g *Generator) GenerateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}

	for i, b := range bytes {
		bytes[i] = g.dictionary[b%byte(len(g.dictionary))]
	}

	return string(bytes)
}
