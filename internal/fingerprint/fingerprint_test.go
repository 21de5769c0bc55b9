package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintKnownValues(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "empty input", data: nil, want: "TCByYo9r1su7nMQP3WHDFK"},
		{name: "ascii", data: []byte("hello world"), want: "ChLQMLdGMFWDeWrG29QYZp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fingerprint(tt.data))
		})
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	data := []byte{0x00, 0xff, 0x10, 0x20, 0x30}
	first := Fingerprint(data)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Fingerprint(data))
	}
}

func TestFingerprintDistinguishesInputs(t *testing.T) {
	assert.NotEqual(t, Fingerprint([]byte("page-0")), Fingerprint([]byte("page-1")))
}

func TestFingerprintIsKeySafe(t *testing.T) {
	const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	for _, data := range [][]byte{nil, []byte("x"), []byte(strings.Repeat("q", 4096))} {
		fp := Fingerprint(data)
		assert.NotEmpty(t, fp)
		for _, r := range fp {
			assert.Contains(t, alphabet, string(r))
		}
	}
}
