package cursor

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Position is the sort key and document id of the last document of a page.
type Position struct {
	Key string
	ID  string
}

// Encode returns an opaque, URL-safe cursor for the position.
func Encode(p Position) string {
	code := fmt.Sprintf("%s|%s", p.Key, p.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(code))
}

// Decode parses a cursor produced by Encode. An empty string decodes to nil.
func Decode(code string) (*Position, error) {
	if code == "" {
		return nil, nil
	}
	decodedBytes, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	// Document ids never contain '|', sort keys might.
	decoded := string(decodedBytes)
	i := strings.LastIndex(decoded, "|")
	if i < 0 || i == len(decoded)-1 {
		return nil, fmt.Errorf("not correct format")
	}
	return &Position{Key: decoded[:i], ID: decoded[i+1:]}, nil
}
