package validate

import (
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/archivata/metaconv/core/errors"
)

// TokenResult is the outcome of a token-level file comparison.
type TokenResult struct {
	// Equal reports whether the two token streams match.
	Equal bool

	// Message is a human-readable diagnostic: the first diverging token
	// on mismatch, the stream fingerprints on success.
	Message string
}

// Tokens compares two XML files token by token, ignoring insignificant
// whitespace between tags and the ordering of attributes. It returns the
// comparison outcome plus a diagnostic message.
func Tokens(pathA, pathB string) (*TokenResult, error) {
	tokensA, err := tokenizeFile(pathA)
	if err != nil {
		return nil, err
	}
	tokensB, err := tokenizeFile(pathB)
	if err != nil {
		return nil, err
	}

	limit := len(tokensA)
	if len(tokensB) < limit {
		limit = len(tokensB)
	}
	for i := 0; i < limit; i++ {
		if tokensA[i] != tokensB[i] {
			return &TokenResult{
				Equal: false,
				Message: fmt.Sprintf("token %d differs: %q (%s) vs %q (%s)",
					i, tokensA[i], pathA, tokensB[i], pathB),
			}, nil
		}
	}
	if len(tokensA) != len(tokensB) {
		longer := pathA
		if len(tokensB) > len(tokensA) {
			longer = pathB
		}
		return &TokenResult{
			Equal: false,
			Message: fmt.Sprintf("token count differs: %d vs %d, extra content in %s",
				len(tokensA), len(tokensB), longer),
		}, nil
	}

	return &TokenResult{
		Equal:   true,
		Message: fmt.Sprintf("streams match, fingerprint %s", fingerprint(tokensA)),
	}, nil
}

// fingerprint digests a normalized token stream for the commit log.
func fingerprint(tokens []string) string {
	h := blake3.New()
	for _, tok := range tokens {
		h.WriteString(tok)
		h.WriteString("\x00")
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// tokenizeFile reads a file into its normalized token stream.
func tokenizeFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewRead("XML", path, err)
	}
	defer f.Close()
	return tokenize(f, path)
}

// tokenize normalizes an XML stream: start tags carry their attributes
// sorted by name, whitespace-only character data is dropped, and other
// character data is kept with surrounding whitespace trimmed. Comments,
// directives and processing instructions are not significant.
func tokenize(r io.Reader, path string) ([]string, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = true
	// Entity expansion stays disabled; unknown entities fail the parse
	// rather than fetch anything.
	decoder.Entity = map[string]string{}

	var tokens []string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewRead("XML", path, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			tokens = append(tokens, startTag(t))
		case xml.EndElement:
			tokens = append(tokens, "</"+qualifiedName(t.Name)+">")
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text != "" {
				tokens = append(tokens, text)
			}
		}
	}
	return tokens, nil
}

func startTag(t xml.StartElement) string {
	attrs := make([]string, 0, len(t.Attr))
	for _, a := range t.Attr {
		attrs = append(attrs, qualifiedName(a.Name)+`="`+a.Value+`"`)
	}
	sort.Strings(attrs)

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(qualifiedName(t.Name))
	for _, a := range attrs {
		b.WriteString(" ")
		b.WriteString(a)
	}
	b.WriteString(">")
	return b.String()
}

func qualifiedName(name xml.Name) string {
	if name.Space != "" {
		return name.Space + ":" + name.Local
	}
	return name.Local
}
