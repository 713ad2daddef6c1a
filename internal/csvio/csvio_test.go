package csvio

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) [][]string {
	t.Helper()
	r := NewReader(strings.NewReader(input))
	var rows [][]string
	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

func TestReader_Next(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [][]string
	}{
		{
			name:     "trims cells",
			input:    "title , body\n  Bug ,  steps  \n",
			expected: [][]string{{"title", "body"}, {"Bug", "steps"}},
		},
		{
			name:     "strips byte order mark",
			input:    "\ufefftitle,labels\nX,\"a,b\"\n",
			expected: [][]string{{"title", "labels"}, {"X", "a,b"}},
		},
		{
			name:     "tolerates ragged rows",
			input:    "title,body,labels\nshort\n",
			expected: [][]string{{"title", "body", "labels"}, {"short"}},
		},
		{
			name:     "multiline quoted body",
			input:    "title,body\nX,\"line1\nline2\"\n",
			expected: [][]string{{"title", "body"}, {"X", "line1\nline2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, readAll(t, tt.input))
		})
	}
}

func TestReader_Line(t *testing.T) {
	r := NewReader(strings.NewReader("a\nb\n"))
	_, _ = r.Next()
	_, _ = r.Next()
	assert.Equal(t, 2, r.Line())

	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteHeader([]string{"title", "labels"}))
	require.NoError(t, w.Write([]string{"Bug", "a,b"}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "title,labels\nBug,\"a,b\"\n", buf.String())
	assert.Equal(t, 1, w.Rows())
}
