package control

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/hotpin/internal/topmost"
)

func TestReadFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		max     int
		want    string
		wantErr bool
		wantEOF bool
	}{
		{name: "terminated", input: "{\"command\":\"ping\"}\nextra", max: 64, want: "{\"command\":\"ping\"}\n"},
		{name: "unterminated at eof", input: "{\"command\":\"ping\"}", max: 64, want: "{\"command\":\"ping\"}"},
		{name: "empty", input: "", max: 64, wantEOF: true},
		{name: "too large", input: strings.Repeat("a", 100) + "\n", max: 32, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reader := bufio.NewReaderSize(strings.NewReader(tt.input), tt.max+1)
			raw, err := readFrame(reader, tt.max)

			switch {
			case tt.wantEOF:
				assert.ErrorIs(t, err, io.EOF)
			case tt.wantErr:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "exceeds")
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, string(raw))
			}
		})
	}
}

func TestDecodeRequest(t *testing.T) {
	t.Parallel()

	req, err := decodeRequest([]byte(`{"command":"pin","title":"Editor"}`))
	require.NoError(t, err)
	assert.Equal(t, Request{Command: CmdPin, Title: "Editor"}, req)

	_, err = decodeRequest([]byte(`{"title":"Editor"}`))
	assert.Error(t, err)

	_, err = decodeRequest([]byte(`not json`))
	assert.Error(t, err)
}

func TestFailureCodes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CodeNotFound, Failure(topmost.ErrWindowNotFound).Code)
	assert.Equal(t, CodeBadRequest, Failure(topmost.ErrEmptyTitle).Code)
	assert.Equal(t, CodeFailed, Failure(errors.New("other")).Code)

	assert.NoError(t, Response{OK: true}.Err())
	assert.ErrorIs(t, Failure(topmost.ErrEmptyTitle).Err(), topmost.ErrEmptyTitle)
}
