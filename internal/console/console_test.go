package console

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine_Scanner(t *testing.T) {
	var out bytes.Buffer
	c, err := New(strings.NewReader("SELECT 1;\r\n\nquit"), &out)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.terminal)
	assert.Same(t, &out, c.Out())

	line, err := c.ReadLine("sql> ")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", line)

	line, err = c.ReadLine("sql> ")
	require.NoError(t, err)
	assert.Empty(t, line)

	line, err = c.ReadLine("sql> ")
	require.NoError(t, err)
	assert.Equal(t, "quit", line)

	_, err = c.ReadLine("sql> ")
	assert.Equal(t, io.EOF, err)

	assert.Equal(t, strings.Repeat("sql> ", 4), out.String())
}

func TestOut_IsUnderlyingWriterWhenNotATerminal(t *testing.T) {
	var out bytes.Buffer
	c, err := New(strings.NewReader(""), &out)
	require.NoError(t, err)

	io.WriteString(c.Out(), "hello\n")
	assert.Equal(t, "hello\n", out.String())
	assert.NoError(t, c.Close())
}

func TestReadLine_LongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	c, err := New(strings.NewReader(long+"\n"), io.Discard)
	require.NoError(t, err)

	line, err := c.ReadLine("")
	require.NoError(t, err)
	assert.Len(t, line, len(long))
}
