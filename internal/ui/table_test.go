package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("Your ATM", [][2]string{
		{"Your Account", "0xf39F"},
		{"Your Balance", "100"},
	})
	assert.Contains(t, result, "Your ATM")
	assert.Contains(t, result, "Your Account")
	assert.Contains(t, result, "0xf39F")
	assert.Contains(t, result, "100")
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	result := KeyValueBlock("", [][2]string{{"First", "1"}, {"Second", "2"}, {"Third", "3"}})
	first := strings.Index(result, "First")
	second := strings.Index(result, "Second")
	third := strings.Index(result, "Third")
	assert.True(t, first < second && second < third)
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	result := KeyValueBlock("T", [][2]string{{"k", "v"}})
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╯")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestNewTableEmpty(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 8}})
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, -1, tbl.Marked)
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 8}, {Title: "Address", Width: 12}})
	tbl.AddRow(Row{"alice", "0xf39F…2266"})
	tbl.AddRow(Row{"bob"})
	tbl.Marked = 0

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[0], "Address")
	assert.Contains(t, lines[1], "--------")
	assert.Contains(t, lines[2], "alice")
	assert.Contains(t, lines[2], "0xf39F…2266")
	assert.Contains(t, lines[3], "bob")
}

func TestTableTruncatesLongCells(t *testing.T) {
	tbl := NewTable([]Column{{Title: "N", Width: 4}})
	tbl.AddRow(Row{"abcdefgh"})
	out := tbl.Render()
	assert.Contains(t, out, "abcd")
	assert.NotContains(t, out, "abcde")
}

func TestPadR(t *testing.T) {
	assert.Equal(t, "hi        ", padR("hi", 10))
	assert.Equal(t, "hello", padR("hello", 5))
	assert.Equal(t, "toolongstring", padR("toolongstring", 5))
	assert.Equal(t, "    ", padR("", 4))
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab  ", fit("ab", 4))
	assert.Equal(t, "…a", fit("…abc", 2))
}
