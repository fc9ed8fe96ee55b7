package document

import (
	"testing"

	"github.com/desertwitch/swupd/internal/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Success_ParentIndices(t *testing.T) {
	t.Parallel()

	b := NewBuilder()

	require.NoError(t, b.StartTag("configuration", []Attribute{{"platform", "Linux"}, {"product", "app"}}))
	require.NoError(t, b.StartTag("operations", nil))
	require.NoError(t, b.StartTag("copy", nil))
	require.NoError(t, b.StartTag("from", []Attribute{{"root", "Remote"}}))
	require.NoError(t, b.Text("  bin/app \n"))
	require.NoError(t, b.EndTag("from"))
	require.NoError(t, b.StartTag("to", []Attribute{{"root", "Target"}}))
	require.NoError(t, b.Text("/opt/app"))
	require.NoError(t, b.EndTag("to"))
	require.NoError(t, b.EndTag("copy"))
	require.NoError(t, b.EndTag("operations"))
	require.NoError(t, b.EndTag("configuration"))

	elements, err := b.Finish()
	require.NoError(t, err)
	require.Len(t, elements, 5)

	assert.Equal(t, grammar.ConfigurationOpen, elements[0].Token)
	assert.Equal(t, NoParent, elements[0].Parent)
	assert.Equal(t, 0, elements[1].Parent)
	assert.Equal(t, 1, elements[2].Parent)
	assert.Equal(t, 2, elements[3].Parent)
	assert.Equal(t, 2, elements[4].Parent)

	assert.Equal(t, "bin/app", elements[3].Value)
	assert.True(t, elements[3].Ready)
	assert.Equal(t, "/opt/app", elements[4].Value)
	assert.False(t, elements[2].Ready)
}

func TestBuilder_Success_TextAssignedOnce(t *testing.T) {
	t.Parallel()

	b := NewBuilder()

	require.NoError(t, b.StartTag("configuration", nil))
	require.NoError(t, b.StartTag("resource-uri", nil))
	require.NoError(t, b.Text("   "))
	require.NoError(t, b.Text("file:///srv/a"))
	require.NoError(t, b.Text("file:///srv/b"))
	require.NoError(t, b.EndTag("resource-uri"))
	require.NoError(t, b.EndTag("configuration"))

	elements, err := b.Finish()
	require.NoError(t, err)

	assert.Equal(t, "file:///srv/a", elements[1].Value)
}

func TestBuilder_Fail_DuplicateAttribute(t *testing.T) {
	t.Parallel()

	b := NewBuilder()

	require.NoError(t, b.StartTag("configuration", nil))
	require.NoError(t, b.StartTag("operations", nil))

	err := b.StartTag("remove", []Attribute{{"root", "Target"}, {"root", "Remote"}})
	require.ErrorIs(t, err, ErrDuplicateAttribute)
}

func TestBuilder_Fail_GrammarFault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		run  func(b *Builder) error
	}{
		{
			name: "Fail_UnknownTag",
			run: func(b *Builder) error {
				return b.StartTag("unknown", nil)
			},
		},
		{
			name: "Fail_CopyOutsideOperations",
			run: func(b *Builder) error {
				if err := b.StartTag("configuration", nil); err != nil {
					return err
				}

				return b.StartTag("copy", nil)
			},
		},
		{
			name: "Fail_MismatchedClose",
			run: func(b *Builder) error {
				if err := b.StartTag("configuration", nil); err != nil {
					return err
				}
				if err := b.StartTag("validate", nil); err != nil {
					return err
				}

				return b.EndTag("backup")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewBuilder()
			require.ErrorIs(t, tt.run(b), ErrGrammarFault)
			assert.Equal(t, grammar.StatusFault, b.Status())
		})
	}
}

func TestBuilder_Fail_Incomplete(t *testing.T) {
	t.Parallel()

	b := NewBuilder()

	require.NoError(t, b.StartTag("configuration", nil))
	require.NoError(t, b.StartTag("validate", nil))

	_, err := b.Finish()
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestBuilder_Fail_Empty(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder().Finish()
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestBuilder_Fail_AfterFinish(t *testing.T) {
	t.Parallel()

	b := NewBuilder()

	require.NoError(t, b.StartTag("configuration", nil))
	require.NoError(t, b.EndTag("configuration"))

	_, err := b.Finish()
	require.NoError(t, err)

	require.ErrorIs(t, b.StartTag("configuration", nil), ErrFinished)
	_, err = b.Finish()
	require.ErrorIs(t, err, ErrFinished)
}

func TestElement_Description(t *testing.T) {
	t.Parallel()

	e := Element{
		Token:      grammar.RemoveOpen,
		Value:      "/tmp/x",
		Attributes: []Attribute{{"root", "Target"}},
	}

	assert.Equal(t, "<remove> [root:Target] { /tmp/x } </remove>", e.Description())

	v, ok := e.Attribute("root")
	assert.True(t, ok)
	assert.Equal(t, "Target", v)

	_, ok = e.Attribute("path")
	assert.False(t, ok)
}
