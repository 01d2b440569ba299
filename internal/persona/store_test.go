package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Store ─────────────────────────────────────────────────────────────────

func TestGet_DefaultWithoutCreating(t *testing.T) {
	s := NewStore(Default())

	assert.Equal(t, Default(), s.Get("g1"))
	assert.False(t, s.Has("g1"))
}

func TestResolve_CreatesFromTemplate(t *testing.T) {
	s := NewStore(Default())

	assert.Equal(t, "ano", s.Resolve("g1").Name)
	assert.True(t, s.Has("g1"))
}

func TestSet_ValidKey(t *testing.T) {
	s := NewStore(Default())

	require.NoError(t, s.Set("g1", KeyName, "小明"))
	got := s.Get("g1")
	assert.Equal(t, "小明", got.Name)
	assert.Equal(t, Default().Style, got.Style)

	// Other conversations keep the template.
	assert.Equal(t, "ano", s.Get("g2").Name)
}

func TestSet_InvalidKeyLeavesStateUnchanged(t *testing.T) {
	s := NewStore(Default())
	require.NoError(t, s.Set("g1", KeyStyle, "冷淡"))
	before := s.Get("g1")

	err := s.Set("g1", "age", "10")
	assert.ErrorIs(t, err, ErrInvalidSettingKey)
	assert.Equal(t, before, s.Get("g1"))

	err = s.Set("g2", "", "x")
	assert.ErrorIs(t, err, ErrInvalidSettingKey)
	assert.False(t, s.Has("g2"))
}

func TestSet_EmptyValue(t *testing.T) {
	s := NewStore(Default())
	require.NoError(t, s.Set("g1", KeyBackground, ""))
	assert.Equal(t, "", s.Get("g1").Background)
}

// ─── Format ────────────────────────────────────────────────────────────────

func TestFormat(t *testing.T) {
	st := Settings{Name: "小明", Personality: "p", Style: "s", Background: "b"}
	assert.Equal(t, "📌 当前 AI 设置：\n名称: 小明\n性格: p\n风格: s\n背景: b", Format(st))
}

// ─── Template file ─────────────────────────────────────────────────────────

func TestLoadTemplate_EmptyPath(t *testing.T) {
	st, err := LoadTemplate("")
	require.NoError(t, err)
	assert.Equal(t, Default(), st)
}

func TestLoadTemplate_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: soyo\nstyle: 温柔\n"), 0o644))

	st, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "soyo", st.Name)
	assert.Equal(t, "温柔", st.Style)
	assert.Equal(t, Default().Personality, st.Personality)
}

func TestLoadTemplate_Missing(t *testing.T) {
	_, err := LoadTemplate(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadTemplate_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o644))

	st, err := LoadTemplate(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), st)
}

func TestSaveTemplate_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, SaveTemplate(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "name: ano"))

	st, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), st)
}
