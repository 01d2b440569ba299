package stringutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate_Runes(t *testing.T) {
	assert.Equal(t, "你好", Truncate("你好", 2))
	assert.Equal(t, "你好...", Truncate("你好世界", 2))
	assert.Equal(t, "", Truncate("", 5))
}

func TestCleanReply_StripsThink(t *testing.T) {
	in := "<think>\nlet me see\n</think>\n  今天吃火锅！ "
	assert.Equal(t, "今天吃火锅！", CleanReply(in))
}

func TestCleanReply_OnlyThink(t *testing.T) {
	assert.Equal(t, "", CleanReply("<think>hmm</think>   "))
}

func TestStringOrDefault(t *testing.T) {
	assert.Equal(t, "a", StringOrDefault("a", "b"))
	assert.Equal(t, "b", StringOrDefault("", "b"))
}
