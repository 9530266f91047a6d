package cow

import (
	"sync"
	"testing"
	"unicode/utf8"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A handle is one length word plus one block pointer; anything more breaks
// embedding in layouts that discriminate representations by footprint.
func TestHandleFootprint(t *testing.T) {
	assert.Equal(t, 2*unsafe.Sizeof(uintptr(0)), unsafe.Sizeof(String{}))
}

func TestNew_Hello(t *testing.T) {
	s := New("hello", 0)
	defer s.Drop()

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 5, s.Cap())
	assert.Equal(t, "hello", s.String())
	assert.Equal(t, []byte("hello"), s.Bytes())
}

func TestNew_Empty(t *testing.T) {
	s := New("", 0)
	defer s.Drop()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "", s.String())
	assert.Empty(t, s.Bytes())
}

func TestNew_Long(t *testing.T) {
	long := "aaabbbcccdddeeefff\n" +
		"ggghhhiiijjjkkklll\n" +
		"mmmnnnooopppqqqrrr\n" +
		"ssstttuuuvvvwwwxxx\n" +
		"yyyzzz000111222333\n" +
		"444555666777888999000"
	s := New(long, 0)
	defer s.Drop()

	assert.Equal(t, long, s.String())
	assert.Equal(t, len(long), s.Len())
}

func TestNew_AdditionalCapacity(t *testing.T) {
	s := New("hello", 10)
	defer s.Drop()

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 15, s.Cap())
	assert.Equal(t, "hello", s.String())
}

func TestNew_NegativeAdditionalPanics(t *testing.T) {
	assert.Panics(t, func() { New("x", -1) })
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"a",
		"hello world!",
		"héllo wörld",
		"日本語のテキスト",
		"emoji: 🦀🚀✨",
		"mixed £5 → €7 and 中文",
		"\x00binary-ish\x00but valid utf8",
	}
	for _, text := range cases {
		for _, additional := range []int{0, 1, 17, 256} {
			s := New(text, additional)
			assert.Equal(t, text, s.String(), "text=%q additional=%d", text, additional)
			assert.Equal(t, len(text), s.Len())
			assert.Equal(t, len(text)+additional, s.Cap())
			assert.True(t, utf8.Valid(s.Bytes()))
			s.Drop()
		}
	}
}

func TestCloneAndDrop(t *testing.T) {
	example := "hello world!"
	s1 := New(example, 0)
	s2 := s1.Clone()

	s1.Drop()

	assert.Equal(t, example, s2.String())
	assert.Equal(t, len(example), s2.Len())
	s2.Drop()
}

func TestCloneSharesBlock(t *testing.T) {
	s1 := New("shared", 0)
	s2 := s1.Clone()

	require.Same(t, s1.b, s2.b)
	assert.Equal(t, int64(2), s1.b.Refs())
	assert.Equal(t, s1.String(), s2.String())

	s2.Drop()
	assert.Equal(t, int64(1), s1.b.Refs())
	assert.Equal(t, "shared", s1.String())
	s1.Drop()
}

func TestEqualString(t *testing.T) {
	s := New("abc", 4)
	defer s.Drop()

	assert.True(t, s.EqualString("abc"))
	assert.False(t, s.EqualString("abcd"))
	assert.False(t, s.EqualString(""))
}

func TestConcurrentCloneDrop(t *testing.T) {
	const goroutines = 8
	const rounds = 2000

	s := New("concurrent content", 0)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		c := s.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := c
			for i := 0; i < rounds; i++ {
				c2 := local.Clone()
				assert.Equal(t, "concurrent content", c2.String())
				c2.Drop()
			}
			local.Drop()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), s.b.Refs())
	assert.Equal(t, "concurrent content", s.String())
	s.Drop()
}

func TestConcurrentMutationIsolation(t *testing.T) {
	const goroutines = 8

	base := New("base", 0)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		c := base.Clone()
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			local := c
			for i := 0; i < 200; i++ {
				local.Push(rune('a' + id))
			}
			assert.Equal(t, 4+200, local.Len())
			assert.Equal(t, "base", local.String()[:4])
			local.Drop()
		}(g)
	}
	wg.Wait()

	assert.Equal(t, "base", base.String())
	base.Drop()
}
