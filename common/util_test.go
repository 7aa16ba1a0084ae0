package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type utilTestSuite struct {
	suite.Suite
}

func (s *utilTestSuite) TestBitMapSetClear() {
	assert := assert.New(s.T())
	var bm BitMap64

	assert.True(bm.Set(3))
	assert.False(bm.Set(3), "bit 3 is already set")

	assert.True(bm.Clear(3))
	assert.False(bm.Clear(3), "bit 3 is already cleared")
}

func (s *utilTestSuite) TestFindFirstSetRespectsLimit() {
	assert := assert.New(s.T())
	var bm BitMap64

	for i := uint64(0); i < 3; i++ {
		bit, ok := bm.FindFirstSet(3)
		assert.True(ok)
		assert.Equal(i, bit)
	}

	_, ok := bm.FindFirstSet(3)
	assert.False(ok, "all slots in [0,3) are occupied")
	assert.Equal(3, bm.PopCount())
}

func (s *utilTestSuite) TestFindFirstSetConcurrentIsExclusive() {
	assert := assert.New(s.T())
	var bm BitMap64
	const slots = 64

	seen := make([]int32, slots)
	var wg sync.WaitGroup
	for i := 0; i < slots; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bit, ok := bm.FindFirstSet(slots)
			if ok {
				seen[bit]++
			}
		}()
	}
	wg.Wait()

	for _, c := range seen {
		assert.LessOrEqual(c, int32(1), "no slot should be handed out twice")
	}
	assert.Equal(slots, bm.PopCount())
}

func (s *utilTestSuite) TestKeyedMutexIsPerKey() {
	assert := assert.New(s.T())
	var km KeyedMutex

	a := km.GetLock("a")
	b := km.GetLock("b")
	assert.NotSame(a, b)
	assert.Same(a, km.GetLock("a"))
}

func TestUtilSuite(t *testing.T) {
	suite.Run(t, new(utilTestSuite))
}
