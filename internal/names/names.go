// Package names draws plausible personal names from fixed surname and
// given-name pools. Draws are not unique.
package names

import (
	"math/rand"
	"strings"
)

var surnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "黄", "赵", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}

// Repeated fragments are intentional: they weight the uniform draw.
var givenNames = []string{
	"伟", "芳", "娜", "秀英", "敏", "静", "丽", "强", "磊", "洋",
	"勇", "艳", "杰", "娟", "涛", "明", "超", "秀兰", "霞", "平",
	"刚", "桂英", "梅", "波", "辉", "刚", "健", "雪", "斌", "静",
	"淑珍", "敏", "丽", "辉", "建华", "磊", "秀兰", "洋", "勇", "艳",
	"杰",
}

// Generator produces names using the supplied random source.
type Generator struct {
	rng *rand.Rand
}

// New binds a Generator to rng. A nil rng panics at construction rather than
// at the first draw.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		panic("names: New(nil)")
	}
	return &Generator{rng: rng}
}

// Name returns one surname followed by one or two given-name fragments.
func (g *Generator) Name() string {
	var b strings.Builder
	b.WriteString(surnames[g.rng.Intn(len(surnames))])
	fragments := 1 + g.rng.Intn(2)
	for i := 0; i < fragments; i++ {
		b.WriteString(givenNames[g.rng.Intn(len(givenNames))])
	}
	return b.String()
}

// Names returns n names. n <= 0 yields an empty slice.
func (g *Generator) Names(n int) []string {
	if n <= 0 {
		return []string{}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = g.Name()
	}
	return out
}
